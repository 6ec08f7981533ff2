package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventoryItem is a purchasable / consumable good type. Items flagged
// IsDefault are visible to every owner.
type InventoryItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_items_owner_name,priority:1"`
	Name      string    `gorm:"size:100;not null;uniqueIndex:idx_inventory_items_owner_name,priority:2"`
	Unit      string    `gorm:"size:20"`
	IsDefault bool      `gorm:"not null;index"`
	IsActive  bool      `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (InventoryItem) TableName() string { return "inventory_items" }

func (i *InventoryItem) BeforeCreate(*gorm.DB) error {
	newID(&i.ID)
	return nil
}
