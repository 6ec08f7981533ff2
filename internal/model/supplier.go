package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Supplier is an optional reference on purchase ledger entries.
type Supplier struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_suppliers_owner_name,priority:1"`
	Name      string    `gorm:"size:100;not null;uniqueIndex:idx_suppliers_owner_name,priority:2"`
	Contact   *string   `gorm:"size:20"`
	IsActive  bool      `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Supplier) TableName() string { return "suppliers" }

func (s *Supplier) BeforeCreate(*gorm.DB) error {
	newID(&s.ID)
	return nil
}
