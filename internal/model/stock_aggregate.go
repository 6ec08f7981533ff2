package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockAggregate is the running balance for an (item, owner) pair.
// CostPerUnit and TotalValue are derived by the cascade and never written by
// callers directly. A soft-deleted row (IsActive=false) counts as empty stock
// and is revived by the next purchase.
type StockAggregate struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ItemID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_item_owner,priority:1"`
	OwnerID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_item_owner,priority:2;index"`
	Quantity     decimal.Decimal `gorm:"type:numeric(18,4);not null"`
	ReorderLevel decimal.Decimal `gorm:"type:numeric(18,4);not null"`
	CostPerUnit  decimal.Decimal `gorm:"type:numeric(18,4);not null"`
	TotalValue   decimal.Decimal `gorm:"type:numeric(28,10);not null"`
	IsActive     bool            `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Item *InventoryItem `gorm:"foreignKey:ItemID"`
}

func (StockAggregate) TableName() string { return "stock_aggregates" }

func (s *StockAggregate) BeforeCreate(*gorm.DB) error {
	newID(&s.ID)
	return nil
}

// Available is the quantity a removal may draw from.
func (s StockAggregate) Available() decimal.Decimal {
	if !s.IsActive {
		return decimal.Zero
	}
	return s.Quantity
}

// BelowReorder reports quantity strictly under the reorder threshold.
func (s StockAggregate) BelowReorder() bool {
	return s.Quantity.LessThan(s.ReorderLevel)
}
