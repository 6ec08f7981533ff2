package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrLedgerImmutable is returned by the GORM hooks when something tries to
// modify or remove a ledger row. Corrections are new offsetting entries.
var ErrLedgerImmutable = errors.New("ledger entries are append-only")

// LedgerEntry records one stock movement for an (item, owner) pair.
// Quantity is always a positive magnitude; IsAddition carries the direction.
// CostPerUnit is derived from CostPrice / Quantity when the entry is built and
// is zero for removals.
type LedgerEntry struct {
	ID           uint64          `gorm:"primaryKey;autoIncrement"`
	OwnerID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_ledger_owner_item,priority:1"`
	ItemID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_ledger_owner_item,priority:2"`
	SupplierID   *uuid.UUID      `gorm:"type:uuid;index"`
	Quantity     decimal.Decimal `gorm:"type:numeric(18,4);not null"`
	IsAddition   bool            `gorm:"not null"`
	CostPrice    decimal.Decimal `gorm:"type:numeric(18,4);not null"`
	CostPerUnit  decimal.Decimal `gorm:"type:numeric(18,4);not null"`
	IncidentDate time.Time       `gorm:"type:date;not null"`
	Reference    string          `gorm:"size:64"`
	CreatedAt    time.Time

	Item     *InventoryItem `gorm:"foreignKey:ItemID"`
	Supplier *Supplier      `gorm:"foreignKey:SupplierID"`
}

func (LedgerEntry) TableName() string { return "ledger_entries" }

// Action is the direction label used by the history listing.
func (e LedgerEntry) Action() string {
	if e.IsAddition {
		return "add"
	}
	return "deduct"
}

func (e *LedgerEntry) BeforeCreate(*gorm.DB) error {
	if !e.Quantity.IsPositive() {
		return errors.New("ledger entry quantity must be positive")
	}
	if e.IsAddition && e.CostPrice.IsNegative() {
		return errors.New("ledger entry cost price must not be negative")
	}
	return nil
}

func (LedgerEntry) BeforeUpdate(*gorm.DB) error { return ErrLedgerImmutable }
func (LedgerEntry) BeforeDelete(*gorm.DB) error { return ErrLedgerImmutable }
