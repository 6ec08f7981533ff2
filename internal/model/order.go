package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// Order totals are derived from its lines at creation time and never
// recomputed from live recipe prices.
type Order struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OwnerID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderNo          string          `gorm:"size:20;not null;uniqueIndex"`
	CustomerID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status           OrderStatus     `gorm:"size:10;not null;index"`
	DeliveryDate     *time.Time      `gorm:"type:date"`
	TotalValue       decimal.Decimal `gorm:"type:numeric(28,10);not null"`
	TotalCost        decimal.Decimal `gorm:"type:numeric(28,10);not null"`
	Profit           decimal.Decimal `gorm:"type:numeric(28,10);not null"`
	ProfitPercentage decimal.Decimal `gorm:"type:numeric(9,2);not null"`
	CompletedAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Customer *Customer   `gorm:"foreignKey:CustomerID"`
	Lines    []OrderLine `gorm:"foreignKey:OrderID"`
}

func (Order) TableName() string { return "orders" }

func (o *Order) BeforeCreate(*gorm.DB) error {
	newID(&o.ID)
	return nil
}

// OrderLine snapshots recipe price and cost at creation.
type OrderLine struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_order_lines_order_recipe,priority:1"`
	RecipeID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_order_lines_order_recipe,priority:2;index"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(28,10);not null"`
	UnitCost  decimal.Decimal `gorm:"type:numeric(28,10);not null"`
	LineValue decimal.Decimal `gorm:"type:numeric(28,10);not null"`
	LineCost  decimal.Decimal `gorm:"type:numeric(28,10);not null"`
	CreatedAt time.Time

	Recipe *Recipe `gorm:"foreignKey:RecipeID"`
}

func (OrderLine) TableName() string { return "order_lines" }

func (l *OrderLine) BeforeCreate(*gorm.DB) error {
	newID(&l.ID)
	return nil
}
