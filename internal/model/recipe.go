package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Recipe is an owner-scoped bill of materials. Every *Cost / *Price field
// except PackagingCost and OverheadCost is derived by the cascade.
type Recipe struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OwnerID            uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_recipes_owner_name,priority:1"`
	Name               string          `gorm:"size:100;not null;uniqueIndex:idx_recipes_owner_name,priority:2"`
	Category           *string         `gorm:"size:50"`
	LabourTime         time.Duration   `gorm:"not null"`
	LabourRate         decimal.Decimal `gorm:"type:numeric(18,4);not null"`
	LabourCost         decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	PackagingCost      decimal.Decimal `gorm:"type:numeric(18,4);not null"`
	OverheadCost       decimal.Decimal `gorm:"type:numeric(18,4);not null"`
	ProfitMargin       decimal.Decimal `gorm:"type:numeric(9,4);not null"`
	InventoryItemsCost decimal.Decimal `gorm:"type:numeric(28,10);not null"`
	CostPrice          decimal.Decimal `gorm:"type:numeric(28,10);not null"`
	SellingPrice       decimal.Decimal `gorm:"type:numeric(28,10);not null"`
	IsDraft            bool            `gorm:"not null"`
	IsActive           bool            `gorm:"not null"`
	CreatedAt          time.Time
	UpdatedAt          time.Time

	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeID"`
}

func (Recipe) TableName() string { return "recipes" }

func (r *Recipe) BeforeCreate(*gorm.DB) error {
	newID(&r.ID)
	return nil
}

// RecipeIngredient joins a recipe to an inventory item. Cost tracks current
// replacement cost: Quantity x the owner's StockAggregate.CostPerUnit.
type RecipeIngredient struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	RecipeID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_recipe_ingredients_recipe_item,priority:1"`
	ItemID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_recipe_ingredients_recipe_item,priority:2;index"`
	Quantity  decimal.Decimal `gorm:"type:numeric(18,4);not null"`
	Cost      decimal.Decimal `gorm:"type:numeric(28,10);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Item *InventoryItem `gorm:"foreignKey:ItemID"`
}

func (RecipeIngredient) TableName() string { return "recipe_ingredients" }

func (ri *RecipeIngredient) BeforeCreate(*gorm.DB) error {
	newID(&ri.ID)
	return nil
}
