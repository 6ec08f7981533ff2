package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type IngredientInput struct {
	ItemID   string          `json:"item_id"  validate:"required,uuid"`
	Quantity decimal.Decimal `json:"quantity" validate:"required,gt=0"`
}

// CreateRecipeRequest leaves ProfitMargin and LabourRate nil to take the
// owner's preferred defaults. LabourTime is a Go duration string ("1h30m").
type CreateRecipeRequest struct {
	Name          string            `json:"name"           validate:"required,min=1,max=100"`
	Category      *string           `json:"category"       validate:"omitempty,max=50"`
	LabourTime    string            `json:"labour_time"`
	LabourRate    *decimal.Decimal  `json:"labour_rate"    validate:"omitempty,gte=0"`
	PackagingCost decimal.Decimal   `json:"packaging_cost" validate:"gte=0"`
	OverheadCost  decimal.Decimal   `json:"overhead_cost"  validate:"gte=0"`
	ProfitMargin  *decimal.Decimal  `json:"profit_margin"  validate:"omitempty,gte=0"`
	IsDraft       bool              `json:"is_draft"`
	Ingredients   []IngredientInput `json:"ingredients"    validate:"required,min=1,dive"`
}

// UpdateRecipeRequest patches header fields. A non-nil Ingredients list
// replaces the recipe's ingredients wholesale.
type UpdateRecipeRequest struct {
	Name          *string            `json:"name"           validate:"omitempty,min=1,max=100"`
	Category      *string            `json:"category"       validate:"omitempty,max=50"`
	LabourTime    *string            `json:"labour_time"`
	LabourRate    *decimal.Decimal   `json:"labour_rate"    validate:"omitempty,gte=0"`
	PackagingCost *decimal.Decimal   `json:"packaging_cost" validate:"omitempty,gte=0"`
	OverheadCost  *decimal.Decimal   `json:"overhead_cost"  validate:"omitempty,gte=0"`
	ProfitMargin  *decimal.Decimal   `json:"profit_margin"  validate:"omitempty,gte=0"`
	IsDraft       *bool              `json:"is_draft"`
	Ingredients   *[]IngredientInput `json:"ingredients"    validate:"omitempty,min=1,dive"`
}

type ReplaceIngredientsRequest struct {
	Ingredients []IngredientInput `json:"ingredients" validate:"required,min=1,dive"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type RecipeFilter struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	IsDraft  *bool  `form:"is_draft"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type IngredientResponse struct {
	ID       string          `json:"id"`
	ItemID   string          `json:"item_id"`
	ItemName string          `json:"item_name"`
	Quantity decimal.Decimal `json:"quantity"`
	Cost     decimal.Decimal `json:"cost"`
}

type RecipeResponse struct {
	ID                 string               `json:"id"`
	Name               string               `json:"name"`
	Category           *string              `json:"category"`
	LabourTime         string               `json:"labour_time"`
	LabourRate         decimal.Decimal      `json:"labour_rate"`
	LabourCost         decimal.Decimal      `json:"labour_cost"`
	PackagingCost      decimal.Decimal      `json:"packaging_cost"`
	OverheadCost       decimal.Decimal      `json:"overhead_cost"`
	ProfitMargin       decimal.Decimal      `json:"profit_margin"`
	InventoryItemsCost decimal.Decimal      `json:"inventory_items_cost"`
	CostPrice          decimal.Decimal      `json:"cost_price"`
	SellingPrice       decimal.Decimal      `json:"selling_price"`
	IsDraft            bool                 `json:"is_draft"`
	Ingredients        []IngredientResponse `json:"ingredients,omitempty"`
	UpdatedAt          string               `json:"updated_at"`
}

type RecipeListResponse struct {
	Data       []RecipeResponse `json:"data"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}

type PreferencesRequest struct {
	ProfitMargin decimal.Decimal `json:"profit_margin" validate:"gte=0"`
	LabourRate   decimal.Decimal `json:"labour_rate"   validate:"gte=0"`
	Currency     string          `json:"currency"      validate:"omitempty,len=3"`
}

type PreferencesResponse struct {
	ProfitMargin decimal.Decimal `json:"profit_margin"`
	LabourRate   decimal.Decimal `json:"labour_rate"`
	Currency     string          `json:"currency"`
}
