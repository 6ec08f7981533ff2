package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OrderLineInput struct {
	RecipeID string `json:"recipe_id" validate:"required,uuid"`
	Quantity int    `json:"quantity"  validate:"required,min=1"`
}

type CreateOrderRequest struct {
	CustomerID   string           `json:"customer_id"   validate:"required,uuid"`
	DeliveryDate *string          `json:"delivery_date" validate:"omitempty,datetime=2006-01-02"`
	Lines        []OrderLineInput `json:"lines"         validate:"required,min=1,dive"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending completed cancelled"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type OrderFilter struct {
	Status     string `form:"status"      validate:"omitempty,oneof=pending completed cancelled"`
	CustomerID string `form:"customer_id" validate:"omitempty,uuid"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type OrderLineResponse struct {
	ID         string          `json:"id"`
	RecipeID   string          `json:"recipe_id"`
	RecipeName string          `json:"recipe_name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	LineValue  decimal.Decimal `json:"line_value"`
	LineCost   decimal.Decimal `json:"line_cost"`
}

type OrderResponse struct {
	ID               string              `json:"id"`
	OrderNo          string              `json:"order_no"`
	CustomerID       string              `json:"customer_id"`
	CustomerName     string              `json:"customer_name"`
	Status           string              `json:"status"`
	DeliveryDate     *string             `json:"delivery_date"`
	TotalValue       decimal.Decimal     `json:"total_value"`
	TotalCost        decimal.Decimal     `json:"total_cost"`
	Profit           decimal.Decimal     `json:"profit"`
	ProfitPercentage decimal.Decimal     `json:"profit_percentage"`
	CompletedAt      *string             `json:"completed_at"`
	Lines            []OrderLineResponse `json:"lines,omitempty"`
	CreatedAt        string              `json:"created_at"`
}

type OrderListResponse struct {
	Data       []OrderResponse `json:"data"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}
