package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// PurchaseEntry is one line of a stock receipt. CostPrice is the total paid
// for Quantity units.
type PurchaseEntry struct {
	ItemID       string          `json:"item_id"       validate:"required,uuid"`
	Quantity     decimal.Decimal `json:"quantity"      validate:"required,gt=0"`
	CostPrice    decimal.Decimal `json:"cost_price"    validate:"gte=0"`
	SupplierID   *string         `json:"supplier_id"   validate:"omitempty,uuid"`
	IncidentDate *string         `json:"incident_date" validate:"omitempty,datetime=2006-01-02"`
}

type RecordPurchaseRequest struct {
	Entries []PurchaseEntry `json:"entries" validate:"required,min=1,max=20,dive"`
}

type DecreaseStockRequest struct {
	Quantity decimal.Decimal `json:"quantity" validate:"required,gt=0"`
	Reason   string          `json:"reason"   validate:"max=64"`
}

type ReorderLevelRequest struct {
	ReorderLevel decimal.Decimal `json:"reorder_level" validate:"gte=0"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type StockFilter struct {
	Search       string `form:"search"`
	BelowReorder bool   `form:"below_reorder"`
	Page         int    `form:"page,default=1"   validate:"min=1"`
	Limit        int    `form:"limit,default=50" validate:"min=1,max=500"`
}

type LedgerFilter struct {
	ItemID     string `form:"item_id"     validate:"omitempty,uuid"`
	SupplierID string `form:"supplier_id" validate:"omitempty,uuid"`
	Action     string `form:"action"      validate:"omitempty,oneof=add deduct"`
	From       string `form:"from"        validate:"omitempty,datetime=2006-01-02"`
	To         string `form:"to"          validate:"omitempty,datetime=2006-01-02"`
	Page       int    `form:"page,default=1"    validate:"min=1"`
	Limit      int    `form:"limit,default=100" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type StockResponse struct {
	ID           string          `json:"id"`
	ItemID       string          `json:"item_id"`
	ItemName     string          `json:"item_name"`
	Unit         string          `json:"unit"`
	Quantity     decimal.Decimal `json:"quantity"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
	CostPerUnit  decimal.Decimal `json:"cost_per_unit"`
	TotalValue   decimal.Decimal `json:"total_value"`
	BelowReorder bool            `json:"below_reorder"`
	IsActive     bool            `json:"is_active"`
	UpdatedAt    string          `json:"updated_at"`
}

type StockListResponse struct {
	Data       []StockResponse `json:"data"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

type LedgerEntryResponse struct {
	ID           uint64          `json:"id"`
	ItemID       string          `json:"item_id"`
	ItemName     string          `json:"item_name"`
	Action       string          `json:"action"`
	Quantity     decimal.Decimal `json:"quantity"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	CostPerUnit  decimal.Decimal `json:"cost_per_unit"`
	SupplierID   *string         `json:"supplier_id"`
	SupplierName *string         `json:"supplier_name"`
	IncidentDate string          `json:"incident_date"`
	Reference    string          `json:"reference"`
	CreatedAt    string          `json:"created_at"`
}

type LedgerListResponse struct {
	Data       []LedgerEntryResponse `json:"data"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
	TotalPages int                   `json:"total_pages"`
}
