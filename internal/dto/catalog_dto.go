package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateInventoryItemRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
	Unit string `json:"unit" validate:"max=20"`
}

type CreateSupplierRequest struct {
	Name    string  `json:"name"    validate:"required,min=1,max=100"`
	Contact *string `json:"contact" validate:"omitempty,max=20"`
}

type CreateCustomerRequest struct {
	FirstName string  `json:"first_name" validate:"required,max=50"`
	LastName  string  `json:"last_name"  validate:"required,max=50"`
	Contact   string  `json:"contact"    validate:"required,max=20"`
	Email     *string `json:"email"      validate:"omitempty,email"`
	Address   *string `json:"address"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type CatalogFilter struct {
	Search string `form:"search"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type InventoryItemResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Unit      string `json:"unit"`
	IsDefault bool   `json:"is_default"`
}

type SupplierResponse struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Contact *string `json:"contact"`
}

type CustomerResponse struct {
	ID        string  `json:"id"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Contact   string  `json:"contact"`
	Email     *string `json:"email"`
	Address   *string `json:"address"`
}

// ListResponse is the generic paginated envelope for catalog listings.
type ListResponse[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}
