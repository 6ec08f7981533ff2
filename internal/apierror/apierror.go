// Package apierror provides the error envelopes returned by the API.
// Clients only ever see these shapes, never driver or stack details.
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps per-field problems.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation failed", Fields: fields}
}

// StockError is returned when a removal exceeds the available balance.
type StockError struct {
	Detail    string `json:"detail"`
	ItemID    string `json:"item_id"`
	Requested string `json:"requested"`
	Available string `json:"available"`
}
