package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JonathanM-A/costmate/internal/model"
)

var (
	// ErrNotFound covers both missing rows and rows owned by another tenant.
	ErrNotFound = errors.New("not found")
	// ErrConflict is the family every rejected state change wraps.
	ErrConflict = errors.New("conflict")
	// ErrDuplicate is a uniqueness violation on an owner-scoped name.
	ErrDuplicate = fmt.Errorf("%w: already exists", ErrConflict)
)

// ValidationError is malformed input, rejected before any write.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, msg string) error { return &ValidationError{Field: field, Message: msg} }

// InsufficientStockError is returned when a removal exceeds the locked balance.
type InsufficientStockError struct {
	ItemID    uuid.UUID
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: requested %s, available %s", e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrConflict }

// TransitionError is an order status change the state machine forbids.
type TransitionError struct {
	From model.OrderStatus
	To   model.OrderStatus
}

func (e *TransitionError) Error() string {
	switch {
	case e.From == e.To:
		return "order status is already set to this value"
	case e.From == model.OrderCancelled && e.To == model.OrderCompleted:
		return "cannot complete a cancelled order"
	case e.From == model.OrderCompleted && e.To == model.OrderCancelled:
		return "cannot cancel a completed order"
	case e.To == model.OrderPending:
		return fmt.Sprintf("cannot revert a %s order to pending", e.From)
	}
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return ErrConflict }

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
