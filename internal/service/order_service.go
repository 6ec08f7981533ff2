package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/JonathanM-A/costmate/internal/costing"
	"github.com/JonathanM-A/costmate/internal/dto"
	"github.com/JonathanM-A/costmate/internal/model"
	"github.com/JonathanM-A/costmate/internal/repository"
)

// ReorderNotifier is told about completed orders once their transaction has
// committed.
type ReorderNotifier interface {
	EnqueueReorderCheck(ctx context.Context, owner, orderID uuid.UUID) error
}

// OrderService creates orders and drives the status state machine:
//
//	pending -> completed   deducts ingredients and runs the cascade
//	pending -> cancelled
//
// Both targets are terminal.
type OrderService interface {
	Create(ctx context.Context, owner uuid.UUID, req dto.CreateOrderRequest) (*dto.OrderResponse, error)
	Get(ctx context.Context, owner, id uuid.UUID) (*dto.OrderResponse, error)
	List(ctx context.Context, owner uuid.UUID, filter dto.OrderFilter) (*dto.OrderListResponse, error)
	UpdateStatus(ctx context.Context, owner, id uuid.UUID, to model.OrderStatus) (*dto.OrderResponse, error)
	Complete(ctx context.Context, owner, id uuid.UUID) (*dto.OrderResponse, error)
	Cancel(ctx context.Context, owner, id uuid.UUID) (*dto.OrderResponse, error)
}

type orderService struct {
	db        *gorm.DB
	orders    repository.OrderRepository
	recipes   repository.RecipeRepository
	customers repository.CustomerRepository
	cascade   *Cascade
	numberer  *OrderNumberer
	notifier  ReorderNotifier
}

// NewOrderService wires the order service. notifier may be nil.
func NewOrderService(
	db *gorm.DB,
	orders repository.OrderRepository,
	recipes repository.RecipeRepository,
	customers repository.CustomerRepository,
	cascade *Cascade,
	numberer *OrderNumberer,
	notifier ReorderNotifier,
) OrderService {
	return &orderService{
		db:        db,
		orders:    orders,
		recipes:   recipes,
		customers: customers,
		cascade:   cascade,
		numberer:  numberer,
		notifier:  notifier,
	}
}

type lineInput struct {
	recipeID uuid.UUID
	quantity int
}

func (s *orderService) Create(ctx context.Context, owner uuid.UUID, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	customerID, err := parseID("customer_id", req.CustomerID)
	if err != nil {
		return nil, err
	}
	var delivery *time.Time
	if req.DeliveryDate != nil && *req.DeliveryDate != "" {
		d, err := parseDate("delivery_date", *req.DeliveryDate)
		if err != nil {
			return nil, err
		}
		delivery = &d
	}
	lines, recipeIDs, err := parseLines(req.Lines)
	if err != nil {
		return nil, err
	}

	var orderID uuid.UUID
	_, err = s.numberer.Assign(ctx, s.db, func(tx *gorm.DB, orderNo string) error {
		if _, err := s.customers.FindByIDTx(tx, owner, customerID); err != nil {
			if IsNotFound(mapRepoErr(err, "customer")) {
				return invalid("customer_id", "customer not found")
			}
			return err
		}
		order, err := s.buildOrder(tx, owner, customerID, lines, recipeIDs)
		if err != nil {
			return err
		}
		order.OrderNo = orderNo
		order.DeliveryDate = delivery
		if err := s.orders.CreateTx(tx, order); err != nil {
			return err
		}
		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, owner, orderID)
}

// buildOrder prices every line from the recipes' current selling and cost
// prices. Those snapshots are never refreshed afterwards.
func (s *orderService) buildOrder(tx *gorm.DB, owner, customerID uuid.UUID, lines []lineInput, recipeIDs []uuid.UUID) (*model.Order, error) {
	recs, err := s.recipes.FindByIDsTx(tx, owner, recipeIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]model.Recipe, len(recs))
	for _, r := range recs {
		if r.IsActive {
			byID[r.ID] = r
		}
	}

	order := &model.Order{OwnerID: owner, CustomerID: customerID, Status: model.OrderPending}
	amounts := make([]costing.LineAmounts, 0, len(lines))
	for i, l := range lines {
		rec, ok := byID[l.recipeID]
		if !ok {
			return nil, invalid(fmt.Sprintf("lines[%d].recipe_id", i), "recipe not found")
		}
		a := costing.PriceLine(rec.SellingPrice, rec.CostPrice, l.quantity)
		amounts = append(amounts, a)
		order.Lines = append(order.Lines, model.OrderLine{
			RecipeID:  rec.ID,
			Quantity:  l.quantity,
			UnitPrice: rec.SellingPrice,
			UnitCost:  rec.CostPrice,
			LineValue: a.Value,
			LineCost:  a.Cost,
		})
	}
	totals := costing.SummarizeOrder(amounts)
	order.TotalValue = totals.TotalValue
	order.TotalCost = totals.TotalCost
	order.Profit = totals.Profit
	order.ProfitPercentage = totals.ProfitPercentage
	return order, nil
}

func (s *orderService) Get(ctx context.Context, owner, id uuid.UUID) (*dto.OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, owner, id)
	if err != nil {
		return nil, mapRepoErr(err, "order")
	}
	resp := toOrderResponse(*o)
	return &resp, nil
}

func (s *orderService) List(ctx context.Context, owner uuid.UUID, filter dto.OrderFilter) (*dto.OrderListResponse, error) {
	customerID, err := parseOptionalID("customer_id", &filter.CustomerID)
	if err != nil {
		return nil, err
	}
	orders, total, err := s.orders.List(ctx, owner, repository.OrderFilter{
		Status:     filter.Status,
		CustomerID: customerID,
		Page:       filter.Page,
		Limit:      filter.Limit,
	})
	if err != nil {
		return nil, err
	}
	data := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		data = append(data, toOrderResponse(o))
	}
	return &dto.OrderListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

func (s *orderService) Complete(ctx context.Context, owner, id uuid.UUID) (*dto.OrderResponse, error) {
	return s.UpdateStatus(ctx, owner, id, model.OrderCompleted)
}

func (s *orderService) Cancel(ctx context.Context, owner, id uuid.UUID) (*dto.OrderResponse, error) {
	return s.UpdateStatus(ctx, owner, id, model.OrderCancelled)
}

// UpdateStatus locks the order row so two concurrent completions cannot
// both deduct stock.
func (s *orderService) UpdateStatus(ctx context.Context, owner, id uuid.UUID, to model.OrderStatus) (*dto.OrderResponse, error) {
	if !to.Valid() {
		return nil, invalid("status", "must be one of pending, completed, cancelled")
	}

	err := runTx(ctx, s.db, func(tx *gorm.DB) error {
		o, err := s.orders.LockTx(tx, owner, id)
		if err != nil {
			return mapRepoErr(err, "order")
		}
		if err := checkTransition(o.Status, to); err != nil {
			return err
		}
		var completedAt *time.Time
		if to == model.OrderCompleted {
			if err := s.deductIngredients(ctx, tx, owner, o); err != nil {
				return err
			}
			now := time.Now()
			completedAt = &now
		}
		return s.orders.UpdateStatusTx(tx, o.ID, to, completedAt)
	})
	if err != nil {
		return nil, err
	}

	if to == model.OrderCompleted && s.notifier != nil {
		if err := s.notifier.EnqueueReorderCheck(ctx, owner, id); err != nil {
			log.Warn().Err(err).Str("order_id", id.String()).Msg("failed to enqueue reorder check")
		}
	}
	return s.Get(ctx, owner, id)
}

// checkTransition allows only pending -> completed and pending -> cancelled.
func checkTransition(from, to model.OrderStatus) error {
	if from == to || from != model.OrderPending {
		return &TransitionError{From: from, To: to}
	}
	return nil
}

// deductIngredients posts one removal per (line, ingredient) for
// ingredient.quantity x line.quantity. The cascade aggregates them per item
// for the stock update.
func (s *orderService) deductIngredients(ctx context.Context, tx *gorm.DB, owner uuid.UUID, o *model.Order) error {
	reqs, err := s.orders.RequirementsTx(tx, o.ID)
	if err != nil {
		return err
	}
	if len(reqs) == 0 {
		return nil
	}
	entries := make([]model.LedgerEntry, 0, len(reqs))
	for _, r := range reqs {
		entries = append(entries, model.LedgerEntry{
			ItemID:    r.ItemID,
			Quantity:  r.IngredientQuantity.Mul(decimal.NewFromInt(int64(r.LineQuantity))),
			Reference: "order:" + o.OrderNo,
		})
	}
	_, err = s.cascade.Post(ctx, tx, TriggerOrderCompletion, owner, entries)
	return err
}

func parseLines(in []dto.OrderLineInput) ([]lineInput, []uuid.UUID, error) {
	if len(in) == 0 {
		return nil, nil, invalid("lines", "at least one line is required")
	}
	lines := make([]lineInput, 0, len(in))
	ids := make([]uuid.UUID, 0, len(in))
	seen := make(map[uuid.UUID]bool, len(in))
	for i, l := range in {
		id, err := parseID(fmt.Sprintf("lines[%d].recipe_id", i), l.RecipeID)
		if err != nil {
			return nil, nil, err
		}
		if seen[id] {
			return nil, nil, invalid(fmt.Sprintf("lines[%d].recipe_id", i), "recipe is listed more than once")
		}
		seen[id] = true
		if l.Quantity < 1 {
			return nil, nil, invalid(fmt.Sprintf("lines[%d].quantity", i), "must be at least 1")
		}
		lines = append(lines, lineInput{recipeID: id, quantity: l.Quantity})
		ids = append(ids, id)
	}
	return lines, ids, nil
}
