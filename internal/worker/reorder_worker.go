package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/JonathanM-A/costmate/internal/metrics"
	"github.com/JonathanM-A/costmate/internal/repository"
)

// ReorderCheckPayload is the job body sent to QueueReorderCheck.
type ReorderCheckPayload struct {
	OwnerID string `json:"owner_id"`
	OrderID string `json:"order_id"`
}

// ReorderWorker flags ingredients that a completed order pushed to or below
// their reorder level.
type ReorderWorker struct {
	stock  repository.StockRepository
	orders repository.OrderRepository
}

func NewReorderWorker(stock repository.StockRepository, orders repository.OrderRepository) *ReorderWorker {
	return &ReorderWorker{stock: stock, orders: orders}
}

func (w *ReorderWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReorderCheckPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return permanent(fmt.Errorf("reorder_worker: invalid payload: %w", err))
	}
	owner, err := uuid.Parse(payload.OwnerID)
	if err != nil {
		return permanent(fmt.Errorf("reorder_worker: invalid owner_id %q", payload.OwnerID))
	}
	orderID, err := uuid.Parse(payload.OrderID)
	if err != nil {
		return permanent(fmt.Errorf("reorder_worker: invalid order_id %q", payload.OrderID))
	}

	itemIDs, err := w.orders.IngredientItemIDs(ctx, orderID)
	if err != nil {
		return fmt.Errorf("reorder_worker: load ingredients: %w", err)
	}
	n, err := w.stock.CountAtOrBelowReorder(ctx, owner, itemIDs)
	if err != nil {
		return fmt.Errorf("reorder_worker: count low stock: %w", err)
	}
	if n == 0 {
		return nil
	}

	metrics.LowStockItems.Add(float64(n))
	log.Warn().
		Str("owner_id", owner.String()).
		Str("order_id", orderID.String()).
		Int64("items", n).
		Msg("reorder_worker: stock at or below reorder level")
	return nil
}
