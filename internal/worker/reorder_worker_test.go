package worker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/JonathanM-A/costmate/internal/metrics"
	"github.com/JonathanM-A/costmate/internal/model"
	"github.com/JonathanM-A/costmate/internal/repository"
	"github.com/JonathanM-A/costmate/internal/testutil"
)

// seedCompletedOrder stores an order whose single recipe uses flour, with
// the flour balance at quantity against the given reorder level.
func seedCompletedOrder(t *testing.T, db *gorm.DB, owner uuid.UUID, quantity, reorder string) uuid.UUID {
	t.Helper()
	flour := testutil.Item(t, db, owner, "Flour")
	require.NoError(t, db.Create(&model.StockAggregate{
		ItemID:       flour.ID,
		OwnerID:      owner,
		Quantity:     testutil.Dec(quantity),
		ReorderLevel: testutil.Dec(reorder),
		IsActive:     true,
	}).Error)

	recipe := model.Recipe{OwnerID: owner, Name: "Bread", IsActive: true}
	require.NoError(t, db.Omit("Ingredients").Create(&recipe).Error)
	require.NoError(t, db.Omit("Item").Create(&model.RecipeIngredient{
		RecipeID: recipe.ID, ItemID: flour.ID, Quantity: decimal.NewFromInt(1),
	}).Error)

	customer := testutil.Customer(t, db, owner, "0201112222")
	order := model.Order{OwnerID: owner, OrderNo: "ORD-00001", CustomerID: customer.ID, Status: model.OrderCompleted}
	require.NoError(t, db.Omit("Lines", "Customer").Create(&order).Error)
	require.NoError(t, db.Omit("Recipe").Create(&model.OrderLine{OrderID: order.ID, RecipeID: recipe.ID, Quantity: 1}).Error)
	return order.ID
}

func payload(t *testing.T, owner, orderID uuid.UUID) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(ReorderCheckPayload{OwnerID: owner.String(), OrderID: orderID.String()})
	require.NoError(t, err)
	return raw
}

func TestReorderWorker_FlagsLowStock(t *testing.T) {
	db := testutil.NewDB(t)
	owner := uuid.New()
	orderID := seedCompletedOrder(t, db, owner, "2", "5")
	w := NewReorderWorker(repository.NewStockRepository(db), repository.NewOrderRepository(db))

	before := promtest.ToFloat64(metrics.LowStockItems)
	require.NoError(t, w.Process(context.Background(), payload(t, owner, orderID)))
	assert.Equal(t, before+1, promtest.ToFloat64(metrics.LowStockItems))
}

func TestReorderWorker_HealthyStockIsQuiet(t *testing.T) {
	db := testutil.NewDB(t)
	owner := uuid.New()
	orderID := seedCompletedOrder(t, db, owner, "50", "5")
	w := NewReorderWorker(repository.NewStockRepository(db), repository.NewOrderRepository(db))

	before := promtest.ToFloat64(metrics.LowStockItems)
	require.NoError(t, w.Process(context.Background(), payload(t, owner, orderID)))
	assert.Equal(t, before, promtest.ToFloat64(metrics.LowStockItems))
}

func TestReorderWorker_BadPayloadIsPermanent(t *testing.T) {
	w := NewReorderWorker(nil, nil)
	err := w.Process(context.Background(), json.RawMessage(`{"owner_id":"nope"}`))
	require.Error(t, err)
	var pe *permanentError
	assert.ErrorAs(t, err, &pe)
}
