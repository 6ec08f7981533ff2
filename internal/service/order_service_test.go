package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/JonathanM-A/costmate/internal/dto"
	"github.com/JonathanM-A/costmate/internal/model"
	"github.com/JonathanM-A/costmate/internal/repository"
	"github.com/JonathanM-A/costmate/internal/testutil"
)

// bakery seeds flour (20 units at cpu 4), a bread recipe using 0.5 flour
// and a customer. Bread costs 14 and sells for 21.
type bakery struct {
	flour    model.InventoryItem
	bread    *dto.RecipeResponse
	customer model.Customer
}

func newBakery(t *testing.T, f *fixture) bakery {
	t.Helper()
	flour := testutil.Item(t, f.db, f.owner, "Flour")
	f.purchase(t, flour.ID, "20", "80", "2026-01-01")
	bread, err := f.recipes.Create(context.Background(), f.owner, breadRequest(flour.ID))
	require.NoError(t, err)
	return bakery{flour: flour, bread: bread, customer: testutil.Customer(t, f.db, f.owner, "0240000000")}
}

func (b bakery) order(qty int) dto.CreateOrderRequest {
	return dto.CreateOrderRequest{
		CustomerID: b.customer.ID.String(),
		Lines:      []dto.OrderLineInput{{RecipeID: b.bread.ID, Quantity: qty}},
	}
}

func TestCreateOrder_SnapshotsPricesAndTotals(t *testing.T) {
	f := newFixture(t)
	b := newBakery(t, f)

	o, err := f.orders.Create(context.Background(), f.owner, b.order(2))
	require.NoError(t, err)
	assert.Equal(t, "ORD-00001", o.OrderNo)
	assert.Equal(t, "pending", o.Status)
	assert.Equal(t, "Ama Mensah", o.CustomerName)
	testutil.DecEqual(t, "42", o.TotalValue)
	testutil.DecEqual(t, "28", o.TotalCost)
	testutil.DecEqual(t, "14", o.Profit)
	testutil.DecEqual(t, "33.33", o.ProfitPercentage)
	require.Len(t, o.Lines, 1)
	assert.Equal(t, "Bread", o.Lines[0].RecipeName)
	testutil.DecEqual(t, "21", o.Lines[0].UnitPrice)

	// Stock is untouched until completion.
	s := testutil.Stock(t, f.db, f.owner, b.flour.ID)
	testutil.DecEqual(t, "20", s.Quantity)
}

func TestCreateOrder_NumbersAreSequential(t *testing.T) {
	f := newFixture(t)
	b := newBakery(t, f)

	for _, want := range []string{"ORD-00001", "ORD-00002", "ORD-00003"} {
		o, err := f.orders.Create(context.Background(), f.owner, b.order(1))
		require.NoError(t, err)
		assert.Equal(t, want, o.OrderNo)
	}
}

func TestCreateOrder_Validation(t *testing.T) {
	f := newFixture(t)
	b := newBakery(t, f)
	ctx := context.Background()

	tests := []struct {
		name string
		req  dto.CreateOrderRequest
	}{
		{"unknown customer", dto.CreateOrderRequest{
			CustomerID: uuid.NewString(),
			Lines:      b.order(1).Lines,
		}},
		{"no lines", dto.CreateOrderRequest{CustomerID: b.customer.ID.String()}},
		{"unknown recipe", dto.CreateOrderRequest{
			CustomerID: b.customer.ID.String(),
			Lines:      []dto.OrderLineInput{{RecipeID: uuid.NewString(), Quantity: 1}},
		}},
		{"duplicate recipe", dto.CreateOrderRequest{
			CustomerID: b.customer.ID.String(),
			Lines: []dto.OrderLineInput{
				{RecipeID: b.bread.ID, Quantity: 1},
				{RecipeID: b.bread.ID, Quantity: 2},
			},
		}},
		{"zero quantity", dto.CreateOrderRequest{
			CustomerID: b.customer.ID.String(),
			Lines:      []dto.OrderLineInput{{RecipeID: b.bread.ID, Quantity: 0}},
		}},
		{"bad delivery date", dto.CreateOrderRequest{
			CustomerID:   b.customer.ID.String(),
			DeliveryDate: ptr("next tuesday"),
			Lines:        b.order(1).Lines,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.orders.Create(ctx, f.owner, tt.req)
			require.Error(t, err)
			assert.True(t, IsValidation(err), "got %v", err)
		})
	}

	var n int64
	require.NoError(t, f.db.Model(&model.Order{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCompleteOrder_DeductsIngredientsAndNotifies(t *testing.T) {
	f := newFixture(t)
	b := newBakery(t, f)
	ctx := context.Background()

	o, err := f.orders.Create(ctx, f.owner, b.order(4))
	require.NoError(t, err)
	id := uuid.MustParse(o.ID)

	done, err := f.orders.Complete(ctx, f.owner, id)
	require.NoError(t, err)
	assert.Equal(t, "completed", done.Status)
	require.NotNil(t, done.CompletedAt)

	s := testutil.Stock(t, f.db, f.owner, b.flour.ID)
	testutil.DecEqual(t, "18", s.Quantity)
	testutil.DecEqual(t, "4", s.CostPerUnit)
	testutil.DecEqual(t, "72", s.TotalValue)

	var entry model.LedgerEntry
	require.NoError(t, f.db.Where("reference = ?", "order:ORD-00001").First(&entry).Error)
	assert.False(t, entry.IsAddition)
	testutil.DecEqual(t, "2", entry.Quantity)

	assert.Equal(t, []uuid.UUID{id}, f.notifier.calls())
}

func TestCompleteOrder_InsufficientStockKeepsOrderPending(t *testing.T) {
	f := newFixture(t)
	b := newBakery(t, f)
	ctx := context.Background()

	o, err := f.orders.Create(ctx, f.owner, b.order(41)) // needs 20.5 flour
	require.NoError(t, err)
	id := uuid.MustParse(o.ID)
	before := testutil.LedgerCount(t, f.db, f.owner)

	_, err = f.orders.Complete(ctx, f.owner, id)
	require.Error(t, err)
	var ise *InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, b.flour.ID, ise.ItemID)

	got, err := f.orders.Get(ctx, f.owner, id)
	require.NoError(t, err)
	assert.Equal(t, "pending", got.Status)
	assert.Nil(t, got.CompletedAt)
	assert.Equal(t, before, testutil.LedgerCount(t, f.db, f.owner))
	testutil.DecEqual(t, "20", testutil.Stock(t, f.db, f.owner, b.flour.ID).Quantity)
	assert.Empty(t, f.notifier.calls())
}

func TestUpdateStatus_TransitionTable(t *testing.T) {
	tests := []struct {
		name    string
		setup   model.OrderStatus // status reached before the attempt; pending means none
		to      model.OrderStatus
		wantErr string
	}{
		{"pending to completed", model.OrderPending, model.OrderCompleted, ""},
		{"pending to cancelled", model.OrderPending, model.OrderCancelled, ""},
		{"pending to pending", model.OrderPending, model.OrderPending, "order status is already set to this value"},
		{"completed to cancelled", model.OrderCompleted, model.OrderCancelled, "cannot cancel a completed order"},
		{"completed to completed", model.OrderCompleted, model.OrderCompleted, "order status is already set to this value"},
		{"completed to pending", model.OrderCompleted, model.OrderPending, "cannot revert a completed order to pending"},
		{"cancelled to completed", model.OrderCancelled, model.OrderCompleted, "cannot complete a cancelled order"},
		{"cancelled to pending", model.OrderCancelled, model.OrderPending, "cannot revert a cancelled order to pending"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			b := newBakery(t, f)
			ctx := context.Background()

			o, err := f.orders.Create(ctx, f.owner, b.order(1))
			require.NoError(t, err)
			id := uuid.MustParse(o.ID)
			if tt.setup != model.OrderPending {
				_, err := f.orders.UpdateStatus(ctx, f.owner, id, tt.setup)
				require.NoError(t, err)
			}

			got, err := f.orders.UpdateStatus(ctx, f.owner, id, tt.to)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, string(tt.to), got.Status)
				return
			}
			require.Error(t, err)
			assert.True(t, IsConflict(err))
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestCancelOrder_DoesNotTouchStock(t *testing.T) {
	f := newFixture(t)
	b := newBakery(t, f)
	ctx := context.Background()

	o, err := f.orders.Create(ctx, f.owner, b.order(2))
	require.NoError(t, err)
	_, err = f.orders.Cancel(ctx, f.owner, uuid.MustParse(o.ID))
	require.NoError(t, err)

	testutil.DecEqual(t, "20", testutil.Stock(t, f.db, f.owner, b.flour.ID).Quantity)
	assert.Empty(t, f.notifier.calls())
}

func TestUpdateStatus_OtherOwnerIsNotFound(t *testing.T) {
	f := newFixture(t)
	b := newBakery(t, f)
	o, err := f.orders.Create(context.Background(), f.owner, b.order(1))
	require.NoError(t, err)

	_, err = f.orders.Complete(context.Background(), uuid.New(), uuid.MustParse(o.ID))
	assert.True(t, IsNotFound(err))
}

func TestListOrders_FiltersByStatus(t *testing.T) {
	f := newFixture(t)
	b := newBakery(t, f)
	ctx := context.Background()

	first, err := f.orders.Create(ctx, f.owner, b.order(1))
	require.NoError(t, err)
	_, err = f.orders.Create(ctx, f.owner, b.order(1))
	require.NoError(t, err)
	_, err = f.orders.Cancel(ctx, f.owner, uuid.MustParse(first.ID))
	require.NoError(t, err)

	list, err := f.orders.List(ctx, f.owner, dto.OrderFilter{Status: "pending", Page: 1, Limit: 50})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "ORD-00002", list.Data[0].OrderNo)
}

func TestOrderNumbers(t *testing.T) {
	assert.Equal(t, "ORD-00001", NextOrderNo(""))
	assert.Equal(t, "ORD-00001", NextOrderNo("garbage"))
	assert.Equal(t, "ORD-00010", NextOrderNo("ORD-00009"))
	assert.Equal(t, "ORD-100000", NextOrderNo("ORD-99999"))
	assert.Equal(t, "ORD-00042", FormatOrderNo(42))
}

func TestOrderNumberer_RetriesOnCollision(t *testing.T) {
	db := testutil.NewDB(t)
	n := NewOrderNumberer(repository.NewOrderRepository(db), nil, 3)

	calls := 0
	no, err := n.Assign(context.Background(), db, func(_ *gorm.DB, _ string) error {
		calls++
		if calls == 1 {
			return gorm.ErrDuplicatedKey
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ORD-00001", no)
	assert.Equal(t, 2, calls)
}

func TestOrderNumberer_GivesUpAfterRetries(t *testing.T) {
	db := testutil.NewDB(t)
	n := NewOrderNumberer(repository.NewOrderRepository(db), nil, 2)

	calls := 0
	_, err := n.Assign(context.Background(), db, func(_ *gorm.DB, _ string) error {
		calls++
		return gorm.ErrDuplicatedKey
	})
	require.Error(t, err)
	assert.True(t, IsConflict(err))
	assert.Equal(t, 2, calls)
}
