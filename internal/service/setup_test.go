package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/JonathanM-A/costmate/internal/dto"
	"github.com/JonathanM-A/costmate/internal/repository"
	"github.com/JonathanM-A/costmate/internal/testutil"
)

// ── Recording notifier ───────────────────────────────────────────────────────

type recordingNotifier struct {
	mu     sync.Mutex
	orders []uuid.UUID
}

func (n *recordingNotifier) EnqueueReorderCheck(_ context.Context, _, orderID uuid.UUID) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, orderID)
	return nil
}

func (n *recordingNotifier) calls() []uuid.UUID {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]uuid.UUID(nil), n.orders...)
}

// ── Fixture ──────────────────────────────────────────────────────────────────

type fixture struct {
	db        *gorm.DB
	owner     uuid.UUID
	cascade   *Cascade
	inventory InventoryService
	recipes   RecipeService
	orders    OrderService
	catalog   CatalogService
	notifier  *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)

	items := repository.NewInventoryItemRepository(db)
	suppliers := repository.NewSupplierRepository(db)
	customers := repository.NewCustomerRepository(db)
	stock := repository.NewStockRepository(db)
	ledger := repository.NewLedgerRepository(db)
	recipes := repository.NewRecipeRepository(db)
	orders := repository.NewOrderRepository(db)

	cascade := NewCascade(ledger, stock, recipes)
	notifier := &recordingNotifier{}
	prefs := NewPreferenceStore(nil, DefaultPreferences())

	return &fixture{
		db:        db,
		owner:     uuid.New(),
		cascade:   cascade,
		inventory: NewInventoryService(db, items, suppliers, stock, ledger, cascade),
		recipes:   NewRecipeService(db, recipes, items, prefs, cascade),
		orders:    NewOrderService(db, orders, recipes, customers, cascade, NewOrderNumberer(orders, nil, 3), notifier),
		catalog:   NewCatalogService(items, suppliers, customers),
		notifier:  notifier,
	}
}

func (f *fixture) purchase(t *testing.T, itemID uuid.UUID, qty, cost, date string) {
	t.Helper()
	entry := dto.PurchaseEntry{
		ItemID:    itemID.String(),
		Quantity:  testutil.Dec(qty),
		CostPrice: testutil.Dec(cost),
	}
	if date != "" {
		entry.IncidentDate = &date
	}
	_, err := f.inventory.RecordPurchase(context.Background(), f.owner, dto.RecordPurchaseRequest{
		Entries: []dto.PurchaseEntry{entry},
	})
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
}

func ptr[T any](v T) *T { return &v }
