//go:build integration

// Run with: go test -tags integration ./internal/service/... -v
package service

import (
	"context"
	"sync"
	"testing"

	"github.com/bsm/redislock"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"gorm.io/gorm"

	"github.com/JonathanM-A/costmate/internal/dto"
	"github.com/JonathanM-A/costmate/internal/infra"
	"github.com/JonathanM-A/costmate/internal/model"
	"github.com/JonathanM-A/costmate/internal/repository"
	"github.com/JonathanM-A/costmate/internal/testutil"
)

type pgEnv struct {
	db      *gorm.DB
	rdb     *redis.Client
	catalog CatalogService
	inv     InventoryService
	recipes RecipeService
	orders  OrderService
}

func setupPostgres(t *testing.T) *pgEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.Run(ctx, "postgres:16-alpine",
		tcPostgres.WithDatabase("costmate_test"),
		tcPostgres.WithUsername("costmate"),
		tcPostgres.WithPassword("costmate"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(dsn))

	db, err := infra.NewDatabase(dsn)
	require.NoError(t, err)

	rdC, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(rdURL)
	require.NoError(t, err)

	items := repository.NewInventoryItemRepository(db)
	suppliers := repository.NewSupplierRepository(db)
	customers := repository.NewCustomerRepository(db)
	stock := repository.NewStockRepository(db)
	ledger := repository.NewLedgerRepository(db)
	recipes := repository.NewRecipeRepository(db)
	orders := repository.NewOrderRepository(db)
	cascade := NewCascade(ledger, stock, recipes)

	return &pgEnv{
		db:      db,
		rdb:     rdb,
		catalog: NewCatalogService(items, suppliers, customers),
		inv:     NewInventoryService(db, items, suppliers, stock, ledger, cascade),
		recipes: NewRecipeService(db, recipes, items, NewPreferenceStore(rdb, DefaultPreferences()), cascade),
		orders: NewOrderService(db, orders, recipes, customers, cascade,
			NewOrderNumberer(orders, redislock.New(rdb), 5), nil),
	}
}

func TestIntegration_ConcurrentMovementsLoseNothing(t *testing.T) {
	env := setupPostgres(t)
	ctx := context.Background()
	owner := uuid.New()

	item, err := env.catalog.CreateItem(ctx, owner, dto.CreateInventoryItemRequest{Name: "Flour", Unit: "kg"})
	require.NoError(t, err)
	purchase := func(qty, cost string) error {
		_, err := env.inv.RecordPurchase(ctx, owner, dto.RecordPurchaseRequest{Entries: []dto.PurchaseEntry{
			{ItemID: item.ID, Quantity: testutil.Dec(qty), CostPrice: testutil.Dec(cost)},
		}})
		return err
	}
	require.NoError(t, purchase("10", "20"))

	const buyers, consumers = 20, 10
	var wg sync.WaitGroup
	errs := make(chan error, buyers+consumers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- purchase("1", "2")
		}()
	}
	itemID := uuid.MustParse(item.ID)
	for i := 0; i < consumers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.inv.RecordConsumption(ctx, owner, itemID, dto.DecreaseStockRequest{Quantity: testutil.Dec("1")})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	s, err := env.inv.GetStock(ctx, owner, itemID)
	require.NoError(t, err)
	testutil.DecEqual(t, "20", s.Quantity)
	testutil.DecEqual(t, "2", s.CostPerUnit)
	testutil.DecEqual(t, "40", s.TotalValue)
	assert.EqualValues(t, 1+buyers+consumers, testutil.LedgerCount(t, env.db, owner))
}

func TestIntegration_ConcurrentOrdersGetDistinctNumbers(t *testing.T) {
	env := setupPostgres(t)
	ctx := context.Background()
	owner := uuid.New()

	item, err := env.catalog.CreateItem(ctx, owner, dto.CreateInventoryItemRequest{Name: "Flour", Unit: "kg"})
	require.NoError(t, err)
	_, err = env.inv.RecordPurchase(ctx, owner, dto.RecordPurchaseRequest{Entries: []dto.PurchaseEntry{
		{ItemID: item.ID, Quantity: testutil.Dec("20"), CostPrice: testutil.Dec("80")},
	}})
	require.NoError(t, err)
	bread, err := env.recipes.Create(ctx, owner, breadRequest(uuid.MustParse(item.ID)))
	require.NoError(t, err)
	testutil.DecEqual(t, "21", bread.SellingPrice)
	customer, err := env.catalog.CreateCustomer(ctx, owner, dto.CreateCustomerRequest{
		FirstName: "Ama", LastName: "Mensah", Contact: "0240000000",
	})
	require.NoError(t, err)

	const n = 10
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		nos = map[string]bool{}
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o, err := env.orders.Create(ctx, owner, dto.CreateOrderRequest{
				CustomerID: customer.ID,
				Lines:      []dto.OrderLineInput{{RecipeID: bread.ID, Quantity: 1}},
			})
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			nos[o.OrderNo] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, nos, n)
	assert.True(t, nos["ORD-00001"])
	assert.True(t, nos["ORD-00010"])
}

func TestIntegration_LedgerRejectsRawUpdates(t *testing.T) {
	env := setupPostgres(t)
	ctx := context.Background()
	owner := uuid.New()

	item, err := env.catalog.CreateItem(ctx, owner, dto.CreateInventoryItemRequest{Name: "Sugar"})
	require.NoError(t, err)
	_, err = env.inv.RecordPurchase(ctx, owner, dto.RecordPurchaseRequest{Entries: []dto.PurchaseEntry{
		{ItemID: item.ID, Quantity: testutil.Dec("5"), CostPrice: testutil.Dec("10")},
	}})
	require.NoError(t, err)

	err = env.db.Exec("UPDATE ledger_entries SET reference = 'edited'").Error
	require.Error(t, err)
	assert.Contains(t, err.Error(), "append-only")

	err = env.db.Exec("DELETE FROM ledger_entries").Error
	require.Error(t, err)

	var count int64
	require.NoError(t, env.db.Model(&model.LedgerEntry{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
