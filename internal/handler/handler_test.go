package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/JonathanM-A/costmate/internal/apierror"
	"github.com/JonathanM-A/costmate/internal/dto"
	"github.com/JonathanM-A/costmate/internal/middleware"
	"github.com/JonathanM-A/costmate/internal/repository"
	"github.com/JonathanM-A/costmate/internal/service"
	"github.com/JonathanM-A/costmate/internal/testutil"
)

func init() { gin.SetMode(gin.TestMode) }

// ── Harness ──────────────────────────────────────────────────────────────────

type harness struct {
	db     *gorm.DB
	owner  uuid.UUID
	engine *gin.Engine
}

// newHarness mounts every handler behind a stub that authenticates the
// request as a fixed owner.
func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.NewDB(t)
	owner := uuid.New()

	items := repository.NewInventoryItemRepository(db)
	suppliers := repository.NewSupplierRepository(db)
	customers := repository.NewCustomerRepository(db)
	stock := repository.NewStockRepository(db)
	ledger := repository.NewLedgerRepository(db)
	recipes := repository.NewRecipeRepository(db)
	orders := repository.NewOrderRepository(db)

	cascade := service.NewCascade(ledger, stock, recipes)
	prefs := service.NewPreferenceStore(nil, service.DefaultPreferences())

	inv := NewInventoryHandler(service.NewInventoryService(db, items, suppliers, stock, ledger, cascade))
	rec := NewRecipesHandler(service.NewRecipeService(db, recipes, items, prefs, cascade))
	ord := NewOrdersHandler(service.NewOrderService(db, orders, recipes, customers, cascade,
		service.NewOrderNumberer(orders, nil, 3), nil))
	cat := NewCatalogHandler(service.NewCatalogService(items, suppliers, customers))
	pref := NewPreferencesHandler(prefs)

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.GET("/health", Health(db, nil))
	v1 := r.Group("/v1", func(c *gin.Context) { c.Set(middleware.OwnerIDKey, owner.String()) })
	v1.POST("/inventory/items", cat.CreateItem)
	v1.GET("/inventory/items", cat.ListItems)
	v1.POST("/customers", cat.CreateCustomer)
	v1.POST("/inventory/stock", inv.RecordPurchase)
	v1.GET("/inventory/stock", inv.ListStock)
	v1.GET("/inventory/stock/:item_id", inv.GetStock)
	v1.PUT("/inventory/stock/:item_id/decrease", inv.Decrease)
	v1.PATCH("/inventory/stock/:item_id/reorder-level", inv.SetReorderLevel)
	v1.DELETE("/inventory/stock/:item_id", inv.Remove)
	v1.GET("/inventory/history", inv.History)
	v1.POST("/recipes", rec.Create)
	v1.GET("/recipes/:id", rec.Get)
	v1.DELETE("/recipes/:id", rec.Delete)
	v1.POST("/orders", ord.Create)
	v1.PATCH("/orders/:id/status", ord.UpdateStatus)
	v1.GET("/preferences", pref.Get)
	v1.PUT("/preferences", pref.Put)

	return &harness{db: db, owner: owner, engine: r}
}

func (h *harness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// flour creates an item over HTTP and buys 20 units for 80.
func (h *harness) flour(t *testing.T) string {
	t.Helper()
	w := h.do(t, http.MethodPost, "/v1/inventory/items", map[string]any{"name": "Flour", "unit": "kg"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	item := decode[dto.InventoryItemResponse](t, w)

	w = h.do(t, http.MethodPost, "/v1/inventory/stock", map[string]any{
		"entries": []map[string]any{{"item_id": item.ID, "quantity": "20", "cost_price": "80"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return item.ID
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestHealth_RedisDisabled(t *testing.T) {
	h := newHarness(t)
	w := h.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "connected", body["db"])
	assert.Equal(t, "disabled", body["redis"])
}

func TestInventory_PurchaseAndRead(t *testing.T) {
	h := newHarness(t)
	itemID := h.flour(t)

	w := h.do(t, http.MethodGet, "/v1/inventory/stock/"+itemID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	s := decode[dto.StockResponse](t, w)
	testutil.DecEqual(t, "20", s.Quantity)
	testutil.DecEqual(t, "4", s.CostPerUnit)

	w = h.do(t, http.MethodGet, "/v1/inventory/history?action=add", nil)
	require.Equal(t, http.StatusOK, w.Code)
	hist := decode[dto.LedgerListResponse](t, w)
	assert.EqualValues(t, 1, hist.Total)
}

func TestInventory_RequestValidation(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		field  string
	}{
		{"malformed json", http.MethodPost, "/v1/inventory/stock", "not-an-object", http.StatusBadRequest, ""},
		{"no entries", http.MethodPost, "/v1/inventory/stock", map[string]any{"entries": []any{}}, http.StatusUnprocessableEntity, "entries"},
		{"zero quantity", http.MethodPost, "/v1/inventory/stock",
			map[string]any{"entries": []map[string]any{{"item_id": uuid.NewString(), "quantity": "0", "cost_price": "1"}}},
			http.StatusUnprocessableEntity, "entries[0].quantity"},
		{"bad path id", http.MethodGet, "/v1/inventory/stock/nope", nil, http.StatusBadRequest, ""},
		{"bad history action", http.MethodGet, "/v1/inventory/history?action=move", nil, http.StatusUnprocessableEntity, "action"},
		{"unknown item", http.MethodGet, "/v1/inventory/stock/" + uuid.NewString(), nil, http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := h.do(t, tt.method, tt.path, tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.field != "" {
				ve := decode[apierror.ValidationError](t, w)
				assert.Contains(t, ve.Fields, tt.field)
			}
		})
	}
}

func TestInventory_DecreaseBeyondStockIsConflict(t *testing.T) {
	h := newHarness(t)
	itemID := h.flour(t)

	w := h.do(t, http.MethodPut, "/v1/inventory/stock/"+itemID+"/decrease", map[string]any{"quantity": "25"})
	require.Equal(t, http.StatusConflict, w.Code)
	se := decode[apierror.StockError](t, w)
	assert.Equal(t, itemID, se.ItemID)
	testutil.DecEqual(t, "25", testutil.Dec(se.Requested))
	testutil.DecEqual(t, "20", testutil.Dec(se.Available))

	w = h.do(t, http.MethodPut, "/v1/inventory/stock/"+itemID+"/decrease", map[string]any{"quantity": "5", "reason": "spoilage"})
	require.Equal(t, http.StatusOK, w.Code)
	testutil.DecEqual(t, "15", decode[dto.StockResponse](t, w).Quantity)
}

func TestInventory_ReorderLevelAndRemove(t *testing.T) {
	h := newHarness(t)
	itemID := h.flour(t)

	w := h.do(t, http.MethodPatch, "/v1/inventory/stock/"+itemID+"/reorder-level", map[string]any{"reorder_level": "25"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[dto.StockResponse](t, w).BelowReorder)

	w = h.do(t, http.MethodGet, "/v1/inventory/stock?below_reorder=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[dto.StockListResponse](t, w).Total)

	w = h.do(t, http.MethodDelete, "/v1/inventory/stock/"+itemID, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestRecipesAndOrders_EndToEnd(t *testing.T) {
	h := newHarness(t)
	itemID := h.flour(t)

	w := h.do(t, http.MethodPost, "/v1/recipes", map[string]any{
		"name":           "Bread",
		"labour_time":    "30m",
		"labour_rate":    "20",
		"packaging_cost": "1",
		"overhead_cost":  "1",
		"profit_margin":  "50",
		"ingredients":    []map[string]any{{"item_id": itemID, "quantity": "0.5"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	recipe := decode[dto.RecipeResponse](t, w)
	testutil.DecEqual(t, "14", recipe.CostPrice)
	testutil.DecEqual(t, "21", recipe.SellingPrice)

	w = h.do(t, http.MethodPost, "/v1/customers", map[string]any{
		"first_name": "Ama", "last_name": "Mensah", "contact": "0240000000",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	customer := decode[dto.CustomerResponse](t, w)

	w = h.do(t, http.MethodPost, "/v1/orders", map[string]any{
		"customer_id": customer.ID,
		"lines":       []map[string]any{{"recipe_id": recipe.ID, "quantity": 4}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decode[dto.OrderResponse](t, w)
	assert.Equal(t, "ORD-00001", order.OrderNo)
	testutil.DecEqual(t, "84", order.TotalValue)

	w = h.do(t, http.MethodPatch, "/v1/orders/"+order.ID+"/status", map[string]any{"status": "completed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "completed", decode[dto.OrderResponse](t, w).Status)

	w = h.do(t, http.MethodGet, "/v1/inventory/stock/"+itemID, nil)
	testutil.DecEqual(t, "18", decode[dto.StockResponse](t, w).Quantity)

	// Terminal orders refuse further transitions.
	w = h.do(t, http.MethodPatch, "/v1/orders/"+order.ID+"/status", map[string]any{"status": "cancelled"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = h.do(t, http.MethodPatch, "/v1/orders/"+order.ID+"/status", map[string]any{"status": "shipped"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestOrders_UnknownCustomerIsValidationError(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodPost, "/v1/orders", map[string]any{
		"customer_id": uuid.NewString(),
		"lines":       []map[string]any{{"recipe_id": uuid.NewString(), "quantity": 1}},
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	ve := decode[apierror.ValidationError](t, w)
	assert.Equal(t, "customer not found", ve.Fields["customer_id"])
}

func TestRecipes_DeleteThenGetIsNotFound(t *testing.T) {
	h := newHarness(t)
	itemID := h.flour(t)

	w := h.do(t, http.MethodPost, "/v1/recipes", map[string]any{
		"name":        "Scone",
		"ingredients": []map[string]any{{"item_id": itemID, "quantity": "0.2"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode[dto.RecipeResponse](t, w).ID

	require.Equal(t, http.StatusNoContent, h.do(t, http.MethodDelete, "/v1/recipes/"+id, nil).Code)
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodGet, "/v1/recipes/"+id, nil).Code)
}

func TestPreferences_DefaultsWithoutRedis(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodGet, "/v1/preferences", nil)
	require.Equal(t, http.StatusOK, w.Code)
	p := decode[dto.PreferencesResponse](t, w)
	testutil.DecEqual(t, "30", p.ProfitMargin)
	testutil.DecEqual(t, "20", p.LabourRate)

	w = h.do(t, http.MethodPut, "/v1/preferences", map[string]any{"profit_margin": "-1", "labour_rate": "10"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCatalog_DuplicateItemIsConflict(t *testing.T) {
	h := newHarness(t)
	body := map[string]any{"name": "Sugar", "unit": "kg"}

	require.Equal(t, http.StatusCreated, h.do(t, http.MethodPost, "/v1/inventory/items", body).Code)
	assert.Equal(t, http.StatusConflict, h.do(t, http.MethodPost, "/v1/inventory/items", body).Code)

	w := h.do(t, http.MethodGet, "/v1/inventory/items?search=sug", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode[dto.ListResponse[dto.InventoryItemResponse]](t, w).Total)
}
