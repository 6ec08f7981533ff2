package router

import (
	"time"

	"github.com/bsm/redislock"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/JonathanM-A/costmate/internal/config"
	"github.com/JonathanM-A/costmate/internal/handler"
	"github.com/JonathanM-A/costmate/internal/metrics"
	"github.com/JonathanM-A/costmate/internal/middleware"
	"github.com/JonathanM-A/costmate/internal/repository"
	"github.com/JonathanM-A/costmate/internal/service"
	"github.com/JonathanM-A/costmate/internal/worker"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
//
// rdb may be nil: preferences then serve configured defaults, order numbers
// rely on the unique index alone and no reorder checks are queued.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())

	// ── Repositories ─────────────────────────────────────────────────────────
	itemRepo := repository.NewInventoryItemRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	stockRepo := repository.NewStockRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	var (
		locker   *redislock.Client
		notifier service.ReorderNotifier
	)
	if rdb != nil {
		locker = redislock.New(rdb)
		notifier = worker.NewDispatcher(rdb)
	}

	cascade := service.NewCascade(ledgerRepo, stockRepo, recipeRepo)
	prefs := service.NewPreferenceStore(rdb, service.Preferences{
		ProfitMargin: cfg.DefaultProfitMargin,
		LabourRate:   cfg.DefaultLabourRate,
	})
	numberer := service.NewOrderNumberer(orderRepo, locker, cfg.OrderNumberRetries)

	inventorySvc := service.NewInventoryService(db, itemRepo, supplierRepo, stockRepo, ledgerRepo, cascade)
	recipeSvc := service.NewRecipeService(db, recipeRepo, itemRepo, prefs, cascade)
	orderSvc := service.NewOrderService(db, orderRepo, recipeRepo, customerRepo, cascade, numberer, notifier)
	catalogSvc := service.NewCatalogService(itemRepo, supplierRepo, customerRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	inventoryH := handler.NewInventoryHandler(inventorySvc)
	recipesH := handler.NewRecipesHandler(recipeSvc)
	ordersH := handler.NewOrdersHandler(orderSvc)
	catalogH := handler.NewCatalogHandler(catalogSvc)
	prefsH := handler.NewPreferencesHandler(prefs)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Protected routes. The limiter keys on the owner, so it runs after JWTAuth.
	limiter := middleware.NewRateLimiter(cfg.RateLimit, time.Minute)
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret), limiter.Middleware())
	{
		items := v1.Group("/inventory/items")
		{
			items.POST("", catalogH.CreateItem)
			items.GET("", catalogH.ListItems)
		}

		stock := v1.Group("/inventory/stock")
		{
			stock.POST("", inventoryH.RecordPurchase)
			stock.GET("", inventoryH.ListStock)
			stock.GET("/:item_id", inventoryH.GetStock)
			stock.PUT("/:item_id/decrease", inventoryH.Decrease)
			stock.PATCH("/:item_id/reorder-level", inventoryH.SetReorderLevel)
			stock.DELETE("/:item_id", inventoryH.Remove)
		}
		v1.GET("/inventory/history", inventoryH.History)

		v1.POST("/suppliers", catalogH.CreateSupplier)
		v1.GET("/suppliers", catalogH.ListSuppliers)
		v1.POST("/customers", catalogH.CreateCustomer)
		v1.GET("/customers", catalogH.ListCustomers)

		recipes := v1.Group("/recipes")
		{
			recipes.POST("", recipesH.Create)
			recipes.GET("", recipesH.List)
			recipes.GET("/:id", recipesH.Get)
			recipes.PATCH("/:id", recipesH.Update)
			recipes.PUT("/:id/ingredients", recipesH.ReplaceIngredients)
			recipes.DELETE("/:id", recipesH.Delete)
		}

		orders := v1.Group("/orders")
		{
			orders.POST("", ordersH.Create)
			orders.GET("", ordersH.List)
			orders.GET("/:id", ordersH.Get)
			orders.PATCH("/:id/status", ordersH.UpdateStatus)
		}

		v1.GET("/preferences", prefsH.Get)
		v1.PUT("/preferences", prefsH.Put)

		admin := v1.Group("/admin", middleware.RequireRole(middleware.RoleAdmin))
		{
			admin.POST("/inventory/items", catalogH.CreateDefaultItem)
		}
	}

	return r
}
