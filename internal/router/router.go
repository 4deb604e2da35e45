package router

import (
	"time"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/bsm/redislock"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	_ "farmasys/docs" // registers the swagger spec served at /swagger
	"farmasys/internal/config"
	"farmasys/internal/handler"
	"farmasys/internal/middleware"
	"farmasys/internal/repository"
	"farmasys/internal/retention"
	"farmasys/internal/service"
	"farmasys/internal/worker"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, locker *redislock.Client, policies *retention.PolicySet, dispatcher *worker.Dispatcher) (*gin.Engine, service.RetentionService) {
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
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	archiveRepo := repository.NewArchiveRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	productSvc := service.NewProductService(productRepo)
	customerSvc := service.NewCustomerService(customerRepo)
	supplierSvc := service.NewSupplierService(supplierRepo)
	saleSvc := service.NewSaleService(saleRepo, movementRepo)
	stockSvc := service.NewStockService(movementRepo)
	retentionSvc := service.NewRetentionService(cfg, policies, archiveRepo, locker, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	productsH := handler.NewProductsHandler(productSvc)
	customersH := handler.NewCustomersHandler(customerSvc)
	suppliersH := handler.NewSuppliersHandler(supplierSvc)
	salesH := handler.NewSalesHandler(saleSvc)
	stockH := handler.NewStockHandler(stockSvc)
	retentionH := handler.NewRetentionHandler(retentionSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: balconista, farmaceutico, administrador — declared per-endpoint
		anyRole := middleware.RequireRole("balconista", "farmaceutico", "administrador")

		v1.POST("/sales", anyRole, salesH.Create)
		v1.GET("/sales", anyRole, salesH.List)
		v1.GET("/sales/:id", anyRole, salesH.Get)
		v1.DELETE("/sales/:id", middleware.RequireRole("farmaceutico", "administrador"), salesH.Cancel)

		v1.GET("/products", anyRole, productsH.List)
		v1.GET("/products/:id", anyRole, productsH.Get)
		v1.GET("/products/barcode/:barcode", anyRole, productsH.GetByBarcode)
		products := v1.Group("/products", middleware.RequireRole("farmaceutico", "administrador"))
		{
			products.POST("", productsH.Create)
			products.PUT("/:id", productsH.Update)
			products.DELETE("/:id", productsH.Delete)
		}

		v1.GET("/customers", anyRole, customersH.List)
		v1.GET("/customers/:id", anyRole, customersH.Get)
		v1.POST("/customers", anyRole, customersH.Create)
		v1.PUT("/customers/:id", anyRole, customersH.Update)
		v1.DELETE("/customers/:id", middleware.RequireRole("farmaceutico", "administrador"), customersH.Delete)

		suppliers := v1.Group("/suppliers", middleware.RequireRole("administrador"))
		{
			suppliers.POST("", suppliersH.Create)
			suppliers.GET("", suppliersH.List)
			suppliers.GET("/:id", suppliersH.Get)
			suppliers.PUT("/:id", suppliersH.Update)
			suppliers.DELETE("/:id", suppliersH.Delete)
		}

		// Offline sync endpoint (counter devices)
		v1.POST("/stock/sync-batch", anyRole, stockH.SyncBatch)
		v1.GET("/stock/movements", anyRole, stockH.ListMovements)

		// Retention — administrador only
		ret := v1.Group("/retention", middleware.RequireRole("administrador"))
		{
			ret.POST("/archival/run", retentionH.RunArchival)
			ret.POST("/audit/run", retentionH.RunAudit)
			ret.POST("/purge/run", retentionH.RunPurge)
			ret.GET("/reports/monthly", retentionH.MonthlyReport)
			ret.GET("/reports/monthly/pdf", retentionH.ExportMonthlyPDF)
			ret.GET("/reports/monthly/xlsx", retentionH.ExportMonthlyXLSX)
			ret.GET("/reports/annual", retentionH.AnnualReport)
			ret.GET("/dashboard", retentionH.Dashboard)
			ret.GET("/alerts", retentionH.Alerts)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r, retentionSvc
}
