package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmsync/internal/server/handlers"
	"github.com/mamadbah2/farmsync/internal/server/middleware"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Harvest   *handlers.HarvestHandler
	Workers   *handlers.WorkersHandler
	Finance   *handlers.FinanceHandler
	Inventory *handlers.InventoryHandler
	Reports   *handlers.ReportsHandler
	Health    *handlers.HealthHandler
}

// Options configures cross-cutting router behaviour.
type Options struct {
	AllowedOrigins []string
	Tokens         middleware.TokenValidator
	// Registry receives the HTTP metrics and backs /metrics.
	Registry *prometheus.Registry
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, opts Options, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	metrics := middleware.NewMetrics(opts.Registry)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(opts.AllowedOrigins))
	r.Use(metrics.Handler())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", h.Health.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))

	api := r.Group("/api")

	public := api.Group("/auth")
	public.POST("/register", h.Auth.Register)
	public.POST("/login", h.Auth.Login)

	protected := api.Group("")
	protected.Use(middleware.RequireAuth(opts.Tokens))

	protected.GET("/auth/user-id", h.Auth.UserID)
	protected.GET("/dashboard", h.Reports.Dashboard)

	protected.GET("/yields", h.Harvest.ListYields)
	protected.POST("/yields", h.Harvest.CreateYield)
	protected.GET("/sales", h.Harvest.ListSales)
	protected.POST("/sales", h.Harvest.CreateSale)

	protected.GET("/workers", h.Workers.List)
	protected.POST("/workers", h.Workers.Create)
	protected.GET("/workers/:id", h.Workers.Get)
	protected.POST("/workers/:id/attendance", h.Workers.MarkAttendance)
	protected.POST("/workers/:id/loan", h.Workers.AddLoan)
	protected.POST("/workers/:id/payroll", h.Workers.RunPayroll)

	protected.GET("/financials", h.Finance.List)
	protected.POST("/financials/revenue", h.Finance.AddRevenue)
	protected.POST("/financials/expense", h.Finance.AddExpense)

	protected.GET("/inventory", h.Inventory.List)
	protected.POST("/inventory", h.Inventory.Create)

	protected.GET("/reports", h.Reports.Reports)
	protected.GET("/reports/export", h.Reports.Export)

	if logger != nil {
		logger.Info("router initialized", zap.Int("routes", len(r.Routes())))
	}

	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
