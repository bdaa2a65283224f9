package api

import (
	"net/http"

	"github.com/alligatorO15/fin-dashboard/internal/api/handlers"
	"github.com/alligatorO15/fin-dashboard/internal/api/middleware"
	"github.com/alligatorO15/fin-dashboard/internal/config"
	"github.com/alligatorO15/fin-dashboard/internal/ratelimit"
	"github.com/alligatorO15/fin-dashboard/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type Server struct {
	router           *gin.Engine
	config           *config.Config
	services         *service.Services
	logger           zerolog.Logger
	dashboardLimiter *ratelimit.Store
}

func NewServer(cfg *config.Config, services *service.Services, logger zerolog.Logger, dashboardLimiter *ratelimit.Store) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	if dashboardLimiter == nil {
		dashboardLimiter = ratelimit.NewStore(cfg.DashboardRateLimit, cfg.RateLimitWindow)
	}

	server := &Server{
		router:           router,
		config:           cfg,
		services:         services,
		logger:           logger,
		dashboardLimiter: dashboardLimiter,
	}

	server.setupRoutes()

	return server
}

func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Handler для http.Server в main и httptest
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	//middleware
	s.router.Use(middleware.CORS(s.config.CORSOrigins))
	s.router.Use(middleware.RequestLogger(s.logger))

	// health check
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.router.Group("/api/v1")

	// подготавливаем хэндлеры
	authHandler := handlers.NewAuthHandler(s.services.Auth, s.config)
	userHandler := handlers.NewUserHandler(s.services.User)
	transactionHandler := handlers.NewTransactionHandler(s.services.Transaction)
	budgetHandler := handlers.NewBudgetHandler(s.services.Budget)
	goalHandler := handlers.NewGoalHandler(s.services.Goal)
	accountHandler := handlers.NewAccountHandler(s.services.Account)
	recurringHandler := handlers.NewRecurringHandler(s.services.Recurring)
	analyticsHandler := handlers.NewAnalyticsHandler(s.services.Analytics)
	commandHandler := handlers.NewCommandHandler(s.services.Command)

	// эндпоинты аутентификации (публичные)
	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authHandler.Logout)
	}

	// непубличные эндпоинты
	protected := api.Group("")
	protected.Use(middleware.Auth(s.services.Auth))
	{
		protected.POST("/auth/logout-all", authHandler.LogoutAll)

		protected.GET("/user", userHandler.GetCurrent)
		protected.DELETE("/user", userHandler.Delete)

		protected.GET("/dashboard", middleware.RateLimit(s.dashboardLimiter, middleware.ByUser), analyticsHandler.GetDashboard)
		protected.GET("/categories", analyticsHandler.GetCategories)

		analytics := protected.Group("/analytics")
		{
			analytics.GET("", analyticsHandler.GetAnalytics)
			analytics.GET("/trends.png", analyticsHandler.GetTrendsChart)
			analytics.GET("/monthly.png", analyticsHandler.GetMonthlyChart)
		}

		transactions := protected.Group("/transactions")
		{
			transactions.POST("", transactionHandler.Create)
			transactions.GET("", transactionHandler.List)
			transactions.GET("/:id", transactionHandler.GetByID)
			transactions.PUT("/:id", transactionHandler.Update)
			transactions.DELETE("/:id", transactionHandler.Delete)
		}

		budgets := protected.Group("/budgets")
		{
			budgets.POST("", budgetHandler.Create)
			budgets.GET("", budgetHandler.List)
			budgets.GET("/summary", budgetHandler.GetSummary)
			budgets.GET("/alerts", budgetHandler.GetAlerts)
			budgets.GET("/:id", budgetHandler.GetByID)
			budgets.PUT("/:id", budgetHandler.Update)
			budgets.DELETE("/:id", budgetHandler.Delete)
		}

		goals := protected.Group("/goals")
		{
			goals.POST("", goalHandler.Create)
			goals.GET("", goalHandler.List)
			goals.GET("/:id", goalHandler.GetByID)
			goals.PUT("/:id", goalHandler.Update)
			goals.DELETE("/:id", goalHandler.Delete)
			goals.POST("/:id/contributions", goalHandler.AddContribution)
			goals.GET("/:id/contributions", goalHandler.GetContributions)
		}

		accounts := protected.Group("/accounts")
		{
			accounts.POST("", accountHandler.Create)
			accounts.GET("", accountHandler.List)
			accounts.GET("/summary", accountHandler.GetSummary)
			accounts.GET("/:id", accountHandler.GetByID)
			accounts.PUT("/:id", accountHandler.Update)
			accounts.DELETE("/:id", accountHandler.Delete)
		}

		recurring := protected.Group("/recurring")
		{
			recurring.POST("", recurringHandler.Create)
			recurring.GET("", recurringHandler.List)
			recurring.GET("/:id", recurringHandler.GetByID)
			recurring.PUT("/:id", recurringHandler.Update)
			recurring.DELETE("/:id", recurringHandler.Delete)
		}

		protected.POST("/commands", commandHandler.Send)
	}
}
