package main

import (
	"budgetwise/internal/config"
	"budgetwise/internal/database"
	"budgetwise/internal/handlers"
	"budgetwise/internal/logger"
	"budgetwise/internal/middleware"
	"budgetwise/internal/services"
	"budgetwise/internal/validator"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "budgetwise/internal/docs" // Import swagger docs
)

// @title           BudgetWise API
// @version         1.0
// @description     BudgetWise allocates monthly income across spending categories, validates purchases against remaining budgets, and classifies expenses by merchant and description.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Initialize services
	db := dbManager.DB()
	auditService := services.NewAuditService(db)
	userService := services.NewUserService(db)
	categoryService := services.NewCategoryService(db)
	rankingService := services.NewRankingService(db, categoryService)
	budgetService := services.NewBudgetService(db, categoryService, rankingService)
	expenseService := services.NewExpenseService(db, categoryService, rankingService, budgetService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	rankingHandler := handlers.NewRankingHandler(rankingService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)
	expenseHandler := handlers.NewExpenseHandler(expenseService, auditService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Public catalog routes
	v1.GET("/categories", categoryHandler.ListCategories)
	v1.GET("/categories/:id", categoryHandler.GetCategory)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/auth/me", authHandler.Me)
	protected.PATCH("/auth/me", authHandler.UpdateProfile)

	// Category preference routes
	protected.PUT("/categories/:id/preference", categoryHandler.UpsertPreference)
	protected.GET("/categories/preferences", categoryHandler.GetPreferences)

	// Ranking routes
	ranking := protected.Group("/ranking")
	ranking.POST("/classify", rankingHandler.Classify)
	ranking.POST("/corrections", rankingHandler.Correct)
	ranking.GET("/priorities", rankingHandler.Priorities)

	// Budget routes
	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("/:month", budgetHandler.GetBudget)
	budgets.POST("/:month/check-purchase", budgetHandler.CheckPurchase)
	budgets.POST("/:month/spent", budgetHandler.UpdateSpent)
	budgets.GET("/:month/summary", budgetHandler.Summary)
	budgets.GET("/:month/suggestions", budgetHandler.Suggestions)

	// Expense routes
	expenses := protected.Group("/expenses")
	expenses.POST("", expenseHandler.LogExpense)
	expenses.GET("", expenseHandler.ListExpenses)
	expenses.GET("/:id", expenseHandler.GetExpense)
	expenses.PUT("/:id/category", expenseHandler.Recategorize)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)

	// Admin routes
	protected.POST("/admin/reseed", categoryHandler.Reseed)

	log.Infof("Starting BudgetWise backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
