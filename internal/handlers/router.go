package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/kaniyamudhan/rupeeraiser/internal/middleware"
	"github.com/kaniyamudhan/rupeeraiser/internal/store"
	"github.com/kaniyamudhan/rupeeraiser/internal/validator"

	_ "github.com/kaniyamudhan/rupeeraiser/internal/docs" // Import swagger docs
)

// RouterConfig holds what the local API is built from.
type RouterConfig struct {
	Store         store.Servicer
	Notifications NotificationSource
	// APIKey, when set, is required in the X-API-Key header of /api/v1 routes.
	APIKey         string
	AllowedOrigins []string
}

// NewRouter builds the local API.
func NewRouter(cfg RouterConfig) *gin.Engine {
	validator.Register()

	sessionHandler := NewSessionHandler(cfg.Store)
	transactionHandler := NewTransactionHandler(cfg.Store)
	budgetHandler := NewBudgetHandler(cfg.Store)
	habitHandler := NewHabitHandler(cfg.Store)
	assistantHandler := NewAssistantHandler(cfg.Store)
	notificationHandler := NewNotificationHandler(cfg.Notifications)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	v1.Use(middleware.APIKey(cfg.APIKey))

	v1.GET("/state", sessionHandler.GetState)
	v1.PUT("/scope", sessionHandler.SetScope)
	v1.GET("/notifications", notificationHandler.GetNotifications)

	auth := v1.Group("/auth")
	auth.POST("/login", sessionHandler.Login)
	auth.POST("/signup", sessionHandler.Signup)
	auth.POST("/logout", sessionHandler.Logout)

	profile := v1.Group("/profile")
	profile.PUT("", sessionHandler.UpdateProfile)
	profile.PUT("/password", sessionHandler.ChangePassword)

	transactions := v1.Group("/transactions")
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	v1.GET("/budget", budgetHandler.GetBudget)
	v1.PUT("/budget", budgetHandler.UpdateBudget)

	accounts := v1.Group("/accounts")
	accounts.POST("", budgetHandler.CreateAccount)
	accounts.DELETE("/:id", budgetHandler.DeleteAccount)

	goals := v1.Group("/goals")
	goals.POST("", budgetHandler.CreateGoal)
	goals.DELETE("/:id", budgetHandler.DeleteGoal)

	habits := v1.Group("/habits")
	habits.POST("", habitHandler.CreateHabit)
	habits.PUT("/:id", habitHandler.RenameHabit)
	habits.DELETE("/:id", habitHandler.DeleteHabit)
	habits.PUT("/:id/dates/:date", habitHandler.ToggleHabitDate)

	ai := v1.Group("/ai")
	ai.POST("/parse", assistantHandler.ParseTransaction)
	ai.POST("/quick-add", assistantHandler.QuickAdd)
	ai.POST("/chat", assistantHandler.Chat)
	ai.DELETE("/chat", assistantHandler.ClearChat)
	ai.POST("/plan", assistantHandler.Plan)

	return router
}

// corsConfig allows every origin when none is configured.
func corsConfig(origins []string) cors.Config {
	return cors.Config{
		AllowAllOrigins: len(origins) == 0,
		AllowOrigins:    origins,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", "X-API-Key", "X-Request-ID"},
		ExposeHeaders:   []string{"Content-Length", "X-Request-ID"},
		MaxAge:          12 * time.Hour,
	}
}
