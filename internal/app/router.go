package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"cargoride/internal/handler"
	"cargoride/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	FareHandler    *handler.FareHandler
	TripHandler    *handler.TripHandler
	AccountHandler *handler.AccountHandler
	DriverHandler  *handler.DriverHandler
	PricingHandler *handler.PricingHandler
	RedisClient    *redis.Client
	NewRelicApp    *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Fare quotes.
		fares := v1.Group("/fares")
		{
			fares.POST("/quote", deps.FareHandler.QuoteFare)
		}

		// Trip lifecycle routes.
		trips := v1.Group("/trips")
		{
			trips.POST("", deps.TripHandler.CreateTrip)
			trips.GET("", deps.TripHandler.GetAll)
			trips.GET("/:id", deps.TripHandler.GetTrip)
			trips.POST("/:id/status", deps.TripHandler.AdvanceStatus)
		}

		// Corporate account routes.
		accounts := v1.Group("/accounts")
		{
			accounts.POST("", deps.AccountHandler.CreateAccount)
			accounts.GET("/:id", deps.AccountHandler.GetAccount)
			accounts.GET("/:id/balances", deps.AccountHandler.GetBalances)
			accounts.POST("/:id/deactivate", deps.AccountHandler.DeactivateAccount)
			accounts.POST("/:id/members", deps.AccountHandler.AddMember)
			accounts.GET("/:id/members", deps.AccountHandler.GetMembers)
		}

		// Member routes.
		members := v1.Group("/members")
		{
			members.PUT("/:id/limit", deps.AccountHandler.UpdateMemberLimit)
		}

		// Driver routes.
		drivers := v1.Group("/drivers")
		{
			drivers.POST("/register", deps.DriverHandler.Register)
			drivers.GET("/:id/wallet", deps.DriverHandler.GetWallet)
		}

		// Pricing administration routes.
		pricing := v1.Group("/pricing")
		{
			pricing.PUT("/commodities/:key", deps.PricingHandler.UpsertCommodity)
			pricing.GET("/commodities/:key", deps.PricingHandler.GetCommodity)
			pricing.POST("/rules", deps.PricingHandler.UpsertRule)
			pricing.GET("/rules", deps.PricingHandler.GetRules)
		}
	}

	return router
}
