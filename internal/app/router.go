package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	goredis "github.com/redis/go-redis/v9"

	"rideshare/internal/handler"
	"rideshare/internal/middleware"
	"rideshare/internal/redis"
	"rideshare/internal/repository"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	ProfileHandler *handler.ProfileHandler
	RideHandler    *handler.RideHandler
	BookingHandler *handler.BookingHandler
	MessageHandler *handler.MessageHandler
	ReportHandler  *handler.ReportHandler
	GeocodeHandler *handler.GeocodeHandler
	ProfileRepo    repository.ProfileRepository
	RateLimiter    redis.RateLimiterInterface
	RedisClient    *goredis.Client
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

	// Registration happens before a user ID exists.
	v1.POST("/profiles/register", deps.ProfileHandler.Register)

	// Everything else resolves the caller via X-User-ID.
	authed := v1.Group("")
	authed.Use(middleware.AuthMiddleware(deps.ProfileRepo))
	if deps.RateLimiter != nil {
		authed.Use(middleware.RateLimitMiddleware(deps.RateLimiter))
	}
	{
		// Profile routes.
		authed.GET("/profiles/:id", deps.ProfileHandler.GetProfile)
		authed.PATCH("/profiles/me", deps.ProfileHandler.UpdateProfile)
		authed.DELETE("/profiles/me", deps.ProfileHandler.Deactivate)

		// Vehicle routes.
		vehicles := authed.Group("/vehicles")
		{
			vehicles.POST("", deps.ProfileHandler.AddVehicle)
			vehicles.GET("", deps.ProfileHandler.ListVehicles)
			vehicles.DELETE("/:id", deps.ProfileHandler.DeleteVehicle)
		}

		// Ride routes.
		rides := authed.Group("/rides")
		{
			rides.POST("", deps.RideHandler.CreateRide)
			rides.GET("", deps.RideHandler.Search)
			rides.GET("/mine", deps.RideHandler.MyRides)
			rides.GET("/:id", deps.RideHandler.GetRide)
			rides.PATCH("/:id", deps.RideHandler.EditRide)
			rides.POST("/:id/cancel", deps.RideHandler.CancelRide)
			rides.POST("/:id/complete", deps.RideHandler.CompleteRide)
			rides.POST("/:id/bookings", deps.BookingHandler.RequestBooking)
			rides.POST("/:id/invite", deps.BookingHandler.InvitePassenger)
		}

		// Booking routes.
		bookings := authed.Group("/bookings")
		{
			bookings.GET("/mine", deps.BookingHandler.MyBookings)
			bookings.GET("/received", deps.BookingHandler.ReceivedBookings)
			bookings.POST("/:id/confirm", deps.BookingHandler.Confirm)
			bookings.POST("/:id/accept", deps.BookingHandler.Accept)
			bookings.POST("/:id/decline", deps.BookingHandler.Decline)
			bookings.POST("/:id/cancel", deps.BookingHandler.Cancel)
		}

		// Messaging routes.
		conversations := authed.Group("/conversations")
		{
			conversations.POST("", deps.MessageHandler.StartConversation)
			conversations.GET("", deps.MessageHandler.ListConversations)
			conversations.GET("/:id/messages", deps.MessageHandler.ListMessages)
			conversations.POST("/:id/messages", deps.MessageHandler.SendMessage)
			conversations.POST("/:id/read", deps.MessageHandler.MarkRead)
		}

		// Block routes.
		blocks := authed.Group("/blocks")
		{
			blocks.POST("", deps.ProfileHandler.Block)
			blocks.GET("", deps.ProfileHandler.ListBlocks)
			blocks.DELETE("/:id", deps.ProfileHandler.Unblock)
		}

		// Report and moderation routes.
		authed.POST("/reports", deps.ReportHandler.CreateReport)
		admin := authed.Group("/admin")
		{
			admin.GET("/reports", deps.ReportHandler.OpenReports)
			admin.POST("/reports/:id/resolve", deps.ReportHandler.ResolveReport)
			admin.POST("/users/:id/ban", deps.ReportHandler.BanUser)
			admin.POST("/users/:id/unban", deps.ReportHandler.UnbanUser)
		}

		// Geocoding.
		authed.GET("/geocode", deps.GeocodeHandler.Forward)
	}

	return router
}
