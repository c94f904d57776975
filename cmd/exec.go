package cmd

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ticket-marketplace/config"
	"ticket-marketplace/handlers"
	_ "ticket-marketplace/migrations"
	"ticket-marketplace/monitoring"
	"ticket-marketplace/security"
	"ticket-marketplace/services"
	"ticket-marketplace/store"
	"ticket-marketplace/utils"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Persistence port and supporting infrastructure
	recordStore := store.NewRecordStore(app)
	listingCache := services.NewListingCache(redisClient, cfg.ListingCacheTTL)
	monitor := monitoring.NewMonitor(ctx, recordStore)
	rateLimiter := security.NewRateLimiter(redisClient, cfg.RateLimitPerMinute)

	// Initialize services
	userService := services.NewUserService(recordStore, listingCache, monitor)
	ticketService := services.NewTicketService(recordStore, listingCache, monitor, cfg.MaxAdvertisedTickets)
	bookingService := services.NewBookingService(recordStore, monitor, cfg.BookingConflictRetries)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	ticketHandler := handlers.NewTicketHandler(ticketService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	adminHandler := handlers.NewAdminHandler(userService, ticketService)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: cfg.Environment == "development",
	})

	// Setup graceful shutdown
	go handleShutdown(cancel)

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		e.Router.BindFunc(rateLimiter.Middleware())

		// Catalog endpoints
		e.Router.GET("/api/v1/tickets", ticketHandler.ListPublic)
		e.Router.GET("/api/v1/tickets/{id}", ticketHandler.Get)
		e.Router.POST("/api/v1/tickets", ticketHandler.Create)
		e.Router.GET("/api/v1/vendor/tickets", ticketHandler.MyTickets)

		// Booking endpoints
		e.Router.POST("/api/v1/bookings", bookingHandler.Create)
		e.Router.GET("/api/v1/bookings", bookingHandler.MyBookings)
		e.Router.GET("/api/v1/vendor/bookings", bookingHandler.VendorBookings)
		e.Router.POST("/api/v1/bookings/{id}/decision", bookingHandler.Decide)
		e.Router.POST("/api/v1/bookings/{id}/payment", bookingHandler.SettlePayment)

		// Account endpoints
		e.Router.POST("/api/v1/users/register", userHandler.Register)

		// Admin endpoints
		e.Router.GET("/api/v1/admin/users", adminHandler.ListUsers)
		e.Router.POST("/api/v1/admin/users/role", adminHandler.SetRole)
		e.Router.POST("/api/v1/admin/users/fraud", adminHandler.MarkFraudulent)
		e.Router.POST("/api/v1/admin/tickets/{id}/verification", adminHandler.SetVerification)
		e.Router.POST("/api/v1/admin/tickets/{id}/advertised", adminHandler.SetAdvertised)

		// Metrics
		if cfg.EnableMetrics {
			e.Router.GET("/metrics", func(e *core.RequestEvent) error {
				promhttp.Handler().ServeHTTP(e.Response, e.Request)
				return nil
			})
		}

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(http.StatusServiceUnavailable, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(http.StatusOK, map[string]string{"status": "healthy"})
		})

		log.Println("Server routes registered")

		return e.Next()
	})

	return app.Start()
}

// handleShutdown handles graceful shutdown
func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
	cancel()
}
