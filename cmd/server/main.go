package main // Entry point package

import (
	"log" // Logging library

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/kivustream/streampass/internal/config"
	"github.com/kivustream/streampass/internal/database"
	"github.com/kivustream/streampass/internal/gateway"
	"github.com/kivustream/streampass/internal/handler"
	"github.com/kivustream/streampass/internal/middleware"
	"github.com/kivustream/streampass/internal/payment"
	"github.com/kivustream/streampass/internal/queue"
	"github.com/kivustream/streampass/internal/refresh"
	"github.com/kivustream/streampass/internal/repository"
	"github.com/kivustream/streampass/internal/router"
)

func main() {
	cfg := config.Load() // Load environment config

	// Open MySQL and verify the connection before serving traffic.
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	// Redis backs the response cache and the rate limiter.  A nil client
	// disables both and the server degrades gracefully.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; response cache and rate limiting disabled")
	}

	// Repositories over the shared database handle.
	eventRepo := repository.NewEventRepo(db)
	favoriteRepo := repository.NewFavoriteRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	promoRepo := repository.NewPromoRepo(db)
	ticketRepo := repository.NewTicketRepo(db)

	// Shared cross-screen state: the in-memory payment attempts and the
	// refresh key clients observe to invalidate stale lists.
	attempts := payment.NewStore()
	refreshKey := &refresh.Key{}

	gw := gateway.NewClient(cfg.GatewayURL, cfg.GatewayToken)

	eventHandler := handler.NewEventHandler(eventRepo)
	favoriteHandler := handler.NewFavoriteHandler(eventRepo, favoriteRepo, refreshKey)
	categoryHandler := handler.NewCategoryHandler(categoryRepo)
	ticketHandler := handler.NewTicketHandler(ticketRepo)
	tokenHandler := handler.NewTokenHandler(cfg.JWTSecret, cfg.AccessTTLMin, cfg.Env)
	paymentHandler := handler.NewPaymentHandler(eventRepo, promoRepo, ticketRepo, gw,
		attempts, refreshKey, cfg.PublicBaseURL, cfg.GatewayToken)

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	// The response cache keys on the authenticated viewer, so it is
	// applied inside the protected group rather than globally.
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterViewer(e, eventHandler, favoriteHandler, categoryHandler, ticketHandler, tokenHandler, cfg.JWTSecret, cacheMW)
	router.RegisterPayments(e, paymentHandler, cfg.JWTSecret)

	// Consume payment.approved messages in the background; the consumer
	// reconnects on its own and never takes the server down.
	go func() {
		if err := queue.StartPaymentConsumer(); err != nil {
			log.Printf("payment consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
