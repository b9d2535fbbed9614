package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"auctionhouse/config"
	"auctionhouse/internal/domain/bid"
	"auctionhouse/internal/domain/item"
	"auctionhouse/internal/domain/transaction"
	"auctionhouse/internal/domain/user"
	"auctionhouse/internal/events"
	"auctionhouse/internal/handler"
	"auctionhouse/internal/metrics"
	"auctionhouse/internal/middleware"
	"auctionhouse/internal/notifier"
	auctionredis "auctionhouse/internal/redis"
	"auctionhouse/internal/repository"
	"auctionhouse/internal/scheduler"
	"auctionhouse/internal/services"
	"auctionhouse/internal/ws"
	"auctionhouse/pkg/database"
	"auctionhouse/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.LoadConfig()

	appLog := logger.New(cfg.AppMode)
	logger.SetGlobalLogger(appLog)

	// Connect to Database
	database.Connect(cfg)

	// Run Raw Migrations (Extensions, Notification Queue)
	if err := database.ApplyRawMigrations("migrations"); err != nil {
		log.Fatalf("Failed to apply raw migrations: %v", err)
	}

	// Run GORM AutoMigrate for Tables
	if err := database.DB.AutoMigrate(
		&user.User{},
		&item.Item{},
		&bid.Bid{},
		&transaction.Transaction{},
	); err != nil {
		log.Fatalf("Failed to apply GORM migrations: %v", err)
	}

	sqlDB, err := database.DB.DB()
	if err != nil {
		log.Fatalf("Failed to access sql.DB: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Register()

	redisClient := auctionredis.NewClient(cfg)
	bus := events.NewRedisBus(redisClient)
	limiter := auctionredis.NewRateLimiter(redisClient, auctionredis.DefaultRateLimitConfig())

	store := repository.NewStore(database.DB)
	notificationRepo := repository.NewNotificationRepository(sqlDB)

	sink := notifier.New(bus, appLog)
	go sink.Run(ctx)

	retention := time.Duration(cfg.NotificationRetainHr) * time.Hour
	hub := ws.NewHub(notificationRepo, retention, appLog)
	go hub.Run(ctx)

	envelopes, closeSub := bus.Subscribe(ctx)
	defer closeSub()
	go hub.PumpEvents(ctx, envelopes)

	authService := services.NewAuthService(store.Users(), cfg)
	commissionService := services.NewCommissionService(store, cfg.DefaultCommissionRate)
	bidService := services.NewBidService(store, sink, appLog)
	itemService := services.NewItemService(store, commissionService, sink, appLog)
	statusService := services.NewStatusService(store, bidService)

	runner := scheduler.NewRunner(itemService,
		time.Duration(cfg.CompletionSweepSec)*time.Second,
		time.Duration(cfg.CountdownSweepSec)*time.Second,
		time.Duration(cfg.CountdownHorizonSec)*time.Second,
		appLog,
	)
	go runner.RunCompletionSweep(ctx)
	go runner.RunCountdown(ctx)

	authHandler := handler.NewAuthHandler(authService)
	itemHandler := handler.NewItemHandler(itemService, commissionService)
	bidHandler := handler.NewBidHandler(bidService)
	statusHandler := handler.NewStatusHandler(statusService)
	commissionHandler := handler.NewCommissionHandler(commissionService)
	wsHandler := ws.NewHandler(authService, hub, store.Items(), appLog)

	if cfg.AppMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		middleware.RequestIDMiddleware(),
		middleware.LoggingMiddleware(appLog),
		gin.Recovery(),
		middleware.ErrorHandler(appLog),
	)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/ws", wsHandler.Connect)

	api := r.Group("/api")
	{
		authRoutes := api.Group("/auth", middleware.AuthRateLimitMiddleware(limiter))
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)

		api.GET("/items/:itemId", middleware.OptionalAuthMiddleware(authService), itemHandler.Get)
		api.GET("/bids/:itemId", bidHandler.History)
		api.GET("/auction-status/multiple", statusHandler.GetMultiple)
		api.GET("/auction-status/:itemId", statusHandler.Get)
		api.GET("/price-history/:itemId", statusHandler.PriceHistory)

		authed := api.Group("", middleware.AuthMiddleware(authService))
		authed.POST("/items", itemHandler.Create)
		authed.PUT("/items/:itemId/reserve", itemHandler.SetReserve)
		authed.PUT("/items/:itemId/commission-rate", itemHandler.SetCommissionRate)
		authed.POST("/bids", middleware.BidRateLimitMiddleware(limiter), bidHandler.Place)
		authed.GET("/commission/earnings", commissionHandler.Earnings)
	}

	appLog.Infof("starting server on port %s", cfg.AppPort)
	if err := r.Run(fmt.Sprintf(":%s", cfg.AppPort)); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
