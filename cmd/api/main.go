package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"expensematch/internal/config"
	"expensematch/internal/database"
	"expensematch/internal/handlers"
	"expensematch/internal/jobs"
	"expensematch/internal/logger"
	"expensematch/internal/matching"
	"expensematch/internal/middleware"
	"expensematch/internal/services"
	"expensematch/internal/validator"

	"github.com/gin-gonic/gin"
)

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

	validator.Register()

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
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	matchCfg := matching.Config{
		DateWindowDays:       appConfig.DateWindowDays,
		AmountBandPct:        appConfig.AmountBandPct,
		ProposalThreshold:    appConfig.ProposalThreshold,
		AutoApproveThreshold: appConfig.AutoApproveThreshold,
	}

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	receiptService := services.NewReceiptService(db)
	transactionService := services.NewTransactionService(db)
	eventService := services.NewEventService(db)
	aliasService := services.NewAliasService(db, appConfig.AliasReinforceStep, appConfig.AliasDecayStep)
	matchService := services.NewMatchService(db, matchCfg, aliasService, eventService)
	proposalService := services.NewProposalService(db, matchCfg, appConfig.CandidateBatchSize, aliasService, eventService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	receiptHandler := handlers.NewReceiptHandler(receiptService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	matchHandler := handlers.NewMatchHandler(matchService, proposalService)
	aliasHandler := handlers.NewAliasHandler(aliasService)
	eventHandler := handlers.NewEventHandler(eventService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

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

	// Intake routes, authenticated by API key for the ingestion pipelines
	ingest := v1.Group("/ingest")
	ingest.Use(middleware.IngestAuthMiddleware(appConfig.IngestAPIKey))
	ingest.POST("/receipts", receiptHandler.IngestReceipt)
	ingest.POST("/transactions", transactionHandler.IngestTransaction)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/profile/auto-approve-threshold", authHandler.SetAutoApproveThreshold)

	// Receipt routes
	receipts := protected.Group("/receipts")
	receipts.GET("", receiptHandler.GetReceipts)
	receipts.GET("/:id", receiptHandler.GetReceiptByID)
	receipts.POST("/:id/generate", matchHandler.GenerateForReceipt)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)

	// Match routes
	matches := protected.Group("/matches")
	matches.GET("/proposals", matchHandler.GetProposals)
	matches.GET("/:id", matchHandler.GetMatchByID)
	matches.POST("/:id/confirm", matchHandler.ConfirmMatch)
	matches.POST("/:id/reject", matchHandler.RejectMatch)
	matches.POST("/:id/unmatch", matchHandler.Unmatch)
	matches.POST("/manual", matchHandler.CreateManualMatch)
	matches.POST("/batch-approve", matchHandler.BatchApprove)
	matches.POST("/generate", matchHandler.GenerateProposals)

	// Vendor alias and activity feed routes
	protected.GET("/aliases", aliasHandler.GetAliases)
	protected.GET("/events", eventHandler.GetEvents)

	// Background jobs: periodic proposal sweep and stale alias decay
	runner := jobs.NewRunner(proposalService, aliasService,
		appConfig.GenerateInterval, appConfig.AliasDecayInterval, appConfig.AliasStaleAfter)
	runner.Start(context.Background())
	defer runner.Stop()

	// Graceful shutdown on SIGINT/SIGTERM
	srv := &http.Server{
		Addr:    ":" + appConfig.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting expensematch API server on port %s", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Infof("Received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
