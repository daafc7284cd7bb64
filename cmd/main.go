package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"referral-engine/internal/auth"
	"referral-engine/internal/config"
	"referral-engine/internal/database"
	"referral-engine/internal/handlers"
	"referral-engine/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed the catalog on first boot
	if err := database.SeedDefaultReward(cfg.App.DefaultRewardCost); err != nil {
		log.Fatalf("Failed to seed rewards catalog: %v", err)
	}

	// Initialize services. All services share one lock registry so
	// balance-affecting operations on the same account serialize no matter
	// which operation they came through.
	locks := services.NewKeyLock()
	db := database.GetDB()

	referralService := services.NewReferralService(db, locks, cfg.App.ReferralRewardPoints)
	accountService := services.NewAccountService(db, locks, referralService, cfg.App.CodeLength, cfg.App.CodeMaxAttempts)
	ledgerService := services.NewLedgerService(db)
	linkService := services.NewLinkService(db, locks, cfg.App.DailyLimitTZ)
	rewardService := services.NewRewardService(db, locks)
	leaderboardService := services.NewLeaderboardService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(cfg.App.ServiceSecret, cfg.App.AdminSecret)
	accountHandler := handlers.NewAccountHandler(accountService, referralService, ledgerService)
	linkHandler := handlers.NewLinkHandler(accountService, linkService)
	rewardHandler := handlers.NewRewardHandler(accountService, rewardService)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService)

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://127.0.0.1:3000",
	}
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Token exchange for the bot front-end (public)
	router.POST("/auth/token", authHandler.IssueToken)

	// Engine API, service token required
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		api.POST("/users/register", accountHandler.RegisterUser)
		api.GET("/users/:telegram_id", accountHandler.GetAccount)
		api.GET("/users/:telegram_id/referrals", accountHandler.GetReferrals)
		api.GET("/users/:telegram_id/ledger", accountHandler.GetLedger)
		api.GET("/users/:telegram_id/links", linkHandler.GetEvents)
		api.GET("/users/:telegram_id/redemptions", rewardHandler.ListRedemptions)

		api.POST("/links", linkHandler.IssueLink)
		api.POST("/links/:id/click", linkHandler.RecordClick)
		api.POST("/links/:id/conversion", linkHandler.RecordConversion)

		api.GET("/rewards", rewardHandler.ListRewards)
		api.POST("/rewards/:id/redeem", rewardHandler.RedeemReward)

		api.GET("/leaderboard", leaderboardHandler.GetLeaderboard)
	}

	// Catalog management, admin token required
	admin := router.Group("/api/admin")
	admin.Use(auth.AuthMiddleware(), auth.AdminMiddleware())
	{
		admin.POST("/rewards", rewardHandler.CreateReward)
		admin.PATCH("/rewards/:id/status", rewardHandler.SetRewardStatus)
		admin.PATCH("/redemptions/:reference/status", rewardHandler.UpdateRedemptionStatus)
	}

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Referral engine listening on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
