package main

import (
	"context"   // Redis ping and shutdown deadlines
	"errors"    // Server close detection
	"net/http"  // HTTP server
	"os"        // Signals
	"os/signal" // Graceful shutdown
	"syscall"   // SIGTERM
	"time"      // Timeouts

	"paylite/internal/account" // Credential store
	"paylite/internal/api"     // HTTP handlers and router
	"paylite/internal/config"  // Configuration
	"paylite/internal/db"      // MySQL store
	"paylite/internal/ledger"  // Ledger engine
	"paylite/internal/utils"   // JWT, bcrypt and rate limiting

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg, err := config.LoadConfig() // Load configuration
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	setupLogger(cfg)

	// Connect to the database
	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}
	store := db.NewStore(gdb)

	// Redis only backs the login rate limiter; without it logins are not limited
	var limiter *utils.RateLimiter
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logrus.WithError(err).Warn("Redis unreachable, login rate limiting fails open until it recovers")
		}
		cancel()
		defer redisClient.Close()
		limiter = utils.NewRateLimiter(redisClient, "rl:login:", cfg.LoginRateLimit, time.Minute)
	} else {
		logrus.Warn("REDIS_ADDR not set, login rate limiting disabled")
	}

	accounts, err := account.NewService(store, utils.NewBcryptHasher(), cfg.DefaultCurrency)
	if err != nil {
		logrus.Fatalf("failed to set up credential store: %v", err)
	}
	engine := ledger.NewEngine(store, ledger.WithTimeout(cfg.OperationTimeout))

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := api.NewRouter(api.Deps{
		Accounts:       accounts,
		Ledger:         ledger.NewService(store, engine),
		Tokens:         utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL),
		LoginLimiter:   limiter,
		TrustedProxies: cfg.TrustedProxies,
	})
	if err != nil {
		logrus.Fatalf("failed to build router: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.Address(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logrus.WithField("addr", srv.Addr).Info("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server error: %v", err)
		}
	}()

	// Wait for a termination signal, then let in-flight operations finish
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.OperationTimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("Forced shutdown")
	}
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// setupLogger applies the level and format from the configuration
func setupLogger(cfg *config.Config) {
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.WithField("log_level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
