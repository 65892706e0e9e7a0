// Package main runs the box office API server
//
// @title Box Office API
// @version 1.0
// @description Seat maps, live seat holds and checkout hand-off for the box office.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"boxoffice/api/routes"
	"boxoffice/internal/checkout"
	"boxoffice/internal/seats"
	"boxoffice/internal/shared/config"
	"boxoffice/internal/shared/database"
	"boxoffice/internal/shared/middleware"
	"boxoffice/pkg/logger"
	"boxoffice/pkg/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	appLogger := logger.GetDefault()

	// Smart environment loading
	if err := godotenv.Load(); err != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	cfg := config.Load()
	appLogger = logger.New(logger.Options{Level: cfg.LogLevel, JSON: cfg.IsProduction()})
	logger.SetDefault(appLogger)
	if err := cfg.Validate(); err != nil {
		appLogger.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	gin.SetMode(cfg.GinMode)

	db, err := database.InitDB(cfg)
	if err != nil {
		appLogger.Error("failed to connect", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Seat hold scripts are loaded up front so the first reservation does not pay for it
	holds := seats.NewHoldStore(db.GetRedisClient(), cfg.Redis.SeatHoldTTL)
	preloadCtx, cancelPreload := context.WithTimeout(context.Background(), 10*time.Second)
	if err := holds.PreloadScripts(preloadCtx); err != nil {
		appLogger.Warn("Failed to preload Redis Lua scripts", slog.Any("error", err))
	}
	cancelPreload()

	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = ratelimit.NewRateLimiter(db.GetRedisClient(), &ratelimit.Config{
			Enabled:          cfg.RateLimit.Enabled,
			WindowDuration:   cfg.RateLimit.WindowDuration,
			DefaultRequests:  cfg.RateLimit.DefaultRequests,
			PublicRequests:   cfg.RateLimit.PublicRequests,
			AdminRequests:    cfg.RateLimit.AdminRequests,
			ReserveRequests:  cfg.RateLimit.ReserveRequests,
			CheckoutRequests: cfg.RateLimit.CheckoutRequests,
			RealtimeRequests: cfg.RateLimit.RealtimeRequests,
			WhitelistedIPs:   cfg.RateLimit.WhitelistedIPs,
		})
		appLogger.Info("Rate limiter initialized",
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("default_requests", cfg.RateLimit.DefaultRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	// Checkout hand-offs go to Kafka; without a broker the rest of the API still serves
	var publisher checkout.Publisher
	if kafka, err := checkout.NewKafkaPublisher(cfg.Kafka, appLogger); err != nil {
		appLogger.Error("Failed to initialize checkout publisher", slog.Any("error", err))
	} else {
		publisher = kafka
		defer func() {
			if err := kafka.Close(); err != nil {
				appLogger.Error("Error closing checkout publisher", slog.Any("error", err))
			}
		}()
	}

	var keeper *checkout.HoldKeeper
	if publisher != nil {
		if keeper, err = checkout.NewKafkaHoldKeeper(cfg.Kafka, holds, appLogger); err != nil {
			appLogger.Error("Failed to initialize hold keeper", slog.Any("error", err))
		}
	}

	appRouter := routes.NewRouter(cfg, db, publisher)
	engine := setupEngine(cfg, appRouter, rateLimiter)

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        engine,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := appRouter.Hub().Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if keeper != nil {
		g.Go(func() error {
			return keeper.Run(gctx)
		})
	}

	g.Go(func() error {
		appLogger.Info("Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("version", Version),
			slog.String("commit", GitCommit),
			slog.Bool("rate_limiting", cfg.RateLimit.Enabled),
			slog.Bool("checkout", publisher != nil),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		appLogger.Error("Server stopped with error", slog.Any("error", err))
		return
	}
	appLogger.Info("Server exited gracefully")
}

func setupEngine(cfg *config.Config, appRouter *routes.Router, rateLimiter *ratelimit.RateLimiter) *gin.Engine {
	engine := gin.New()
	appLogger := logger.GetDefault()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		appLogger.Warn("Invalid trusted proxies, forwarding headers are ignored", slog.Any("error", err))
		_ = engine.SetTrustedProxies(nil)
	}

	engine.Use(middleware.RequestID(), middleware.RequestLogger(appLogger), gin.Recovery())

	engine.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter))
	}

	appRouter.SetupRoutes(engine)
	return engine
}
