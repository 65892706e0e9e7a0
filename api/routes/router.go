// api/routes/router.go
package routes

import (
	"context"
	"net/http"
	"time"

	"boxoffice/internal/auth"
	"boxoffice/internal/checkout"
	"boxoffice/internal/events"
	"boxoffice/internal/realtime"
	"boxoffice/internal/seats"
	"boxoffice/internal/shared/config"
	"boxoffice/internal/shared/database"
	"boxoffice/internal/shared/middleware"
	"boxoffice/internal/studio"
	"boxoffice/pkg/cache"
	"boxoffice/pkg/logger"

	_ "boxoffice/docs"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	issuer    *auth.Issuer
	cache     cache.Service
	publisher checkout.Publisher
	logger    *logger.Logger

	eventService events.Service
	seatService  seats.Service
	hub          *realtime.Hub
}

// NewRouter builds the services shared by several route groups. A nil publisher leaves
// checkout unmounted.
func NewRouter(cfg *config.Config, db *database.DB, publisher checkout.Publisher) *Router {
	log := logger.GetDefault()
	cacheService := cache.NewService(db.GetRedisClient(), log)

	eventService := events.NewService(events.NewRepository(db.GetPostgreSQL()), cacheService, log)
	seatService := seats.NewService(eventService, seats.NewHoldStore(db.GetRedisClient(), cfg.Redis.SeatHoldTTL), log)

	return &Router{
		config:       cfg,
		db:           db,
		issuer:       auth.NewIssuer(cfg.JWT),
		cache:        cacheService,
		publisher:    publisher,
		logger:       log,
		eventService: eventService,
		seatService:  seatService,
		hub:          realtime.NewHub(seatReserver{seats: seatService}, log),
	}
}

// Hub is the real-time hub; the caller runs it
func (r *Router) Hub() *realtime.Hub {
	return r.hub
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Seat activity over WebSocket; the token is optional, anonymous shoppers name themselves
	realtime.SetupRealtimeRoutes(engine,
		realtime.NewHandler(r.hub, r.config.CORS.AllowedOrigins),
		middleware.OptionalAuth(r.issuer))

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		auth.SetupAuthRoutes(api, auth.NewController(r.issuer))

		events.SetupEventRoutes(api, events.NewController(r.eventService), r.issuer)

		seats.SetupSeatRoutes(api, seats.NewController(r.seatService), r.issuer)

		r.setupStudioRoutes(api)

		r.setupCheckoutRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "boxoffice",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "boxoffice",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})
}

// setupStudioRoutes configures seat map authoring for operators
func (r *Router) setupStudioRoutes(rg *gin.RouterGroup) {
	repo := studio.NewRepository(r.cache, r.config.Redis.EditorSessionTTL)
	service := studio.NewService(repo, r.eventService, r.eventService, r.logger)

	studio.SetupStudioRoutes(rg, studio.NewController(service), r.issuer)
}

// setupCheckoutRoutes configures the hand-off endpoint
func (r *Router) setupCheckoutRoutes(rg *gin.RouterGroup) {
	if r.publisher == nil {
		r.logger.Warn("checkout publisher unavailable, /checkout not mounted")
		return
	}
	service := checkout.NewService(r.seatService, r.publisher, r.config.Storefront.MaxSeatsPerUser, r.logger)

	checkout.SetupCheckoutRoutes(rg, checkout.NewController(service), r.issuer)
}

// seatReserver adapts the seat service to the hub, which only needs the outcome
type seatReserver struct {
	seats seats.Service
}

func (s seatReserver) Reserve(ctx context.Context, eventID, seatID, userID string) error {
	_, err := s.seats.Reserve(ctx, eventID, seatID, userID)
	return err
}

func (s seatReserver) Release(ctx context.Context, eventID, seatID, userID string) error {
	return s.seats.Release(ctx, eventID, seatID, userID)
}
