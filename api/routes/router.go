package routes

import (
	"net/http"
	"time"

	"venueledger/internal/auth"
	"venueledger/internal/closures"
	"venueledger/internal/events"
	"venueledger/internal/fnb"
	"venueledger/internal/sessions"
	"venueledger/internal/shared/config"
	"venueledger/internal/shared/database"
	"venueledger/internal/shared/middleware"
	"venueledger/internal/tables"
	"venueledger/internal/tickets"
	"venueledger/pkg/broker"
	"venueledger/pkg/cache"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	publisher broker.Publisher

	auth         gin.HandlerFunc
	requireStaff gin.HandlerFunc
	requireAdmin gin.HandlerFunc

	// shared by the ticket ledger and the allocator
	eventService events.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, publisher broker.Publisher) *Router {
	return &Router{
		config:       cfg,
		db:           db,
		publisher:    publisher,
		auth:         middleware.JWTAuthWithConfig(cfg),
		requireStaff: middleware.RequireStaff(),
		requireAdmin: middleware.RequireAdmin(),
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupAuthRoutes(api)

		// events first, the ledgers resolve events through its service
		r.setupEventRoutes(api)
		r.setupTicketRoutes(api)
		r.setupTableRoutes(api)
		r.setupSessionRoutes(api)
		r.setupFnbRoutes(api)
		r.setupClosureRoutes(api)
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
				"service":   "venue-ledger",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "venue-ledger",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":        "operational",
			"api_version":   r.config.APIVersion,
			"venue_tz":      r.config.Venue.Location().String(),
			"broker_driver": r.config.Broker.Driver,
			"timestamp":     time.Now(),
		})
	})
}

func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authRepo := auth.NewRepository(r.db.GetPostgreSQL())
	authService := auth.NewService(authRepo, r.config)
	authController := auth.NewController(authService)
	auth.NewRouter(authController, r.auth, r.requireAdmin).SetupRoutes(rg)
}

func (r *Router) setupEventRoutes(rg *gin.RouterGroup) {
	eventRepo := events.NewRepository(r.db.GetPostgreSQL())
	r.eventService = events.NewService(eventRepo)
	if redisClient := r.db.GetRedis(); redisClient != nil {
		r.eventService.SetCacheService(cache.NewService(redisClient))
	}

	events.SetupEventRoutes(rg, events.NewController(r.eventService), r.auth, r.requireAdmin)
}

func (r *Router) setupTicketRoutes(rg *gin.RouterGroup) {
	ticketRepo := tickets.NewRepository(r.db.GetPostgreSQL())
	ticketService := tickets.NewService(ticketRepo, r.eventService, r.publisher)

	tickets.SetupTicketRoutes(rg, tickets.NewController(ticketService), r.auth, r.requireStaff)
}

func (r *Router) setupTableRoutes(rg *gin.RouterGroup) {
	tableRepo := tables.NewRepository(r.db.GetPostgreSQL())
	tableService := tables.NewService(tableRepo, r.eventService, r.publisher,
		tables.WithLegacyTransitions(r.config.Venue.LegacyReservationTransitions),
		tables.WithLocation(r.config.Venue.Location()),
	)

	tables.SetupTableRoutes(rg, tables.NewController(tableService), r.auth, r.requireStaff, r.requireAdmin)
}

func (r *Router) setupSessionRoutes(rg *gin.RouterGroup) {
	db := r.db.GetPostgreSQL()
	sessionService := sessions.NewService(sessions.NewRepository(db), tables.NewRepository(db))

	sessions.SetupSessionRoutes(rg, sessions.NewController(sessionService), r.auth, r.requireStaff)
}

func (r *Router) setupFnbRoutes(rg *gin.RouterGroup) {
	fnbService := fnb.NewService(fnb.NewRepository(r.db.GetPostgreSQL()), r.config.Venue.Location())

	fnb.SetupFnbRoutes(rg, fnb.NewController(fnbService), r.auth, r.requireStaff)
}

func (r *Router) setupClosureRoutes(rg *gin.RouterGroup) {
	closureService := closures.NewService(r.db.GetPostgreSQL(), r.publisher, closures.Config{
		Location:    r.config.Venue.Location(),
		ClosureNote: r.config.Venue.ClosureNote,
	})

	closures.SetupClosureRoutes(rg, closures.NewController(closureService), r.auth, r.requireStaff, r.requireAdmin)
}
