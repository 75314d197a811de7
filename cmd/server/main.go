package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/roomhub/roomhub/internal/config"     // Internal config loader
	"github.com/roomhub/roomhub/internal/database"   // MySQL connection helper
	"github.com/roomhub/roomhub/internal/handler"    // HTTP handlers
	"github.com/roomhub/roomhub/internal/middleware" // rate limit + cache middleware
	"github.com/roomhub/roomhub/internal/queue"      // booking.decided consumer
	"github.com/roomhub/roomhub/internal/repository" // DB repositories
	"github.com/roomhub/roomhub/internal/router"     // route registration
	"github.com/roomhub/roomhub/internal/scheduling" // conflict + availability core
)

func main() {
	// Load .env when present; real deployments set the environment
	// directly and the file is absent.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories share the single pooled connection.
	bookings := repository.NewBookingRepo(db)
	buildings := repository.NewBuildingRepo(db)
	floors := repository.NewFloorRepo(db)
	rooms := repository.NewRoomRepo(db)
	users := repository.NewUserRepo(db)

	// The scheduling core owns booking rules; the configured location
	// only shapes calendar-day boundaries for availability queries.
	sched := scheduling.NewService(bookings, cfg.Location)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()

	// Redis-backed token bucket and response cache.  Both degrade to
	// pass-through when disabled or when Redis is unreachable.
	rdb := config.NewRedisClient()
	if rlCfg := config.LoadRateLimitConfig(); rlCfg.Enabled {
		e.Use(middleware.NewTokenBucket(rlCfg, rdb))
	}
	if cCfg := config.LoadCacheConfig(); cCfg.Enabled {
		e.Use(middleware.NewRedisCache(cCfg, rdb))
	}

	// Background consumer that appends booking decisions to the audit
	// log.  It reconnects on its own; a broker outage never blocks the
	// HTTP server.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer stopped: %v", err)
		}
	}()

	auth := handler.NewAuthHandler(cfg, users)
	booking := handler.NewBookingHandler(sched, bookings)
	building := handler.NewBuildingHandler(buildings)
	floor := handler.NewFloorHandler(floors)
	room := handler.NewRoomHandler(rooms)
	user := handler.NewUserHandler(cfg, users)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, auth, cfg.JWTSecret)
	router.RegisterPublic(e, building, floor, room, booking)
	router.RegisterBooking(e, booking, cfg.JWTSecret)
	router.RegisterAdmin(e, booking, building, floor, room, user, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
