package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/jparkin/trainer-booking/internal/config"
	"github.com/jparkin/trainer-booking/internal/database"
	"github.com/jparkin/trainer-booking/internal/handler"
	"github.com/jparkin/trainer-booking/internal/middleware"
	"github.com/jparkin/trainer-booking/internal/queue"
	"github.com/jparkin/trainer-booking/internal/repository"
	"github.com/jparkin/trainer-booking/internal/router"
)

func main() {
	seed := flag.Bool("seed", false, "populate an empty database with demo data")
	seedRng := flag.Int64("seed-rng", 1, "rng seed for demo data")
	flag.Parse()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	if *seed {
		ran, err := database.Seed(ctx, db, *seedRng)
		if err != nil {
			log.Fatalf("seed: %v", err)
		}
		if ran {
			log.Printf("seeded demo data (rng=%d)", *seedRng)
		} else {
			log.Printf("seed skipped: database not empty")
		}
	}

	// nil when Redis is unreachable; cache and limiter degrade to no-ops.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; response cache and rate limiting disabled")
	}

	clients := repository.NewClientRepo(db)
	bookings := repository.NewBookingRepo(db)
	blocks := repository.NewBlockRepo(db)

	clientHandler := &handler.ClientHandler{Clients: clients, Bookings: bookings}
	bookingHandler := &handler.BookingHandler{
		Bookings:           bookings,
		Blocks:             blocks,
		Clients:            clients,
		DefaultDurationMin: cfg.DefaultDuration,
	}
	blockHandler := &handler.BlockHandler{Blocks: blocks}
	calendarHandler := &handler.CalendarHandler{
		Bookings:        bookings,
		Blocks:          blocks,
		WorkDayStartMin: cfg.WorkDayStartMin,
		WorkDayEndMin:   cfg.WorkDayEndMin,
	}
	feedHandler := &handler.FeedHandler{Bookings: bookings}
	transferHandler := &handler.TransferHandler{Bookings: bookings, Clients: clients}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterClients(e, clientHandler)
	router.RegisterBookings(e, bookingHandler)
	router.RegisterBlocks(e, blockHandler)
	router.RegisterCalendar(e, calendarHandler, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterFeed(e, feedHandler)
	router.RegisterTransfer(e, transferHandler)

	// Notification consumer runs for the life of the process and
	// reconnects on broker failures.
	go func() {
		if err := queue.StartNotifyConsumer(); err != nil {
			log.Printf("notify consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
