package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/trungvq/bida-pos/internal/config"
	"github.com/trungvq/bida-pos/internal/database"
	"github.com/trungvq/bida-pos/internal/handler"
	"github.com/trungvq/bida-pos/internal/queue"
	"github.com/trungvq/bida-pos/internal/repository"
	"github.com/trungvq/bida-pos/internal/router"
	"github.com/trungvq/bida-pos/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: nil disables the response cache and limiter.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; cache and rate limiting disabled")
	}
	cacheCfg := config.LoadCacheConfig()

	tables := repository.NewTableRepo(db)
	items := repository.NewItemRepo(db)
	bookings := repository.NewBookingRepo(db)
	orders := repository.NewOrderRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	h := router.Handlers{
		Auth:     handler.NewAuthHandler(cfg, users, tokens),
		Tables:   handler.NewTableHandler(service.NewTableService(tables, bookings), rdb, cacheCfg.Prefix),
		Items:    handler.NewItemHandler(service.NewItemService(items), rdb, cacheCfg.Prefix),
		Bookings: handler.NewBookingHandler(service.NewBookingService(tables, bookings, orders), rdb, cacheCfg.Prefix),
		Orders:   handler.NewOrderHandler(service.NewOrderService(items, orders, bookings), rdb, cacheCfg.Prefix),
	}

	// Receipt consumer runs for the life of the process, reconnecting
	// on broker failures.
	go func() {
		if err := queue.StartReceiptConsumer(); err != nil {
			log.Printf("receipt consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.Register(e, h, cfg, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
