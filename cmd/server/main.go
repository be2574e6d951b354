package main // Entry point package

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/mverhoeven/theater-booking/internal/config"
	"github.com/mverhoeven/theater-booking/internal/database"
	"github.com/mverhoeven/theater-booking/internal/handler"
	"github.com/mverhoeven/theater-booking/internal/middleware"
	"github.com/mverhoeven/theater-booking/internal/pricing"
	"github.com/mverhoeven/theater-booking/internal/queue"
	"github.com/mverhoeven/theater-booking/internal/repository"
	"github.com/mverhoeven/theater-booking/internal/router"
	"github.com/mverhoeven/theater-booking/pkg/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	logging.Setup()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Repositories.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	shows := repository.NewShowRepo(db)
	events := repository.NewEventRepo(db)
	catalog := repository.NewCatalogRepo(db)
	promos := repository.NewPromoRepo(db)
	vouchers := repository.NewVoucherRepo(db)
	reservations := repository.NewReservationRepo(db)

	// Pricing engine over the repository lookups.
	calc := pricing.NewCalculator(catalog, vouchers, promos)
	recalc := pricing.NewRecalculator(events, shows, calc)

	// Handlers.
	auth := handler.NewAuthHandler(cfg, users, tokens)
	pub := &handler.PublicHandler{ShowRepo: shows, EventRepo: events, CatalogRepo: catalog}
	quote := handler.NewQuoteHandler(events, shows, calc)
	reservation := handler.NewReservationHandler(reservations, events, shows, vouchers, calc, recalc)
	showAdmin := handler.NewShowAdminHandler(shows, events)
	promoAdmin := handler.NewPromoHandler(promos)
	voucherAdmin := handler.NewVoucherHandler(vouchers)
	catalogAdmin := handler.NewCatalogHandler(catalog)

	e := echo.New()
	e.HideBanner = true

	// Redis-backed rate limiting and response caching degrade to no-ops
	// when Redis is unreachable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		slog.Warn("redis unavailable, rate limiting and caching disabled")
	}
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, auth, cfg.JWTSecret)
	router.RegisterPublic(e, pub, quote)
	router.RegisterStaff(e, reservation, cfg.JWTSecret)
	router.RegisterAdmin(e, showAdmin, promoAdmin, voucherAdmin, catalogAdmin, cfg.JWTSecret)

	// Background consumer appending confirmed reservations to the audit log.
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			slog.Error("reservation consumer stopped", "error", err)
		}
	}()

	addr := ":" + cfg.Port
	slog.Info("listening", "addr", addr, "env", cfg.Env)
	if err := e.Start(addr); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
