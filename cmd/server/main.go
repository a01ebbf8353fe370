package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/table-reservation/internal/config"
	"github.com/iliyamo/table-reservation/internal/database"
	"github.com/iliyamo/table-reservation/internal/handler"
	"github.com/iliyamo/table-reservation/internal/logger"
	"github.com/iliyamo/table-reservation/internal/metrics"
	"github.com/iliyamo/table-reservation/internal/middleware"
	"github.com/iliyamo/table-reservation/internal/queue"
	"github.com/iliyamo/table-reservation/internal/repository"
	"github.com/iliyamo/table-reservation/internal/router"
	"github.com/iliyamo/table-reservation/internal/service"
)

func main() {
	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logg := logger.New(logger.Options{
		ServiceName: "table-reservation",
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
	})
	ctx := logg.WithField(context.Background(), "env", cfg.Env)

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, err).Msg("server stopped")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logg *logger.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cacheCfg, err := config.LoadCacheConfig()
	if err != nil {
		return err
	}
	rateCfg, err := config.LoadRateLimitConfig()
	if err != nil {
		return err
	}
	redisCfg, err := config.LoadRedisConfig()
	if err != nil {
		return err
	}

	db, err := database.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db, "up"); err != nil {
			return err
		}
		logg.Info(ctx).Msg("migrations applied")
	}

	// Redis is optional: without it caching and rate limiting are off and
	// the allocation lock only covers this process.
	rdb := config.NewRedisClient(redisCfg)
	var locker service.Locker = service.NewLocalLocker()
	if rdb != nil {
		defer rdb.Close()
		rl, err := service.NewRedisLocker(rdb, cfg.LockTTL)
		if err != nil {
			return err
		}
		locker = rl
	} else {
		logg.Warn(ctx).Str("addr", redisCfg.Address()).Msg("redis unavailable; using in-process allocation lock")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	tables := repository.NewTableRepo(db)
	reservations := repository.NewReservationRepo(db)
	users := repository.NewUserRepo(db)
	meals := repository.NewMealRepo(db)

	availability := service.NewAvailability(tables, reservations, cfg.TotalTables, logg)
	allocator := service.NewAllocator(tables, reservations, availability, logg,
		service.WithLocker(locker),
		service.WithMetrics(m),
	)
	week := service.NewWeekReporter(availability)

	var events queue.Publisher = queue.NopPublisher{}
	if cfg.EventsEnabled {
		events = queue.NewAMQPPublisher(cfg.RabbitURL, logg)
		consumer := queue.NewConsumer(cfg.RabbitURL, queue.DefaultAuditLog, logg)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logg.Error(ctx, err).Msg("audit consumer stopped")
			}
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(logg))

	router.RegisterRoutes(e, db, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users), cfg.JWTSecret, logg)
	router.RegisterTables(e, handler.NewTableHandler(tables))
	router.RegisterMenu(e, handler.NewMealHandler(meals, logg), cfg.JWTSecret, logg)
	router.RegisterReservations(e,
		handler.NewReservationHandler(allocator, week, reservations, events, middleware.NewCachePurger(cacheCfg, rdb), logg),
		cfg.JWTSecret,
		middleware.NewRedisCache(cacheCfg, rdb),
		middleware.NewTokenBucket(rateCfg, rdb, logg),
		logg,
	)

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx).Str("addr", addr).Int("total_tables", cfg.TotalTables).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logg.Info(ctx).Msg("shutting down")
	return e.Shutdown(shutdownCtx)
}
