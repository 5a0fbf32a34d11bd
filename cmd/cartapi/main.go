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

	"github.com/nikolayk812/cartapi/internal/config"
	"github.com/nikolayk812/cartapi/internal/handler"
	"github.com/nikolayk812/cartapi/internal/logger"
	"github.com/nikolayk812/cartapi/internal/port"
	"github.com/nikolayk812/cartapi/internal/repository"
	"github.com/nikolayk812/cartapi/internal/service"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service:   "cartapi",
		Env:       cfg.AppEnv,
		Level:     cfg.LogLevel,
		AddSource: true,
	})

	if err := run(cfg, log); err != nil {
		log.Error("cartapi stopped", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("cfg.Validate: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("openStore: %w", err)
	}
	defer closeStore()

	svc, err := service.NewCart(repo, cfg.CartCurrency(), log)
	if err != nil {
		return fmt.Errorf("service.NewCart: %w", err)
	}

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler.NewCartHandler(svc, repo, log).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server starting", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server.ListenAndServe: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown requested")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server.Shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("bye")
	return nil
}

func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (port.CartRepository, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		sqlDB, err := repository.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("repository.OpenSQLite: %w", err)
		}
		closeFn := func() {
			if err := sqlDB.Close(); err != nil {
				log.Error("sqlite close", slog.Any("err", err))
			}
		}

		repo, err := repository.NewSQLiteCart(sqlDB)
		if err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("repository.NewSQLiteCart: %w", err)
		}

		log.Info("store ready", slog.String("driver", cfg.StoreDriver), slog.String("path", cfg.SQLitePath))
		return repo, closeFn, nil

	default:
		pool, err := repository.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("repository.OpenPostgres: %w", err)
		}

		if cfg.Migrate {
			if err := repository.MigratePostgres(ctx, pool); err != nil {
				pool.Close()
				return nil, nil, fmt.Errorf("repository.MigratePostgres: %w", err)
			}
		}

		repo, err := repository.NewCart(pool)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("repository.NewCart: %w", err)
		}

		log.Info("store ready", slog.String("driver", cfg.StoreDriver))
		return repo, pool.Close, nil
	}
}
