package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	httpdelivery "github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/delivery/http"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/repository"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/infrastructure/bolt"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/infrastructure/config"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/infrastructure/postgres"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/infrastructure/qrgenerator"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/usecase/catalog"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/usecase/checkout"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/usecase/generateqr"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/usecase/ledger"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/usecase/order"
)

const (
	dbMaxConns        = 10
	dbMinConns        = 2
	dbMaxConnLifetime = 30 * time.Minute
	dbMaxConnIdleTime = 5 * time.Minute

	readHeaderTimeout     = 5 * time.Second
	gracefulShutdownDelay = 5 * time.Second
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	uow, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	catalogUC := catalog.NewUseCase(uow, time.Now)
	seeded, err := catalogUC.EnsureQRISPayload(ctx, cfg.QRISStaticPayload)
	if err != nil {
		return err
	}
	if seeded {
		logger.Info("qris payload seeded from environment")
	}

	handler := httpdelivery.NewHandler(
		checkout.NewUseCase(uow, time.Now),
		generateqr.NewUseCase(uow, qrgenerator.NewGenerator(cfg.QRSize), time.Now),
		order.NewUseCase(uow, time.Now),
		catalogUC,
		ledger.NewUseCase(uow, time.Now),
		logger,
	)
	router := httpdelivery.NewRouter(handler, httpdelivery.AdminCredentials{
		User:     cfg.AdminUser,
		Password: cfg.AdminPassword,
	})
	if cfg.AdminPassword == "" {
		logger.Warn("ADMIN_PASSWORD is empty, admin api disabled")
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageDriver)
		if serveErr := srv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("http serve failed", "error", serveErr)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownDelay)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config) (repository.UnitOfWork, func(), error) {
	if cfg.StorageDriver == config.DriverBolt {
		db, err := bolt.Open(cfg.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		return bolt.NewUnitOfWork(db), func() { _ = db.Close() }, nil
	}

	pool, err := initDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return postgres.NewUnitOfWork(pool), pool.Close, nil
}

func initDB(ctx context.Context, url string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, err
	}

	cfg.MaxConns = dbMaxConns
	cfg.MinConns = dbMinConns
	cfg.MaxConnLifetime = dbMaxConnLifetime
	cfg.MaxConnIdleTime = dbMaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}
