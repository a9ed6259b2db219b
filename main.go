package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	auction "educoin-engine/internal/auctionService"
	"educoin-engine/internal/config"
	"educoin-engine/internal/jobs"
	"educoin-engine/internal/repository"
	"educoin-engine/internal/repository/postgres"
	"educoin-engine/internal/server"
	wallet "educoin-engine/internal/walletLedger"
	"educoin-engine/utils"
)

func main() {
	if err := run(); err != nil {
		utils.Error("engine terminated", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	utils.SetLogLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, cleanup, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	auctionSvc := auction.NewAuctionService(store)
	walletSvc := wallet.NewWalletService(store)

	sweeper := jobs.NewSweeper(auctionSvc)
	if err := sweeper.Start(cfg.SweepSchedule); err != nil {
		return err
	}
	defer sweeper.Stop()

	router := server.SetupRouter(auctionSvc, walletSvc)
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		utils.Info("starting auction engine", map[string]any{
			"addr":    cfg.Addr,
			"storage": cfg.StorageDriver,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		utils.Info("shutting down", nil)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// buildStore selects the storage driver from configuration
func buildStore(ctx context.Context, cfg *config.Config) (repository.Store, func(), error) {
	switch cfg.StorageDriver {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.PGDSN)
		if err != nil {
			return nil, nil, err
		}
		store := postgres.NewPostgres(pool, cfg.MinBidIncrement)
		if err := store.EnsureSchema(ctx, cfg.ActivePeriod); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store, pool.Close, nil
	default:
		return repository.NewMemoryRepo(cfg.ActivePeriod, cfg.MinBidIncrement), func() {}, nil
	}
}
