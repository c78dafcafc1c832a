package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"companion_mock/internal/config"
	"companion_mock/internal/fixtures"
	"companion_mock/internal/httpapi"
	"companion_mock/internal/logbus"
	"companion_mock/internal/logger"
	"companion_mock/internal/store/sqlite"
)

func main() {
	configPath := flag.String("config", "./config.yaml", "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl := logger.New(cfg.Log)
	defer func() { _ = zl.Sync() }()

	bus := logbus.New(cfg.Log.BusSize, zl)
	defer bus.Close()

	if err := run(cfg, zl, bus); err != nil {
		zl.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg config.Config, zl *zap.Logger, bus *logbus.Bus) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.Open(ctx, cfg.Storage.SQLitePath)
	if err != nil {
		return err
	}
	defer store.Close()

	set, err := fixtures.Load(cfg.Fixtures.Dir)
	if err != nil {
		return err
	}
	if err := fixtures.Seed(ctx, store, set); err != nil {
		return err
	}

	api := httpapi.New(httpapi.Options{
		Cfg:   cfg,
		Bus:   bus,
		Log:   zl,
		Store: store,
	})
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		bus.Log("info", "mock server starting", map[string]any{
			"addr":   cfg.Server.Addr,
			"sqlite": cfg.Storage.SQLitePath,
			"legacy": cfg.Legacy.BaseURL,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		bus.Log("info", "shutdown signal received", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	bus.Log("info", "server stopped", nil)
	return err
}
