package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"opensms/internal/config"
	"opensms/internal/logging"
	"opensms/internal/pipeline"
	"opensms/internal/providers/bandwidth"
	"opensms/internal/store/pg"
)

// bootstrap seeds each registered adapter's access controls and default
// settings. Run once per deployment, or again after adding an adapter;
// every write is idempotent.
func main() {
	cfg := config.LoadBootstrap()
	logging.Init("bootstrap", cfg.LogFormat, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := pg.NewPool(ctx, cfg.DBDSN, pg.PoolOptions{})
	if err != nil {
		slog.Error("bootstrap db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	store := pg.New(db)

	adapters := []pipeline.Adapter{
		bandwidth.New(store, nil),
	}

	failed := false
	for _, adapter := range adapters {
		if err := adapter.AppDefaults(ctx, store); err != nil {
			slog.Error("app defaults failed", "adapter", adapter.Name(), "err", err)
			failed = true
			continue
		}
		slog.Info("app defaults applied", "adapter", adapter.Name())
	}
	if failed {
		os.Exit(1)
	}
}
