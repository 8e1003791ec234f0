package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"opensms/internal/awsutil"
	"opensms/internal/config"
	"opensms/internal/consumers"
	"opensms/internal/eventsocket"
	"opensms/internal/httpserver"
	"opensms/internal/listeners"
	"opensms/internal/logging"
	"opensms/internal/modifiers"
	"opensms/internal/observability"
	"opensms/internal/pipeline"
	"opensms/internal/providers/bandwidth"
	"opensms/internal/store/pg"
)

func main() {
	cfg := config.LoadIngest()
	logging.Init("ingest", cfg.LogFormat, cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := pg.NewPool(ctx, cfg.DBDSN, pg.PoolOptions{
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: time.Duration(cfg.DBMaxConnLifetime) * time.Second,
	})
	if err != nil {
		slog.Error("ingest db connect failed", "err", err)
		os.Exit(1)
	}
	store := pg.New(db)

	observability.Register(prometheus.DefaultRegisterer)

	chain := []pipeline.Consumer{consumers.HTTPBody{}}
	if cfg.SQSQueueURL != "" {
		sqsClient, err := awsutil.NewSQSClient(ctx, cfg.AWSRegion, cfg.LocalstackEndpoint)
		if err != nil {
			slog.Error("ingest sqs client failed", "err", err)
			os.Exit(1)
		}
		chain = append(chain, &consumers.Queue{SQS: sqsClient, QueueURL: cfg.SQSQueueURL})
	}
	if cfg.PayloadFile != "" {
		chain = append(chain, consumers.File{Path: cfg.PayloadFile})
	}

	media := bandwidth.NewMediaClient(
		time.Duration(cfg.MediaFetchTimeout)*time.Second,
		cfg.MediaRPS,
		cfg.MediaBurst,
	)
	adapter := bandwidth.New(store, media)

	switchAddr := net.JoinHostPort(cfg.SwitchHost, cfg.SwitchPort)
	switchTimeout := time.Duration(cfg.SwitchTimeout) * time.Second

	// Presence enrichment degrades gracefully when the switch is down at
	// startup; the storage and delivery listeners dial on demand.
	var commander modifiers.SwitchCommander
	if esc, err := eventsocket.Dial(switchAddr, cfg.SwitchPassword, switchTimeout); err != nil {
		slog.Warn("event socket unavailable, presence enrichment disabled", "err", err, "addr", switchAddr)
	} else {
		commander = esc
		defer esc.Close()
	}

	pipe := &pipeline.Pipeline{
		Consumers: pipeline.NewConsumerChain(chain...),
		Selector:  &pipeline.Selector{Adapters: []pipeline.Adapter{adapter}},
		Modifiers: pipeline.NewModifierChain(
			modifiers.RemovePlus{},
			modifiers.URLDecode{},
			modifiers.Destinations{Directory: store},
			modifiers.Extensions{Directory: store},
			modifiers.Presence{Switch: commander},
		),
		Listeners: pipeline.NewListenerFanout(
			listeners.NewStorage(store),
			&listeners.Switch{Dial: func(context.Context) (listeners.EventSender, error) {
				return eventsocket.Dial(switchAddr, cfg.SwitchPassword, switchTimeout)
			}},
		),
	}

	s := httpserver.New()
	webhook := &httpserver.Webhook{Pipeline: pipe, Settings: store}
	webhook.Register(s.Mux)
	s.Mux.HandleFunc("/healthz", httpserver.Healthz())
	s.Mux.HandleFunc("/readyz", httpserver.Readyz(2*time.Second, func(ctx context.Context) error {
		return db.Ping(ctx)
	}))

	handler := httpserver.Logging(httpserver.Metrics(observability.HTTPRequests)(s.Mux))
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		slog.Info("ingest shutdown", "signal", sig.String())
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("ingest listening", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("ingest server failed", "err", err)
		os.Exit(1)
	}
	db.Close()
}
