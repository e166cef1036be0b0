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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	apphttp "github.com/amakane-hakari/sortkv/internal/api/http"
	"github.com/amakane-hakari/sortkv/internal/config"
	"github.com/amakane-hakari/sortkv/internal/eviction"
	ilog "github.com/amakane-hakari/sortkv/internal/log"
	"github.com/amakane-hakari/sortkv/internal/metrics"
	"github.com/amakane-hakari/sortkv/internal/store"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := ilog.New(cfg.LogLevel)
	if err := run(cfg, logger); err != nil {
		logger.Error("server.exit", "err", err)
		os.Exit(1)
	}
}

func orderFor(name string) (eviction.CompareFunc[string, string], error) {
	switch name {
	case config.OrderKey:
		return eviction.KeyOrder[string, string](), nil
	case config.OrderKeyDesc:
		return eviction.Reverse(eviction.KeyOrder[string, string]()), nil
	case config.OrderValue:
		return eviction.ValueOrder[string, string](), nil
	case config.OrderFIFO:
		return eviction.Insertion[string, string](), nil
	default:
		return nil, fmt.Errorf("unknown eviction order %q", name)
	}
}

func run(cfg *config.Config, logger *ilog.Slog) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	mx, err := metrics.NewProm(cfg.MetricsNamespace, reg)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	order, err := orderFor(cfg.EvictionOrder)
	if err != nil {
		return err
	}
	policy, err := eviction.NewFunc(cfg.MaxSize, order,
		eviction.WithLogger(logger.With("component", "eviction")),
		eviction.WithMetrics(mx),
	)
	if err != nil {
		return fmt.Errorf("eviction policy: %w", err)
	}

	opts := []store.Option{
		store.WithShards(cfg.Shards),
		store.WithCleanupInterval(cfg.CleanupInterval),
		store.WithLogger(logger.With("component", "store")),
		store.WithMetrics(mx),
	}
	if cfg.ShardPadding {
		opts = append(opts, store.WithShardPadding())
	}
	st := store.New[string, string](opts...).WithPolicy(policy)
	defer st.Close()

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: apphttp.NewRouter(apphttp.Deps{
			Store:   st,
			Admin:   policy,
			Logger:  logger,
			Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server.start",
			"addr", cfg.HTTPAddr,
			"max_size", cfg.MaxSize,
			"eviction_order", cfg.EvictionOrder,
			"shards", cfg.Shards,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("server.shutdown", "timeout", cfg.ShutdownTimeout.String())
		apphttp.SetDraining(true)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server.stopped")
	return nil
}
