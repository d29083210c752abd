// =============================================================================
// OC Consolidator - Serve Command
// =============================================================================
//
// COMMAND USAGE:
//   consolidator serve
//
// Starts the HTTP API:
//   GET  /health, /ready, /metrics
//   POST /api/v1/imports                    - upload, consolidate and submit
//   POST /api/v1/imports/preview            - upload and consolidate only
//   POST /api/v1/imports/{token}/commit     - submit a stored preview
//   POST /api/v1/purchase-orders/upsert     - local order store (target db)
//   POST /api/v1/purchase-orders/batch-upsert
//   GET  /api/v1/purchase-orders/{orderNumber}
//
// The preview endpoints keep previews in Redis when redis.url is set.
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/oc-consolidator/api/handlers"
	"github.com/ginjaninja78/oc-consolidator/api/routes"
	"github.com/ginjaninja78/oc-consolidator/internal/importer"
	"github.com/ginjaninja78/oc-consolidator/internal/previewcache"
	"github.com/ginjaninja78/oc-consolidator/pkg/metrics"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, logg, err := loadRuntime("api")
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	importMetrics := metrics.NewImportMetrics(reg)

	handle, err := openSubmitter(ctx, cfg, logg)
	if err != nil {
		return err
	}
	defer handle.Close(context.Background(), logg)

	deps := routes.Dependencies{
		Config:   cfg,
		Logger:   logg,
		Pingers:  map[string]handlers.Pinger{},
		Gatherer: reg,
		Importer: importer.New(cfg,
			importer.WithSubmitter(handle.Submitter),
			importer.WithLogger(logg),
			importer.WithMetrics(importMetrics),
		),
	}
	if handle.Local != nil {
		deps.Orders = handle.Local
		deps.Pingers["db"] = handle.DB
	}

	if cfg.Redis.URL != "" {
		cache, err := previewcache.New(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		deps.Previews = cache
		deps.Pingers["redis"] = cache
	} else {
		logg.Warn(ctx, "redis.url not set; previews cannot be committed later")
	}

	server := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Server.Port),
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"addr":   server.Addr,
			"target": cfg.Store.Target,
		}), "api listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logg.Info(context.Background(), "shutting down api")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
