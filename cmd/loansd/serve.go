package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AntonStoeckl/library-loans-go/accessgate"
	"github.com/AntonStoeckl/library-loans-go/internal/httpapi"
	"github.com/AntonStoeckl/library-loans-go/loanengine"
	"github.com/AntonStoeckl/library-loans-go/loanengine/shared/shell/config"
	"github.com/AntonStoeckl/library-loans-go/recordstore"
	"github.com/AntonStoeckl/library-loans-go/recordstore/oteladapters"
	"github.com/AntonStoeckl/library-loans-go/recordstore/sqlengine"
)

const instrumentationName = "github.com/AntonStoeckl/library-loans-go"

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := prepareCommand(cmd)
			if err != nil {
				return err
			}

			cfg, err := bindServeConfig(env.viper)
			if err != nil {
				return err
			}

			return serve(cmd.Context(), env, cfg)
		},
	}

	addServeFlags(cmd.Flags())

	return cmd
}

func serve(ctx context.Context, env commandEnv, cfg serveConfig) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	providers, err := config.NewTelemetryProviders(ctx, config.TelemetrySettings{
		ServiceName:          "loansd",
		ServiceVersion:       version,
		OTLPEndpoint:         cfg.OTLPEndpoint,
		PrometheusRegisterer: registry,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := providers.Shutdown(shutdownCtx); shutdownErr != nil {
			env.logger.Warn("telemetry shutdown failed", "error", shutdownErr)
		}
	}()

	metrics := oteladapters.NewMetricsCollector(providers.MeterProvider.Meter(instrumentationName))
	tracing := oteladapters.NewTracingCollector(providers.TracerProvider.Tracer(instrumentationName))
	contextualLogger := newContextualLogger(env, cfg)

	opened, err := openStore(ctx, env.store, env.logger,
		sqlengine.WithContextualLogger(contextualLogger),
		sqlengine.WithMetrics(metrics),
		sqlengine.WithTracing(tracing),
	)
	if err != nil {
		return err
	}
	defer opened.close()

	if err = opened.migrate(ctx); err != nil {
		return err
	}

	engine, err := loanengine.New(opened.store,
		loanengine.WithLogger(env.logger),
		loanengine.WithContextualLogger(contextualLogger),
		loanengine.WithMetrics(metrics),
		loanengine.WithTracing(tracing),
	)
	if err != nil {
		return err
	}

	gate, err := accessgate.NewGate(opened.store, []byte(cfg.TokenSecret), accessgate.WithTokenTTL(cfg.TokenTTL))
	if err != nil {
		return err
	}

	server, err := httpapi.NewServer(engine, gate,
		httpapi.WithLogger(env.logger),
		httpapi.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
		httpapi.WithShutdownTimeout(cfg.ShutdownTimeout),
		httpapi.WithHTTPTelemetry(),
	)
	if err != nil {
		return err
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return server.ListenAndServe(groupCtx, cfg.Listen)
	})

	if cfg.MetricsListen != "" {
		group.Go(func() error {
			return serveMetrics(groupCtx, env, cfg, registry)
		})
	}

	return group.Wait()
}

// newContextualLogger sends engine and store logs to the OpenTelemetry log bridge as well when OTLP is configured.
func newContextualLogger(env commandEnv, cfg serveConfig) recordstore.ContextualLogger {
	if cfg.OTLPEndpoint == "" {
		return oteladapters.NewSlogBridgeLoggerWithHandler(env.logger.Handler())
	}

	return oteladapters.NewSlogBridgeLoggerWithFanout(instrumentationName, env.logger.Handler())
}

func serveMetrics(ctx context.Context, env commandEnv, cfg serveConfig, registry *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	metricsServer := &http.Server{
		Addr:              cfg.MetricsListen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			env.logger.Warn("metrics server shutdown failed", "error", err)
		}
	}()

	env.logger.Info("serving metrics", "address", cfg.MetricsListen)

	err := metricsServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}
