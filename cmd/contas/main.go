package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"contas/internal/amqp"
	"contas/internal/backend"
	"contas/internal/cache"
	"contas/internal/cli"
	apphttp "contas/internal/http"
	applog "contas/internal/log"
	"contas/internal/metrics"
	"contas/internal/services"
)

const monthCacheSize = 256

func main() {
	cfg, logger := cli.LoadAndValidateConfig(applog.ComponentApp)

	m := metrics.New()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger, m).
		CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	monthCache := cache.NewLRUCache[services.MonthView](monthCacheSize, cfg.CacheTTL)
	cacheManager := cache.NewManager()
	cacheManager.Register(monthCache)
	cacheManager.StartCleanup(time.Minute)

	svc := services.NewObligationService(res.Store, res.Publisher(),
		services.WithMetrics(m),
		services.WithMonthCache(monthCache),
		services.WithLocation(cfg.Location()))

	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		Logger:  logger,
		Metrics: m,
		Locale:  cfg.Locale,
		Ready:   brokerReady(res.AMQP),
	})

	ctx, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cacheManager.Stop()
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	logger.Info("Starting contas server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"timezone", cfg.Timezone,
		"amqp", res.AMQP != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

// brokerReady fails readiness while the publish circuit breaker is open.
// Without a broker there is nothing to check.
func brokerReady(client *amqp.Client) func(context.Context) error {
	if client == nil {
		return nil
	}
	return func(context.Context) error {
		if state := client.State(); state == "open" {
			return fmt.Errorf("amqp circuit breaker is %s", state)
		}
		return nil
	}
}
