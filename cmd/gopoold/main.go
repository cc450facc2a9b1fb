// gopoold bridges one ConnectMyPool pool onto MQTT and serves health,
// metrics, and diagnostics over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/joshp123/gopool/internal/bridge"
	"github.com/joshp123/gopool/internal/config"
	"github.com/joshp123/gopool/internal/connectmypool"
	"github.com/joshp123/gopool/internal/coordinator"
	"github.com/joshp123/gopool/internal/logging"
	"github.com/joshp123/gopool/internal/pool"
	"github.com/joshp123/gopool/internal/server"
)

// startupRetryDelay paces reconnect attempts while the cloud or the
// controller is unreachable at boot.
const startupRetryDelay = 30 * time.Second

func main() {
	configPath := flag.String("config", envOrDefault("GOPOOL_CONFIG", "/etc/gopool/config.yaml"), "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// No logger yet.
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		os.Stderr.WriteString("logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("daemon exited", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	poolID := connectmypool.StableID(cfg.PoolAPICode)
	log.Info("starting gopoold", zap.String("pool_id", poolID), zap.String("base_url", cfg.BaseURL))

	client := connectmypool.NewClient(cfg.BaseURL,
		connectmypool.WithPollInterval(cfg.ScanIntervalDuration()))

	poolCfg, err := fetchConfig(ctx, client, cfg, log)
	if err != nil {
		return err
	}
	log.Info("pool config loaded",
		zap.Int("heaters", len(poolCfg.Heaters)),
		zap.Int("channels", len(poolCfg.Channels)),
		zap.Int("valves", len(poolCfg.Valves)),
		zap.Int("lighting_zones", len(poolCfg.LightingZones)),
		zap.Int("solar_systems", len(poolCfg.SolarSystems)),
		zap.Int("favourites", len(poolCfg.Favourites)))

	coor := coordinator.New(client, coordinator.Options{
		PoolAPICode:      cfg.PoolAPICode,
		TemperatureScale: cfg.TemperatureScale,
		Interval:         cfg.ScanIntervalDuration(),
		SettleDelay:      cfg.SettleDelay(),
		Logger:           log.Named("coordinator"),
	})

	ctrl := pool.NewController(client, poolCfg, pool.Options{
		PoolAPICode:      cfg.PoolAPICode,
		TemperatureScale: cfg.TemperatureScale,
		WaitForExecution: cfg.Wait(),
		SettleDelay:      cfg.SettleDelay(),
		CycleAttempts:    cfg.CycleAttempts,
		Logger:           log.Named("pool"),
		RequestRefresh:   coor.RequestRefresh,
	})

	if cfg.MQTT.Host != "" {
		br, err := bridge.New(cfg.MQTT, poolID, ctrl, log.Named("bridge"))
		if err != nil {
			return err
		}
		defer br.Close()

		coor.Subscribe(br.PublishStatus)
		coor.SubscribeHealth(br.PublishHealth)
		if err := br.Start(); err != nil {
			return err
		}
	} else {
		log.Info("mqtt host not configured, bridge disabled")
	}

	httpServer := server.New(cfg, coor, poolCfg, log.Named("http"))
	httpErr := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			httpErr <- err
		}
	}()

	go coor.Run(ctx)

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-httpErr:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// fetchConfig loads the pool topology at boot. Bad credentials are fatal;
// connectivity problems retry until the context is cancelled.
func fetchConfig(ctx context.Context, client *connectmypool.Client, cfg *config.Config, log *zap.Logger) (*connectmypool.Config, error) {
	for {
		poolCfg, err := client.GetConfig(ctx, cfg.PoolAPICode, false)
		if err == nil {
			return poolCfg, nil
		}

		var authErr *connectmypool.AuthError
		if errors.As(err, &authErr) {
			return nil, err
		}

		log.Warn("pool config fetch failed, retrying",
			zap.Duration("retry_in", startupRetryDelay), zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(startupRetryDelay):
		}
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
