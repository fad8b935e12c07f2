// Package main provides the entry point for idkey-stress.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"github.com/surgura/id-key-collections/internal/churn"
	"github.com/surgura/id-key-collections/internal/infra/buildinfo"
	"github.com/surgura/id-key-collections/internal/infra/confloader"
	"github.com/surgura/id-key-collections/internal/infra/shutdown"
	"github.com/surgura/id-key-collections/internal/stress/config"
	"github.com/surgura/id-key-collections/internal/telemetry/logger"
	"github.com/surgura/id-key-collections/pkg/idmap"
)

func main() {
	app := App()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "idkey-stress",
		Usage:   "Churn workload driver for identity-keyed stores",
		Version: buildinfo.String(),
		Commands: []*cli.Command{
			runCommand(),
		},
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the churn workload",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				EnvVars: []string{"IDKEY_CONFIG"},
			},
			&cli.IntFlag{
				Name:  "objects",
				Usage: "Steady-state number of live objects",
			},
			&cli.Float64Flag{
				Name:  "churn-rate",
				Usage: "Object replacements per second",
			},
			&cli.DurationFlag{
				Name:  "duration",
				Usage: "Run duration (0 runs until SIGINT/SIGTERM)",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "Prometheus endpoint listen address",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error",
			},
		},
		Action: runAction,
	}
}

func runAction(c *cli.Context) error {
	cfg, loader, err := loadConfig(c)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	log.Info("starting idkey-stress",
		"version", buildinfo.Version,
		"commit", buildinfo.Commit,
		"objects", cfg.Workload.Objects,
		"churn_rate", cfg.Workload.ChurnRate,
	)

	engine, err := churn.New(churn.Config{
		Objects:    cfg.Workload.Objects,
		Rate:       cfg.Workload.ChurnRate,
		GCInterval: cfg.Workload.GCInterval,
		Logger:     log,
	})
	if err != nil {
		return fmt.Errorf("init workload: %w", err)
	}

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()
	if cfg.Workload.Duration > 0 {
		ctx, cancel = context.WithTimeout(ctx, cfg.Workload.Duration)
		defer cancel()
	}

	// SIGHUP re-applies the configured log level.
	reload := shutdown.NewReloadHandler()
	reload.OnReload(func() {
		logger.SetLevel(cfg.Log.Level)
		log.Info("log level re-applied", "level", cfg.Log.Level)
	})
	reload.Start()
	defer reload.Stop()

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsServer, err = startMetrics(cfg, engine, log)
		if err != nil {
			return fmt.Errorf("init metrics: %w", err)
		}
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				log.Error("metrics server shutdown", "error", err)
			}
		}()
	}

	if path := c.String("config"); path != "" {
		watcher, err := watchConfig(path, loader, engine, log)
		if err != nil {
			log.Warn("config watch unavailable", "error", err)
		} else {
			defer watcher.Stop()
		}
	}

	res, err := engine.Run(logger.WithRunID(ctx, engine.RunID()))
	if err != nil {
		return fmt.Errorf("workload: %w", err)
	}

	printResult(res)
	if !res.Settled {
		return errors.New("store did not settle to the configured population")
	}
	return nil
}

// loadConfig layers defaults, file, environment, and CLI flags.
func loadConfig(c *cli.Context) (*config.Config, *confloader.Loader, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if path := c.String("config"); path != "" {
		opts = append(opts, confloader.WithConfigFile(path))
	}
	loader := confloader.NewLoader(opts...)

	if err := loader.Load(cfg); err != nil {
		return nil, nil, err
	}

	// CLI flags override everything.
	overrides := map[string]any{}
	if c.IsSet("objects") {
		overrides["workload.objects"] = c.Int("objects")
	}
	if c.IsSet("churn-rate") {
		overrides["workload.churn_rate"] = c.Float64("churn-rate")
	}
	if c.IsSet("duration") {
		overrides["workload.duration"] = c.Duration("duration")
	}
	if c.IsSet("metrics-addr") {
		overrides["metrics.addr"] = c.String("metrics-addr")
	}
	if c.IsSet("log-level") {
		overrides["log.level"] = c.String("log-level")
	}
	if len(overrides) > 0 {
		if err := loader.LoadMap(overrides); err != nil {
			return nil, nil, err
		}
		if err := loader.Unmarshal(cfg); err != nil {
			return nil, nil, err
		}
	}

	if err := config.Verify(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, loader, nil
}

// initLogger initializes the structured logger and sets it as default.
func initLogger(cfg *config.Config) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	return log, nil
}

// startMetrics registers the store collector and serves /metrics.
func startMetrics(cfg *config.Config, engine *churn.Engine, log logger.Logger) (*http.Server, error) {
	registry := prometheus.NewRegistry()
	if err := registry.Register(idmap.NewCollector(engine.Store(), cfg.Metrics.Namespace)); err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:    cfg.Metrics.Addr,
		Handler: mux,
	}
	go func() {
		log.Info("metrics endpoint listening", "addr", cfg.Metrics.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server error", "error", err)
		}
	}()
	return srv, nil
}

// watchConfig retunes the churn rate when the config file changes.
func watchConfig(path string, loader *confloader.Loader, engine *churn.Engine, log logger.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log.Slog()))
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(path); err != nil {
		watcher.Stop()
		return nil, err
	}

	watcher.OnChange(func(changed string) {
		if err := loader.LoadFile(path); err != nil {
			log.Warn("config reload failed", "file", changed, "error", err)
			return
		}
		cfg := config.Default()
		if err := loader.Unmarshal(cfg); err != nil {
			log.Warn("config reload failed", "file", changed, "error", err)
			return
		}
		if err := config.Verify(cfg); err != nil {
			log.Warn("reloaded config rejected", "file", changed, "error", err)
			return
		}
		engine.SetChurnRate(cfg.Workload.ChurnRate)
		logger.SetLevel(cfg.Log.Level)
	})
	watcher.StartAsync()
	return watcher, nil
}

func printResult(res churn.Result) {
	fmt.Printf("run %s finished in %s\n", res.RunID, res.Duration.Round(time.Millisecond))
	fmt.Printf("  churned:  %d objects\n", res.Churned)
	fmt.Printf("  live:     %d entries\n", res.Live)
	fmt.Printf("  reclaims: %d (purges: %d)\n", res.Stats.Reclaims, res.Stats.Purges)
	fmt.Printf("  rehashes: %d, load factor %.2f\n", res.Stats.Rehashes, res.Stats.LoadFactor)
}
