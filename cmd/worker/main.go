package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	temporalclient "go.temporal.io/sdk/client"

	"github.com/efebarandurmaz/rspack/internal/config"
	"github.com/efebarandurmaz/rspack/internal/logging"
	"github.com/efebarandurmaz/rspack/internal/plugins"
	"github.com/efebarandurmaz/rspack/internal/server"
	temporalmod "github.com/efebarandurmaz/rspack/internal/temporal"
)

func main() {
	var configPath, healthAddr string

	rootCmd := &cobra.Command{
		Use:          "rspack-worker",
		Short:        "Run remote builds from the Temporal task queue",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorker(configPath, healthAddr)
		},
	}
	rootCmd.Flags().StringVar(&configPath, "config", "", "Config file (.yaml, .json, .toml or .hcl)")
	rootCmd.Flags().StringVar(&healthAddr, "health-addr", "", "Health endpoint address; disabled when empty")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runWorker(configPath, healthAddr string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	temporalmod.SetDependencies(&temporalmod.Dependencies{
		Registry: plugins.DefaultRegistry(),
	})

	c, err := temporalmod.Dial(cfg.Temporal)
	if err != nil {
		return err
	}
	defer c.Close()

	w, err := temporalmod.StartWorker(c, cfg.Temporal.TaskQueue)
	if err != nil {
		return fmt.Errorf("worker: %w", err)
	}
	slog.Info("Worker started", "task_queue", cfg.Temporal.TaskQueue, "namespace", cfg.Temporal.Namespace)

	gs := server.NewGracefulServer(&server.HealthConfig{}, nil)
	gs.Shutdown.Register(server.TemporalWorkerShutdownHook(w.Stop))
	gs.Health.RegisterCheck("temporal", server.TemporalHealthChecker(func(ctx context.Context) error {
		_, err := c.CheckHealth(ctx, &temporalclient.CheckHealthRequest{})
		return err
	}))
	if err := gs.Start(healthAddr); err != nil {
		w.Stop()
		return fmt.Errorf("health server: %w", err)
	}
	gs.Health.SetReady(true)

	gs.Wait()
	slog.Info("Worker stopped")
	return nil
}
