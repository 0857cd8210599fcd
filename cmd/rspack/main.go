package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/efebarandurmaz/rspack/internal/config"
	"github.com/efebarandurmaz/rspack/internal/logging"
	"github.com/efebarandurmaz/rspack/internal/observability"
	"github.com/efebarandurmaz/rspack/internal/plugins"
)

var version = "0.1.0"

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	contextDir string
	logLevel   string
	logFormat  string
}

func main() {
	var g globalFlags

	rootCmd := &cobra.Command{
		Use:          "rspack",
		Short:        "Build and serve a bundled project",
		Version:      version,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "", "Config file (.yaml, .json, .toml or .hcl)")
	rootCmd.PersistentFlags().StringVar(&g.contextDir, "context", "", "Project root, overrides the configured context")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "Log format (text, json)")

	rootCmd.AddCommand(newBuildCmd(&g), newServeCmd(&g), newPluginsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newPluginsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plugins",
		Short: "List plugins that can be declared in configuration",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Configurable plugins:")
			fmt.Fprintln(out)
			for _, name := range plugins.DefaultRegistry().Names() {
				fmt.Fprintf(out, "  %s\n", name)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Declare them in rspack.yaml:")
			fmt.Fprintln(out, "  plugins:")
			fmt.Fprintln(out, "    - name: banner")
			fmt.Fprintln(out, "      options: {banner: \"(c) example\"}")
		},
	}
}

type runtimeEnv struct {
	cfg    *config.Config
	tracer *observability.TracerProvider
	audit  *observability.AuditLogger
}

// setup loads configuration, applies flag overrides and initializes logging,
// tracing and the audit log.
func setup(ctx context.Context, g *globalFlags) (*runtimeEnv, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.contextDir != "" {
		cfg.Context = g.contextDir
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if g.logFormat != "" {
		cfg.Log.Format = g.logFormat
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	tc := observability.DefaultTracingConfig()
	tc.ServiceVersion = version
	tc.OTLPEndpoint = cfg.Tracing.Endpoint
	if cfg.Tracing.SampleRate > 0 {
		tc.SampleRate = cfg.Tracing.SampleRate
	}
	tracer, err := observability.InitTracing(ctx, tc)
	if err != nil {
		return nil, err
	}

	audit, err := observability.NewAuditLogger(&observability.AuditConfig{
		Enabled:    cfg.Audit.Path != "",
		OutputPath: cfg.Audit.Path,
	})
	if err != nil {
		_ = tracer.Shutdown(ctx)
		return nil, err
	}

	return &runtimeEnv{cfg: cfg, tracer: tracer, audit: audit}, nil
}

func (e *runtimeEnv) close(ctx context.Context) {
	_ = e.tracer.Shutdown(ctx)
	_ = e.audit.Close()
}
