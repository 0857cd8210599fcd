package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/efebarandurmaz/rspack/internal/bundler"
	"github.com/efebarandurmaz/rspack/internal/metrics"
	"github.com/efebarandurmaz/rspack/internal/plugins"
	temporalmod "github.com/efebarandurmaz/rspack/internal/temporal"
)

func newBuildCmd(g *globalFlags) *cobra.Command {
	var (
		jsonReport bool
		remote     bool
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the project once",
		RunE: func(cmd *cobra.Command, args []string) error {
			if remote {
				return runRemoteBuild(cmd.Context(), g, jsonReport)
			}
			return runBuild(cmd.Context(), g, jsonReport)
		},
	}
	cmd.Flags().BoolVar(&jsonReport, "json", false, "Output metrics as JSON")
	cmd.Flags().BoolVar(&remote, "remote", false, "Run the build on a Temporal worker")
	return cmd
}

func runBuild(ctx context.Context, g *globalFlags, jsonReport bool) error {
	env, err := setup(ctx, g)
	if err != nil {
		return err
	}
	defer env.close(ctx)

	opts, err := env.cfg.CompilerOptions(plugins.DefaultRegistry())
	if err != nil {
		return err
	}

	m := metrics.New()
	compiler := bundler.New(opts, nil)
	m.CollectCompiler(compiler)
	env.audit.LogAssemble(m.Target, m.Plugins)

	env.audit.LogBuildStart(opts.Context, len(opts.Entry))
	start := time.Now()
	buildErr := compiler.Build(ctx)
	m.CollectCompilation(compiler.LastCompilation())
	m.Finish(buildErr)
	env.audit.LogBuildEnd(time.Since(start), len(m.Assets), buildErr)

	report(m, jsonReport)
	return buildErr
}

func runRemoteBuild(ctx context.Context, g *globalFlags, jsonReport bool) error {
	env, err := setup(ctx, g)
	if err != nil {
		return err
	}
	defer env.close(ctx)

	input := temporalmod.BuildInput{Context: g.contextDir}
	if g.configPath != "" {
		if input.ConfigPath, err = filepath.Abs(g.configPath); err != nil {
			return err
		}
	}

	c, err := temporalmod.Dial(env.cfg.Temporal)
	if err != nil {
		return err
	}
	defer c.Close()

	m := metrics.New()
	m.Remote = true
	out, err := temporalmod.RunRemoteBuild(ctx, c, env.cfg.Temporal.TaskQueue, input)
	if out != nil {
		m.Target = out.Target
		m.Plugins = out.Plugins
		for _, a := range out.Assets {
			m.AddAsset(a.Name, a.Size)
		}
		for _, w := range out.Warnings {
			fmt.Fprintf(os.Stderr, "Warning (worker): %s\n", w)
		}
	}
	m.Finish(err)

	report(m, jsonReport)
	return err
}

func report(m *metrics.BuildMetrics, jsonReport bool) {
	if jsonReport {
		data, _ := m.JSON()
		fmt.Println(string(data))
		return
	}
	m.PrintSummary(os.Stdout)
}
