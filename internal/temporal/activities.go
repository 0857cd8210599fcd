package temporal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sdktemporal "go.temporal.io/sdk/temporal"

	"github.com/efebarandurmaz/rspack/internal/bundler"
	"github.com/efebarandurmaz/rspack/internal/config"
	"github.com/efebarandurmaz/rspack/internal/core"
	"github.com/efebarandurmaz/rspack/internal/plugins"
)

// Dependencies holds shared resources injected into activities.
type Dependencies struct {
	Registry *plugins.Registry
}

var deps = &Dependencies{Registry: plugins.DefaultRegistry()}

// SetDependencies injects shared resources (called during worker setup).
func SetDependencies(d *Dependencies) {
	deps = d
}

func loadConfig(input BuildInput) (*config.Config, error) {
	cfg, err := config.Load(input.ConfigPath)
	if err != nil {
		return nil, sdktemporal.NewNonRetryableApplicationError(err.Error(), BuildErrorType, err)
	}
	if input.Context != "" {
		cfg.Context = input.Context
	}
	return cfg, nil
}

// ValidateConfigActivity loads the configuration and returns its warnings.
func ValidateConfigActivity(_ context.Context, input BuildInput) ([]string, error) {
	cfg, err := loadConfig(input)
	if err != nil {
		return nil, err
	}
	if _, err := cfg.CompilerOptions(deps.Registry); err != nil {
		return nil, sdktemporal.NewNonRetryableApplicationError(err.Error(), BuildErrorType, err)
	}
	return cfg.Validate(), nil
}

// BuildActivity assembles a compiler from the configuration and builds the
// project once. Project errors are non-retryable; I/O errors while emitting
// are retried.
func BuildActivity(ctx context.Context, input BuildInput) (BuildOutput, error) {
	cfg, err := loadConfig(input)
	if err != nil {
		return BuildOutput{}, err
	}
	opts, err := cfg.CompilerOptions(deps.Registry)
	if err != nil {
		return BuildOutput{}, sdktemporal.NewNonRetryableApplicationError(err.Error(), BuildErrorType, err)
	}

	compiler := bundler.New(opts, nil)
	slog.Info("Remote build started", "context", opts.Context, "plugins", len(compiler.Plugins()))
	if err := compiler.Build(ctx); err != nil {
		var be *core.BuildError
		if errors.As(err, &be) && be.Stage != core.StageEmit {
			return BuildOutput{}, sdktemporal.NewNonRetryableApplicationError(err.Error(), BuildErrorType, err)
		}
		return BuildOutput{}, fmt.Errorf("building %s: %w", opts.Context, err)
	}

	out := BuildOutput{
		OutputPath: compiler.Options().Output.Path,
		Target:     compiler.Options().Target.Platform.String(),
	}
	for _, p := range compiler.Plugins() {
		out.Plugins = append(out.Plugins, p.Name())
	}
	for _, a := range compiler.LastCompilation().Assets() {
		out.Assets = append(out.Assets, AssetResult{Name: a.Name, Size: len(a.Source)})
		out.TotalBytes += len(a.Source)
	}
	return out, nil
}
