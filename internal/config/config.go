package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/efebarandurmaz/rspack/internal/core"
	"github.com/efebarandurmaz/rspack/internal/plugins"
)

// Defaults applied by CompilerOptions when the configuration leaves a field
// unset.
const (
	DefaultContext    = "."
	DefaultEntry      = "./src/index.js"
	DefaultUniqueName = "rspack"
	DefaultTaskQueue  = "rspack-build"
)

// Config holds all application configuration.
type Config struct {
	Context   string            `mapstructure:"context"`
	Entry     map[string]string `mapstructure:"entry"`
	Target    string            `mapstructure:"target"`
	Devtool   string            `mapstructure:"devtool"`
	Output    OutputConfig      `mapstructure:"output"`
	Module    ModuleConfig      `mapstructure:"module"`
	Externals map[string]string `mapstructure:"externals"`
	Plugins   []PluginConfig    `mapstructure:"plugins"`

	DevServer DevServerConfig `mapstructure:"dev_server"`
	Log       LogConfig       `mapstructure:"log"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Audit     AuditConfig     `mapstructure:"audit"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
}

type OutputConfig struct {
	Path       string `mapstructure:"path"`
	UniqueName string `mapstructure:"unique_name"`
	PublicPath string `mapstructure:"public_path"`
}

type ModuleConfig struct {
	Parser ParserConfig `mapstructure:"parser"`
}

type ParserConfig struct {
	Asset AssetParserConfig `mapstructure:"asset"`
}

type AssetParserConfig struct {
	// DataURLMaxSize is nil when unset so the asset plugin default applies.
	DataURLMaxSize *int `mapstructure:"data_url_max_size"`
}

// PluginConfig declares a user plugin resolved through the plugin registry.
type PluginConfig struct {
	Name    string         `mapstructure:"name"`
	Options map[string]any `mapstructure:"options"`
}

type DevServerConfig struct {
	Addr       string `mapstructure:"addr"`
	HealthAddr string `mapstructure:"health_addr"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TracingConfig struct {
	Endpoint   string  `mapstructure:"endpoint"`
	SampleRate float64 `mapstructure:"sample_rate"`
}

type AuditConfig struct {
	Path string `mapstructure:"path"`
}

type TemporalConfig struct {
	Host      string `mapstructure:"host"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

// Validate checks configuration for issues and returns warnings.
func (c *Config) Validate() []string {
	var warnings []string

	if c.Target != "" {
		if _, err := core.ParseTarget(c.Target); err != nil {
			warnings = append(warnings, fmt.Sprintf("target: %v", err))
		}
	}

	d := core.Devtool(c.Devtool)
	if d.Enabled() && !d.SourceMap() && !d.Eval() {
		warnings = append(warnings, fmt.Sprintf("devtool '%s' produces no source map", c.Devtool))
	}

	if m := c.Module.Parser.Asset.DataURLMaxSize; m != nil && *m < 0 {
		warnings = append(warnings, fmt.Sprintf("module.parser.asset.data_url_max_size %d is negative", *m))
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		warnings = append(warnings, fmt.Sprintf("tracing sample_rate %.2f is outside range [0.0, 1.0]", c.Tracing.SampleRate))
	}

	if c.Output.Path != "" {
		ctx := c.Context
		if ctx == "" {
			ctx = DefaultContext
		}
		if !samePath(resolveOutput(ctx, c.Output.Path), filepath.Join(ctx, "dist")) {
			warnings = append(warnings, fmt.Sprintf("output.path '%s' is not served by the dev server, which serves '%s'", c.Output.Path, filepath.Join(ctx, "dist")))
		}
	}

	for i, p := range c.Plugins {
		if p.Name == "" {
			warnings = append(warnings, fmt.Sprintf("plugins[%d] has no name", i))
		}
	}

	return warnings
}

// CompilerOptions normalizes the configuration into compiler options.
// Declared plugins are created through reg.
func (c *Config) CompilerOptions(reg *plugins.Registry) (core.CompilerOptions, error) {
	ctx := c.Context
	if ctx == "" {
		ctx = DefaultContext
	}

	target, err := core.ParseTarget(c.Target)
	if err != nil {
		return core.CompilerOptions{}, fmt.Errorf("invalid configuration: %w", err)
	}

	entry := c.Entry
	if len(entry) == 0 {
		entry = map[string]string{"main": DefaultEntry}
	}

	out := core.OutputOptions{
		Path:       resolveOutput(ctx, c.Output.Path),
		UniqueName: c.Output.UniqueName,
		PublicPath: c.Output.PublicPath,
	}
	if out.UniqueName == "" {
		out.UniqueName = DefaultUniqueName
	}

	opts := core.CompilerOptions{
		Context:   ctx,
		Entry:     entry,
		Target:    target,
		Devtool:   core.Devtool(c.Devtool),
		Output:    out,
		Externals: c.Externals,
	}
	if m := c.Module.Parser.Asset.DataURLMaxSize; m != nil {
		opts.Module.Parser = &core.ParserOptions{
			Asset: &core.AssetParserOptions{DataURLCondition: &core.DataURLCondition{MaxSize: *m}},
		}
	}

	for i, pc := range c.Plugins {
		if reg == nil {
			return core.CompilerOptions{}, fmt.Errorf("plugins[%d]: no plugin registry", i)
		}
		p, err := reg.Create(pc.Name, pc.Options)
		if err != nil {
			return core.CompilerOptions{}, fmt.Errorf("plugins[%d]: %w", i, err)
		}
		opts.Plugins = append(opts.Plugins, p)
	}

	return opts, nil
}

// samePath reports whether a and b name the same location once both are
// made absolute.
func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

func resolveOutput(ctx, path string) string {
	if path == "" {
		return filepath.Join(ctx, "dist")
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(ctx, path)
}

// Load reads configuration from file and environment. Files ending in .hcl
// are decoded with LoadHCL; other formats go through viper. An empty path
// loads defaults and RSPACK_* environment variables only.
func Load(path string) (*Config, error) {
	if strings.EqualFold(filepath.Ext(path), ".hcl") {
		return LoadHCL(path)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("RSPACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	warn(&cfg)
	return &cfg, nil
}

// setDefaults registers every scalar key so that environment variables are
// honored even when the config file omits the key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("context", DefaultContext)
	v.SetDefault("target", "web")
	v.SetDefault("devtool", "")
	v.SetDefault("output.path", "")
	v.SetDefault("output.unique_name", DefaultUniqueName)
	v.SetDefault("output.public_path", "")
	v.SetDefault("dev_server.addr", "")
	v.SetDefault("dev_server.health_addr", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.sample_rate", 1.0)
	v.SetDefault("audit.path", "")
	v.SetDefault("temporal.host", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", DefaultTaskQueue)
}

func warn(cfg *Config) {
	for _, warning := range cfg.Validate() {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
	}
}
