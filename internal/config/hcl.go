package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// hclRoot is the top-level shape of an .hcl config file:
//
//	context = "."
//	target  = "node16"
//	entry   = { main = "./src/index.js" }
//
//	output {
//	  unique_name = "app"
//	}
//
//	plugin "banner" {
//	  options = { banner = "built by ${env.USER}" }
//	}
type hclRoot struct {
	Context   string            `hcl:"context,optional"`
	Entry     map[string]string `hcl:"entry,optional"`
	Target    string            `hcl:"target,optional"`
	Devtool   string            `hcl:"devtool,optional"`
	Externals map[string]string `hcl:"externals,optional"`

	Output    *hclOutput    `hcl:"output,block"`
	Asset     *hclAsset     `hcl:"asset,block"`
	Plugins   []*hclPlugin  `hcl:"plugin,block"`
	DevServer *hclDevServer `hcl:"dev_server,block"`
	Log       *hclLog       `hcl:"log,block"`
	Tracing   *hclTracing   `hcl:"tracing,block"`
	Audit     *hclAudit     `hcl:"audit,block"`
	Temporal  *hclTemporal  `hcl:"temporal,block"`
}

type hclOutput struct {
	Path       string `hcl:"path,optional"`
	UniqueName string `hcl:"unique_name,optional"`
	PublicPath string `hcl:"public_path,optional"`
}

type hclAsset struct {
	DataURLMaxSize *int `hcl:"data_url_max_size,optional"`
}

type hclPlugin struct {
	Name    string    `hcl:"name,label"`
	Options cty.Value `hcl:"options,optional"`
}

type hclDevServer struct {
	Addr       string `hcl:"addr,optional"`
	HealthAddr string `hcl:"health_addr,optional"`
}

type hclLog struct {
	Level  string `hcl:"level,optional"`
	Format string `hcl:"format,optional"`
}

type hclTracing struct {
	Endpoint   string   `hcl:"endpoint,optional"`
	SampleRate *float64 `hcl:"sample_rate,optional"`
}

type hclAudit struct {
	Path string `hcl:"path,optional"`
}

type hclTemporal struct {
	Host      string `hcl:"host,optional"`
	Namespace string `hcl:"namespace,optional"`
	TaskQueue string `hcl:"task_queue,optional"`
}

// LoadHCL reads an HCL config file. Expressions may reference process
// environment variables as env.NAME.
func LoadHCL(path string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}
	return decodeHCL(path, file.Body)
}

// ParseHCL decodes HCL source held in memory. filename is used in
// diagnostics only.
func ParseHCL(src []byte, filename string) (*Config, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	return decodeHCL(filename, file.Body)
}

func decodeHCL(filename string, body hcl.Body) (*Config, error) {
	var root hclRoot
	if diags := gohcl.DecodeBody(body, evalContext(), &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	cfg := &Config{
		Context:   root.Context,
		Entry:     root.Entry,
		Target:    root.Target,
		Devtool:   root.Devtool,
		Externals: root.Externals,
		Output:    OutputConfig{UniqueName: DefaultUniqueName},
		Log:       LogConfig{Level: "info", Format: "text"},
		Tracing:   TracingConfig{SampleRate: 1.0},
		Temporal:  TemporalConfig{Host: "localhost:7233", Namespace: "default", TaskQueue: DefaultTaskQueue},
	}
	if cfg.Context == "" {
		cfg.Context = DefaultContext
	}
	if cfg.Target == "" {
		cfg.Target = "web"
	}

	if o := root.Output; o != nil {
		cfg.Output.Path = o.Path
		cfg.Output.PublicPath = o.PublicPath
		if o.UniqueName != "" {
			cfg.Output.UniqueName = o.UniqueName
		}
	}
	if a := root.Asset; a != nil {
		cfg.Module.Parser.Asset.DataURLMaxSize = a.DataURLMaxSize
	}
	for _, p := range root.Plugins {
		opts, err := ctyToMap(p.Options)
		if err != nil {
			return nil, fmt.Errorf("plugin %q options: %w", p.Name, err)
		}
		cfg.Plugins = append(cfg.Plugins, PluginConfig{Name: p.Name, Options: opts})
	}
	if d := root.DevServer; d != nil {
		cfg.DevServer = DevServerConfig(*d)
	}
	if l := root.Log; l != nil {
		if l.Level != "" {
			cfg.Log.Level = l.Level
		}
		if l.Format != "" {
			cfg.Log.Format = l.Format
		}
	}
	if t := root.Tracing; t != nil {
		cfg.Tracing.Endpoint = t.Endpoint
		if t.SampleRate != nil {
			cfg.Tracing.SampleRate = *t.SampleRate
		}
	}
	if a := root.Audit; a != nil {
		cfg.Audit.Path = a.Path
	}
	if t := root.Temporal; t != nil {
		if t.Host != "" {
			cfg.Temporal.Host = t.Host
		}
		if t.Namespace != "" {
			cfg.Temporal.Namespace = t.Namespace
		}
		if t.TaskQueue != "" {
			cfg.Temporal.TaskQueue = t.TaskQueue
		}
	}

	warn(cfg)
	return cfg, nil
}

func evalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		vars[k] = cty.StringVal(v)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": cty.ObjectVal(vars)},
	}
}

func ctyToMap(v cty.Value) (map[string]any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}
	native, err := ctyToNative(v)
	if err != nil {
		return nil, err
	}
	m, ok := native.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected an object, got %s", v.Type().FriendlyName())
	}
	return m, nil
}

// ctyToNative converts a cty.Value to plain Go values: string, float64,
// bool, []any and map[string]any.
func ctyToNative(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}

	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil

	case ty == cty.Number:
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, fmt.Errorf("could not convert number: %w", err)
		}
		return f, nil

	case ty == cty.Bool:
		return v.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			n, err := ctyToNative(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil

	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any)
		for it := v.ElementIterator(); it.Next(); {
			key, elem := it.Element()
			n, err := ctyToNative(elem)
			if err != nil {
				return nil, fmt.Errorf("in attribute '%s': %w", key.AsString(), err)
			}
			out[key.AsString()] = n
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported type %s", ty.FriendlyName())
}
