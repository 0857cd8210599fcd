package config

import (
	"strings"
	"testing"
)

func TestLoad_HCL(t *testing.T) {
	t.Setenv("RSPACK_TEST_AUTHOR", "ada")
	path := writeConfig(t, "rspack.hcl", `
context = "./site"
target  = "node16"
devtool = "hidden-source-map"
entry   = { main = "./src/index.js", admin = "./src/admin.js" }

externals = {
  react = "React"
}

output {
  unique_name = "site"
  public_path = "/assets/"
}

asset {
  data_url_max_size = 1024
}

plugin "banner" {
  options = {
    banner = "built by ${env.RSPACK_TEST_AUTHOR}"
    raw    = false
  }
}

dev_server {
  addr        = "127.0.0.1:4000"
  health_addr = ":9090"
}

log {
  level = "debug"
}

tracing {
  endpoint    = "localhost:4317"
  sample_rate = 0.5
}
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Context != "./site" || cfg.Target != "node16" || cfg.Devtool != "hidden-source-map" {
		t.Errorf("unexpected scalars %+v", cfg)
	}
	if len(cfg.Entry) != 2 || cfg.Entry["admin"] != "./src/admin.js" {
		t.Errorf("unexpected entry %v", cfg.Entry)
	}
	if cfg.Externals["react"] != "React" {
		t.Errorf("unexpected externals %v", cfg.Externals)
	}
	if cfg.Output.UniqueName != "site" || cfg.Output.PublicPath != "/assets/" {
		t.Errorf("unexpected output %+v", cfg.Output)
	}
	if m := cfg.Module.Parser.Asset.DataURLMaxSize; m == nil || *m != 1024 {
		t.Errorf("expected max size 1024, got %v", m)
	}
	if len(cfg.Plugins) != 1 {
		t.Fatalf("expected one plugin, got %d", len(cfg.Plugins))
	}
	p := cfg.Plugins[0]
	if p.Name != "banner" || p.Options["banner"] != "built by ada" || p.Options["raw"] != false {
		t.Errorf("unexpected plugin %+v", p)
	}
	if cfg.DevServer.Addr != "127.0.0.1:4000" || cfg.DevServer.HealthAddr != ":9090" {
		t.Errorf("unexpected dev server %+v", cfg.DevServer)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Errorf("unexpected log %+v", cfg.Log)
	}
	if cfg.Tracing.Endpoint != "localhost:4317" || cfg.Tracing.SampleRate != 0.5 {
		t.Errorf("unexpected tracing %+v", cfg.Tracing)
	}
	if cfg.Temporal.TaskQueue != DefaultTaskQueue {
		t.Errorf("expected default task queue, got %q", cfg.Temporal.TaskQueue)
	}
}

func TestParseHCL_Defaults(t *testing.T) {
	cfg, err := ParseHCL([]byte(""), "empty.hcl")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cfg.Context != DefaultContext || cfg.Target != "web" || cfg.Output.UniqueName != DefaultUniqueName {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if cfg.Module.Parser.Asset.DataURLMaxSize != nil {
		t.Error("expected unset max size")
	}
	if cfg.Tracing.SampleRate != 1.0 {
		t.Errorf("expected sample rate 1.0, got %v", cfg.Tracing.SampleRate)
	}
}

func TestParseHCL_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"syntax", "context = ", "parse"},
		{"unknown attribute", "nope = 1", "decode"},
		{"non-object options", `plugin "banner" { options = "x" }`, "expected an object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHCL([]byte(tt.src), "test.hcl")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestCtyToNative_Nested(t *testing.T) {
	cfg, err := ParseHCL([]byte(`
plugin "custom" {
  options = {
    list   = [1, "two", true]
    nested = { depth = 2 }
  }
}
`), "nested.hcl")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	opts := cfg.Plugins[0].Options
	list, ok := opts["list"].([]any)
	if !ok || len(list) != 3 || list[0] != float64(1) || list[1] != "two" || list[2] != true {
		t.Errorf("unexpected list %#v", opts["list"])
	}
	nested, ok := opts["nested"].(map[string]any)
	if !ok || nested["depth"] != float64(2) {
		t.Errorf("unexpected nested %#v", opts["nested"])
	}
}
