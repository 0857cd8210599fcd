package externals

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/efebarandurmaz/rspack/internal/core"
	"github.com/efebarandurmaz/rspack/internal/plugins/javascript"
)

func TestExternals(t *testing.T) {
	tests := []struct {
		name     string
		options  map[string]string
		config   map[string]string
		wantCode string
	}{
		{"from options", map[string]string{"react": "React"}, nil, "module.exports = React;"},
		{"from config", nil, map[string]string{"react": "window.React"}, "module.exports = window.React;"},
		{"config wins", map[string]string{"react": "React"}, map[string]string{"react": "Preact"}, "module.exports = Preact;"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			c := core.NewCompiler(core.CompilerOptions{
				Context:   dir,
				Entry:     map[string]string{"main": "react"},
				Externals: tt.options,
				Output:    core.OutputOptions{Path: filepath.Join(dir, "dist")},
			}, []core.Plugin{New(Config{Externals: tt.config}), javascript.New()})
			if err := c.Build(context.Background()); err != nil {
				t.Fatalf("build failed: %v", err)
			}
			main, _ := c.LastCompilation().Asset("main.js")
			if !strings.Contains(string(main.Source), tt.wantCode) {
				t.Fatalf("expected %q in output:\n%s", tt.wantCode, main.Source)
			}
		})
	}
}

func TestNoExternalsFallsThrough(t *testing.T) {
	dir := t.TempDir()
	c := core.NewCompiler(core.CompilerOptions{
		Context: dir,
		Entry:   map[string]string{"main": "react"},
		Output:  core.OutputOptions{Path: filepath.Join(dir, "dist")},
	}, []core.Plugin{New(Config{}), javascript.New()})
	if err := c.Build(context.Background()); err == nil {
		t.Fatal("expected unresolved request to fail")
	}
}
