package runtime

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/efebarandurmaz/rspack/internal/core"
	"github.com/efebarandurmaz/rspack/internal/plugins/javascript"
)

func build(t *testing.T, plugins ...core.Plugin) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.js"), []byte("module.exports = 1;\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := core.NewCompiler(core.CompilerOptions{
		Context: dir,
		Entry:   map[string]string{"main": "./index.js"},
		Output:  core.OutputOptions{Path: filepath.Join(dir, "dist"), UniqueName: "app"},
	}, append(plugins, javascript.New()))
	if err := c.Build(context.Background()); err != nil {
		t.Fatalf("build failed: %v", err)
	}
	a, ok := c.LastCompilation().Asset("main.js")
	if !ok {
		t.Fatal("expected main.js")
	}
	return string(a.Source)
}

func TestChunkGlobal(t *testing.T) {
	if got := ChunkGlobal("app"); got != "rspackChunkapp" {
		t.Fatalf("unexpected global %q", got)
	}
}

func TestWebRuntime(t *testing.T) {
	out := build(t,
		ArrayPushCallbackChunkFormatPlugin{},
		CSSModulesPlugin{},
		JSONPChunkLoadingPlugin{},
		RuntimePlugin{},
	)
	for _, want := range []string{
		`globalThis["rspackChunkapp"]`,
		"__rspack_inject_css__",
		"document.createElement(\"script\")",
		"function __rspack_require__(id)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "require(url)") {
		t.Error("web output must not load chunks with require")
	}
}

func TestNodeRuntime(t *testing.T) {
	out := build(t,
		ArrayPushCallbackChunkFormatPlugin{},
		CommonJSChunkLoadingPlugin{},
		RuntimePlugin{},
	)
	if !strings.Contains(out, "__rspack_chunks__.push(require(url))") {
		t.Errorf("expected require based chunk loading:\n%s", out)
	}
	if strings.Contains(out, "document.") {
		t.Error("node output must not touch the DOM")
	}
}

func TestNames(t *testing.T) {
	tests := []struct {
		plugin core.Plugin
		want   string
	}{
		{ArrayPushCallbackChunkFormatPlugin{}, "rspack.ArrayPushCallbackChunkFormatPlugin"},
		{CSSModulesPlugin{}, "rspack.CssModulesPlugin"},
		{JSONPChunkLoadingPlugin{}, "rspack.JsonPChunkLoadingPlugin"},
		{CommonJSChunkLoadingPlugin{}, "rspack.CommonJsChunkLoadingPlugin"},
		{RuntimePlugin{}, "rspack.RuntimePlugin"},
	}
	for _, tt := range tests {
		if got := tt.plugin.Name(); got != tt.want {
			t.Errorf("expected %s, got %s", tt.want, got)
		}
	}
}
