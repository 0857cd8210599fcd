package bundler

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/efebarandurmaz/rspack/internal/core"
	"github.com/efebarandurmaz/rspack/internal/plugins/asset"
	"github.com/efebarandurmaz/rspack/internal/plugins/devtool"
)

type namedPlugin struct{ name string }

func (p *namedPlugin) Name() string { return p.name }

func (p *namedPlugin) Apply(_ *core.ApplyContext) error { return nil }

func pluginNames(c *core.Compiler) []string {
	var names []string
	for _, p := range c.Plugins() {
		names = append(names, p.Name())
	}
	return names
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

func count(names []string, name string) int {
	n := 0
	for _, v := range names {
		if v == name {
			n++
		}
	}
	return n
}

const (
	cssModules  = "rspack.CssModulesPlugin"
	jsonp       = "rspack.JsonPChunkLoadingPlugin"
	commonJS    = "rspack.CommonJsChunkLoadingPlugin"
	externalsID = "rspack.ExternalPlugin"
	jsID        = "rspack.JsPlugin"
	devtoolID   = "rspack.DevtoolPlugin"
)

func TestNew_WebTarget(t *testing.T) {
	names := pluginNames(New(core.CompilerOptions{Target: core.Web()}, nil))

	css := indexOf(names, cssModules)
	if css < 0 {
		t.Fatalf("expected %s in %v", cssModules, names)
	}
	if css+1 >= len(names) || names[css+1] != jsonp {
		t.Fatalf("expected %s immediately after %s, got %v", jsonp, cssModules, names)
	}
	if indexOf(names, commonJS) >= 0 {
		t.Fatalf("web target must not contain %s", commonJS)
	}
}

func TestNew_NodeTarget(t *testing.T) {
	for _, version := range []string{"", "16", "18.12"} {
		names := pluginNames(New(core.CompilerOptions{Target: core.Node(version)}, nil))
		if count(names, commonJS) != 1 {
			t.Errorf("node%s: expected exactly one %s, got %v", version, commonJS, names)
		}
		if indexOf(names, cssModules) >= 0 || indexOf(names, jsonp) >= 0 {
			t.Errorf("node%s: unexpected web plugins in %v", version, names)
		}
	}
}

func TestNew_OtherPlatforms(t *testing.T) {
	targets := []core.Target{
		{},
		{Platform: core.TargetPlatform{Kind: core.PlatformWebWorker}},
		{Platform: core.TargetPlatform{Kind: core.PlatformKind(42)}},
	}
	for _, target := range targets {
		names := pluginNames(New(core.CompilerOptions{Target: target}, nil))
		for _, id := range []string{cssModules, jsonp, commonJS} {
			if indexOf(names, id) >= 0 {
				t.Errorf("%s: unexpected %s", target.Platform, id)
			}
		}
		if len(names) != BuiltinPluginCount {
			t.Errorf("%s: expected %d plugins, got %d", target.Platform, BuiltinPluginCount, len(names))
		}
	}
}

func TestNew_DevtoolAlwaysLast(t *testing.T) {
	cases := []core.CompilerOptions{
		{Target: core.Web()},
		{Target: core.Node("")},
		{Target: core.Web(), Devtool: "hidden-source-map", Plugins: []core.Plugin{&namedPlugin{"cfg"}}},
	}
	for i, opts := range cases {
		names := pluginNames(New(opts, []core.Plugin{&namedPlugin{"A"}}))
		if names[len(names)-1] != devtoolID {
			t.Errorf("case %d: expected devtool last, got %v", i, names)
		}
	}
}

func TestNew_UserPluginPlacement(t *testing.T) {
	a, b := &namedPlugin{"A"}, &namedPlugin{"B"}
	names := pluginNames(New(core.CompilerOptions{Target: core.Web()}, []core.Plugin{a, b}))

	ia, ib := indexOf(names, "A"), indexOf(names, "B")
	if ib != ia+1 {
		t.Fatalf("expected B immediately after A, got %v", names)
	}
	if ia <= indexOf(names, externalsID) {
		t.Fatalf("user plugins must follow externals: %v", names)
	}
	if ib >= indexOf(names, jsID) {
		t.Fatalf("user plugins must precede the JavaScript plugin: %v", names)
	}
}

func TestNew_ConfigPluginsPrecedeCallSitePlugins(t *testing.T) {
	opts := core.CompilerOptions{
		Target:  core.Web(),
		Plugins: []core.Plugin{&namedPlugin{"cfg"}},
	}
	c := New(opts, []core.Plugin{&namedPlugin{"call"}})
	names := pluginNames(c)

	if indexOf(names, "call") != indexOf(names, "cfg")+1 {
		t.Fatalf("unexpected order: %v", names)
	}
	if c.Options().Plugins != nil {
		t.Fatal("configuration plugins should be moved out of the options")
	}
}

func TestNew_Length(t *testing.T) {
	tests := []struct {
		name     string
		target   core.Target
		user     int
		platform int
	}{
		{"web", core.Web(), 0, 2},
		{"web+user", core.Web(), 3, 2},
		{"node", core.Node("20"), 1, 1},
		{"none", core.Target{}, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var user []core.Plugin
			for i := 0; i < tt.user; i++ {
				user = append(user, &namedPlugin{"u"})
			}
			c := New(core.CompilerOptions{Target: tt.target}, user)
			want := BuiltinPluginCount + tt.platform + tt.user
			if got := len(c.Plugins()); got != want {
				t.Fatalf("expected %d plugins, got %d", want, got)
			}
		})
	}
}

func TestNew_DevtoolOptions(t *testing.T) {
	for _, d := range []core.Devtool{
		"",
		"source-map",
		"inline-source-map",
		"hidden-source-map",
		"cheap-module-source-map",
		"eval-cheap-source-map",
		"hidden-nosources-cheap-source-map",
	} {
		c := New(core.CompilerOptions{
			Target:  core.Web(),
			Devtool: d,
			Output:  core.OutputOptions{UniqueName: "app"},
		}, nil)
		plugins := c.Plugins()
		dp, ok := plugins[len(plugins)-1].(*devtool.Plugin)
		if !ok {
			t.Fatalf("%q: last plugin is %T", d, plugins[len(plugins)-1])
		}
		o := dp.Options()
		if o.Append != !d.Hidden() {
			t.Errorf("%q: append=%v, hidden=%v", d, o.Append, d.Hidden())
		}
		if o.Columns != !d.Cheap() {
			t.Errorf("%q: columns=%v, cheap=%v", d, o.Columns, d.Cheap())
		}
		if o.Inline != d.Inline() || o.NoSources != d.NoSources() {
			t.Errorf("%q: unexpected options %+v", d, o)
		}
		if o.Namespace != "app" {
			t.Errorf("%q: expected namespace app, got %q", d, o.Namespace)
		}
		if o.PublicPath != nil {
			t.Errorf("%q: public path must be unset", d)
		}
	}
}

func TestNew_AssetParseOptions(t *testing.T) {
	c := New(core.CompilerOptions{Target: core.Web()}, nil)
	ap := c.Plugins()[0].(*asset.Plugin)
	if ap.Config().ParseOptions != nil || ap.MaxSize() != asset.DefaultDataURLMaxSize {
		t.Fatalf("expected default asset config, got %+v", ap.Config())
	}

	opts := core.CompilerOptions{
		Target: core.Web(),
		Module: core.ModuleOptions{Parser: &core.ParserOptions{
			Asset: &core.AssetParserOptions{DataURLCondition: &core.DataURLCondition{MaxSize: 10}},
		}},
	}
	ap = New(opts, nil).Plugins()[0].(*asset.Plugin)
	if ap.MaxSize() != 10 {
		t.Fatalf("expected max size 10, got %d", ap.MaxSize())
	}
}

func TestNew_WebEndToEnd(t *testing.T) {
	c := New(core.CompilerOptions{
		Context: "./proj",
		Target:  core.Web(),
	}, []core.Plugin{})

	want := []string{
		"rspack.AssetPlugin",
		"rspack.JsonPlugin",
		"rspack.ArrayPushCallbackChunkFormatPlugin",
		cssModules,
		jsonp,
		"rspack.RuntimePlugin",
		externalsID,
		jsID,
		devtoolID,
	}
	got := pluginNames(c)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected order:\n got  %v\n want %v", got, want)
	}
	if c.Options().Context != "./proj" {
		t.Fatalf("expected context ./proj, got %s", c.Options().Context)
	}
}

func TestNew_BuildsProject(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.js"), []byte("console.log(\"hi\");\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(core.CompilerOptions{
		Context: dir,
		Entry:   map[string]string{"main": "./index.js"},
		Target:  core.Web(),
		Devtool: "source-map",
		Output:  core.OutputOptions{Path: filepath.Join(dir, "dist"), UniqueName: "app"},
	}, nil)
	if err := c.Build(context.Background()); err != nil {
		t.Fatalf("build failed: %v", err)
	}

	out, err := os.ReadFile(filepath.Join(dir, "dist", "main.js"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"jsonp_chunk_loading", "console.log(\"hi\");", "//# sourceMappingURL=main.js.map"} {
		if !strings.Contains(string(out), want) {
			t.Errorf("main.js missing %q", want)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "dist", "main.js.map")); err != nil {
		t.Errorf("expected source map: %v", err)
	}
}
