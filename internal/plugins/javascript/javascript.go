// Package javascript handles JavaScript modules and renders chunks into
// JavaScript assets.
package javascript

import (
	"strconv"
	"strings"

	"github.com/efebarandurmaz/rspack/internal/core"
)

// Plugin handles JavaScript modules and chunk rendering.
type Plugin struct{}

// New creates the JavaScript plugin.
func New() *Plugin { return &Plugin{} }

func (p *Plugin) Name() string { return "rspack.JsPlugin" }

func (p *Plugin) Apply(ctx *core.ApplyContext) error {
	ctx.TapModule(core.ModuleTypeJS, func(_ *core.Compilation, m *core.Module) error {
		m.Code = string(m.Source)
		return nil
	})
	ctx.TapRender(render)
	return nil
}

// lineWriter tracks the current line so module offsets can be recorded for
// source maps.
type lineWriter struct {
	b    strings.Builder
	line int
}

func (w *lineWriter) writeln(s string) {
	w.b.WriteString(s)
	w.b.WriteByte('\n')
	w.line += strings.Count(s, "\n") + 1
}

func render(c *core.Compilation, chunk *core.Chunk) (*core.Asset, error) {
	var w lineWriter
	info := core.AssetInfo{}

	w.writeln("(function () {")
	w.writeln("var __rspack_modules__ = {};")
	for _, rm := range c.RuntimeModules() {
		w.writeln("// runtime: " + rm.Name)
		w.writeln(rm.Code)
	}

	for _, m := range chunk.Modules {
		id := strconv.Quote(m.Request)
		w.writeln("__rspack_modules__[" + id + "] = function (module, exports, __rspack_require__) {")
		if m.Path != "" {
			info.SourceFiles = append(info.SourceFiles, c.RelativePath(m.Path))
			info.Sources = append(info.Sources, m.Source)
			info.SourceLines = append(info.SourceLines, w.line)
		}
		code := strings.TrimSuffix(m.Code, "\n")
		if m.Path != "" {
			info.GeneratedLines = append(info.GeneratedLines, strings.Count(code, "\n")+1)
		}
		w.writeln(code)
		w.writeln("};")
	}

	if len(chunk.Modules) > 0 {
		w.writeln("__rspack_require__(" + strconv.Quote(chunk.Modules[0].Request) + ");")
	}
	w.writeln("})();")

	return &core.Asset{
		Name:   chunk.Name + ".js",
		Source: []byte(w.b.String()),
		Info:   info,
	}, nil
}
