// Package runtime contributes the runtime code shared by rendered chunks:
// the module registry, the chunk format and the platform specific chunk
// loading strategy.
package runtime

import (
	"strconv"

	"github.com/efebarandurmaz/rspack/internal/core"
)

// ChunkGlobal returns the global array chunks are pushed onto.
func ChunkGlobal(uniqueName string) string {
	return "rspackChunk" + uniqueName
}

// ArrayPushCallbackChunkFormatPlugin emits chunks that register themselves
// by pushing onto a global array.
type ArrayPushCallbackChunkFormatPlugin struct{}

func (ArrayPushCallbackChunkFormatPlugin) Name() string {
	return "rspack.ArrayPushCallbackChunkFormatPlugin"
}

func (ArrayPushCallbackChunkFormatPlugin) Apply(ctx *core.ApplyContext) error {
	global := strconv.Quote(ChunkGlobal(ctx.Options.Output.UniqueName))
	ctx.AddRuntimeModule(core.RuntimeModule{
		Name: "chunk_format",
		Code: "var __rspack_chunks__ = (globalThis[" + global + "] = globalThis[" + global + "] || []);\n" +
			"__rspack_chunks__.push = function (chunk) { Object.assign(__rspack_modules__, chunk[1]); };",
	})
	return nil
}

// CSSModulesPlugin injects CSS modules as style tags in the browser.
type CSSModulesPlugin struct{}

func (CSSModulesPlugin) Name() string { return "rspack.CssModulesPlugin" }

func (CSSModulesPlugin) Apply(ctx *core.ApplyContext) error {
	ctx.AddRuntimeModule(core.RuntimeModule{
		Name: "css_loading",
		Code: "function __rspack_inject_css__(css) { var s = document.createElement(\"style\"); s.textContent = css; document.head.appendChild(s); }",
	})
	ctx.TapModule(core.ModuleTypeCSS, func(_ *core.Compilation, m *core.Module) error {
		m.Code = "__rspack_inject_css__(" + strconv.Quote(string(m.Source)) + ");\nmodule.exports = {};"
		return nil
	})
	return nil
}

// JSONPChunkLoadingPlugin loads chunks by injecting script tags.
type JSONPChunkLoadingPlugin struct{}

func (JSONPChunkLoadingPlugin) Name() string { return "rspack.JsonPChunkLoadingPlugin" }

func (JSONPChunkLoadingPlugin) Apply(ctx *core.ApplyContext) error {
	ctx.AddRuntimeModule(core.RuntimeModule{
		Name: "jsonp_chunk_loading",
		Code: "__rspack_require__.l = function (url, done) { var s = document.createElement(\"script\"); s.src = url; s.onload = done; document.head.appendChild(s); };",
	})
	return nil
}

// CommonJSChunkLoadingPlugin loads chunks with require on Node.
type CommonJSChunkLoadingPlugin struct{}

func (CommonJSChunkLoadingPlugin) Name() string { return "rspack.CommonJsChunkLoadingPlugin" }

func (CommonJSChunkLoadingPlugin) Apply(ctx *core.ApplyContext) error {
	ctx.AddRuntimeModule(core.RuntimeModule{
		Name: "require_chunk_loading",
		Code: "__rspack_require__.l = function (url, done) { __rspack_chunks__.push(require(url)); done(); };",
	})
	return nil
}

// RuntimePlugin provides the module registry and __rspack_require__.
type RuntimePlugin struct{}

func (RuntimePlugin) Name() string { return "rspack.RuntimePlugin" }

func (RuntimePlugin) Apply(ctx *core.ApplyContext) error {
	ctx.AddRuntimeModule(core.RuntimeModule{
		Name: "require",
		Code: "var __rspack_cache__ = {};\n" +
			"function __rspack_require__(id) {\n" +
			"  if (__rspack_cache__[id]) return __rspack_cache__[id].exports;\n" +
			"  var module = (__rspack_cache__[id] = { exports: {} });\n" +
			"  __rspack_modules__[id](module, module.exports, __rspack_require__);\n" +
			"  return module.exports;\n" +
			"}",
	})
	return nil
}
