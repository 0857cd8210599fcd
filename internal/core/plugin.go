package core

// Plugin is a build stage contributed to a Compiler. Plugins are applied in
// list order; later plugins may rely on hooks tapped by earlier ones.
type Plugin interface {
	// Name returns a stable identifier, e.g. "rspack.JsonPlugin".
	Name() string
	// Apply taps the hooks the plugin needs.
	Apply(ctx *ApplyContext) error
}

// ModuleType classifies a module by how it is turned into JavaScript.
type ModuleType string

const (
	ModuleTypeJS    ModuleType = "javascript"
	ModuleTypeJSON  ModuleType = "json"
	ModuleTypeCSS   ModuleType = "css"
	ModuleTypeAsset ModuleType = "asset"
)

// ResolveHook may claim a request before it is read from disk. It returns
// the generated module code and true when it handles the request.
type ResolveHook func(request string) (code string, ok bool)

// ModuleHook turns a module's Source into Code.
type ModuleHook func(c *Compilation, m *Module) error

// RenderHook renders a chunk into an asset. Returning a nil asset passes
// the chunk to the next render hook.
type RenderHook func(c *Compilation, chunk *Chunk) (*Asset, error)

// AssetsHook post-processes the emitted assets of a compilation.
type AssetsHook func(c *Compilation) error

// RuntimeModule is a named fragment of runtime code prepended to every
// rendered chunk.
type RuntimeModule struct {
	Name string
	Code string
}

type tap[T any] struct {
	plugin string
	fn     T
}

type hooks struct {
	resolve       []tap[ResolveHook]
	module        map[ModuleType][]tap[ModuleHook]
	render        []tap[RenderHook]
	processAssets []tap[AssetsHook]
	runtime       []RuntimeModule
}

// ApplyContext is handed to Plugin.Apply. It exposes the compiler options
// and registration points for every hook.
type ApplyContext struct {
	Options *CompilerOptions

	plugin string
	hooks  *hooks
}

// TapResolve registers a resolve hook.
func (a *ApplyContext) TapResolve(fn ResolveHook) {
	a.hooks.resolve = append(a.hooks.resolve, tap[ResolveHook]{a.plugin, fn})
}

// TapModule registers a hook for modules of type t.
func (a *ApplyContext) TapModule(t ModuleType, fn ModuleHook) {
	a.hooks.module[t] = append(a.hooks.module[t], tap[ModuleHook]{a.plugin, fn})
}

// TapRender registers a chunk renderer.
func (a *ApplyContext) TapRender(fn RenderHook) {
	a.hooks.render = append(a.hooks.render, tap[RenderHook]{a.plugin, fn})
}

// TapProcessAssets registers an asset post-processor.
func (a *ApplyContext) TapProcessAssets(fn AssetsHook) {
	a.hooks.processAssets = append(a.hooks.processAssets, tap[AssetsHook]{a.plugin, fn})
}

// AddRuntimeModule appends a runtime fragment.
func (a *ApplyContext) AddRuntimeModule(m RuntimeModule) {
	a.hooks.runtime = append(a.hooks.runtime, m)
}
