// Package bundler assembles the ordered plugin list for a set of compiler
// options and constructs the Compiler, optionally wrapped in a dev server.
package bundler

import (
	"context"
	"log/slog"

	"github.com/efebarandurmaz/rspack/internal/core"
	"github.com/efebarandurmaz/rspack/internal/devserver"
	"github.com/efebarandurmaz/rspack/internal/observability"
	"github.com/efebarandurmaz/rspack/internal/plugins/asset"
	"github.com/efebarandurmaz/rspack/internal/plugins/devtool"
	"github.com/efebarandurmaz/rspack/internal/plugins/externals"
	"github.com/efebarandurmaz/rspack/internal/plugins/javascript"
	"github.com/efebarandurmaz/rspack/internal/plugins/json"
	"github.com/efebarandurmaz/rspack/internal/plugins/runtime"
)

// BuiltinPluginCount is the number of plugins added regardless of target
// platform and user plugins.
const BuiltinPluginCount = 7

// New assembles the plugin list for options and returns a compiler over it.
//
// The order is fixed: asset, json, chunk format, platform chunk loading,
// runtime, externals, user plugins, JavaScript, devtool. Options.Plugins
// (configuration-declared) come before userPlugins in the user slot. Both
// are moved into the compiler; Options.Plugins is cleared.
func New(options core.CompilerOptions, userPlugins []core.Plugin) *core.Compiler {
	_, span := observability.StartAssembleSpan(context.Background(), options.Target.Platform.String())
	defer span.End()

	plugins := make([]core.Plugin, 0, BuiltinPluginCount+2+len(options.Plugins)+len(userPlugins))

	// CSS for the web target is registered by the runtime family below.
	plugins = append(plugins, asset.New(asset.Config{
		ParseOptions: options.AssetParseOptions(),
	}))
	plugins = append(plugins, json.Plugin{})
	plugins = append(plugins, runtime.ArrayPushCallbackChunkFormatPlugin{})

	switch options.Target.Platform.Kind {
	case core.PlatformWeb:
		plugins = append(plugins, runtime.CSSModulesPlugin{})
		plugins = append(plugins, runtime.JSONPChunkLoadingPlugin{})
	case core.PlatformNode:
		plugins = append(plugins, runtime.CommonJSChunkLoadingPlugin{})
	}

	plugins = append(plugins, runtime.RuntimePlugin{})
	plugins = append(plugins, externals.New(externals.Config{}))

	userCount := len(options.Plugins) + len(userPlugins)
	plugins = append(plugins, options.Plugins...)
	options.Plugins = nil
	plugins = append(plugins, userPlugins...)

	plugins = append(plugins, javascript.New())
	plugins = append(plugins, devtool.New(core.NewDevtoolPluginOptions(options.Devtool, options.Output)))

	names := make([]string, len(plugins))
	for i, p := range plugins {
		names[i] = p.Name()
	}
	observability.RecordAssembleResult(span, names, userCount)
	observability.Metrics().RecordAssemble(len(plugins))
	slog.Debug("Plugins assembled", "platform", options.Target.Platform.String(), "count", len(plugins), "order", names)

	return core.NewCompiler(options, plugins)
}

// NewDevServer assembles a compiler and wraps it in a dev server.
func NewDevServer(options core.CompilerOptions, userPlugins []core.Plugin, opts ...devserver.Option) *devserver.Server {
	return devserver.New(New(options, userPlugins), opts...)
}
