// Package externals keeps configured requests out of the bundle and
// resolves them at runtime instead.
package externals

import (
	"github.com/efebarandurmaz/rspack/internal/core"
)

// Config maps requests to the runtime expression providing them. Entries
// here take precedence over the compiler's externals option.
type Config struct {
	Externals map[string]string
}

// Plugin resolves external requests.
type Plugin struct {
	config Config
}

// New creates the externals plugin.
func New(config Config) *Plugin {
	return &Plugin{config: config}
}

func (p *Plugin) Name() string { return "rspack.ExternalPlugin" }

func (p *Plugin) Apply(ctx *core.ApplyContext) error {
	externals := make(map[string]string, len(ctx.Options.Externals)+len(p.config.Externals))
	for k, v := range ctx.Options.Externals {
		externals[k] = v
	}
	for k, v := range p.config.Externals {
		externals[k] = v
	}
	if len(externals) == 0 {
		return nil
	}
	ctx.TapResolve(func(request string) (string, bool) {
		expr, ok := externals[request]
		if !ok {
			return "", false
		}
		return "module.exports = " + expr + ";", true
	})
	return nil
}
