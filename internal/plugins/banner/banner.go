// Package banner prepends a comment to every emitted JavaScript asset.
package banner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/efebarandurmaz/rspack/internal/core"
)

// Config configures the banner plugin.
type Config struct {
	Banner string
	// Raw emits Banner verbatim instead of wrapping it in a comment.
	Raw bool
}

// Plugin prepends Config.Banner to .js assets.
type Plugin struct {
	config Config
}

// New creates a banner plugin. The banner must not be empty.
func New(config Config) (*Plugin, error) {
	if config.Banner == "" {
		return nil, errors.New("banner: empty banner")
	}
	return &Plugin{config: config}, nil
}

// FromOptions builds the plugin from a generic options map, as declared in
// configuration files.
func FromOptions(opts map[string]any) (core.Plugin, error) {
	text, _ := opts["banner"].(string)
	raw, _ := opts["raw"].(bool)
	if v, ok := opts["banner"]; ok && text == "" {
		return nil, fmt.Errorf("banner: option 'banner' must be a string, got %T", v)
	}
	return New(Config{Banner: text, Raw: raw})
}

func (p *Plugin) Name() string { return "BannerPlugin" }

func (p *Plugin) Apply(ctx *core.ApplyContext) error {
	header := p.config.Banner
	if !p.config.Raw {
		header = "/*! " + strings.ReplaceAll(header, "*/", "* /") + " */"
	}
	header += "\n"
	shift := strings.Count(header, "\n")

	ctx.TapProcessAssets(func(c *core.Compilation) error {
		for _, a := range c.Assets() {
			if !strings.HasSuffix(a.Name, ".js") {
				continue
			}
			a.Source = append([]byte(header), a.Source...)
			for i := range a.Info.SourceLines {
				a.Info.SourceLines[i] += shift
			}
		}
		return nil
	})
	return nil
}
