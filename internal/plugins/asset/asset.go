// Package asset turns non-code resources into modules, inlining small files
// as data URLs and emitting the rest as separate output files.
package asset

import (
	"encoding/base64"
	"fmt"
	"mime"
	"path/filepath"
	"strconv"

	"github.com/efebarandurmaz/rspack/internal/core"
)

// DefaultDataURLMaxSize is the inlining threshold when no parser option is set.
const DefaultDataURLMaxSize = 8096

// Config is derived from module.parser.asset.
type Config struct {
	ParseOptions *core.AssetParserOptions
}

// Plugin handles asset modules.
type Plugin struct {
	config Config
}

// New creates the asset plugin.
func New(config Config) *Plugin {
	return &Plugin{config: config}
}

func (p *Plugin) Name() string { return "rspack.AssetPlugin" }

// Config returns the plugin configuration.
func (p *Plugin) Config() Config { return p.config }

// MaxSize returns the effective inlining threshold in bytes.
func (p *Plugin) MaxSize() int {
	po := p.config.ParseOptions
	if po == nil || po.DataURLCondition == nil {
		return DefaultDataURLMaxSize
	}
	return po.DataURLCondition.MaxSize
}

func (p *Plugin) Apply(ctx *core.ApplyContext) error {
	maxSize := p.MaxSize()
	ctx.TapModule(core.ModuleTypeAsset, func(c *core.Compilation, m *core.Module) error {
		if len(m.Source) <= maxSize {
			m.Code = "module.exports = " + strconv.Quote(dataURL(m.Path, m.Source)) + ";"
			return nil
		}
		name := "assets/" + filepath.Base(m.Path)
		if _, exists := c.Asset(name); exists {
			return fmt.Errorf("asset name collision for %s", name)
		}
		c.EmitAsset(&core.Asset{Name: name, Source: m.Source})
		m.Code = "module.exports = " + strconv.Quote(c.Options.Output.PublicPath+name) + ";"
		return nil
	})
	return nil
}

func dataURL(path string, src []byte) string {
	mt := mime.TypeByExtension(filepath.Ext(path))
	if mt == "" {
		mt = "application/octet-stream"
	}
	return "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(src)
}
