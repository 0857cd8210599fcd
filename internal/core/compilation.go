package core

import (
	"path/filepath"
	"sort"
	"strings"
)

// Module is a single entry module flowing through the module hooks.
type Module struct {
	Request string
	// Path is the absolute resource path; empty for modules claimed by a
	// resolve hook.
	Path   string
	Type   ModuleType
	Source []byte
	// Code is the generated CommonJS-style body. It must assign
	// module.exports.
	Code string
}

// Chunk is the unit rendered into one JavaScript asset.
type Chunk struct {
	Name    string
	Modules []*Module
}

// AssetInfo carries metadata used by asset post-processors.
type AssetInfo struct {
	// SourceFiles lists the module paths rendered into the asset, relative
	// to the compilation context.
	SourceFiles []string
	// Sources holds the original content of SourceFiles, index aligned.
	Sources [][]byte
	// SourceLines holds the zero-based line of Source at which each
	// module's generated code starts, index aligned with SourceFiles.
	SourceLines []int
	// GeneratedLines holds the number of generated lines per module.
	GeneratedLines []int
	// Related names derived assets such as source maps.
	Related map[string]string
}

// Asset is an output file.
type Asset struct {
	Name   string
	Source []byte
	Info   AssetInfo
}

// Compilation holds the state of a single Build call.
type Compilation struct {
	Options *CompilerOptions
	Chunks  []*Chunk

	assets map[string]*Asset
	hooks  *hooks
}

func newCompilation(options *CompilerOptions, h *hooks) *Compilation {
	return &Compilation{
		Options: options,
		assets:  make(map[string]*Asset),
		hooks:   h,
	}
}

// EmitAsset adds or replaces an asset.
func (c *Compilation) EmitAsset(a *Asset) {
	c.assets[a.Name] = a
}

// Asset returns the named asset.
func (c *Compilation) Asset(name string) (*Asset, bool) {
	a, ok := c.assets[name]
	return a, ok
}

// Assets returns all assets sorted by name.
func (c *Compilation) Assets() []*Asset {
	out := make([]*Asset, 0, len(c.assets))
	for _, a := range c.assets {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RuntimeModules returns the runtime fragments in registration order.
func (c *Compilation) RuntimeModules() []RuntimeModule {
	return c.hooks.runtime
}

// RelativePath returns p relative to the compilation context using forward
// slashes.
func (c *Compilation) RelativePath(p string) string {
	rel, err := filepath.Rel(c.Options.Context, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

// TypeForPath classifies a resource by file extension.
func TypeForPath(p string) ModuleType {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".js", ".mjs", ".cjs", ".jsx":
		return ModuleTypeJS
	case ".json":
		return ModuleTypeJSON
	case ".css":
		return ModuleTypeCSS
	default:
		return ModuleTypeAsset
	}
}
