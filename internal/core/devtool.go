package core

import "strings"

// Devtool is a source map descriptor in the usual hyphenated form, e.g.
// "eval-cheap-module-source-map" or "hidden-nosources-source-map". The empty
// string and "false" disable source maps.
type Devtool string

func (d Devtool) has(part string) bool {
	for _, p := range strings.Split(string(d), "-") {
		if p == part {
			return true
		}
	}
	return false
}

// Enabled reports whether any source map is produced.
func (d Devtool) Enabled() bool { return d != "" && d != "false" }

// SourceMap reports whether the descriptor asks for a source map file or
// data URL.
func (d Devtool) SourceMap() bool { return strings.HasSuffix(string(d), "source-map") }

func (d Devtool) Eval() bool      { return d.has("eval") }
func (d Devtool) Inline() bool    { return d.has("inline") }
func (d Devtool) Hidden() bool    { return d.has("hidden") }
func (d Devtool) Cheap() bool     { return d.has("cheap") }
func (d Devtool) NoSources() bool { return d.has("nosources") }

// DevtoolPluginOptions configures the source map plugin. It is derived from
// the devtool descriptor and the output options.
type DevtoolPluginOptions struct {
	Inline    bool
	Append    bool
	Namespace string
	Columns   bool
	NoSources bool
	// PublicPath is reserved and currently always nil.
	PublicPath *string
}

// NewDevtoolPluginOptions derives plugin options from a descriptor and the
// output unique name.
func NewDevtoolPluginOptions(d Devtool, out OutputOptions) DevtoolPluginOptions {
	return DevtoolPluginOptions{
		Inline:    d.Inline(),
		Append:    !d.Hidden(),
		Namespace: out.UniqueName,
		Columns:   !d.Cheap(),
		NoSources: d.NoSources(),
	}
}
