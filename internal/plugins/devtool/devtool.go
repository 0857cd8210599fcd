// Package devtool produces source maps for emitted JavaScript assets.
package devtool

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/efebarandurmaz/rspack/internal/core"
)

// Plugin emits or inlines source maps according to its options. It must be
// the last plugin so that every earlier asset rewrite is already applied.
type Plugin struct {
	options core.DevtoolPluginOptions
}

// New creates the devtool plugin.
func New(options core.DevtoolPluginOptions) *Plugin {
	return &Plugin{options: options}
}

func (p *Plugin) Name() string { return "rspack.DevtoolPlugin" }

// Options returns the derived plugin options.
func (p *Plugin) Options() core.DevtoolPluginOptions { return p.options }

// SourceMap is a version 3 source map.
type SourceMap struct {
	Version        int      `json:"version"`
	File           string   `json:"file"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

func (p *Plugin) Apply(ctx *core.ApplyContext) error {
	if !ctx.Options.Devtool.SourceMap() {
		return nil
	}
	ctx.TapProcessAssets(func(c *core.Compilation) error {
		for _, a := range c.Assets() {
			if !strings.HasSuffix(a.Name, ".js") || len(a.Info.SourceFiles) == 0 {
				continue
			}
			if err := p.process(c, a); err != nil {
				return fmt.Errorf("source map for %s: %w", a.Name, err)
			}
		}
		return nil
	})
	return nil
}

func (p *Plugin) process(c *core.Compilation, a *core.Asset) error {
	sm := p.build(a)
	data, err := json.Marshal(sm)
	if err != nil {
		return err
	}

	if p.options.Inline {
		if p.options.Append {
			url := "data:application/json;charset=utf-8;base64," + base64.StdEncoding.EncodeToString(data)
			a.Source = appendComment(a.Source, url)
		}
		return nil
	}

	mapName := a.Name + ".map"
	c.EmitAsset(&core.Asset{Name: mapName, Source: data})
	if a.Info.Related == nil {
		a.Info.Related = make(map[string]string)
	}
	a.Info.Related["sourceMap"] = mapName
	if p.options.Append {
		url := path.Base(mapName)
		if p.options.PublicPath != nil {
			url = *p.options.PublicPath + mapName
		}
		a.Source = appendComment(a.Source, url)
	}
	return nil
}

func appendComment(src []byte, url string) []byte {
	if len(src) > 0 && src[len(src)-1] != '\n' {
		src = append(src, '\n')
	}
	return append(src, "//# sourceMappingURL="+url+"\n"...)
}

type segment struct {
	source, line, column int
}

func (p *Plugin) build(a *core.Asset) *SourceMap {
	sm := &SourceMap{
		Version: 3,
		File:    path.Base(a.Name),
		Names:   []string{},
	}

	segs := make(map[int]segment)
	for i, file := range a.Info.SourceFiles {
		sm.Sources = append(sm.Sources, "webpack://"+p.options.Namespace+"/./"+file)
		var src []byte
		if i < len(a.Info.Sources) {
			src = a.Info.Sources[i]
		}
		if !p.options.NoSources {
			sm.SourcesContent = append(sm.SourcesContent, string(src))
		}
		if i >= len(a.Info.SourceLines) || i >= len(a.Info.GeneratedLines) {
			continue
		}

		srcLines := strings.Split(string(src), "\n")
		start, n := a.Info.SourceLines[i], a.Info.GeneratedLines[i]
		for k := 0; k < n; k++ {
			line := k
			if line >= len(srcLines) {
				line = len(srcLines) - 1
			}
			col := 0
			if p.options.Columns {
				col = indent(srcLines[line])
			}
			segs[start+k] = segment{source: i, line: line, column: col}
		}
	}

	sm.Mappings = encodeMappings(strings.Count(string(a.Source), "\n")+1, segs)
	return sm
}

func indent(s string) int {
	return len(s) - len(strings.TrimLeft(s, " \t"))
}

// encodeMappings encodes one segment per mapped generated line. Generated
// and original columns are equal because generated module code keeps the
// source's indentation.
func encodeMappings(lines int, segs map[int]segment) string {
	var b strings.Builder
	var prev segment
	for g := 0; g < lines; g++ {
		if g > 0 {
			b.WriteByte(';')
		}
		s, ok := segs[g]
		if !ok {
			continue
		}
		writeVLQ(&b, s.column)
		writeVLQ(&b, s.source-prev.source)
		writeVLQ(&b, s.line-prev.line)
		writeVLQ(&b, s.column-prev.column)
		prev = s
	}
	return strings.TrimRight(b.String(), ";")
}

const base64Digits = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

func writeVLQ(b *strings.Builder, v int) {
	u := v << 1
	if v < 0 {
		u = (-v)<<1 | 1
	}
	for {
		digit := u & 31
		u >>= 5
		if u > 0 {
			digit |= 32
		}
		b.WriteByte(base64Digits[digit])
		if u == 0 {
			return
		}
	}
}
