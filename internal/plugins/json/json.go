// Package json turns JSON files into modules exporting the parsed value.
package json

import (
	"bytes"
	stdjson "encoding/json"
	"fmt"

	"github.com/efebarandurmaz/rspack/internal/core"
)

// Plugin handles .json modules.
type Plugin struct{}

func (Plugin) Name() string { return "rspack.JsonPlugin" }

func (Plugin) Apply(ctx *core.ApplyContext) error {
	ctx.TapModule(core.ModuleTypeJSON, func(_ *core.Compilation, m *core.Module) error {
		var buf bytes.Buffer
		if err := stdjson.Compact(&buf, m.Source); err != nil {
			return fmt.Errorf("parsing %s: %w", m.Request, err)
		}
		m.Code = "module.exports = " + buf.String() + ";"
		return nil
	})
	return nil
}
