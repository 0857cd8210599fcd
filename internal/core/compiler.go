package core

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/efebarandurmaz/rspack/internal/observability"
)

// Compiler owns the final options and the assembled plugin list.
type Compiler struct {
	options CompilerOptions
	plugins []Plugin

	mu   sync.RWMutex
	last *Compilation
}

// NewCompiler creates a compiler. The plugin slice is owned by the compiler
// from here on. An empty Output.Path defaults to <Context>/dist.
func NewCompiler(options CompilerOptions, plugins []Plugin) *Compiler {
	if options.Output.Path == "" {
		options.Output.Path = filepath.Join(options.Context, "dist")
	}
	return &Compiler{options: options, plugins: plugins}
}

// Options returns the compiler options.
func (c *Compiler) Options() *CompilerOptions { return &c.options }

// Plugins returns a copy of the plugin list in application order.
func (c *Compiler) Plugins() []Plugin {
	out := make([]Plugin, len(c.plugins))
	copy(out, c.plugins)
	return out
}

// LastCompilation returns the compilation of the most recent successful
// Build, or nil.
func (c *Compiler) LastCompilation() *Compilation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}

// Build applies every plugin, renders each entry and writes the resulting
// assets to Output.Path.
func (c *Compiler) Build(ctx context.Context) (err error) {
	ctx, span := observability.StartBuildSpan(ctx, len(c.plugins), len(c.options.Entry))
	defer func() {
		observability.RecordError(span, err)
		span.End()
	}()

	h := &hooks{module: make(map[ModuleType][]tap[ModuleHook])}
	for _, p := range c.plugins {
		_, pspan := observability.StartPluginSpan(ctx, p.Name())
		perr := p.Apply(&ApplyContext{Options: &c.options, plugin: p.Name(), hooks: h})
		observability.RecordError(pspan, perr)
		pspan.End()
		if perr != nil {
			return &BuildError{Stage: StageApply, Plugin: p.Name(), Err: perr}
		}
	}
	slog.Debug("Plugins applied", "count", len(c.plugins))

	comp := newCompilation(&c.options, h)

	names := make([]string, 0, len(c.options.Entry))
	for name := range c.options.Entry {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		m, err := c.buildModule(comp, c.options.Entry[name])
		if err != nil {
			return err
		}
		chunk := &Chunk{Name: name, Modules: []*Module{m}}
		comp.Chunks = append(comp.Chunks, chunk)
		if err := c.renderChunk(comp, chunk); err != nil {
			return err
		}
	}

	for _, t := range h.processAssets {
		if err := t.fn(comp); err != nil {
			return &BuildError{Stage: StageProcess, Plugin: t.plugin, Err: err}
		}
	}

	if err := c.emit(comp); err != nil {
		return &BuildError{Stage: StageEmit, Err: err}
	}

	var size int
	for _, a := range comp.Assets() {
		size += len(a.Source)
	}
	observability.RecordBuildResult(span, len(comp.assets), size)
	slog.Info("Build complete", "assets", len(comp.assets), "bytes", size, "output", c.options.Output.Path)

	c.mu.Lock()
	c.last = comp
	c.mu.Unlock()
	return nil
}

func (c *Compiler) buildModule(comp *Compilation, request string) (*Module, error) {
	for _, t := range comp.hooks.resolve {
		if code, ok := t.fn(request); ok {
			return &Module{Request: request, Type: ModuleTypeJS, Code: code}, nil
		}
	}

	path := request
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.options.Context, request)
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &BuildError{Stage: StageModule, Err: fmt.Errorf("reading %s: %w", request, err)}
	}

	m := &Module{Request: request, Path: path, Type: TypeForPath(path), Source: src}
	taps := comp.hooks.module[m.Type]
	for _, t := range taps {
		if err := t.fn(comp, m); err != nil {
			return nil, &BuildError{Stage: StageModule, Plugin: t.plugin, Err: err}
		}
	}
	if m.Code == "" && len(m.Source) > 0 {
		return nil, &BuildError{Stage: StageModule, Err: fmt.Errorf("no plugin handles %s modules (%s)", m.Type, request)}
	}
	return m, nil
}

func (c *Compiler) renderChunk(comp *Compilation, chunk *Chunk) error {
	for _, t := range comp.hooks.render {
		asset, err := t.fn(comp, chunk)
		if err != nil {
			return &BuildError{Stage: StageRender, Plugin: t.plugin, Err: err}
		}
		if asset != nil {
			comp.EmitAsset(asset)
			return nil
		}
	}
	return &BuildError{Stage: StageRender, Err: fmt.Errorf("no plugin renders chunk %q", chunk.Name)}
}

func (c *Compiler) emit(comp *Compilation) error {
	out := c.options.Output.Path
	if err := os.MkdirAll(out, 0o755); err != nil {
		return err
	}
	for _, a := range comp.Assets() {
		p := filepath.Join(out, filepath.FromSlash(a.Name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(p, a.Source, 0o644); err != nil {
			return err
		}
	}
	return nil
}
