// Package metrics summarizes a single build run for the CLI.
package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/efebarandurmaz/rspack/internal/core"
)

// BuildMetrics collects statistics for one build.
type BuildMetrics struct {
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at,omitempty"`
	Duration   time.Duration `json:"duration_ms,omitempty"`
	Target     string        `json:"target"`
	Devtool    string        `json:"devtool,omitempty"`
	Entries    int           `json:"entries"`
	Plugins    []string      `json:"plugins"`
	Assets     []AssetStat   `json:"assets"`
	TotalBytes int           `json:"total_bytes"`
	Remote     bool          `json:"remote,omitempty"`
	Errors     []string      `json:"errors,omitempty"`
}

// AssetStat is one emitted file.
type AssetStat struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

// New starts tracking a build.
func New() *BuildMetrics {
	return &BuildMetrics{StartedAt: time.Now()}
}

// CollectCompiler records the assembled configuration.
func (m *BuildMetrics) CollectCompiler(c *core.Compiler) {
	opts := c.Options()
	m.Target = opts.Target.Platform.String()
	m.Devtool = string(opts.Devtool)
	m.Entries = len(opts.Entry)
	m.Plugins = m.Plugins[:0]
	for _, p := range c.Plugins() {
		m.Plugins = append(m.Plugins, p.Name())
	}
}

// CollectCompilation records the emitted assets.
func (m *BuildMetrics) CollectCompilation(comp *core.Compilation) {
	if comp == nil {
		return
	}
	for _, a := range comp.Assets() {
		m.AddAsset(a.Name, len(a.Source))
	}
}

// AddAsset records one emitted file.
func (m *BuildMetrics) AddAsset(name string, size int) {
	m.Assets = append(m.Assets, AssetStat{Name: name, Size: size})
	m.TotalBytes += size
}

// Finish marks the build as complete. A non-nil err is recorded.
func (m *BuildMetrics) Finish(err error) {
	m.FinishedAt = time.Now()
	m.Duration = m.FinishedAt.Sub(m.StartedAt)
	if err != nil {
		m.Errors = append(m.Errors, err.Error())
	}
}

// PrintSummary writes a human-readable summary.
func (m *BuildMetrics) PrintSummary(w io.Writer) {
	fmt.Fprintf(w, "\n╔══════════════════════════════════════╗\n")
	fmt.Fprintf(w, "║          RSPACK BUILD REPORT         ║\n")
	fmt.Fprintf(w, "╠══════════════════════════════════════╣\n")
	fmt.Fprintf(w, "║ Duration:    %-23s║\n", m.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "║ Target:      %-23s║\n", m.Target)
	fmt.Fprintf(w, "║ Entries:     %-23d║\n", m.Entries)
	if m.Remote {
		fmt.Fprintf(w, "║ Mode:        %-23s║\n", "remote")
	}
	fmt.Fprintf(w, "╠══════════════════════════════════════╣\n")
	fmt.Fprintf(w, "║ PLUGINS (%d)\n", len(m.Plugins))
	for i, p := range m.Plugins {
		fmt.Fprintf(w, "║   %2d. %s\n", i+1, p)
	}
	fmt.Fprintf(w, "╠══════════════════════════════════════╣\n")
	fmt.Fprintf(w, "║ ASSETS (%s)\n", formatBytes(m.TotalBytes))
	for _, a := range m.Assets {
		fmt.Fprintf(w, "║   %-24s %10s\n", a.Name, formatBytes(a.Size))
	}
	if len(m.Errors) > 0 {
		fmt.Fprintf(w, "╠══════════════════════════════════════╣\n")
		fmt.Fprintf(w, "║ ERRORS\n")
		for _, e := range m.Errors {
			fmt.Fprintf(w, "║   • %s\n", e)
		}
	}
	fmt.Fprintf(w, "╚══════════════════════════════════════╝\n")
}

// JSON returns the metrics as formatted JSON.
func (m *BuildMetrics) JSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

func formatBytes(b int) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
