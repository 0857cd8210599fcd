package metrics

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/efebarandurmaz/rspack/internal/core"
)

type stubPlugin string

func (p stubPlugin) Name() string { return string(p) }

func (p stubPlugin) Apply(*core.ApplyContext) error { return nil }

func TestBuildMetrics(t *testing.T) {
	c := core.NewCompiler(core.CompilerOptions{
		Target:  core.Node("18"),
		Devtool: "source-map",
		Entry:   map[string]string{"main": "./a.js", "admin": "./b.js"},
	}, []core.Plugin{stubPlugin("a"), stubPlugin("b")})

	m := New()
	m.CollectCompiler(c)
	m.AddAsset("main.js", 2048)
	m.AddAsset("main.js.map", 100)
	m.Finish(nil)

	if m.Target != "node18" || m.Entries != 2 || len(m.Plugins) != 2 {
		t.Fatalf("unexpected metrics %+v", m)
	}
	if m.TotalBytes != 2148 {
		t.Fatalf("expected 2148 bytes, got %d", m.TotalBytes)
	}
	if m.FinishedAt.Before(m.StartedAt) || len(m.Errors) != 0 {
		t.Fatalf("unexpected finish state %+v", m)
	}

	data, err := m.JSON()
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["target"] != "node18" || decoded["total_bytes"] != float64(2148) {
		t.Fatalf("unexpected JSON %s", data)
	}

	var buf bytes.Buffer
	m.PrintSummary(&buf)
	for _, want := range []string{"RSPACK BUILD REPORT", "PLUGINS (2)", "main.js", "2.0 KB"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("summary missing %q:\n%s", want, buf.String())
		}
	}
}

func TestBuildMetrics_Error(t *testing.T) {
	m := New()
	m.CollectCompilation(nil)
	m.Finish(errors.New("build failed"))

	var buf bytes.Buffer
	m.PrintSummary(&buf)
	if !strings.Contains(buf.String(), "ERRORS") || !strings.Contains(buf.String(), "build failed") {
		t.Fatalf("expected errors section:\n%s", buf.String())
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int]string{
		10:      "10 B",
		2048:    "2.0 KB",
		3 << 20: "3.0 MB",
	}
	for in, want := range tests {
		if got := formatBytes(in); got != want {
			t.Errorf("formatBytes(%d) = %s, want %s", in, got, want)
		}
	}
}
