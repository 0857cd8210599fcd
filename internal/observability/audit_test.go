package observability

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func decodeEvents(t *testing.T, b *bytes.Buffer) []AuditEvent {
	t.Helper()
	var events []AuditEvent
	sc := bufio.NewScanner(b)
	for sc.Scan() {
		var e AuditEvent
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("invalid JSONL line %q: %v", sc.Text(), err)
		}
		events = append(events, e)
	}
	return events
}

func TestAuditLogger_Disabled(t *testing.T) {
	l, err := NewAuditLogger(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.Log(&AuditEvent{EventType: AuditEventBuildStart}); err != nil {
		t.Fatalf("disabled logger should not fail: %v", err)
	}

	var nilLogger *AuditLogger
	nilLogger.LogBuildStart(".", 1)
}

func TestAuditLogger_BuildLifecycle(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterAuditLogger(&buf, "s1")

	l.LogAssemble("web", []string{"a", "b"})
	l.LogBuildStart("/proj", 2)
	l.LogBuildEnd(time.Second, 3, nil)
	l.LogBuildEnd(time.Second, 0, errors.New("broken entry"))
	l.LogServeStart("127.0.0.1:3031", "/proj/dist")

	events := decodeEvents(t, &buf)
	want := []AuditEventType{
		AuditEventAssemble,
		AuditEventBuildStart,
		AuditEventBuildComplete,
		AuditEventBuildError,
		AuditEventServeStart,
	}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(events))
	}
	for i, e := range events {
		if e.EventType != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], e.EventType)
		}
		if e.SessionID != "s1" {
			t.Errorf("event %d: expected session s1, got %q", i, e.SessionID)
		}
		if e.Timestamp.IsZero() {
			t.Errorf("event %d: timestamp not filled", i)
		}
	}
	if events[3].Success || events[3].ErrorDetail != "broken entry" {
		t.Fatalf("unexpected error event: %+v", events[3])
	}
}

func TestAuditLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	l, err := NewAuditLogger(&AuditConfig{Enabled: true, OutputPath: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	l.LogBuildStart(".", 1)
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	events := decodeEvents(t, bytes.NewBuffer(data))
	if len(events) != 1 || events[0].EventType != AuditEventBuildStart {
		t.Fatalf("unexpected events: %+v", events)
	}
	if events[0].SessionID == "" {
		t.Fatal("expected generated session id")
	}
}
