package observability

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// AuditEventType categorizes audit events.
type AuditEventType string

const (
	AuditEventAssemble      AuditEventType = "assemble"
	AuditEventBuildStart    AuditEventType = "build.start"
	AuditEventBuildComplete AuditEventType = "build.complete"
	AuditEventBuildError    AuditEventType = "build.error"
	AuditEventServeStart    AuditEventType = "serve.start"
)

// AuditEvent is a single JSONL audit entry.
type AuditEvent struct {
	Timestamp   time.Time              `json:"timestamp"`
	EventType   AuditEventType         `json:"event_type"`
	SessionID   string                 `json:"session_id"`
	Success     bool                   `json:"success"`
	Duration    time.Duration          `json:"duration_ms,omitempty"`
	Message     string                 `json:"message,omitempty"`
	Details     map[string]interface{} `json:"details,omitempty"`
	ErrorDetail string                 `json:"error_detail,omitempty"`
}

// AuditLogger writes build lifecycle events. The zero value is disabled.
type AuditLogger struct {
	mu        sync.Mutex
	writer    io.Writer
	sessionID string
	enabled   bool
}

// AuditConfig configures the audit logger.
type AuditConfig struct {
	Enabled    bool
	OutputPath string // File path or "stdout"/"stderr"
	SessionID  string
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(config *AuditConfig) (*AuditLogger, error) {
	if config == nil || !config.Enabled {
		return &AuditLogger{}, nil
	}

	var writer io.Writer
	switch config.OutputPath {
	case "stdout", "":
		writer = os.Stdout
	case "stderr":
		writer = os.Stderr
	default:
		f, err := os.OpenFile(config.OutputPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("open audit log: %w", err)
		}
		writer = f
	}

	sessionID := config.SessionID
	if sessionID == "" {
		sessionID = fmt.Sprintf("session-%d", time.Now().UnixNano())
	}

	return &AuditLogger{
		writer:    writer,
		sessionID: sessionID,
		enabled:   true,
	}, nil
}

// NewWriterAuditLogger returns an enabled logger writing to w.
func NewWriterAuditLogger(w io.Writer, sessionID string) *AuditLogger {
	return &AuditLogger{writer: w, sessionID: sessionID, enabled: true}
}

// Log writes an audit event.
func (l *AuditLogger) Log(event *AuditEvent) error {
	if l == nil || !l.enabled {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.SessionID == "" {
		event.SessionID = l.sessionID
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}

	_, err = fmt.Fprintf(l.writer, "%s\n", data)
	return err
}

// LogAssemble logs the assembled plugin order.
func (l *AuditLogger) LogAssemble(platform string, plugins []string) {
	l.Log(&AuditEvent{
		EventType: AuditEventAssemble,
		Success:   true,
		Message:   fmt.Sprintf("Assembled %d plugins for %s", len(plugins), platform),
		Details: map[string]interface{}{
			"platform": platform,
			"plugins":  plugins,
		},
	})
}

// LogBuildStart logs the start of a build.
func (l *AuditLogger) LogBuildStart(context string, entries int) {
	l.Log(&AuditEvent{
		EventType: AuditEventBuildStart,
		Success:   true,
		Message:   "Build started",
		Details: map[string]interface{}{
			"context": context,
			"entries": entries,
		},
	})
}

// LogBuildEnd logs a build result.
func (l *AuditLogger) LogBuildEnd(duration time.Duration, assets int, err error) {
	if err != nil {
		l.Log(&AuditEvent{
			EventType:   AuditEventBuildError,
			Success:     false,
			Duration:    duration,
			Message:     "Build failed",
			ErrorDetail: err.Error(),
		})
		return
	}
	l.Log(&AuditEvent{
		EventType: AuditEventBuildComplete,
		Success:   true,
		Duration:  duration,
		Message:   fmt.Sprintf("Build emitted %d assets", assets),
		Details:   map[string]interface{}{"assets": assets},
	})
}

// LogServeStart logs the dev server binding.
func (l *AuditLogger) LogServeStart(addr, root string) {
	l.Log(&AuditEvent{
		EventType: AuditEventServeStart,
		Success:   true,
		Message:   "Dev server listening on " + addr,
		Details: map[string]interface{}{
			"addr": addr,
			"root": root,
		},
	})
}

// Close closes the audit logger (if using a file).
func (l *AuditLogger) Close() error {
	if l == nil {
		return nil
	}
	if closer, ok := l.writer.(io.Closer); ok {
		if closer != os.Stdout && closer != os.Stderr {
			return closer.Close()
		}
	}
	return nil
}
