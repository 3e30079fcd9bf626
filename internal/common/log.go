// File path: internal/common/log.go
package common

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// The capture buffer keeps enough history to review a handful of mapping
// runs without growing unbounded; RECIPLAN_LOG_HISTORY overrides it.
const defaultLogHistory = 512

// Pipeline components recognised when deriving LogEntry.Component from a
// "component: message" prefix. Messages outside this set keep an empty
// component rather than guessing.
var pipelineComponents = map[string]struct{}{
	"reciplan":   {},
	"recipe":     {},
	"catalog":    {},
	"vector":     {},
	"search":     {},
	"confidence": {},
	"mapper":     {},
	"llm":        {},
	"agent":      {},
	"api":        {},
	"telemetry":  {},
	"trace":      {},
}

var (
	logger     *slog.Logger
	loggerOnce sync.Once
	sink       = newLogSink(historyFromEnv())
)

// LogEntry is one captured record from the shared logger, shaped for the
// /v1/logs review endpoint.
type LogEntry struct {
	Time       time.Time              `json:"time"`
	Level      string                 `json:"level"`
	Message    string                 `json:"message"`
	Component  string                 `json:"component,omitempty"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// Logger returns the process-wide slog logger. Level comes from
// RECIPLAN_LOG_LEVEL (LOG_LEVEL as fallback), output format from
// RECIPLAN_LOG_FORMAT (text or json). Every record is also captured in
// the in-memory history served by LogEntries.
func Logger() *slog.Logger {
	loggerOnce.Do(func() {
		opts := &slog.HandlerOptions{Level: levelFromEnv()}
		var base slog.Handler
		if strings.EqualFold(strings.TrimSpace(os.Getenv("RECIPLAN_LOG_FORMAT")), "json") {
			base = slog.NewJSONHandler(os.Stdout, opts)
		} else {
			base = slog.NewTextHandler(os.Stdout, opts)
		}
		logger = slog.New(&captureHandler{next: base, sink: sink})
	})
	return logger
}

// LogEntries returns a copy of the captured history, oldest first.
func LogEntries() []LogEntry {
	if sink == nil {
		return nil
	}
	return sink.entries()
}

func levelFromEnv() slog.Level {
	value := strings.TrimSpace(os.Getenv("RECIPLAN_LOG_LEVEL"))
	if value == "" {
		value = strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	}
	switch strings.ToLower(value) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func historyFromEnv() int {
	if raw := strings.TrimSpace(os.Getenv("RECIPLAN_LOG_HISTORY")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultLogHistory
}

// captureHandler tees every record into the sink after the wrapped
// handler has written it.
type captureHandler struct {
	next slog.Handler
	sink *logSink
}

func (h *captureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *captureHandler) Handle(ctx context.Context, record slog.Record) error {
	err := h.next.Handle(ctx, record)
	if h.sink != nil {
		h.sink.capture(record)
	}
	return err
}

func (h *captureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &captureHandler{next: h.next.WithAttrs(attrs), sink: h.sink}
}

func (h *captureHandler) WithGroup(name string) slog.Handler {
	return &captureHandler{next: h.next.WithGroup(name), sink: h.sink}
}

type logSink struct {
	mu      sync.RWMutex
	max     int
	history []LogEntry
}

func newLogSink(max int) *logSink {
	if max <= 0 {
		max = defaultLogHistory
	}
	return &logSink{max: max}
}

func (s *logSink) capture(record slog.Record) {
	entry := buildLogEntry(record)
	s.mu.Lock()
	s.history = append(s.history, entry)
	if len(s.history) > s.max {
		s.history = s.history[len(s.history)-s.max:]
	}
	s.mu.Unlock()
}

func (s *logSink) entries() []LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.history) == 0 {
		return nil
	}
	out := make([]LogEntry, len(s.history))
	copy(out, s.history)
	return out
}

func buildLogEntry(record slog.Record) LogEntry {
	rec := record.Clone()
	entry := LogEntry{
		Time:    rec.Time.UTC(),
		Level:   strings.ToLower(rec.Level.String()),
		Message: rec.Message,
	}
	if rec.Time.IsZero() {
		entry.Time = time.Now().UTC()
	}

	var attrs map[string]interface{}
	rec.Attrs(func(a slog.Attr) bool {
		if a.Key == "component" {
			entry.Component = strings.TrimSpace(attrString(a.Value))
			return true
		}
		if attrs == nil {
			attrs = make(map[string]interface{})
		}
		attrs[a.Key] = attrValue(a.Value)
		return true
	})
	entry.Attributes = attrs

	if entry.Component == "" {
		entry.Component = componentFromMessage(entry.Message)
	}
	return entry
}

// componentFromMessage derives the component from the "mapper: ..." prefix
// convention used throughout the service.
func componentFromMessage(message string) string {
	idx := strings.Index(message, ":")
	if idx <= 0 {
		return ""
	}
	prefix := strings.TrimSpace(message[:idx])
	if _, ok := pipelineComponents[prefix]; ok {
		return prefix
	}
	return ""
}

func attrValue(v slog.Value) interface{} {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindBool:
		return v.Bool()
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		return v.Uint64()
	case slog.KindFloat64:
		return v.Float64()
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().UTC()
	default:
		return v.Any()
	}
}

func attrString(v slog.Value) string {
	value := attrValue(v)
	switch val := value.(type) {
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
