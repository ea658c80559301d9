package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// LogRecord is one captured log call with its attributes flattened.
// Group members are keyed as "group.key".
type LogRecord struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// LogCapture is a slog.Handler that keeps every record in memory. Loggers
// derived through With or WithGroup write into the same capture.
type LogCapture struct {
	mu      *sync.Mutex
	records *[]LogRecord
	bound   []slog.Attr
	group   string
	t       testing.TB
}

// NewTestLogger returns a logger backed by a fresh capture. Records are
// echoed to t.Log so they show up for failing tests.
func NewTestLogger(t testing.TB) (*slog.Logger, *LogCapture) {
	c := &LogCapture{mu: &sync.Mutex{}, records: &[]LogRecord{}, t: t}
	return slog.New(c), c
}

func (c *LogCapture) Enabled(context.Context, slog.Level) bool { return true }

func (c *LogCapture) Handle(_ context.Context, r slog.Record) error {
	rec := LogRecord{
		Time:    r.Time,
		Level:   r.Level,
		Message: r.Message,
		Attrs:   make(map[string]any, len(c.bound)+r.NumAttrs()),
	}
	for _, a := range c.bound {
		rec.Attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		rec.Attrs[c.group+a.Key] = a.Value.Any()
		return true
	})

	c.mu.Lock()
	*c.records = append(*c.records, rec)
	c.mu.Unlock()

	if c.t != nil {
		c.t.Logf("%s %q %v", r.Level, r.Message, rec.Attrs)
	}
	return nil
}

func (c *LogCapture) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := *c
	derived.bound = append(append([]slog.Attr(nil), c.bound...), prefixed(c.group, attrs)...)
	return &derived
}

func (c *LogCapture) WithGroup(name string) slog.Handler {
	if name == "" {
		return c
	}
	derived := *c
	derived.group = c.group + name + "."
	return &derived
}

func prefixed(group string, attrs []slog.Attr) []slog.Attr {
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: group + a.Key, Value: a.Value}
	}
	return out
}

// Records returns a snapshot of everything captured so far
func (c *LogCapture) Records() []LogRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]LogRecord(nil), *c.records...)
}

// AtLevel returns the records logged at exactly level
func (c *LogCapture) AtLevel(level slog.Level) []LogRecord {
	var out []LogRecord
	for _, r := range c.Records() {
		if r.Level == level {
			out = append(out, r)
		}
	}
	return out
}

// HasMessage reports whether any record's message contains substr
func (c *LogCapture) HasMessage(substr string) bool {
	for _, r := range c.Records() {
		if strings.Contains(r.Message, substr) {
			return true
		}
	}
	return false
}

// HasAttr reports whether any record carries key=value. Integers are stored
// by slog as int64.
func (c *LogCapture) HasAttr(key string, value any) bool {
	for _, r := range c.Records() {
		if v, ok := r.Attrs[key]; ok && v == value {
			return true
		}
	}
	return false
}

func (c *LogCapture) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(*c.records)
}

// Reset drops the captured records
func (c *LogCapture) Reset() {
	c.mu.Lock()
	*c.records = (*c.records)[:0]
	c.mu.Unlock()
}

func messages(records []LogRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Message
	}
	return out
}

// AssertLogContains fails t unless a record at level contains message
func AssertLogContains(t testing.TB, logs *LogCapture, level slog.Level, message string) {
	t.Helper()
	records := logs.AtLevel(level)
	for _, r := range records {
		if strings.Contains(r.Message, message) {
			return
		}
	}
	assert.Failf(t, "log message not found",
		"no %s record contains %q; %s records: %q", level, message, level, messages(records))
}

// AssertLogAttr fails t unless some record carries key=value
func AssertLogAttr(t testing.TB, logs *LogCapture, key string, value any) {
	t.Helper()
	if !logs.HasAttr(key, value) {
		assert.Failf(t, "log attribute not found", "no record carries %s=%v", key, value)
	}
}

// AssertNoErrors fails t for every error-level record
func AssertNoErrors(t testing.TB, logs *LogCapture) {
	t.Helper()
	for _, r := range logs.AtLevel(slog.LevelError) {
		assert.Failf(t, "unexpected error log", "%s %v", r.Message, r.Attrs)
	}
}
