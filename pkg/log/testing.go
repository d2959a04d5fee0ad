package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// Entry is one record captured by TestLogger. Error values are stored as
// their message; other values keep their Go type.
type Entry struct {
	Level   Level
	Message string
	Fields  map[string]any
}

// recorder is shared by a TestLogger and every logger derived from it via With.
type recorder struct {
	mu      sync.Mutex
	entries []Entry
	buf     bytes.Buffer
}

// TestLogger captures records in memory so tests can assert on messages and
// structured fields, e.g. the rows dropped by the sex filter.
type TestLogger struct {
	rec    *recorder
	level  Level
	fields map[string]any
}

// NewTestLogger returns a logger capturing records at level and above, plus
// the buffer holding the same records as JSON lines.
//
//	logger, _ := log.NewTestLogger(log.LevelDebug)
//	builder.Transform(records, dataset.Train)
//	e, ok := logger.Find("rows dropped by filter")
func NewTestLogger(level Level) (*TestLogger, *bytes.Buffer) {
	rec := &recorder{}
	return &TestLogger{rec: rec, level: level}, &rec.buf
}

func (t *TestLogger) Debug(msg string, fields ...any) { t.record(LevelDebug, msg, fields) }
func (t *TestLogger) Info(msg string, fields ...any)  { t.record(LevelInfo, msg, fields) }
func (t *TestLogger) Warn(msg string, fields ...any)  { t.record(LevelWarn, msg, fields) }

// Error stores a leading error value under ErrAttrKey, as the zerolog backend does.
func (t *TestLogger) Error(msg string, fields ...any) {
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			fields = append([]any{ErrAttrKey, err}, fields[1:]...)
		}
	}
	t.record(LevelError, msg, fields)
}

func (t *TestLogger) With(fields ...any) Logger {
	merged := make(map[string]any, len(t.fields)+len(fields)/2)
	for k, v := range t.fields {
		merged[k] = v
	}
	addFields(merged, fields)
	return &TestLogger{rec: t.rec, level: t.level, fields: merged}
}

func (t *TestLogger) Enabled(_ context.Context, level Level) bool {
	return level >= t.level
}

func (t *TestLogger) record(level Level, msg string, fields []any) {
	if level < t.level {
		return
	}
	e := Entry{Level: level, Message: msg, Fields: make(map[string]any, len(t.fields)+len(fields)/2)}
	for k, v := range t.fields {
		e.Fields[k] = v
	}
	addFields(e.Fields, fields)

	line := map[string]any{"level": level.String(), "message": msg}
	for k, v := range e.Fields {
		line[k] = v
	}
	data, err := json.Marshal(line)
	if err != nil {
		data = []byte(fmt.Sprintf(`{"level":%q,"message":%q,"marshal_error":%q}`, level, msg, err))
	}

	t.rec.mu.Lock()
	defer t.rec.mu.Unlock()
	t.rec.entries = append(t.rec.entries, e)
	t.rec.buf.Write(data)
	t.rec.buf.WriteByte('\n')
}

func addFields(dst map[string]any, fields []any) {
	for i := 0; i+1 < len(fields); i += 2 {
		v := fields[i+1]
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		dst[fmt.Sprintf("%v", fields[i])] = v
	}
}

// Entries returns a copy of the captured records in log order.
func (t *TestLogger) Entries() []Entry {
	t.rec.mu.Lock()
	defer t.rec.mu.Unlock()
	return append([]Entry(nil), t.rec.entries...)
}

// Find returns the first record whose message equals msg.
func (t *TestLogger) Find(msg string) (Entry, bool) {
	for _, e := range t.Entries() {
		if e.Message == msg {
			return e, true
		}
	}
	return Entry{}, false
}

// ContainsMessage reports whether any record message contains substr.
func (t *TestLogger) ContainsMessage(substr string) bool {
	for _, e := range t.Entries() {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// ContainsField reports whether any record carries key with a value equal to value.
func (t *TestLogger) ContainsField(key string, value any) bool {
	for _, e := range t.Entries() {
		if v, ok := e.Fields[key]; ok && reflect.DeepEqual(v, value) {
			return true
		}
	}
	return false
}

// GetBuffer returns the JSON-lines view of the captured records.
func (t *TestLogger) GetBuffer() *bytes.Buffer {
	return &t.rec.buf
}

// TestLoggerProvider hands out TestLoggers sharing one recorder; install it
// with SetProvider to capture the records of a whole pipeline stage.
type TestLoggerProvider struct {
	*TestLogger
}

func NewTestLoggerProvider(level Level) (*TestLoggerProvider, *bytes.Buffer) {
	logger, buf := NewTestLogger(level)
	return &TestLoggerProvider{TestLogger: logger}, buf
}

func (p *TestLoggerProvider) GetLogger() Logger {
	return p.TestLogger
}

func (p *TestLoggerProvider) GetLoggerWithName(name string) Logger {
	return p.TestLogger.With(ComponentKey, name)
}

func (p *TestLoggerProvider) SetLevel(level Level) {
	p.level = level
}
