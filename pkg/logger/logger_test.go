package logger

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// recorder 记录写入的日志条目
type recorder struct {
	mu      sync.Mutex
	entries []zapcore.Entry
	fields  [][]zapcore.Field
}

func (r *recorder) OnWrite(entry zapcore.Entry, fields []zapcore.Field) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	r.fields = append(r.fields, fields)
	return nil
}

func (r *recorder) fieldMap(i int) map[string]any {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range r.fields[i] {
		f.AddTo(enc)
	}
	return enc.Fields
}

func TestNew(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		config *Config
	}{
		{"nil config", nil},
		{"console", &Config{Level: InfoLevel, Format: ConsoleFormat, Console: true}},
		{"file", &Config{File: filepath.Join(dir, "app.log")}},
		{"rotate", &Config{Rotate: &RotateConfig{Filename: filepath.Join(dir, "rotate.log")}}},
		{"sampling", &Config{Console: true, Sampling: &SamplingConfig{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.config)
			require.NoError(t, err)
			l.Info("hello")
			_ = l.Sync()
		})
	}
}

func TestNew_RotateWithoutFilename(t *testing.T) {
	_, err := New(&Config{Rotate: &RotateConfig{}})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, WarnLevel, lvl)

	lvl, err = ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, DebugLevel, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestSetLevel_AppliesToChildren(t *testing.T) {
	rec := &recorder{}
	l, err := NewWithOptions(WithLevel(InfoLevel), WithHook(rec))
	require.NoError(t, err)

	child := l.With(zap.String("component", "hub"))
	child.Debug("hidden")
	assert.Empty(t, rec.entries)

	l.SetLevel(DebugLevel)
	assert.Equal(t, DebugLevel, child.Level())
	child.Debug("visible")
	require.Len(t, rec.entries, 1)
	assert.Equal(t, "visible", rec.entries[0].Message)
}

func TestContextFields(t *testing.T) {
	rec := &recorder{}
	l, err := NewWithOptions(WithHook(rec))
	require.NoError(t, err)

	ctx := WithUID(WithTraceID(context.Background(), "t-1"), "user-7")
	l.InfoContext(ctx, "with ctx", zap.Int("n", 1))

	require.Len(t, rec.entries, 1)
	fm := rec.fieldMap(0)
	assert.Equal(t, "t-1", fm["trace_id"])
	assert.Equal(t, "user-7", fm["uid"])
	assert.EqualValues(t, 1, fm["n"])

	assert.Equal(t, "t-1", TraceIDFromContext(ctx))
	assert.Equal(t, "user-7", UIDFromContext(ctx))
	assert.Equal(t, "", UIDFromContext(context.Background()))
}

func TestHookFunc(t *testing.T) {
	var got string
	l, err := NewWithOptions(WithHook(HookFunc(func(e zapcore.Entry, _ []zapcore.Field) error {
		got = e.Message
		return nil
	})))
	require.NoError(t, err)
	l.Named("ws").Warn("warned")
	assert.Equal(t, "warned", got)
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Error("nothing")
	assert.NoError(t, l.Sync())
}
