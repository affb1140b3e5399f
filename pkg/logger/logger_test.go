package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"info":  slog.LevelInfo,
		"bogus": slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	initWith(&buf, "production")

	ctx := With(context.Background(), "traceID", "abc")
	From(ctx).Info("hello")

	assert.Contains(t, buf.String(), `"traceID":"abc"`)
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}

func TestGormLoggerTrace(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	lg := NewGormLogger(base, false)

	sqlFn := func() (string, int64) { return "SELECT 1", 1 }

	lg.Trace(context.Background(), time.Now(), sqlFn, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	lg.Trace(context.Background(), time.Now(), sqlFn, errors.New("syntax error"))
	assert.Contains(t, buf.String(), "gorm query failed")

	buf.Reset()
	lg.Trace(context.Background(), time.Now().Add(-time.Second), sqlFn, nil)
	assert.Contains(t, buf.String(), "gorm slow query")

	buf.Reset()
	lg.LogMode(gormlogger.Silent).Trace(context.Background(), time.Now(), sqlFn, errors.New("ignored"))
	assert.Empty(t, buf.String())
}
