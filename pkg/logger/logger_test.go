package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoggerErrorIncludesContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: "debug", Output: buf})

	ctx := context.Background()
	ctx = log.WithRequestID(ctx, "req-123")
	ctx = log.WithOrderID(ctx, "order-9")

	log.Error(ctx, "boom", errors.New("boom"))

	if !bytes.Contains(buf.Bytes(), []byte(`"request_id":"req-123"`)) {
		t.Fatalf("expected request_id to be preserved; entry=%s", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"order_id":"order-9"`)) {
		t.Fatalf("expected order_id to be preserved; entry=%s", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"stack"`)) {
		t.Fatalf("expected stack trace on error; entry=%s", buf.String())
	}
}

func TestLoggerWarnStackToggle(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Output: buf, WarnStack: true})
	log.Warn(context.Background(), "warny")
	if !bytes.Contains(buf.Bytes(), []byte(`"stack"`)) {
		t.Fatalf("expected stack when warn stack enabled; entry=%s", buf.String())
	}

	buf.Reset()
	quiet := New(Options{ServiceName: "test", Output: buf})
	quiet.Warn(context.Background(), "warny")
	if bytes.Contains(buf.Bytes(), []byte(`"stack"`)) {
		t.Fatalf("did not expect stack when warn stack disabled; entry=%s", buf.String())
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Output: buf, Format: "json"})
	log.Debug(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug entry should be filtered at info level; entry=%s", buf.String())
	}
}

func TestLoggerLevelFromOptions(t *testing.T) {
	cases := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
	}{
		{level: "", wantDebug: false, wantInfo: true},
		{level: "bogus", wantDebug: false, wantInfo: true},
		{level: "debug", wantDebug: true, wantInfo: true},
		{level: "warn", wantDebug: false, wantInfo: false},
	}
	for _, tc := range cases {
		t.Run("level="+tc.level, func(t *testing.T) {
			buf := &bytes.Buffer{}
			log := New(Options{ServiceName: "test", Level: tc.level, Output: buf, Format: "json"})

			log.Debug(context.Background(), "dbg")
			if got := bytes.Contains(buf.Bytes(), []byte(`"dbg"`)); got != tc.wantDebug {
				t.Fatalf("debug written=%v, want %v; entry=%s", got, tc.wantDebug, buf.String())
			}
			log.Info(context.Background(), "inf")
			if got := bytes.Contains(buf.Bytes(), []byte(`"inf"`)); got != tc.wantInfo {
				t.Fatalf("info written=%v, want %v; entry=%s", got, tc.wantInfo, buf.String())
			}
		})
	}
}

func TestParseLevelDefaults(t *testing.T) {
	if lvl := ParseLevel(""); lvl != zerolog.NoLevel {
		t.Fatalf("expected no level for empty input, got %v", lvl)
	}
	if lvl := ParseLevel("invalid"); lvl != zerolog.NoLevel {
		t.Fatalf("invalid level should fall back to no level, got %v", lvl)
	}
	if lvl := ParseLevel(" WARN "); lvl != zerolog.WarnLevel {
		t.Fatalf("expected warn level, got %v", lvl)
	}
}

func TestWithFieldsDoesNotLeakIntoParentContext(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Output: buf, Format: "json"})

	parent := log.WithSupplierID(context.Background(), "s-1")
	_ = log.WithFields(parent, map[string]any{"attempt": 2})

	log.Info(parent, "parent")
	if !bytes.Contains(buf.Bytes(), []byte(`"supplier_id":"s-1"`)) {
		t.Fatalf("expected supplier_id on parent entry; entry=%s", buf.String())
	}
	if bytes.Contains(buf.Bytes(), []byte(`"attempt"`)) {
		t.Fatalf("child fields leaked into parent; entry=%s", buf.String())
	}
}
