package logger

import (
	"testing"

	"github.com/samvad-hq/scrafurl/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"WARNING": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestZapLoggerWritesStructuredField(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := ZapLogger{L: zap.New(core)}

	log.DebugObj("request done", "request_meta", map[string]any{"status": 200})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Message != "request done" {
		t.Fatalf("unexpected message %q", entries[0].Message)
	}
	if _, ok := entries[0].ContextMap()["request_meta"]; !ok {
		t.Fatalf("structured field missing: %v", entries[0].ContextMap())
	}
}

func TestInitSetsPackageLogger(t *testing.T) {
	if _, err := Init(&config.Config{AppName: "scrafurl", LogLevel: "error"}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if S == nil {
		t.Fatalf("package logger not set")
	}
	InfoObj("ignored below level", "k", "v")
	_ = Close()
}
