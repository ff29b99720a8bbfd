package logger

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func useObserver(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	prev := Logger
	Logger = zap.New(core)
	t.Cleanup(func() { Logger = prev })
	return logs
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"info":    zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFromContextCarriesProbeFields(t *testing.T) {
	logs := useObserver(t)

	ctx := WithIteration(context.Background(), 3)
	ctx = WithProbeID(ctx, "probe-1")
	FromContext(ctx).Info("Probe finished")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["probe_id"] != "probe-1" {
		t.Errorf("Expected probe_id field, got %v", fields)
	}
	if fields["iteration"] != int64(3) {
		t.Errorf("Expected iteration field, got %v", fields)
	}
	if ProbeID(ctx) != "probe-1" {
		t.Errorf("ProbeID returned %q", ProbeID(ctx))
	}
}

func TestFromContextWithoutFields(t *testing.T) {
	logs := useObserver(t)

	FromContext(context.Background()).Info("plain")
	if got := logs.All()[0].ContextMap(); len(got) != 0 {
		t.Errorf("Expected no fields, got %v", got)
	}
}

func TestFromContextPrefersAttachedLogger(t *testing.T) {
	useObserver(t)
	core, attached := observer.New(zapcore.InfoLevel)

	ctx := WithLogger(context.Background(), zap.New(core))
	FromContext(ctx).Info("routed")

	if attached.Len() != 1 {
		t.Errorf("Expected entry on the attached logger, got %d", attached.Len())
	}
}

func TestNewProductionLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "reservewatch.log")

	l, err := NewProductionLogger(path, zapcore.InfoLevel)
	if err != nil {
		t.Fatalf("NewProductionLogger failed: %v", err)
	}
	l.Info("hello")
	_ = l.Sync()

	if matches, _ := filepath.Glob(path); len(matches) != 1 {
		t.Errorf("Expected log file at %s", path)
	}
}

func TestCallerPointsAtCallSite(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev, prevSugar := Logger, Sugar
	Logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	Sugar = direct().Sugar()
	t.Cleanup(func() { Logger, Sugar = prev, prevSugar })

	Info("package helper")
	FromContext(WithProbeID(context.Background(), "p-1")).Info("context logger")
	FromContext(context.Background()).Info("bare context logger")
	With(zap.String("k", "v")).Info("child logger")
	Sugar.Infof("sugared %s", "logger")

	for _, entry := range logs.All() {
		if !entry.Caller.Defined {
			t.Fatalf("%q: caller not recorded", entry.Message)
		}
		if got := filepath.Base(entry.Caller.File); got != "logger_test.go" {
			t.Errorf("%q: caller %s, want logger_test.go", entry.Message, entry.Caller.String())
		}
	}
	if logs.Len() != 5 {
		t.Errorf("Expected 5 entries, got %d", logs.Len())
	}
}
