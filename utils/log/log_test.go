package log_test

import (
	"context"
	"testing"

	"github.com/jrife/kvnode/utils/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithFields(t *testing.T) {
	ctx := log.WithFields(context.Background(), zap.String("node", "a"))
	ctx = log.WithFields(ctx, zap.String("key", "x"))

	if fields := log.Fields(ctx); len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}

	if fields := log.Fields(context.Background()); len(fields) != 0 {
		t.Fatalf("expected no fields, got %d", len(fields))
	}
}

func TestWithContext(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := log.WithFields(context.Background(), zap.String("node", "a"))

	log.WithContext(ctx, zap.New(core)).Info("hello")

	entries := logs.All()

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	if v, ok := entries[0].ContextMap()["node"]; !ok || v != "a" {
		t.Fatalf("expected node field to be a, got %#v", entries[0].ContextMap())
	}
}

func TestLoggerFromContext(t *testing.T) {
	defaultLogger := zap.NewNop()
	logger, ctx := log.LoggerFromContext(context.Background(), defaultLogger)

	if logger != defaultLogger {
		t.Fatalf("expected default logger")
	}

	if log.Logger(ctx) != defaultLogger {
		t.Fatalf("expected default logger to be attached to the context")
	}

	other := zap.NewExample()
	logger, _ = log.LoggerFromContext(log.WithLogger(context.Background(), other), defaultLogger)

	if logger != other {
		t.Fatalf("expected logger from context")
	}
}
