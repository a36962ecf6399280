// Package logging includes tests for the zap logger helpers.
package logging

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TestNewDevelopmentLogger confirms the development logger builds and logs.
func TestNewDevelopmentLogger(t *testing.T) {
	t.Parallel()

	logger, err := New(true, "")
	if err != nil {
		t.Fatalf("New(true) error = %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger to be non-nil")
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("expected development logger to enable debug")
	}
	logger.Info("development logger ready")
}

// TestNewProductionLogger ensures the production logger honors the level override.
func TestNewProductionLogger(t *testing.T) {
	t.Parallel()

	logger, err := New(false, "warn")
	if err != nil {
		t.Fatalf("New(false) error = %v", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("expected info to be disabled at warn level")
	}
	logger.Warn("production logger ready")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	if _, err := New(false, "chatty"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	fallback := zap.NewNop()
	if got := FromContext(context.Background(), fallback); got != fallback {
		t.Fatal("expected fallback when context has no logger")
	}
	if got := FromContext(context.Background(), nil); got == nil {
		t.Fatal("expected nop logger when fallback is nil")
	}
	scoped := zap.NewExample()
	ctx := WithContext(context.Background(), scoped)
	if got := FromContext(ctx, fallback); got != scoped {
		t.Fatal("expected scoped logger from context")
	}
}
