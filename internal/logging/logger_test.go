package logging_test

import (
	"context"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/marklint/internal/logging"
)

func TestNew_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level string
		want  log.Level
	}{
		{"debug", log.DebugLevel},
		{"info", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"warning", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"ERROR", log.ErrorLevel},
		{"Debug", log.DebugLevel},
		{"verbose", log.InfoLevel},
		{"", log.InfoLevel},
	}

	for _, tt := range tests {
		t.Run("level "+tt.level, func(t *testing.T) {
			t.Parallel()

			logger := logging.New(tt.level)
			if logger == nil {
				t.Fatal("New returned nil")
			}
			if got := logger.GetLevel(); got != tt.want {
				t.Errorf("New(%q) level = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestNewInteractive(t *testing.T) {
	t.Parallel()

	logger := logging.NewInteractive()
	if logger == nil {
		t.Fatal("NewInteractive returned nil")
	}
	if got := logger.GetLevel(); got != log.InfoLevel {
		t.Errorf("interactive level = %v, want info", got)
	}
}

func TestDefault(t *testing.T) {
	first := logging.Default()
	if first == nil {
		t.Fatal("Default returned nil")
	}
	if second := logging.Default(); second != first {
		t.Error("Default returned a different logger on the second call")
	}
}

func TestSetDefault(t *testing.T) {
	original := logging.Default()
	defer logging.SetDefault(original)

	replacement := logging.New("error")
	logging.SetDefault(replacement)

	if logging.Default() != replacement {
		t.Error("SetDefault did not install the replacement")
	}
}

func TestSetLevel(t *testing.T) {
	original := logging.Default()
	defer logging.SetDefault(original)

	logging.SetDefault(logging.New("info"))

	logging.SetLevel("debug")
	if got := logging.Default().GetLevel(); got != log.DebugLevel {
		t.Errorf("after SetLevel(debug): %v", got)
	}

	logging.SetLevel("nonsense")
	if got := logging.Default().GetLevel(); got != log.InfoLevel {
		t.Errorf("unknown level should mean info, got %v", got)
	}
}

func TestWithLogger_RoundTrip(t *testing.T) {
	custom := logging.New("debug")
	ctx := logging.WithLogger(context.Background(), custom)

	if got := logging.FromContext(ctx); got != custom {
		t.Error("FromContext did not return the attached logger")
	}
}

func TestWithLogger_NilContext(t *testing.T) {
	custom := logging.New("warn")

	var base context.Context
	ctx := logging.WithLogger(base, custom)
	if ctx == nil {
		t.Fatal("WithLogger returned nil context")
	}
	if got := logging.FromContext(ctx); got != custom {
		t.Error("logger lost when starting from a nil context")
	}
}

func TestFromContext_Fallbacks(t *testing.T) {
	var nilCtx context.Context
	if got := logging.FromContext(nilCtx); got != logging.Default() {
		t.Error("nil context should yield the default logger")
	}

	if got := logging.FromContext(context.Background()); got != logging.Default() {
		t.Error("bare context should yield the default logger")
	}
}
