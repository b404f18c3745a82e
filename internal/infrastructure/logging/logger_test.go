package logging

import (
	"log/slog"
	"testing"

	"github.com/nerrad567/huelink-core/internal/infrastructure/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"nonsense", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := parseLevel(tt.level); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestNew_FormatSelection(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.LoggingConfig
	}{
		{"json to stdout", config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"}},
		{"text to stderr", config.LoggingConfig{Level: "debug", Format: "text", Output: "stderr"}},
		{"unknown format falls back", config.LoggingConfig{Level: "info", Format: "xml", Output: "stdout"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := New(tt.cfg, "test")
			if log == nil || log.Logger == nil {
				t.Fatal("New() returned nil logger")
			}
		})
	}
}

func TestWithComponent(t *testing.T) {
	log := Default()

	scoped := log.WithComponent("stream")
	if scoped == nil || scoped.Logger == nil {
		t.Fatal("WithComponent() returned nil logger")
	}
	if scoped == log {
		t.Error("WithComponent() should return a new logger, not the receiver")
	}

	// Scoped loggers chain.
	chained := scoped.WithComponent("relay").With("topic", "huelink/state/light/l1")
	if chained == nil || chained.Logger == nil {
		t.Fatal("chained With() returned nil logger")
	}
}

func TestDefault(t *testing.T) {
	if log := Default(); log == nil || log.Logger == nil {
		t.Fatal("Default() returned nil logger")
	}
}
