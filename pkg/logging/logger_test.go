package logging

import (
	"log/slog"
	"os"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"invalid", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ParseLevel(tt.input)
			if result != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestSetupWriter(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		want   interface{}
	}{
		{"stdout output", Config{Output: "stdout"}, os.Stdout},
		{"stderr output", Config{Output: "stderr"}, os.Stderr},
		{"default output", Config{Output: ""}, os.Stdout},
		{"file output without filename falls back", Config{Output: "file"}, os.Stdout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SetupWriter(tt.config)
			if got != tt.want {
				t.Errorf("SetupWriter(%+v) = %v, want %v", tt.config, got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	logger := New(Config{Level: "info", Format: "json", Output: "stdout"})
	if logger == nil {
		t.Fatal("New returned nil")
	}
	logger.Info("test message", "key", "value")
}

func TestDiscardNeverPanics(t *testing.T) {
	logger := Discard()
	logger.Error("should vanish", "key", "value")
}
