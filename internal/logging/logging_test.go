package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "cardscout.log")
	logger, closer, err := New(path, slog.LevelInfo)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("[stock] run finished", "card", "abc")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "run finished") || !strings.Contains(text, "card=abc") {
		t.Fatalf("log missing entry: %q", text)
	}
	if strings.Contains(text, "hidden") {
		t.Fatalf("debug entry should be filtered: %q", text)
	}
}

func TestNewDiscard(t *testing.T) {
	logger, closer, err := New("-", slog.LevelDebug)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("ignored")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
