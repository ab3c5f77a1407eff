package core

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Log.Level != "info" {
		t.Fatalf("default log level = %q, want %q", cfg.Log.Level, "info")
	}
	if cfg.GPU.RecycledCommandBuffers != 64 {
		t.Fatalf("default recycled command buffers = %d, want 64", cfg.GPU.RecycledCommandBuffers)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tundra.toml")
	content := []byte(`
[log]
level = "debug"

[gpu]
recycled_command_buffers = 16
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("log level = %q, want %q", cfg.Log.Level, "debug")
	}
	if cfg.GPU.RecycledCommandBuffers != 16 {
		t.Fatalf("recycled command buffers = %d, want 16", cfg.GPU.RecycledCommandBuffers)
	}
	// Untouched fields keep their defaults.
	if !cfg.Log.ReportCaller {
		t.Fatalf("report_caller lost its default")
	}
}

func TestLoadConfigPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tundra.toml")
	if err := os.WriteFile(path, []byte(`[log]`+"\n"+`level = "warn"`), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Log.Level != "warn" {
		t.Fatalf("log level = %q, want %q", cfg.Log.Level, "warn")
	}
	if cfg.GPU.RecycledCommandBuffers != 64 {
		t.Fatalf("gpu section lost its defaults")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatalf("LoadConfig on a missing file did not fail")
	}
}

func TestSetLogLevel(t *testing.T) {
	if err := SetLogLevel("debug"); err != nil {
		t.Fatalf("SetLogLevel(debug) failed: %v", err)
	}
	if err := SetLogLevel("not-a-level"); err == nil {
		t.Fatalf("SetLogLevel accepted an unknown level")
	}
	if err := SetLogLevel("info"); err != nil {
		t.Fatalf("SetLogLevel(info) failed: %v", err)
	}
}
