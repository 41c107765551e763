package jnibridge

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/wippyai/jni-bridge/errors"
	"github.com/wippyai/jni-bridge/host"
	"github.com/wippyai/jni-bridge/symbols"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Version != host.DefaultVersion {
		t.Errorf("Version = %s", cfg.Version)
	}
	if cfg.Manifest.Len() != symbols.Android().Len() {
		t.Errorf("Manifest has %d slots", cfg.Manifest.Len())
	}
	if cfg.LogLevel != zapcore.InfoLevel {
		t.Errorf("LogLevel = %s", cfg.LogLevel)
	}
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("testdata/bridge.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Version != host.Version1_8 {
		t.Errorf("Version = %s, want 1.8", cfg.Version)
	}
	if cfg.LogLevel != zapcore.DebugLevel {
		t.Errorf("LogLevel = %s", cfg.LogLevel)
	}
	if cfg.Manifest.Len() != 13 {
		t.Errorf("Manifest has %d slots, want 13", cfg.Manifest.Len())
	}
}

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		version host.Version
		kind    errors.Kind
	}{
		{name: "empty keeps defaults", input: "", version: host.DefaultVersion},
		{name: "major only", input: "version: \"21\"", version: host.Version21},
		{name: "bad version", input: "version: banana", kind: errors.KindInvalidInput},
		{name: "bad level", input: "log_level: loud", kind: errors.KindInvalidInput},
		{name: "malformed", input: "version: [", kind: errors.KindInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(tt.input))
			if tt.kind != "" {
				var e *errors.Error
				if !stderrors.As(err, &e) {
					t.Fatalf("ParseConfig = %v, want structured error", err)
				}
				if e.Phase != errors.PhaseConfig {
					t.Errorf("Phase = %s", e.Phase)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if cfg.Version != tt.version {
				t.Errorf("Version = %s, want %s", cfg.Version, tt.version)
			}
		})
	}
}

func TestLoadConfig_MissingManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bridge.yaml")
	if err := os.WriteFile(path, []byte("manifest: nope.yaml\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected an error for a missing manifest")
	}
	if _, err := LoadConfig(filepath.Join(dir, "absent.yaml")); err == nil {
		t.Fatal("expected an error for a missing config")
	}
}
