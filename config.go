package jnibridge

import (
	"os"
	"path/filepath"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/jni-bridge/errors"
	"github.com/wippyai/jni-bridge/host"
	"github.com/wippyai/jni-bridge/symbols"
)

// Config controls a Bridge.
type Config struct {
	// Manifest lists the symbols resolved on attach. Nil means symbols.Android().
	Manifest *symbols.Manifest

	// Version is requested whenever a thread context is derived.
	Version host.Version

	// LogLevel is used by tools that build their own logger.
	LogLevel zapcore.Level
}

// DefaultConfig requests host.DefaultVersion and resolves the Android manifest.
func DefaultConfig() Config {
	return Config{
		Version:  host.DefaultVersion,
		Manifest: symbols.Android(),
		LogLevel: zapcore.InfoLevel,
	}
}

// fileConfig is the on-disk form:
//
//	version: "1.6"
//	log_level: debug
//	manifest: symbols.yaml
type fileConfig struct {
	Version  string `yaml:"version"`
	LogLevel string `yaml:"log_level"`
	Manifest string `yaml:"manifest"`
}

// LoadConfig reads a YAML config file. Unset fields keep their defaults; a
// relative manifest path is resolved against the config file's directory.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(errors.PhaseConfig, errors.KindNotFound, err, "read "+path)
	}
	return parseConfig(data, filepath.Dir(path))
}

// ParseConfig decodes a YAML config. Relative manifest paths are resolved
// against the working directory.
func ParseConfig(data []byte) (Config, error) {
	return parseConfig(data, ".")
}

func parseConfig(data []byte, dir string) (Config, error) {
	var f fileConfig
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Config{}, errors.ParseFailed(errors.PhaseConfig, "config", err)
	}

	cfg := DefaultConfig()
	if f.Version != "" {
		v, err := host.ParseVersion(f.Version)
		if err != nil {
			return Config{}, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "version")
		}
		cfg.Version = v
	}
	if f.LogLevel != "" {
		lvl, err := zapcore.ParseLevel(f.LogLevel)
		if err != nil {
			return Config{}, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "log_level")
		}
		cfg.LogLevel = lvl
	}
	if f.Manifest != "" {
		p := f.Manifest
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		m, err := symbols.LoadManifest(p)
		if err != nil {
			return Config{}, err
		}
		cfg.Manifest = m
	}
	return cfg, nil
}
