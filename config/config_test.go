package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jrife/kvnode/config"
	"go.uber.org/zap/zapcore"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected default config to be valid, got %#v", err)
	}

	if cfg.Plugin != "memory" {
		t.Fatalf("expected memory plugin, got %s", cfg.Plugin)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kvnode.toml")
	data := `
plugin = "bbolt"

[options]
path = "/var/lib/kvnode/store.db"

[log]
level = "debug"
`

	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatalf("could not write config: %s", err)
	}

	cfg, err := config.Load(path)

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	expected := &config.Config{
		Plugin:  "bbolt",
		Options: map[string]interface{}{"path": "/var/lib/kvnode/store.db"},
		Log:     config.LogConfig{Level: "debug"},
	}

	if diff := cmp.Diff(expected, cfg); diff != "" {
		t.Fatal(diff)
	}

	logger, err := cfg.Logger()

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("expected debug logging to be enabled")
	}
}

func TestParseErrors(t *testing.T) {
	testCases := map[string]string{
		"malformed":     `plugin = `,
		"empty plugin":  `plugin = ""`,
		"invalid level": "[log]\nlevel = \"loud\"",
	}

	for name, data := range testCases {
		t.Run(name, func(t *testing.T) {
			if _, err := config.Parse(data); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected an error")
	}
}
