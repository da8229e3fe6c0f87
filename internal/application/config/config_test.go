package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.DataPath != defaultDataPath {
		t.Errorf("DataPath = %q, want %q", cfg.DataPath, defaultDataPath)
	}
	if cfg.LogLevel != defaultLogLevel {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, defaultLogLevel)
	}
	if cfg.Engine != EngineTypeDocker {
		t.Errorf("Engine = %q, want docker", cfg.Engine)
	}
	if cfg.ReadyTimeoutSeconds != 60 {
		t.Errorf("ReadyTimeoutSeconds = %d, want 60", cfg.ReadyTimeoutSeconds)
	}
	if !cfg.IsFeatureEnabled(FeatureLayerCache) {
		t.Error("layer_cache should default to enabled")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	content := `{
  "data_path": "/var/lib/envforge",
  "log_level": "debug",
  "ready_timeout_seconds": 10,
  "features": {"layer_cache": false}
}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.DataPath != "/var/lib/envforge" {
		t.Errorf("DataPath = %q", cfg.DataPath)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.ReadyTimeoutSeconds != 10 {
		t.Errorf("ReadyTimeoutSeconds = %d", cfg.ReadyTimeoutSeconds)
	}
	if cfg.IsFeatureEnabled(FeatureLayerCache) {
		t.Error("layer_cache should be disabled by config")
	}
	if !cfg.IsFeatureEnabled(FeatureBuildLedger) {
		t.Error("build_ledger should keep its default")
	}
}

func TestLoadConfigInvalidEngineFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	if err := os.WriteFile(path, []byte(`{"engine": "podman"}`), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Engine != EngineTypeDocker {
		t.Errorf("Engine = %q, want fallback to docker", cfg.Engine)
	}
}

func TestSaveConfigOmitsDefaultFeatures(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", DefaultFile)

	cfg := NewConfig()
	cfg.Features = validateAndMergeFeatures(map[string]bool{FeatureAutoReload: false})
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved config: %v", err)
	}
	content := string(data)
	if want := `"auto_reload": false`; !strings.Contains(content, want) {
		t.Errorf("saved config missing %q:\n%s", want, content)
	}
	if strings.Contains(content, `"layer_cache"`) {
		t.Errorf("default-valued feature should not be persisted:\n%s", content)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.IsFeatureEnabled(FeatureAutoReload) {
		t.Error("auto_reload should stay disabled after round trip")
	}
}

func TestEngineTypeValidate(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("valid engine must not panic, got %v", r)
		}
	}()
	EngineTypeDocker.Validate()
}

func TestEngineTypeValidatePanicsOnUnknownEngine(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unknown engine type")
		}
	}()
	EngineType("podman").Validate()
}

func TestPathAccessors(t *testing.T) {
	cfg := &Config{DataPath: "/var/lib/envforge"}

	if got := cfg.GetLedgerPath(); got != filepath.Join("/var/lib/envforge", "ledger.db") {
		t.Errorf("GetLedgerPath = %q", got)
	}
	if got := cfg.GetStagingPath(); got != filepath.Join("/var/lib/envforge", "staging") {
		t.Errorf("GetStagingPath = %q", got)
	}
}
