package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"envforge/pkg/log"
)

// EngineType represents the container engine used for builds and launches.
type EngineType string

const (
	EngineTypeDocker EngineType = "docker"
	defaultEngine               = EngineTypeDocker
)

// Build-time overrides, injected with ldflags.
var (
	dataPath    string
	releasesURL string
	engine      EngineType
)

const (
	// defaultDataPath is the default directory used for the ledger database and
	// build staging directories.
	defaultDataPath = ".envforge"
	// defaultLogLevel is applied when the config file does not set one.
	defaultLogLevel = "info"

	ledgerFile         = "ledger.db"
	stagingFolder      = "staging"
	environmentsFolder = "environments"

	// gitHubReleasesURL is the default URL where release binaries are published.
	gitHubReleasesURL = "https://github.com/envforge/envforge/releases/download"
)

// DefaultFile is the config file looked up next to the recipe.
const DefaultFile = "forge.config.json"

// Config holds the application configuration
type Config struct {
	Features map[string]bool `json:"features"`
	// DataPath specifies the directory used for the ledger and build staging.
	DataPath string `json:"data_path,omitempty"`
	// LogLevel specifies the minimum log level to output (debug, info, warn, error).
	LogLevel string `json:"log_level,omitempty"`
	// Engine specifies the container engine used for builds and launches.
	Engine EngineType `json:"engine,omitempty"`
	// ReadyTimeoutSeconds bounds how long a launch waits for the published
	// port to accept connections.
	ReadyTimeoutSeconds int `json:"ready_timeout_seconds,omitempty"`
}

// prepareConfig ensures the configuration is valid by applying defaults and validating features
func prepareConfig(cfg *Config) {
	if cfg.DataPath == "" {
		cfg.DataPath = defaultDataPath
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.Engine == "" || !isValidEngineType(cfg.Engine) {
		cfg.Engine = defaultEngine
	}
	if cfg.ReadyTimeoutSeconds <= 0 {
		cfg.ReadyTimeoutSeconds = 60
	}

	cfg.Features = validateAndMergeFeatures(cfg.Features)
}

// validateAndMergeFeatures ensures only supported features are used and merges with defaults
func validateAndMergeFeatures(configFeatures map[string]bool) map[string]bool {
	if configFeatures == nil {
		configFeatures = make(map[string]bool)
	}

	mergedFeatures := make(map[string]bool)
	for feature, defaultValue := range DefaultFeatureValues {
		if value, exists := configFeatures[feature]; exists {
			mergedFeatures[feature] = value
		} else {
			mergedFeatures[feature] = defaultValue
		}
	}

	return mergedFeatures
}

func NewConfig() *Config {
	config := &Config{
		Features: make(map[string]bool),
	}

	// Apply build-time overrides or defaults
	if dataPath != "" {
		config.DataPath = dataPath
	} else {
		config.DataPath = defaultDataPath
	}

	if engine != "" {
		config.Engine = engine
	} else {
		config.Engine = defaultEngine
	}

	return config
}

// LoadConfig loads the configuration from a JSON file. A missing or unreadable
// file yields the defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := NewConfig()
	config.Features = validateAndMergeFeatures(nil)

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err == nil {
			if err := json.Unmarshal(data, config); err == nil {
				prepareConfig(config)
				return config, nil
			}
		}
	}

	prepareConfig(config)
	return config, nil
}

// SaveConfig saves the configuration to a JSON file
func SaveConfig(config *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return log.Errorf("failed to create config directory: %v", err)
	}

	prepareConfig(config)

	configToSave := *config

	// Only persist features that differ from their defaults so the file stays
	// minimal.
	filteredFeatures := make(map[string]bool)
	for feature, value := range config.Features {
		if defaultValue, exists := DefaultFeatureValues[feature]; !exists || value != defaultValue {
			filteredFeatures[feature] = value
		}
	}
	configToSave.Features = filteredFeatures

	data, err := json.MarshalIndent(configToSave, "", "  ")
	if err != nil {
		return log.Errorf("failed to marshal config: %v", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return log.Errorf("failed to write config file: %v", err)
	}

	return nil
}

func (c *Config) GetDataPath() string {
	return c.DataPath
}

func (c *Config) GetLedgerPath() string {
	return c.buildPath(ledgerFile)
}

func (c *Config) GetStagingPath() string {
	return c.buildPath(stagingFolder)
}

func (c *Config) GetEnvironmentsPath() string {
	return c.buildPath(environmentsFolder)
}

// buildPath constructs a file path from the data path and components
func (c *Config) buildPath(components ...string) string {
	parts := append([]string{c.DataPath}, components...)
	return filepath.Join(parts...)
}

func (c *Config) GetEngine() string {
	return c.Engine.ToString()
}

func isValidEngineType(engineType EngineType) bool {
	return engineType == EngineTypeDocker
}

func (e EngineType) Validate() {
	if !isValidEngineType(e) {
		panic(fmt.Sprintf("invalid engine type: %s, must be: %s", e, EngineTypeDocker))
	}
}

func (e EngineType) ToString() string {
	return string(e)
}

// GetReleasesURL returns the URL release binaries are downloaded from.
func (c *Config) GetReleasesURL() string {
	if releasesURL == "" {
		return gitHubReleasesURL
	}
	return releasesURL
}
