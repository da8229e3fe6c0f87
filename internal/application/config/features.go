package config

const (
	FeatureLayerCache  = "layer_cache"
	FeatureBuildLedger = "build_ledger"
	FeatureAutoReload  = "auto_reload"
	FeatureSelfUpdate  = "self_update"
)

// DefaultFeatureValues defines the default values for each feature
var DefaultFeatureValues = map[string]bool{
	FeatureLayerCache:  true,
	FeatureBuildLedger: true,
	FeatureAutoReload:  true,
	FeatureSelfUpdate:  true,
}

// IsFeatureEnabled checks if a feature is enabled in the configuration.
func (c *Config) IsFeatureEnabled(feature string) bool {
	value, exists := c.Features[feature]
	if !exists {
		return DefaultFeatureValues[feature]
	}
	return value
}
