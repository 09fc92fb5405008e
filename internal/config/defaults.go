package config

// DefaultConfig returns configuration with sensible defaults.
// These defaults are used when no config file exists or when
// config file is missing specific fields.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: "dolt",
		},
		CST: CSTConfig{
			GrammarSubset: "cpp17",
			DumpTree:      false,
		},
	}
}

// Merge merges loaded config with defaults.
// Values from loaded config take precedence over defaults.
// Returns a new Config with merged values.
func Merge(loaded, defaults *Config) *Config {
	result := &Config{}

	result.Storage = mergeStorageConfig(loaded.Storage, defaults.Storage)
	result.CST = mergeCSTConfig(loaded.CST, defaults.CST)

	return result
}

func mergeStorageConfig(loaded, defaults StorageConfig) StorageConfig {
	result := StorageConfig{}

	// Backend: use loaded if non-empty
	if loaded.Backend != "" {
		result.Backend = loaded.Backend
	} else {
		result.Backend = defaults.Backend
	}

	return result
}

func mergeCSTConfig(loaded, defaults CSTConfig) CSTConfig {
	result := CSTConfig{}

	if loaded.GrammarSubset != "" {
		result.GrammarSubset = loaded.GrammarSubset
	} else {
		result.GrammarSubset = defaults.GrammarSubset
	}

	// DumpTree: loaded wins outright; a missing key unmarshals as false, so
	// there's no "unset" state distinct from "explicitly off" to fall back
	// from.
	result.DumpTree = loaded.DumpTree

	return result
}
