package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the cx configuration file
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the cx configuration directory
const ConfigDirName = ".cx"

// Config holds all cx configuration
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	CST     CSTConfig     `yaml:"cst"`
}

// StorageConfig holds configuration for the persistence backend
// (internal/store's Dolt-backed database).
type StorageConfig struct {
	Backend string `yaml:"backend"`
}

// CSTConfig holds configuration for the cstfrontend/cst syntax-tree pipeline.
type CSTConfig struct {
	// GrammarSubset names the tree-sitter grammar subset cstfrontend accepts;
	// unrecognized constructs outside it are rejected as unsupported rather
	// than silently mis-lowered. Validated against
	// cstfrontend.SupportedGrammarSubsets before a build runs.
	GrammarSubset string `yaml:"grammar_subset"`
	// DumpTree writes the built tree's role/kind shape to stderr after a
	// successful build, for debugging translate.go's lowering.
	DumpTree bool `yaml:"dump_tree"`
}

// ErrConfigNotFound is returned when no config file can be found
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails
var ErrInvalidConfig = errors.New("invalid configuration")

// ValidStorageBackends lists the persistence backends internal/store knows
// how to open.
var ValidStorageBackends = []string{"dolt"}

// Load reads config from .cx/config.yaml, falling back to defaults.
// It searches for the config directory starting from workDir and walking up
// the directory tree. If no config is found, returns defaults.
func Load(workDir string) (*Config, error) {
	configDir, err := FindConfigDir(workDir)
	if err != nil {
		// No config dir found, return defaults
		return DefaultConfig(), nil
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	return LoadFromPath(configPath)
}

// LoadFromPath reads config from a specific path.
// Merges loaded config with defaults and validates the result.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Merge with defaults
	merged := Merge(loaded, DefaultConfig())

	// Validate the merged config
	if err := Validate(merged); err != nil {
		return nil, err
	}

	return merged, nil
}

// FindConfigDir locates the .cx directory by walking up from startDir.
// Returns the path to the .cx directory if found.
func FindConfigDir(startDir string) (string, error) {
	// Get absolute path
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	currentDir := absDir
	for {
		configDir := filepath.Join(currentDir, ConfigDirName)
		info, err := os.Stat(configDir)
		if err == nil && info.IsDir() {
			return configDir, nil
		}

		// Move to parent directory
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root, config not found
			return "", ErrConfigNotFound
		}
		currentDir = parentDir
	}
}

// EnsureConfigDir creates the .cx directory if it doesn't exist.
// Returns the path to the .cx directory.
func EnsureConfigDir(workDir string) (string, error) {
	// Get absolute path
	absDir, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	configDir := filepath.Join(absDir, ConfigDirName)

	// Check if it already exists
	info, err := os.Stat(configDir)
	if err == nil {
		if info.IsDir() {
			return configDir, nil
		}
		return "", fmt.Errorf("%s exists but is not a directory", configDir)
	}

	// Create the directory
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	return configDir, nil
}

// Validate checks that config values are valid.
// Returns an error if validation fails.
func Validate(cfg *Config) error {
	if !isValidStorageBackend(cfg.Storage.Backend) {
		return fmt.Errorf("%w: storage.backend must be one of %v, got %q",
			ErrInvalidConfig, ValidStorageBackends, cfg.Storage.Backend)
	}

	if cfg.CST.GrammarSubset == "" {
		return fmt.Errorf("%w: cst.grammar_subset must not be empty", ErrInvalidConfig)
	}

	return nil
}

func isValidStorageBackend(backend string) bool {
	for _, valid := range ValidStorageBackends {
		if backend == valid {
			return true
		}
	}
	return false
}

// SaveDefault writes the default configuration to .cx/config.yaml in workDir.
// Creates the .cx directory if it doesn't exist.
func SaveDefault(workDir string) (string, error) {
	configDir, err := EnsureConfigDir(workDir)
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(configDir, ConfigFileName)

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}

	// Add header comment
	header := "# cx CLI configuration\n# See https://github.com/anthropics/cx for documentation\n\n"
	data = append([]byte(header), data...)

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}

	return configPath, nil
}
