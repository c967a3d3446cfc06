package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/aleister1102/scanconsole/internal/common/errorwrapper"
	"gopkg.in/yaml.v3"
)

const maxConfigFileSize = 10 * 1024 * 1024

type GlobalConfig struct {
	ScanAPIConfig  ScanAPIConfig  `json:"scan_api_config,omitempty" yaml:"scan_api_config,omitempty"`
	ProgressConfig ProgressConfig `json:"progress_config,omitempty" yaml:"progress_config,omitempty"`
	ConsoleConfig  ConsoleConfig  `json:"console_config,omitempty" yaml:"console_config,omitempty"`
	LogConfig      LogConfig      `json:"log_config,omitempty" yaml:"log_config,omitempty"`
}

func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		ScanAPIConfig:  NewDefaultScanAPIConfig(),
		ProgressConfig: NewDefaultProgressConfig(),
		ConsoleConfig:  NewDefaultConsoleConfig(),
		LogConfig:      NewDefaultLogConfig(),
	}
}

// LoadGlobalConfig loads the configuration from a file or default locations.
// It determines the config file path using GetConfigPath, supports both JSON and YAML formats.
// YAML is preferred if the file extension is .yaml or .yml. Environment overrides are
// applied on top of whatever was loaded.
func LoadGlobalConfig(providedPath string) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()

	if providedPath != "" && !fileExists(providedPath) {
		return nil, errorwrapper.NewValidationError("config_file", providedPath, "config file does not exist")
	}

	filePath := GetConfigPath(providedPath)
	if filePath != "" {
		data, err := loadConfigFileContent(filePath)
		if err != nil {
			return nil, errorwrapper.WrapError(err, "failed to load config file content")
		}

		if err := parseConfigContent(data, filePath, cfg); err != nil {
			return nil, errorwrapper.WrapError(err, "failed to parse config content")
		}
	}

	if err := ApplyEnvOverrides(cfg); err != nil {
		return nil, errorwrapper.WrapError(err, "failed to apply environment overrides")
	}

	return cfg, nil
}

// loadConfigFileContent reads the config file, refusing anything unreasonably large
func loadConfigFileContent(filePath string) ([]byte, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxConfigFileSize {
		return nil, errorwrapper.NewValidationError("config_file", filePath, "config file exceeds 10MB")
	}
	return os.ReadFile(filePath)
}

// parseConfigContent parses the config content based on file extension
func parseConfigContent(data []byte, filePath string, cfg *GlobalConfig) error {
	ext := filepath.Ext(filePath)
	if isYAMLFile(ext) {
		return parseYAMLConfig(data, filePath, cfg)
	}
	return parseJSONConfig(data, filePath, cfg)
}

// isYAMLFile checks if the file extension indicates a YAML file
func isYAMLFile(ext string) bool {
	return ext == ".yaml" || ext == ".yml"
}

// parseYAMLConfig parses YAML configuration
func parseYAMLConfig(data []byte, filePath string, cfg *GlobalConfig) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errorwrapper.NewError("failed to unmarshal YAML from '%s': %w", filePath, err)
	}
	return nil
}

// parseJSONConfig parses JSON configuration
func parseJSONConfig(data []byte, filePath string, cfg *GlobalConfig) error {
	if err := json.Unmarshal(data, cfg); err != nil {
		return errorwrapper.NewError("failed to unmarshal JSON from '%s': %w", filePath, err)
	}
	return nil
}
