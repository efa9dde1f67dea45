// Package config loads the application configuration from a config.toml
// next to the executable, falling back to built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// AppConfig is the full application configuration.
type AppConfig struct {
	Cards   CardsConfig   `toml:"cards"`
	Mapping MappingConfig `toml:"mapping"`
	Logging LoggingConfig `toml:"logging"`
	Data    DataConfig    `toml:"data"`
	Server  ServerConfig  `toml:"server"`
}

// CardsConfig controls which workbook files are treated as signal cards.
type CardsConfig struct {
	// Pattern is a doublestar glob matched against card file names.
	Pattern string `toml:"pattern" validate:"required"`
	// SkipPrefix drops files whose name starts with this prefix.
	SkipPrefix string `toml:"skip_prefix"`
}

// MappingConfig tunes movement classification.
type MappingConfig struct {
	// AddRightToThru makes a through indication also claim right turns.
	AddRightToThru bool `toml:"add_right_to_thru"`
}

// LoggingConfig names the two log files kept alongside console output.
type LoggingConfig struct {
	InfoFile  string `toml:"info_file" validate:"required"`
	DebugFile string `toml:"debug_file" validate:"required"`
}

// DataConfig locates the import-log database.
type DataConfig struct {
	DatabasePath string `toml:"database_path" validate:"required"`
}

// ServerConfig configures the optional review API.
type ServerConfig struct {
	Port    int  `toml:"port" validate:"min=0,max=65535"`
	DevMode bool `toml:"dev_mode"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Cards: CardsConfig{
			Pattern:    "*.xls*",
			SkipPrefix: "System",
		},
		Mapping: MappingConfig{
			AddRightToThru: true,
		},
		Logging: LoggingConfig{
			InfoFile:  "importExcelSignals.INFO.log",
			DebugFile: "importExcelSignals.DEBUG.log",
		},
		Data: DataConfig{
			DatabasePath: "data/signal_import.db",
		},
		Server: ServerConfig{
			Port:    0, // 0 disables the review server
			DevMode: false,
		},
	}
}

// GetExeDir returns the directory of the running executable.
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadConfig loads config.toml from the executable's directory, falling back
// to defaults when the file does not exist.
func LoadConfig() (*AppConfig, error) {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return LoadConfigFile(filepath.Join(exeDir, "config.toml"))
}

// LoadConfigFile loads a specific config file over the defaults.
func LoadConfigFile(path string) (*AppConfig, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the struct-level constraints.
func (c *AppConfig) Validate() error {
	return validator.New().Struct(c)
}

// SaveConfig writes the configuration back to config.toml next to the
// executable.
func SaveConfig(cfg *AppConfig) error {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(exeDir, "config.toml"), data, 0644)
}
