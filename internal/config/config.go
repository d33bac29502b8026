package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Export ExportConfig `toml:"export"`
	Debug  bool         `toml:"debug"`
}

type ExportConfig struct {
	Timezone  string `toml:"timezone"`
	Company   string `toml:"company"`
	OutputDir string `toml:"output_dir"`
	DataDir   string `toml:"data_dir"`
}

func DefaultConfig() Config {
	return Config{
		Export: ExportConfig{
			Timezone:  "Australia/Sydney",
			Company:   "tablecal",
			OutputDir: ".",
			DataDir:   "data",
		},
	}
}

func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "tablecal"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			applyEnvOverrides(&cfg)
			return &cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TABLECAL_TIMEZONE"); v != "" {
		cfg.Export.Timezone = v
	}
	if v := os.Getenv("TABLECAL_COMPANY"); v != "" {
		cfg.Export.Company = v
	}
	if v := os.Getenv("TABLECAL_OUTPUT_DIR"); v != "" {
		cfg.Export.OutputDir = v
	}
	if v := os.Getenv("TABLECAL_DATA_DIR"); v != "" {
		cfg.Export.DataDir = v
	}
	if v := os.Getenv("TABLECAL_DEBUG"); v == "1" || v == "true" {
		cfg.Debug = true
	}
}

func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// Save persists the config to the config file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	out, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, out, 0644)
}
