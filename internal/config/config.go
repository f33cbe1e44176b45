// Package config loads the on-disk settings that size and locate a tinydb
// database: where its files live and how many buffer pool frames to keep.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the settings needed to open or create a database.
type Config struct {
	DataDir            string `yaml:"data_dir"`
	BufferPoolCapacity int    `yaml:"buffer_pool_capacity"`
}

// Default returns the configuration used when no config file is supplied.
func Default() Config {
	return Config{
		DataDir:            "./data",
		BufferPoolCapacity: 64,
	}
}

// Load reads a YAML config file at path, filling in defaults for any field
// left unset.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.DataDir == "" {
		cfg.DataDir = Default().DataDir
	}
	if cfg.BufferPoolCapacity <= 0 {
		cfg.BufferPoolCapacity = Default().BufferPoolCapacity
	}
	return cfg, nil
}
