// Package config loads the YAML settings file.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Rows      int    `yaml:"rows"`       // initial row count
	Cols      int    `yaml:"cols"`       // initial column count
	RowHeight int    `yaml:"row_height"` // default row height in lines
	ColWidth  int    `yaml:"col_width"`  // default column width in cells
	LogFile   string `yaml:"log_file"`   // empty discards the log
	LogLevel  string `yaml:"log_level"`
	Autosave  bool   `yaml:"autosave"` // write the open file after every edit
	Splash    bool   `yaml:"splash"`
}

func Default() Config {
	return Config{
		Rows:      100,
		Cols:      8,
		RowHeight: 1,
		ColWidth:  16,
		LogLevel:  "info",
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Rows < 1 {
		errs = append(errs, fmt.Errorf("rows must be positive, got %d", c.Rows))
	}
	if c.Cols < 1 {
		errs = append(errs, fmt.Errorf("cols must be positive, got %d", c.Cols))
	}
	if c.RowHeight < 1 {
		errs = append(errs, fmt.Errorf("row_height must be positive, got %d", c.RowHeight))
	}
	if c.ColWidth < 4 {
		errs = append(errs, fmt.Errorf("col_width must be at least 4, got %d", c.ColWidth))
	}
	return errors.Join(errs...)
}
