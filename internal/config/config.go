// Package config handles importer configuration loading and management.
package config

import (
	"fmt"
	"slices"
)

// Config holds all importer settings.
type Config struct {
	Import  ImportConfig  `yaml:"import"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// ImportConfig holds the settings passed to the scene loader.
type ImportConfig struct {
	ConcurrentBuffers bool `yaml:"concurrent_buffers"`
	Workers           int  `yaml:"workers"` // 0 means one worker per CPU
	LoadImageData     bool `yaml:"load_image_data"`
	Cache             bool `yaml:"cache"`
	GenerateNormals   bool `yaml:"generate_normals"`
	GenerateTangents  bool `yaml:"generate_tangents"`
	Profile           bool `yaml:"profile"` // log per-stage timings
}

// OutputConfig holds CLI summary settings.
type OutputConfig struct {
	Format string `yaml:"format"` // text, json or yaml
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Output formats accepted by OutputConfig.Format.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var (
	formats = []string{FormatText, FormatJSON, FormatYAML}
	levels  = []string{"debug", "info", "warn", "error"}
)

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Import: ImportConfig{
			ConcurrentBuffers: true,
			Workers:           4,
			LoadImageData:     true,
			Cache:             false,
		},
		Output: OutputConfig{
			Format: FormatText,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports the first setting that is out of range.
func (c *Config) Validate() error {
	if c.Import.Workers < 0 {
		return fmt.Errorf("import.workers must not be negative, got %d", c.Import.Workers)
	}
	if !slices.Contains(formats, c.Output.Format) {
		return fmt.Errorf("output.format must be one of %v, got %q", formats, c.Output.Format)
	}
	if !slices.Contains(levels, c.Logging.Level) {
		return fmt.Errorf("logging.level must be one of %v, got %q", levels, c.Logging.Level)
	}
	return nil
}
