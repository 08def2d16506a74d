package pseudo

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk interpreter configuration.
//
//	isolate_frames: true
//	log_level: debug
//	work_dir: ./data
//	max_depth: 1000
type Config struct {
	IsolateFrames bool   `yaml:"isolate_frames"`
	LogLevel      string `yaml:"log_level"`
	WorkDir       string `yaml:"work_dir"`
	MaxDepth      int    `yaml:"max_depth"`
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.MaxDepth < 0 {
		return nil, fmt.Errorf("parsing config %s: max_depth must not be negative", path)
	}
	if _, err := cfg.Level(); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}

// Level returns the configured log level. An empty level means Info.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return level, nil
}
