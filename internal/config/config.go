package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file picked up from the working directory
// when --config is not given.
const DefaultPath = "vocab.yaml"

// Config holds the tool's settings. Flags override whatever is loaded here.
type Config struct {
	// Review
	MarginMS          int    `yaml:"margin_ms"`
	Strategy          string `yaml:"strategy"`
	Player            string `yaml:"player"`
	OverwriteExport   bool   `yaml:"overwrite_export"`
	KeepClipboardFile bool   `yaml:"keep_clipboard_file"`

	// Generate
	Provider       string `yaml:"provider"`
	Model          string `yaml:"model"`
	WordCount      int    `yaml:"word_count"`
	TargetLanguage string `yaml:"target_language"`

	// Clips
	ClipDir     string `yaml:"clip_dir"`
	Concurrency int    `yaml:"concurrency"`
}

func Default() *Config {
	return &Config{
		MarginMS:    500,
		Strategy:    "auto",
		Provider:    "gemini",
		WordCount:   20,
		ClipDir:     "clips",
		Concurrency: 4,
	}
}

// Load reads a YAML config file over the defaults. Fields missing from the
// file keep their default values. A missing default file is fine; a missing
// explicit path is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Strategy = strings.TrimSpace(strings.ToLower(c.Strategy))
	if c.Strategy == "" {
		c.Strategy = "auto"
	}

	c.Provider = strings.TrimSpace(strings.ToLower(c.Provider))
	if c.Provider == "" {
		c.Provider = "gemini"
	}

	if c.MarginMS <= 0 {
		c.MarginMS = 500
	}
	if c.WordCount <= 0 {
		c.WordCount = 20
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if strings.TrimSpace(c.ClipDir) == "" {
		c.ClipDir = "clips"
	}
}

func (c *Config) validate() error {
	switch c.Strategy {
	case "auto", "index", "text":
	default:
		return fmt.Errorf("unknown strategy %q (want auto, index, or text)", c.Strategy)
	}
	return nil
}
