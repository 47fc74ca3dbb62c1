package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Settings holds user configuration loaded from the YAML config file.
// Zero values fall back to defaults during loading.
type Settings struct {
	// ImagePath is the directory where downloaded images are stored.
	ImagePath string `yaml:"image_path"`

	// OutputPath is the default directory for clipped notes.
	OutputPath string `yaml:"output_path"`

	// DefaultTags are merged into every clip's frontmatter.
	DefaultTags []string `yaml:"default_tags"`

	Reader ReaderSettings `yaml:"reader"`
}

// ReaderSettings configures the remote reader service.
type ReaderSettings struct {
	BaseURL          string `yaml:"base_url"`
	Timeout          int    `yaml:"timeout"`
	NoCache          bool   `yaml:"no_cache"`
	CacheTolerance   int    `yaml:"cache_tolerance"`
	RespondWith      string `yaml:"respond_with"`
	WithGeneratedAlt bool   `yaml:"with_generated_alt"`
}

// DefaultSettings returns the settings used when no config file exists.
func DefaultSettings() *Settings {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Settings{
		ImagePath:   filepath.Join(home, "Attachments"),
		OutputPath:  ".",
		DefaultTags: []string{"clippings"},
		Reader: ReaderSettings{
			BaseURL:        "https://r.jina.ai",
			Timeout:        20,
			CacheTolerance: 3600,
			RespondWith:    "markdown",
		},
	}
}

// LoadSettings reads the config file at path, filling missing fields
// with defaults. A missing file is not an error.
func LoadSettings(path string) (*Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return settings, nil
	} else if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	settings.ImagePath = expandHome(settings.ImagePath)
	settings.OutputPath = expandHome(settings.OutputPath)

	if settings.Reader.BaseURL == "" {
		settings.Reader.BaseURL = "https://r.jina.ai"
	}
	if settings.Reader.Timeout <= 0 {
		settings.Reader.Timeout = 20
	}
	if settings.Reader.RespondWith == "" {
		settings.Reader.RespondWith = "markdown"
	}
	return settings, nil
}

func defaultConfigPath() string {
	if path := os.Getenv("PKMCLIP_CONFIG"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".pkmclip", "config.yaml")
}

// expandHome replaces a leading "~" with the user's home directory.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
