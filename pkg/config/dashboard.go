package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"content-dashboard/pkg/models"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed default_dashboard.yml
var defaultDashboard []byte

// LoadDashboard reads the content model from path, a .yml/.yaml or .toml
// file. An empty path loads the built-in model.
func LoadDashboard(path string) (*models.DashboardConfig, error) {
	if path == "" {
		return ParseDashboard(defaultDashboard, "yaml")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dashboard config: %w", err)
	}
	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		format = "toml"
	}
	return ParseDashboard(data, format)
}

// ParseDashboard decodes and validates a content model in format "yaml" or "toml".
func ParseDashboard(data []byte, format string) (*models.DashboardConfig, error) {
	var cfg models.DashboardConfig
	var err error
	switch format {
	case "toml":
		err = toml.Unmarshal(data, &cfg)
	case "yaml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return nil, fmt.Errorf("unknown dashboard config format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("decode dashboard config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid dashboard config: %w", err)
	}
	slugs := map[string]bool{}
	for _, d := range cfg.Documents {
		if slugs[d.Slug] {
			return nil, fmt.Errorf("invalid dashboard config: duplicate slug %q", d.Slug)
		}
		slugs[d.Slug] = true
	}

	// Labels are looked up by lower-cased key.
	for locale, labels := range cfg.Labels {
		lower := make(map[string]string, len(labels))
		for k, v := range labels {
			lower[strings.ToLower(k)] = v
		}
		cfg.Labels[locale] = lower
	}
	return &cfg, nil
}
