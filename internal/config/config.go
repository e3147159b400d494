// Package config handles the optional defaults file for the exporter.
package config

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Config carries exporter defaults. Command line flags win over file values.
type Config struct {
	Title       string  `yaml:"title,omitempty"`
	Label       string  `yaml:"label,omitempty"`
	MapStyle    string  `yaml:"map_style,omitempty"`
	StyleFile   string  `yaml:"style,omitempty"`
	MapboxToken string  `yaml:"mapbox_token,omitempty"`
	Attribution string  `yaml:"attribution,omitempty"`
	Zoom        float64 `yaml:"zoom,omitempty"`
	NoMinify    bool    `yaml:"no_minify,omitempty"`
}

// Load reads and parses the YAML defaults file from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "config: read %s", path)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, eris.Wrapf(err, "config: parse %s", path)
	}

	return &cfg, nil
}
