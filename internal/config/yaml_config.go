package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"pagewatch/internal/models"
	"pagewatch/internal/validation"
)

// YAMLConfig represents the structure of the config.yaml file.
// Targets declared here are upserted by name at startup.
type YAMLConfig struct {
	Targets  []TargetConfig `yaml:"targets"`
	Defaults DefaultsConfig `yaml:"defaults"`
}

// TargetConfig declares one watched target.
type TargetConfig struct {
	Name        string   `yaml:"name"`
	URLs        []string `yaml:"urls"`
	Keywords    []string `yaml:"keywords"`
	NotifyEmail string   `yaml:"notify_email,omitempty"`
	Active      *bool    `yaml:"active,omitempty"` // Falls back to defaults.active
}

// DefaultsConfig defines default settings.
type DefaultsConfig struct {
	Active      bool   `yaml:"active"`
	NotifyEmail string `yaml:"notify_email"`
}

// LoadYAMLConfig loads the YAML configuration file.
// Path is determined by CONFIG_FILE env var, defaulting to "config.yaml".
// Returns nil without error if the config file doesn't exist.
func LoadYAMLConfig() (*YAMLConfig, error) {
	return LoadYAMLConfigFile(getEnv("CONFIG_FILE", "config.yaml"))
}

// LoadYAMLConfigFile loads the YAML configuration from path.
func LoadYAMLConfigFile(path string) (*YAMLConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file is optional
			return nil, nil
		}
		return nil, err
	}

	cfg := YAMLConfig{Defaults: DefaultsConfig{Active: true}}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	seen := make(map[string]bool, len(cfg.Targets))
	for _, t := range cfg.Targets {
		if t.Name == "" {
			return nil, fmt.Errorf("parse %s: target without a name", path)
		}
		if seen[t.Name] {
			return nil, fmt.Errorf("parse %s: duplicate target %q", path, t.Name)
		}
		seen[t.Name] = true
	}

	return &cfg, nil
}

// GetTargetByName finds a target by its name.
func (c *YAMLConfig) GetTargetByName(name string) *TargetConfig {
	if c == nil {
		return nil
	}
	for i := range c.Targets {
		if c.Targets[i].Name == name {
			return &c.Targets[i]
		}
	}
	return nil
}

// SeedTargets converts the declared targets into validated models.
func (c *YAMLConfig) SeedTargets() ([]models.Target, error) {
	if c == nil {
		return nil, nil
	}

	targets := make([]models.Target, 0, len(c.Targets))
	for _, tc := range c.Targets {
		t := models.Target{
			Name:        tc.Name,
			URLs:        validation.NormalizeURLs(tc.URLs),
			Keywords:    validation.NormalizeKeywords(tc.Keywords),
			NotifyEmail: tc.NotifyEmail,
			Active:      c.Defaults.Active,
		}
		if t.NotifyEmail == "" {
			t.NotifyEmail = c.Defaults.NotifyEmail
		}
		if tc.Active != nil {
			t.Active = *tc.Active
		}

		if valid, msg := validation.ValidateURLs(t.URLs); !valid {
			return nil, fmt.Errorf("target %q: %s", tc.Name, msg)
		}
		if valid, msg := validation.ValidateKeywords(t.Keywords); !valid {
			return nil, fmt.Errorf("target %q: %s", tc.Name, msg)
		}
		targets = append(targets, t)
	}
	return targets, nil
}
