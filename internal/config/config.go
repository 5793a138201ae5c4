package config

import (
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variable overrides. Nested keys
// use a double underscore: CIRCLES_SERVER__PORT -> server.port.
const EnvPrefix = "CIRCLES_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (CIRCLES_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "reading config %s", path)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "accessing config %s", path)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, "loading env overrides")
	}

	// A pages list in the file replaces the built-in pages instead of being
	// merged into them element by element.
	if k.Exists("pages") {
		cfg.Pages = nil
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshalling config")
	}

	cfg.normalize()
	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// normalize fills per-page defaults that depend on the page kind.
func (c *Config) normalize() {
	for i := range c.Pages {
		p := &c.Pages[i]
		if p.Detail == "" {
			if p.Kind == PageKindUnit {
				p.Detail = DetailDimension
			} else {
				p.Detail = DetailMagnification
			}
		}
		if p.Title == "" {
			p.Title = p.ID
		}
		p.Messages = withMessageDefaults(p.Kind, p.Messages)
	}
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshalling config")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "writing config to %s", path)
	}
	return nil
}

// Page returns the page with the given id.
func (c *Config) Page(id string) (PageConfig, bool) {
	for _, p := range c.Pages {
		if p.ID == id {
			return p, true
		}
	}
	return PageConfig{}, false
}

var validKinds = map[PageKind]bool{
	PageKindPrefix: true,
	PageKindUnit:   true,
}

var validDetails = map[DetailField]bool{
	DetailMagnification: true,
	DetailDimension:     true,
}

var pageIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.Newf("invalid server.port %d", c.Server.Port)
	}
	if c.Backend.TimeoutSeconds <= 0 {
		return errors.New("backend.timeout_seconds must be positive")
	}
	if c.Backend.RequestsPerMinute < 0 {
		return errors.New("backend.requests_per_minute must be non-negative")
	}
	if c.DBPath == "" {
		return errors.New("db_path is required")
	}
	if len(c.Pages) == 0 {
		return errors.New("at least one page is required")
	}

	seen := make(map[string]bool)
	for _, p := range c.Pages {
		if err := p.validate(); err != nil {
			return errors.Wrapf(err, "page %q", p.ID)
		}
		if seen[p.ID] {
			return errors.Newf("duplicate page id %q", p.ID)
		}
		seen[p.ID] = true
	}

	if c.DefaultPage != "" && !seen[c.DefaultPage] {
		return errors.WithHint(
			errors.Newf("default_page %q does not name a configured page", c.DefaultPage),
			"set default_page to one of the ids under pages",
		)
	}
	return nil
}

func (p PageConfig) validate() error {
	if !pageIDPattern.MatchString(p.ID) {
		return errors.New("id must be lowercase letters, digits, '-' or '_'")
	}
	if !validKinds[p.Kind] {
		return errors.Newf("invalid kind %q: must be one of prefix, unit", p.Kind)
	}
	if p.Detail != "" && !validDetails[p.Detail] {
		return errors.Newf("invalid detail %q: must be one of magnification, dimension", p.Detail)
	}

	u, err := url.Parse(p.BaseURL)
	if err != nil || p.BaseURL == "" {
		return errors.Newf("invalid base_url %q", p.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Newf("base_url %q must use http or https", p.BaseURL)
	}
	if p.PathPrefix != "" && !strings.HasPrefix(p.PathPrefix, "/") {
		return errors.Newf("path_prefix %q must start with '/'", p.PathPrefix)
	}

	if len(p.Units) == 0 {
		return errors.New("at least one unit is required")
	}
	labels := make(map[string]bool)
	for _, u := range p.Units {
		label := strings.TrimSpace(u.Label)
		if label == "" {
			return errors.Newf("unit %q has no label", u.Name)
		}
		if strings.TrimSpace(u.Name) == "" {
			return errors.Newf("unit %q has no name", u.Label)
		}
		if labels[label] {
			return errors.Newf("duplicate unit label %q", label)
		}
		labels[label] = true
	}
	return nil
}
