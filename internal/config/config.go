// Package config loads and validates the site configuration file.
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	apperrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
)

// DefaultFilename is looked up in the source root when no explicit
// config path is given.
const DefaultFilename = "config.yml"

// Config is the full site configuration.
type Config struct {
	Source string     `yaml:"source"` // source tree root, defaults to the config file's directory
	Output string     `yaml:"output"` // generated site root
	Site   SiteConfig `yaml:"site"`
	Feed   FeedConfig `yaml:"feed"`

	// TemplatePath points at a directory of user template overrides.
	// Empty means the embedded defaults are used.
	TemplatePath string `yaml:"template_path,omitempty"`

	// ThumbnailSize overrides the default size of thumbnail directives
	// that do not specify one.
	ThumbnailSize int `yaml:"thumbnail_size,omitempty"`
}

// SiteConfig carries the site-wide metadata templates and the feed need.
type SiteConfig struct {
	Title        string `yaml:"title"`
	Author       string `yaml:"author,omitempty"`
	CanonicalURL string `yaml:"canonical_url"`
	Description  string `yaml:"description,omitempty"`
}

// FeedConfig controls RSS generation.
type FeedConfig struct {
	Path  string `yaml:"path,omitempty"`  // output-relative, default feed.xml
	Limit int    `yaml:"limit,omitempty"` // newest-N entries, default 10
}

// Load reads the configuration at path. A .env file next to the config
// is loaded first so ${VAR} references in the YAML can resolve; process
// environment always wins over the .env file.
func Load(path string) (*Config, error) {
	dir := filepath.Dir(path)
	for _, env := range []string{".env", ".env.local"} {
		// best effort; godotenv never overrides existing variables
		_ = godotenv.Load(filepath.Join(dir, env))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.ConfigNotFound(path)
		}
		return nil, apperrors.FileUnreadable(path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CategoryConfig, apperrors.SeverityFatal,
			"malformed configuration file")
	}

	cfg.applyDefaults(dir)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults(dir string) {
	if c.Source == "" {
		c.Source = dir
	}
	if c.Output == "" {
		c.Output = filepath.Join(dir, "_build")
	}
	if c.Feed.Path == "" {
		c.Feed.Path = "feed.xml"
	}
	if c.Feed.Limit <= 0 {
		c.Feed.Limit = 10
	}
}

// Validate checks the fields without which a build cannot run.
func (c *Config) Validate() error {
	if c.Site.Title == "" {
		return apperrors.ConfigRequired("site.title")
	}
	if c.Site.CanonicalURL == "" {
		return apperrors.ConfigRequired("site.canonical_url")
	}
	return nil
}

// Default returns a starter configuration used by the init command.
func Default() *Config {
	return &Config{
		Output: "_build",
		Site: SiteConfig{
			Title:        "My Blog",
			Author:       "Author Name",
			CanonicalURL: "https://example.com/",
			Description:  "Notes and longer writing.",
		},
		Feed: FeedConfig{Path: "feed.xml", Limit: 10},
	}
}

// Write serializes the configuration to path. Used by init; refuses to
// overwrite unless force is set.
func (c *Config) Write(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return apperrors.New(apperrors.CategoryConfig, apperrors.SeverityError,
				"configuration file already exists: "+path)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CategoryConfig, apperrors.SeverityError,
			"serialize configuration")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return apperrors.FileUnwritable(path, err)
	}
	return nil
}
