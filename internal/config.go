package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/text/language"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Content ContentConfig     `yaml:"content"`
	CORS    CORSConfig        `yaml:"cors"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	return c.Content.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// ContentConfig describes where recipe files live and how they are served.
//
// Path is resolved once at startup; it replaces any lookup relative to the
// process working directory per request.
type ContentConfig struct {
	Path        string `yaml:"path"`
	URLPrefix   string `yaml:"url_prefix"`
	Locale      string `yaml:"locale"`
	Concurrency int    `yaml:"concurrency"`
	Watch       bool   `yaml:"watch"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required, validation.By(pathRule)),
		validation.Field(&c.URLPrefix, validation.By(urlPrefixRule)),
		validation.Field(&c.Locale, validation.Required, validation.By(localeRule)),
		validation.Field(&c.Concurrency, validation.Min(1), validation.Max(256)),
	)
}

// Language returns the collation language for Locale. Validate must have
// accepted Locale first.
func (c *ContentConfig) Language() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.Danish
	}
	return tag
}

func localeRule(value any) error {
	s, _ := value.(string)
	if _, err := language.Parse(s); err != nil {
		return fmt.Errorf("unknown locale %q", s)
	}
	return nil
}

func pathRule(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("must not be blank")
	}
	if strings.ContainsRune(s, 0) {
		return errors.New("must not contain NUL")
	}
	return nil
}

func urlPrefixRule(value any) error {
	s, _ := value.(string)
	if s != "" && !strings.HasPrefix(s, "/") {
		return errors.New("must start with /")
	}
	return nil
}

// CORSConfig controls the Access-Control-Allow-Origin header sent to the
// web front end. Empty disables CORS headers.
type CORSConfig struct {
	AllowedOrigin string `yaml:"allowed_origin"`
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Content: ContentConfig{
			Path:        "./content/opskrifter",
			URLPrefix:   "/opskrifter",
			Locale:      "da",
			Concurrency: 8,
			Watch:       true,
		},
		CORS: CORSConfig{
			AllowedOrigin: "*",
		},
	}
}
