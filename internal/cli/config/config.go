// Package config loads the seometa.yml service configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/seometa/seometa/internal/meta/schema"
)

// Config is the service configuration.
type Config struct {
	ProjectName string `mapstructure:"project_name"`

	// Sites, I18n and Subdomains enable the corresponding scoping axes.
	// Changing them after tables exist requires a migration.
	Sites      bool `mapstructure:"sites"`
	I18n       bool `mapstructure:"i18n"`
	Subdomains bool `mapstructure:"subdomains"`

	// Backends is the ordered list of active backends. Empty means the
	// built-in default order.
	Backends []string `mapstructure:"backends"`

	Languages   []string `mapstructure:"languages"`
	DefaultSite int64    `mapstructure:"default_site"`
	AppendSlash bool     `mapstructure:"append_slash"`

	Database    DatabaseConfig     `mapstructure:"database"`
	Server      ServerConfig       `mapstructure:"server"`
	Redis       RedisConfig        `mapstructure:"redis"`
	Auth        AuthConfig         `mapstructure:"auth"`
	Definitions []DefinitionConfig `mapstructure:"definitions"`
}

// DatabaseConfig names the backing database.
type DatabaseConfig struct {
	// Driver is "pgx" or "sqlite3".
	Driver string `mapstructure:"driver"`
	URL    string `mapstructure:"url"`
}

// ServerConfig holds the HTTP listen settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// RedisConfig enables the Redis-backed rate limiter when Addr is set.
type RedisConfig struct {
	Addr           string `mapstructure:"addr"`
	RateLimit      int    `mapstructure:"rate_limit"`
	RateWindowSecs int    `mapstructure:"rate_window_seconds"`
}

// AuthConfig enables bearer-token auth on write routes when Secret is set.
type AuthConfig struct {
	Secret       string `mapstructure:"secret"`
	TokenTTLMins int    `mapstructure:"token_ttl_minutes"`
}

// TokenTTL returns the configured token lifetime.
func (a AuthConfig) TokenTTL() time.Duration {
	if a.TokenTTLMins <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(a.TokenTTLMins) * time.Minute
}

// DefinitionConfig declares one metadata group and its fields.
type DefinitionConfig struct {
	Name   string        `mapstructure:"name"`
	Fields []FieldConfig `mapstructure:"fields"`
}

// FieldConfig declares one metadata field.
type FieldConfig struct {
	Name     string `mapstructure:"name"`
	Editable bool   `mapstructure:"editable"`
	Head     bool   `mapstructure:"head"`
	HeadTag  string `mapstructure:"head_tag"`
	// Kind is "string", "text", "bool" or "int"; empty means string.
	Kind string `mapstructure:"kind"`
	// Default, when non-empty, is the fallback value for the field. It
	// may contain substitution tokens.
	Default string `mapstructure:"default"`
}

// Build converts a definition declaration into an engine definition.
func (d DefinitionConfig) Build() (*schema.Definition, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("definition name is required")
	}
	def := schema.NewDefinition(d.Name)
	for _, f := range d.Fields {
		kind, err := parseKind(f.Kind)
		if err != nil {
			return nil, fmt.Errorf("field %s of %s: %w", f.Name, d.Name, err)
		}
		spec := &schema.FieldSpec{
			Name:     f.Name,
			Editable: f.Editable,
			Head:     f.Head,
			HeadTag:  f.HeadTag,
			Kind:     kind,
		}
		if f.Default != "" {
			spec.PopulateFrom = schema.Literal{Value: f.Default}
		}
		if err := def.AddField(spec); err != nil {
			return nil, fmt.Errorf("definition %s: %w", d.Name, err)
		}
	}
	return def, nil
}

func parseKind(s string) (schema.Kind, error) {
	switch s {
	case "", "string":
		return schema.KindString, nil
	case "text":
		return schema.KindText, nil
	case "bool":
		return schema.KindBool, nil
	case "int":
		return schema.KindInt, nil
	}
	return 0, fmt.Errorf("unknown kind %q", s)
}

// Load reads seometa.yml from the working directory, falling back to
// defaults and environment variables (SEOMETA_DATABASE_URL etc.).
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("append_slash", true)
	v.SetDefault("default_site", 1)
	v.SetDefault("database.driver", "pgx")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("redis.rate_limit", 100)
	v.SetDefault("redis.rate_window_seconds", 60)

	v.SetConfigName("seometa")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("seometa")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DatabaseURL returns the database URL, preferring the environment.
func (c *Config) DatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return c.Database.URL
}

func validate(cfg *Config) error {
	switch cfg.Database.Driver {
	case "pgx", "postgres", "sqlite3", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	seen := make(map[string]bool)
	for _, d := range cfg.Definitions {
		if seen[d.Name] {
			return fmt.Errorf("duplicate definition %q", d.Name)
		}
		seen[d.Name] = true
	}
	return nil
}
