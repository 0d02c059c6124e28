// Package config loads and validates the engine configuration: parser
// and order budgets, paging limits, scope column mapping and logger
// settings. Files are read with viper; every loaded configuration is
// checked with validator before use.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the full engine configuration.
type Config struct {
	Filter *Filter
	Order  *Order
	Paging *Paging
	Scope  *Scope
	Logger *Logger
}

// Filter bounds the filter parser.
type Filter struct {
	MaxLength int `validate:"min=1"`
	MaxNodes  int `validate:"min=1"`
	MaxDepth  int `validate:"min=1"`
}

// Order bounds the order parser.
type Order struct {
	MaxLength int `validate:"min=1"`
	MaxFields int `validate:"min=1"`
}

// Paging controls page sizing and the pagination tiebreaker.
type Paging struct {
	DefaultLimit int    `validate:"min=1"`
	MaxLimit     int    `validate:"min=1,gtefield=DefaultLimit"`
	Tiebreaker   string `validate:"required"`
}

// Scope maps the authorization predicate to physical columns.
type Scope struct {
	TenantColumn   string `validate:"required"`
	ResourceColumn string `validate:"required"`
}

// Logger configures the structured logger.
type Logger struct {
	Level  int    `validate:"min=0,max=6"`
	Format string `validate:"oneof=json text"`
	Output string `validate:"oneof=stdout stderr file"`

	OutputFile string
}

// Default returns the stock configuration.
func Default() *Config {
	return &Config{
		Filter: &Filter{MaxLength: 8192, MaxNodes: 2000, MaxDepth: 64},
		Order:  &Order{MaxLength: 1024, MaxFields: 10},
		Paging: &Paging{DefaultLimit: 20, MaxLimit: 100, Tiebreaker: "id"},
		Scope:  &Scope{TenantColumn: "tenant_id", ResourceColumn: "id"},
		Logger: &Logger{Level: 4, Format: "json", Output: "stdout"},
	}
}

// Load reads a configuration file and overlays it on the defaults. An
// empty path returns the validated defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		v := viper.New()
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		applyFile(v, cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFile(v *viper.Viper, cfg *Config) {
	setInt := func(key string, dst *int) {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}
	setString := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}

	setInt("filter.max_length", &cfg.Filter.MaxLength)
	setInt("filter.max_nodes", &cfg.Filter.MaxNodes)
	setInt("filter.max_depth", &cfg.Filter.MaxDepth)

	setInt("order.max_length", &cfg.Order.MaxLength)
	setInt("order.max_fields", &cfg.Order.MaxFields)

	setInt("paging.default_limit", &cfg.Paging.DefaultLimit)
	setInt("paging.max_limit", &cfg.Paging.MaxLimit)
	setString("paging.tiebreaker", &cfg.Paging.Tiebreaker)

	setString("scope.tenant_column", &cfg.Scope.TenantColumn)
	setString("scope.resource_column", &cfg.Scope.ResourceColumn)

	setInt("logger.level", &cfg.Logger.Level)
	setString("logger.format", &cfg.Logger.Format)
	setString("logger.output", &cfg.Logger.Output)
	setString("logger.output_file", &cfg.Logger.OutputFile)
}

// Validate checks every section against its constraints.
func (c *Config) Validate() error {
	validate := validator.New()
	for name, section := range map[string]any{
		"filter": c.Filter,
		"order":  c.Order,
		"paging": c.Paging,
		"scope":  c.Scope,
		"logger": c.Logger,
	} {
		if err := validate.Struct(section); err != nil {
			return fmt.Errorf("invalid %s configuration: %w", name, err)
		}
	}
	return nil
}
