package config

import "time"

// Config is the process-wide configuration. It is loaded once at startup and
// never mutated afterwards.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Blackbook BlackbookConfig `mapstructure:"blackbook"`
	NHTSA     NHTSAConfig     `mapstructure:"nhtsa"`
	Listings  ListingsConfig  `mapstructure:"listings"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// BlackbookConfig holds the valuation service credentials. Empty values are
// allowed here and rejected per call.
type BlackbookConfig struct {
	ID          string        `mapstructure:"id"`
	Password    string        `mapstructure:"password"`
	GraphQLURL  string        `mapstructure:"graphql_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	TestTimeout time.Duration `mapstructure:"test_timeout"`
}

type NHTSAConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type ListingsConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxResults int           `mapstructure:"max_results"`
	UserAgent  string        `mapstructure:"user_agent"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
