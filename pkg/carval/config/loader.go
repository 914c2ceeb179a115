package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Load reads .env (if any), an optional config file and the environment into
// a Config. v may be nil, in which case a fresh viper instance is used.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	loadEnvFile()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":5000")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("blackbook.id", "")
	v.SetDefault("blackbook.password", "")
	v.SetDefault("blackbook.graphql_url", "")
	v.SetDefault("blackbook.timeout", 15*time.Second)
	v.SetDefault("blackbook.test_timeout", 10*time.Second)

	v.SetDefault("nhtsa.base_url", "https://vpic.nhtsa.dot.gov/api/vehicles")
	v.SetDefault("nhtsa.timeout", 10*time.Second)

	v.SetDefault("listings.base_url", "https://www.autotrader.ca")
	v.SetDefault("listings.timeout", 10*time.Second)
	v.SetDefault("listings.max_results", 15)
	v.SetDefault("listings.user_agent", defaultUserAgent)

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

func loadEnvFile() {
	for _, path := range []string{".env", "../.env"} {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Blackbook.Timeout <= 0 || cfg.Blackbook.TestTimeout <= 0 {
		return errors.New("blackbook timeouts must be positive")
	}
	if cfg.NHTSA.Timeout <= 0 {
		return errors.New("nhtsa.timeout must be positive")
	}
	if cfg.Listings.Timeout <= 0 {
		return errors.New("listings.timeout must be positive")
	}
	if cfg.Listings.MaxResults <= 0 {
		return errors.New("listings.max_results must be positive")
	}
	if cfg.NHTSA.BaseURL == "" || cfg.Listings.BaseURL == "" {
		return errors.New("nhtsa.base_url and listings.base_url are required")
	}
	return nil
}
