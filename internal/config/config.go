package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Flagman FlagmanConfig `mapstructure:"flagman"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

// FlagmanConfig holds scraping configuration for the flagman.ua catalog
type FlagmanConfig struct {
	BaseURL              string `mapstructure:"base_url"`
	Timeout              int    `mapstructure:"timeout"`
	MaxRequestsPerSecond int    `mapstructure:"max_requests_per_second"`
	PageDelayMs          int    `mapstructure:"page_delay_ms"`
	ItemDelayMs          int    `mapstructure:"item_delay_ms"`
	DelayJitterMs        int    `mapstructure:"delay_jitter_ms"`
	MaxImages            int    `mapstructure:"max_images"`
	UserAgent            string `mapstructure:"user_agent"`
}

// Load loads configuration from YAML file with environment variable overrides
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		// Missing config.yaml is fine, defaults cover everything
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "localhost")

	viper.SetDefault("flagman.base_url", "https://flagman.ua")
	viper.SetDefault("flagman.timeout", 20)
	viper.SetDefault("flagman.max_requests_per_second", 5)
	viper.SetDefault("flagman.page_delay_ms", 100)
	viper.SetDefault("flagman.item_delay_ms", 50)
	viper.SetDefault("flagman.delay_jitter_ms", 30)
	viper.SetDefault("flagman.max_images", 15)
	viper.SetDefault("flagman.user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36")
}
