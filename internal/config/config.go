package config

import (
	"fmt"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Storage  StorageConfig
	Database DatabaseConfig
	App      AppConfig
}

// StorageConfig holds the connection info for the S3-compatible backend.
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// DatabaseConfig is optional; the database cleanup path is only offered
// when URL is set.
type DatabaseConfig struct {
	URL string
}

type AppConfig struct {
	LogLevel string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("STORAGE_REGION", "us-east-1")
		viper.SetDefault("STORAGE_USE_SSL", true)
		viper.SetDefault("DATABASE_URL", "")
		viper.SetDefault("LOG_LEVEL", "info")

		// Read from environment variables
		viper.AutomaticEnv()

		instance = &Config{
			Storage: StorageConfig{
				Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
				AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
				Region:    viper.GetString("STORAGE_REGION"),
				UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
			},
			Database: DatabaseConfig{
				URL: viper.GetString("DATABASE_URL"),
			},
			App: AppConfig{
				LogLevel: viper.GetString("LOG_LEVEL"),
			},
		}
	})

	return instance
}

// Validate reports missing required values before any network call is made.
func (c *Config) Validate() error {
	if c.Storage.Endpoint == "" {
		return fmt.Errorf("STORAGE_ENDPOINT must be set")
	}
	if c.Storage.AccessKey == "" || c.Storage.SecretKey == "" {
		return fmt.Errorf("STORAGE_ACCESS_KEY and STORAGE_SECRET_KEY must be set")
	}
	return nil
}
