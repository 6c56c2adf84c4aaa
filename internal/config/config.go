package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
// It is built once at startup and passed explicitly to every component.
type Config struct {
	// Server
	Port        int    `mapstructure:"PORT"`
	Env         string `mapstructure:"APP_ENV"` // development | production
	UploadMaxMB int    `mapstructure:"UPLOAD_MAX_MB"`

	// Redis (optional recent-runs index)
	RedisURL string `mapstructure:"REDIS_URL"`

	// Holded
	HoldedAPIKey                   string  `mapstructure:"HOLDED_API_KEY"`
	HoldedAPIURL                   string  `mapstructure:"HOLDED_API_URL"`
	HoldedTimeoutSeconds           int     `mapstructure:"HOLDED_TIMEOUT_SECONDS"`
	HoldedProductsTimeoutSeconds   int     `mapstructure:"HOLDED_PRODUCTS_TIMEOUT_SECONDS"`
	HoldedUpdateTimeoutSeconds     int     `mapstructure:"HOLDED_UPDATE_TIMEOUT_SECONDS"`
	HoldedRateLimitRPS             float64 `mapstructure:"HOLDED_RATE_LIMIT_RPS"`
	HoldedCaceresFallbackWarehouse string  `mapstructure:"HOLDED_CACERES_FALLBACK_WAREHOUSE_ID"`

	// Google Cloud Storage
	GCSCredentialsBase64 string `mapstructure:"GCS_CREDENTIALS_BASE64"`
	GCSBucketName        string `mapstructure:"GCS_BUCKET_NAME"`
}

// Load reads configuration from environment variables, an optional
// .env.local (loaded first, never overriding real env vars) and an optional .env.
func Load() (*Config, error) {
	_ = godotenv.Load(".env.local")

	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	// an empty HOLDED_CACERES_FALLBACK_WAREHOUSE_ID disables the fallback
	v.AllowEmptyEnv(true)

	setDefaults(v)

	// optional .env for local development; a missing file is not an error
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", 8000)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("UPLOAD_MAX_MB", 20)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("HOLDED_API_KEY", "")
	v.SetDefault("HOLDED_API_URL", "https://api.holded.com/api/invoicing/v1")
	v.SetDefault("HOLDED_TIMEOUT_SECONDS", 30)
	v.SetDefault("HOLDED_PRODUCTS_TIMEOUT_SECONDS", 60)
	v.SetDefault("HOLDED_UPDATE_TIMEOUT_SECONDS", 10)
	v.SetDefault("HOLDED_RATE_LIMIT_RPS", 0)
	v.SetDefault("HOLDED_CACERES_FALLBACK_WAREHOUSE_ID", "685036750bb898af5e05dd11")
	v.SetDefault("GCS_CREDENTIALS_BASE64", "")
	v.SetDefault("GCS_BUCKET_NAME", "alternativecbd-glop-reports")
}

// HoldedTimeout is the default per-call timeout for Holded reads.
func (c *Config) HoldedTimeout() time.Duration {
	return seconds(c.HoldedTimeoutSeconds, 30)
}

// HoldedProductsTimeout covers the (large) product catalog download.
func (c *Config) HoldedProductsTimeout() time.Duration {
	return seconds(c.HoldedProductsTimeoutSeconds, 60)
}

// HoldedUpdateTimeout covers a single stock adjustment.
func (c *Config) HoldedUpdateTimeout() time.Duration {
	return seconds(c.HoldedUpdateTimeoutSeconds, 10)
}

// UploadMaxBytes is the multipart body limit for CSV uploads.
func (c *Config) UploadMaxBytes() int64 {
	if c.UploadMaxMB <= 0 {
		return 20 << 20
	}
	return int64(c.UploadMaxMB) << 20
}

func seconds(n, def int) time.Duration {
	if n <= 0 {
		n = def
	}
	return time.Duration(n) * time.Second
}
