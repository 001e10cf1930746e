package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName             string
	AppEnv              string
	AppPort             string
	DatabaseURL         string
	RedisURL            string
	NATSURL             string
	NATSSubjectBase     string
	JWTSecret           string
	AccessTokenTTL      time.Duration
	RefreshTokenTTL     time.Duration
	CompanyCacheTTL     time.Duration
	DeanName            string
	DeanEmail           string
	DeanPassword        string
	AuthRateLimitMax    int
	AuthRateLimitWindow time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("EVENTHUB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "EventHub API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("nats.subject_base", "eventhub")
	v.SetDefault("jwt.access_ttl", "15m")
	v.SetDefault("jwt.refresh_ttl", "720h")
	v.SetDefault("company.cache_ttl", "5m")
	v.SetDefault("auth.rate_limit_max", 20)
	v.SetDefault("auth.rate_limit_window", "1m")

	accessTTL, err := time.ParseDuration(v.GetString("jwt.access_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid access token ttl: %w", err)
	}

	refreshTTL, err := time.ParseDuration(v.GetString("jwt.refresh_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid refresh token ttl: %w", err)
	}

	cacheTTL, err := time.ParseDuration(v.GetString("company.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid company cache ttl: %w", err)
	}

	rateWindow, err := time.ParseDuration(v.GetString("auth.rate_limit_window"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid auth rate limit window: %w", err)
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		DatabaseURL:         v.GetString("database.url"),
		RedisURL:            v.GetString("redis.url"),
		NATSURL:             v.GetString("nats.url"),
		NATSSubjectBase:     v.GetString("nats.subject_base"),
		JWTSecret:           v.GetString("jwt.secret"),
		AccessTokenTTL:      accessTTL,
		RefreshTokenTTL:     refreshTTL,
		CompanyCacheTTL:     cacheTTL,
		DeanName:            v.GetString("dean.name"),
		DeanEmail:           v.GetString("dean.email"),
		DeanPassword:        v.GetString("dean.password"),
		AuthRateLimitMax:    v.GetInt("auth.rate_limit_max"),
		AuthRateLimitWindow: rateWindow,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	return cfg, nil
}
