package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/w920801-a11y/climate-try/internal/weather"
)

type Config struct {
	ServiceName   string
	ServerAddress string

	Env         string
	LogLevel    string
	HTTPTimeout int32

	// GeminiAPIKey is the oracle credential. May be empty; requests then fail
	// locally with a credential-missing error instead of blocking startup.
	GeminiAPIKey  string
	GeminiModel   string
	OracleBaseURL string

	MaxRetries   int
	RetryBackoff time.Duration

	MaxQueueSize   int
	MaxWaitTime    time.Duration
	CacheTTL       time.Duration
	FailedCacheTTL time.Duration
	QuotaCooldown  time.Duration

	WarmLocations []string
	WarmInterval  time.Duration
}

func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("SERVICE_NAME", "climate-try")

	v.SetDefault("SERVER_ADDRESS", "0.0.0.0:3000")
	v.SetDefault("HTTP_TIMEOUT", 90)
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("MAX_RETRIES", 2)
	v.SetDefault("RETRY_BACKOFF", 1800*time.Millisecond)
	v.SetDefault("MAX_QUEUE_SIZE", 10)
	v.SetDefault("MAX_WAIT_TIME", 2*time.Second)
	v.SetDefault("CACHE_TTL", 10*time.Minute)
	v.SetDefault("FAILED_CACHE_TTL", 1*time.Minute)
	v.SetDefault("QUOTA_COOLDOWN", 2*time.Minute)
	v.SetDefault("WARM_INTERVAL", 30*time.Minute)

	v.AutomaticEnv()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Warn().Msg("No .env file found, using environment variables only")
		} else {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		log.Info().Str("file", v.ConfigFileUsed()).Msg("Config file loaded")
	}

	config := &Config{
		ServiceName:    v.GetString("SERVICE_NAME"),
		ServerAddress:  v.GetString("SERVER_ADDRESS"),
		Env:            v.GetString("ENV"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		HTTPTimeout:    v.GetInt32("HTTP_TIMEOUT"),
		GeminiAPIKey:   v.GetString("GEMINI_API_KEY"),
		GeminiModel:    v.GetString("GEMINI_MODEL"),
		OracleBaseURL:  v.GetString("ORACLE_BASE_URL"),
		MaxRetries:     v.GetInt("MAX_RETRIES"),
		RetryBackoff:   v.GetDuration("RETRY_BACKOFF"),
		MaxQueueSize:   v.GetInt("MAX_QUEUE_SIZE"),
		MaxWaitTime:    v.GetDuration("MAX_WAIT_TIME"),
		CacheTTL:       v.GetDuration("CACHE_TTL"),
		FailedCacheTTL: v.GetDuration("FAILED_CACHE_TTL"),
		QuotaCooldown:  v.GetDuration("QUOTA_COOLDOWN"),
		WarmLocations:  splitList(v.GetString("WARM_LOCATIONS")),
		WarmInterval:   v.GetDuration("WARM_INTERVAL"),
	}

	return config, nil
}

func (c *Config) HTTPTimeoutDuration() time.Duration {
	return time.Duration(c.HTTPTimeout) * time.Second
}

// WarmLocationList converts the configured place names into locations the
// refresher can fetch.
func (c *Config) WarmLocationList() []weather.Location {
	locations := make([]weather.Location, 0, len(c.WarmLocations))
	for _, name := range c.WarmLocations {
		locations = append(locations, weather.Location{Name: name})
	}
	return locations
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
