package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates every setting the service reads at startup.
type Config struct {
	Server  ServerConfig
	Log     LogConfig
	Twitter TwitterConfig
	Refresh RefreshConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	twitter, err := loadTwitterConfig()
	if err != nil {
		return nil, err
	}

	refresh, err := loadRefreshConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:  server,
		Log:     loadLogConfig(),
		Twitter: twitter,
		Refresh: refresh,
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "3000"
	}

	if strings.Contains(port, ":") {
		// accepts ":3000" or "127.0.0.1:3000"
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// LogConfig selects the logger output.
type LogConfig struct {
	Env   string
	Level string
}

// IsDevelopment reports whether human-readable console logs are wanted.
func (c LogConfig) IsDevelopment() bool {
	return c.Env == "development"
}

func loadLogConfig() LogConfig {
	return LogConfig{
		Env:   getEnvOrDefault("ENV", "development"),
		Level: strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
	}
}

// TwitterConfig is the account credential bundle plus fetch tuning.
type TwitterConfig struct {
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string
	ScreenName     string
	Name           string
	ProfileURL     string
	BaseURL        string
	FetchCount     int
}

// Validate reports every missing credential at once.
func (c TwitterConfig) Validate() error {
	var errs []error
	required := []struct {
		key   string
		value string
	}{
		{"TWITTER_CONSUMER_KEY", c.ConsumerKey},
		{"TWITTER_CONSUMER_SECRET", c.ConsumerSecret},
		{"TWITTER_ACCESS_TOKEN", c.AccessToken},
		{"TWITTER_ACCESS_SECRET", c.AccessSecret},
		{"TWITTER_SCREEN_NAME", c.ScreenName},
	}
	for _, field := range required {
		if field.value == "" {
			errs = append(errs, fmt.Errorf("%s is required", field.key))
		}
	}
	if c.FetchCount < 1 {
		errs = append(errs, fmt.Errorf("TWITTER_FETCH_COUNT must be at least 1, got %d", c.FetchCount))
	}
	return errors.Join(errs...)
}

func loadTwitterConfig() (TwitterConfig, error) {
	count := 5
	if override, err := parseOptionalIntEnv("TWITTER_FETCH_COUNT"); err != nil {
		return TwitterConfig{}, err
	} else if override != nil {
		count = *override
	}

	screenName := strings.TrimPrefix(strings.TrimSpace(os.Getenv("TWITTER_SCREEN_NAME")), "@")

	cfg := TwitterConfig{
		ConsumerKey:    strings.TrimSpace(os.Getenv("TWITTER_CONSUMER_KEY")),
		ConsumerSecret: strings.TrimSpace(os.Getenv("TWITTER_CONSUMER_SECRET")),
		AccessToken:    strings.TrimSpace(os.Getenv("TWITTER_ACCESS_TOKEN")),
		AccessSecret:   strings.TrimSpace(os.Getenv("TWITTER_ACCESS_SECRET")),
		ScreenName:     screenName,
		Name:           getEnvOrDefault("TWITTER_NAME", screenName),
		ProfileURL:     getEnvOrDefault("TWITTER_PROFILE_URL", "https://twitter.com/"+screenName),
		BaseURL:        getEnvOrDefault("TWITTER_API_BASE_URL", "https://api.twitter.com/1.1"),
		FetchCount:     count,
	}

	if err := cfg.Validate(); err != nil {
		return TwitterConfig{}, err
	}
	return cfg, nil
}

// RefreshConfig controls the optional background refresh loop.
type RefreshConfig struct {
	Interval time.Duration
}

// Enabled reports whether periodic refresh should run.
func (c RefreshConfig) Enabled() bool {
	return c.Interval > 0
}

func loadRefreshConfig() (RefreshConfig, error) {
	raw := strings.TrimSpace(os.Getenv("REFRESH_INTERVAL"))
	if raw == "" {
		return RefreshConfig{}, nil
	}

	interval, err := time.ParseDuration(raw)
	if err != nil {
		return RefreshConfig{}, fmt.Errorf("invalid REFRESH_INTERVAL value %q: %w", raw, err)
	}
	if interval < 0 {
		return RefreshConfig{}, fmt.Errorf("invalid REFRESH_INTERVAL value %q: must not be negative", raw)
	}
	return RefreshConfig{Interval: interval}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
