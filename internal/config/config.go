package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const maxReviewsHardCap = 200

// Config is the full runtime configuration, loaded from environment variables.
type Config struct {
	AppEnv        string
	Port          string
	DatabaseURL   string
	RedisURL      string
	ClassifierURL string
	LogLevel      string
	LogFormat     string

	TrendWindowDays      int
	TimeZone             string
	Location             *time.Location
	EmotionLabels        []string
	StoreCapacity        int
	DenseTrend           bool
	MaxReviewsPerHarvest int
	AnalyticsCacheTTL    time.Duration
	ScrapeRatePerMinute  float64
	ScrapeBurst          int
}

// Load reads configuration from the environment (and a local .env file when
// present) and validates it.
func Load() (*Config, error) {
	// Best effort: running without a .env file is the normal production case.
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:        getEnv("APP_ENV", "development"),
		Port:          getEnv("PORT", "8080"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisURL:      getEnv("REDIS_URL", ""),
		ClassifierURL: getEnv("CLASSIFIER_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "text"),
		TimeZone:      getEnv("TIME_ZONE", "UTC"),
	}

	var err error
	if cfg.TrendWindowDays, err = getEnvInt("TREND_WINDOW_DAYS", 30); err != nil {
		return nil, err
	}
	if cfg.TrendWindowDays <= 0 {
		return nil, fmt.Errorf("TREND_WINDOW_DAYS must be positive, got %d", cfg.TrendWindowDays)
	}

	if cfg.StoreCapacity, err = getEnvInt("STORE_CAPACITY", 0); err != nil {
		return nil, err
	}
	if cfg.StoreCapacity < 0 {
		return nil, fmt.Errorf("STORE_CAPACITY must not be negative, got %d", cfg.StoreCapacity)
	}

	if cfg.MaxReviewsPerHarvest, err = getEnvInt("MAX_REVIEWS_PER_HARVEST", 100); err != nil {
		return nil, err
	}
	if cfg.MaxReviewsPerHarvest <= 0 || cfg.MaxReviewsPerHarvest > maxReviewsHardCap {
		return nil, fmt.Errorf("MAX_REVIEWS_PER_HARVEST must be between 1 and %d, got %d", maxReviewsHardCap, cfg.MaxReviewsPerHarvest)
	}

	cacheTTLSeconds, err := getEnvInt("ANALYTICS_CACHE_TTL", 300)
	if err != nil {
		return nil, err
	}
	if cacheTTLSeconds <= 0 {
		return nil, fmt.Errorf("ANALYTICS_CACHE_TTL must be positive, got %d", cacheTTLSeconds)
	}
	cfg.AnalyticsCacheTTL = time.Duration(cacheTTLSeconds) * time.Second

	scrapeRate, err := getEnvInt("SCRAPE_RATE_PER_MINUTE", 5)
	if err != nil {
		return nil, err
	}
	if scrapeRate <= 0 {
		return nil, fmt.Errorf("SCRAPE_RATE_PER_MINUTE must be positive, got %d", scrapeRate)
	}
	cfg.ScrapeRatePerMinute = float64(scrapeRate)

	if cfg.ScrapeBurst, err = getEnvInt("SCRAPE_BURST", 2); err != nil {
		return nil, err
	}
	if cfg.ScrapeBurst <= 0 {
		return nil, fmt.Errorf("SCRAPE_BURST must be positive, got %d", cfg.ScrapeBurst)
	}

	cfg.DenseTrend = getEnv("DENSE_TREND", "false") == "true"

	cfg.Location, err = time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("TIME_ZONE %q is not a valid IANA zone: %w", cfg.TimeZone, err)
	}

	cfg.EmotionLabels = splitLabels(getEnv("EMOTION_LABELS", "joy,anger,sadness,fear,surprise,disgust"))
	if len(cfg.EmotionLabels) == 0 {
		return nil, fmt.Errorf("EMOTION_LABELS must name at least one label")
	}

	return cfg, nil
}

func splitLabels(raw string) []string {
	var labels []string
	for _, part := range strings.Split(raw, ",") {
		if label := strings.TrimSpace(part); label != "" {
			labels = append(labels, label)
		}
	}
	return labels
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return value, nil
}
