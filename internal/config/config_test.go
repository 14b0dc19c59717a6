package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 30, cfg.TrendWindowDays)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, 0, cfg.StoreCapacity)
	assert.Equal(t, 100, cfg.MaxReviewsPerHarvest)
	assert.Equal(t, 5*time.Minute, cfg.AnalyticsCacheTTL)
	assert.False(t, cfg.DenseTrend)
	assert.Equal(t, []string{"joy", "anger", "sadness", "fear", "surprise", "disgust"}, cfg.EmotionLabels)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TREND_WINDOW_DAYS", "7")
	t.Setenv("TIME_ZONE", "Europe/Berlin")
	t.Setenv("STORE_CAPACITY", "1000")
	t.Setenv("DENSE_TREND", "true")
	t.Setenv("EMOTION_LABELS", "joy, anger ,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.TrendWindowDays)
	assert.Equal(t, "Europe/Berlin", cfg.Location.String())
	assert.Equal(t, 1000, cfg.StoreCapacity)
	assert.True(t, cfg.DenseTrend)
	assert.Equal(t, []string{"joy", "anger"}, cfg.EmotionLabels)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric window", "TREND_WINDOW_DAYS", "soon"},
		{"zero window", "TREND_WINDOW_DAYS", "0"},
		{"negative capacity", "STORE_CAPACITY", "-1"},
		{"harvest cap exceeded", "MAX_REVIEWS_PER_HARVEST", "5000"},
		{"zero cache ttl", "ANALYTICS_CACHE_TTL", "0"},
		{"bogus time zone", "TIME_ZONE", "Mars/Olympus"},
		{"empty label list", "EMOTION_LABELS", " , ,"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
