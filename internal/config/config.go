/**
 * @description
 * This file handles the configuration management for the subscription-service.
 * It uses the 'viper' library to load configuration from environment variables,
 * providing a centralized and consistent way to manage application settings.
 * Every analytics tunable has a default so the service runs with no
 * environment at all (memory store, advisor disabled).
 */
package config

import (
	"github.com/spf13/viper"

	"github.com/subtrack/subscription-service/internal/analytics"
)

// Config holds all configuration for the application.
type Config struct {
	ServerPort        string `mapstructure:"SERVER_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DemoMode          bool   `mapstructure:"DEMO_MODE"`
	OpenAIAPIKey      string `mapstructure:"OPENAI_API_KEY"`
	AIModel           string `mapstructure:"AI_MODEL"`
	DigestJobSchedule string `mapstructure:"DIGEST_JOB_SCHEDULE"`

	CostAnomalyThreshold         float64 `mapstructure:"COST_ANOMALY_THRESHOLD"`
	AnomalyMinDataPoints         int     `mapstructure:"ANOMALY_MIN_DATA_POINTS"`
	AnnualDiscountRate           float64 `mapstructure:"ANNUAL_DISCOUNT_RATE"`
	DuplicateCategorySavingsRate float64 `mapstructure:"DUPLICATE_CATEGORY_SAVINGS_RATE"`
	HighCostThreshold            float64 `mapstructure:"HIGH_COST_THRESHOLD"`
	HighCostSavingsRate          float64 `mapstructure:"HIGH_COST_SAVINGS_RATE"`
	MinimumSavingsSuggestion     float64 `mapstructure:"MINIMUM_SAVINGS_SUGGESTION"`
	UnusedSubDays                int     `mapstructure:"UNUSED_SUB_DAYS"`
	UnusedSubCostThreshold       float64 `mapstructure:"UNUSED_SUB_COST_THRESHOLD"`
	DefaultUpcomingDays          int     `mapstructure:"DEFAULT_UPCOMING_DAYS"`
	ExtendedUpcomingDays         int     `mapstructure:"EXTENDED_UPCOMING_DAYS"`

	PredictionMonths          int     `mapstructure:"PREDICTION_MONTHS"`
	PredictionSeed            int64   `mapstructure:"PREDICTION_SEED"`
	PredictionTrendSlope      float64 `mapstructure:"PREDICTION_TREND_SLOPE"`
	SeasonalityAmplitudeRatio float64 `mapstructure:"SEASONALITY_AMPLITUDE_RATIO"`
	NoiseRatio                float64 `mapstructure:"NOISE_RATIO"`
}

var envKeys = []string{
	"SERVER_PORT", "DATABASE_URL", "DEMO_MODE", "OPENAI_API_KEY", "AI_MODEL",
	"DIGEST_JOB_SCHEDULE",
	"COST_ANOMALY_THRESHOLD", "ANOMALY_MIN_DATA_POINTS", "ANNUAL_DISCOUNT_RATE",
	"DUPLICATE_CATEGORY_SAVINGS_RATE", "HIGH_COST_THRESHOLD", "HIGH_COST_SAVINGS_RATE",
	"MINIMUM_SAVINGS_SUGGESTION", "UNUSED_SUB_DAYS", "UNUSED_SUB_COST_THRESHOLD",
	"DEFAULT_UPCOMING_DAYS", "EXTENDED_UPCOMING_DAYS",
	"PREDICTION_MONTHS", "PREDICTION_SEED", "PREDICTION_TREND_SLOPE",
	"SEASONALITY_AMPLITUDE_RATIO", "NOISE_RATIO",
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (Config, error) {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("DEMO_MODE", false)
	viper.SetDefault("AI_MODEL", "gpt-4o-mini")
	viper.SetDefault("DIGEST_JOB_SCHEDULE", "0 8 * * *") // At 08:00 every day.

	defaults := analytics.DefaultConfig()
	viper.SetDefault("COST_ANOMALY_THRESHOLD", defaults.AnomalyThreshold)
	viper.SetDefault("ANOMALY_MIN_DATA_POINTS", defaults.AnomalyMinDataPoints)
	viper.SetDefault("ANNUAL_DISCOUNT_RATE", defaults.AnnualDiscountRate)
	viper.SetDefault("DUPLICATE_CATEGORY_SAVINGS_RATE", defaults.DuplicateCategorySavingsRate)
	viper.SetDefault("HIGH_COST_THRESHOLD", defaults.HighCostThreshold)
	viper.SetDefault("HIGH_COST_SAVINGS_RATE", defaults.HighCostSavingsRate)
	viper.SetDefault("MINIMUM_SAVINGS_SUGGESTION", defaults.MinimumSavingsSuggestion)
	viper.SetDefault("UNUSED_SUB_DAYS", defaults.UnusedSubscriptionDays)
	viper.SetDefault("UNUSED_SUB_COST_THRESHOLD", defaults.UnusedSubscriptionCost)
	viper.SetDefault("DEFAULT_UPCOMING_DAYS", defaults.DefaultUpcomingDays)
	viper.SetDefault("EXTENDED_UPCOMING_DAYS", defaults.ExtendedUpcomingDays)
	viper.SetDefault("PREDICTION_MONTHS", defaults.PredictionMonths)
	viper.SetDefault("PREDICTION_SEED", defaults.PredictionSeed)
	viper.SetDefault("PREDICTION_TREND_SLOPE", defaults.PredictionTrendSlope)
	viper.SetDefault("SEASONALITY_AMPLITUDE_RATIO", defaults.SeasonalityAmplitudeRatio)
	viper.SetDefault("NOISE_RATIO", defaults.NoiseRatio)

	viper.AutomaticEnv()

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	for _, key := range envKeys {
		_ = viper.BindEnv(key)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Analytics maps the loaded configuration onto the analytics engine's knobs.
func (c Config) Analytics() analytics.Config {
	return analytics.Config{
		AnomalyThreshold:             c.CostAnomalyThreshold,
		AnomalyMinDataPoints:         c.AnomalyMinDataPoints,
		AnnualDiscountRate:           c.AnnualDiscountRate,
		DuplicateCategorySavingsRate: c.DuplicateCategorySavingsRate,
		HighCostThreshold:            c.HighCostThreshold,
		HighCostSavingsRate:          c.HighCostSavingsRate,
		MinimumSavingsSuggestion:     c.MinimumSavingsSuggestion,
		UnusedSubscriptionDays:       c.UnusedSubDays,
		UnusedSubscriptionCost:       c.UnusedSubCostThreshold,
		DefaultUpcomingDays:          c.DefaultUpcomingDays,
		ExtendedUpcomingDays:         c.ExtendedUpcomingDays,
		PredictionMonths:             c.PredictionMonths,
		PredictionSeed:               c.PredictionSeed,
		PredictionTrendSlope:         c.PredictionTrendSlope,
		SeasonalityAmplitudeRatio:    c.SeasonalityAmplitudeRatio,
		NoiseRatio:                   c.NoiseRatio,
	}
}
