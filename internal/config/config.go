package config

import (
	"math"
	"os"
	"strconv"
	"strings"

	"ordermetrics/internal"
	"ordermetrics/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Data DataConfig
	Plot PlotConfig
	Log  LogConfig
}

// DataConfig describes the dataset and the column under analysis
type DataConfig struct {
	File            string
	Sheet           string
	Column          string
	FenceMultiplier float64
}

// PlotConfig holds distribution plot settings. Sizes are in centimetres.
type PlotConfig struct {
	WidthCM  float64
	HeightCM float64
	Bins     int // 0 selects Freedman-Diaconis
}

// LogConfig holds logging settings
type LogConfig struct {
	Level internal.LogLevel
}

const (
	DefaultColumn          = "order_amount"
	DefaultFenceMultiplier = 1.0
	DefaultPlotWidthCM     = 25.4
	DefaultPlotHeightCM    = 10.16
)

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	logConfig, err := loadLogConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load log configuration")
	}

	config := &Config{
		Data: *loadDataConfig(),
		Plot: *loadPlotConfig(),
		Log:  *logConfig,
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		File:            getEnvOrDefault("ORDERMETRICS_FILE", ""),
		Sheet:           getEnvOrDefault("ORDERMETRICS_SHEET", ""),
		Column:          getEnvOrDefault("ORDERMETRICS_COLUMN", DefaultColumn),
		FenceMultiplier: getEnvFloatOrDefault("ORDERMETRICS_FENCE_MULTIPLIER", DefaultFenceMultiplier),
	}
}

func loadPlotConfig() *PlotConfig {
	return &PlotConfig{
		WidthCM:  getEnvFloatOrDefault("PLOT_WIDTH_CM", DefaultPlotWidthCM),
		HeightCM: getEnvFloatOrDefault("PLOT_HEIGHT_CM", DefaultPlotHeightCM),
		Bins:     getEnvIntOrDefault("PLOT_BINS", 0),
	}
}

func loadLogConfig() (*LogConfig, error) {
	raw := os.Getenv("LOG_LEVEL")
	if raw == "" {
		return &LogConfig{Level: internal.LogLevelInfo}, nil
	}
	level, ok := internal.ParseLogLevel(raw)
	if !ok {
		return nil, errors.ConfigInvalid("LOG_LEVEL must be one of ERROR, WARN, INFO, DEBUG, TRACE")
	}
	return &LogConfig{Level: level}, nil
}

// Validate checks the configuration values that cannot be defaulted
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Data.Column) == "" {
		return errors.ConfigInvalid("column name is required")
	}
	if c.Data.FenceMultiplier <= 0 || math.IsNaN(c.Data.FenceMultiplier) || math.IsInf(c.Data.FenceMultiplier, 0) {
		return errors.ConfigInvalid("fence multiplier must be a positive number")
	}
	if c.Plot.WidthCM <= 0 || c.Plot.HeightCM <= 0 {
		return errors.ConfigInvalid("plot dimensions must be positive")
	}
	if c.Plot.Bins < 0 {
		return errors.ConfigInvalid("plot bins must not be negative")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
