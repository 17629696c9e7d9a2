package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config represents the complete application configuration
type Config struct {
	Data  DataConfig
	Plots PlotConfig
	Run   RunConfig
}

// DataConfig holds input data settings
type DataConfig struct {
	// File is the CSV or XLSX input. Flags override it per invocation.
	File string
}

// PlotConfig holds plot rendering settings
type PlotConfig struct {
	Dir     string
	Enabled bool
}

// RunConfig holds pipeline defaults
type RunConfig struct {
	Seed       int64
	Train      float64
	Validation float64
	Test       float64
}

// Load reads configuration from the environment. A .env file in the
// working directory is honored when present; every value has a default
// so Load never fails on a bare environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Data: DataConfig{
			File: getEnvOrDefault("SALESCOPE_DATA", "data/sales.csv"),
		},
		Plots: PlotConfig{
			Dir:     getEnvOrDefault("SALESCOPE_PLOTS", "plots"),
			Enabled: getEnvBoolOrDefault("SALESCOPE_PLOTS_ENABLED", true),
		},
		Run: RunConfig{
			Seed:       getEnvInt64OrDefault("SALESCOPE_SEED", 123),
			Train:      getEnvFloatOrDefault("SALESCOPE_TRAIN_RATIO", 0.6),
			Validation: getEnvFloatOrDefault("SALESCOPE_VALIDATION_RATIO", 0.2),
			Test:       getEnvFloatOrDefault("SALESCOPE_TEST_RATIO", 0.2),
		},
	}
}

// PlotDir returns the plot output directory, or "" when plotting is
// disabled.
func (c *Config) PlotDir() string {
	if !c.Plots.Enabled {
		return ""
	}
	return c.Plots.Dir
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
