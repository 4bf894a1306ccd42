package config

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"

	"imputelab/adapters/imputation"
	"imputelab/domain/missingness"
	"imputelab/internal"
	"imputelab/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Log        LogConfig
	Data       DataConfig
	Experiment ExperimentConfig
	Output     OutputConfig
}

// LogConfig holds logging settings
type LogConfig struct {
	Level internal.LogLevel
}

// DataConfig holds dataset source settings. An empty Path selects the synthetic dataset.
type DataConfig struct {
	Path          string
	TargetColumn  string
	SyntheticSeed int64
}

// ExperimentConfig holds the trial sweep settings
type ExperimentConfig struct {
	Percentages     []int
	MCARStrategies  []string
	MNARStrategies  []string
	TrialsPerColumn int
	ConstantFill    float64
	Seed            int64 // 0 picks a time-derived seed per run
	Workers         int
}

// OutputConfig holds chart output settings
type OutputConfig struct {
	Dir          string
	RenderCharts bool
}

// Defaults used when the environment leaves a value unset
const (
	DefaultPercentages     = "1,5,10,20,33,50"
	DefaultMCARStrategies  = "mean,median"
	DefaultMNARStrategies  = "mean,median,constant"
	DefaultTrialsPerColumn = 100
	DefaultConstantFill    = -100.0
	DefaultTargetColumn    = "MEDV"
	DefaultOutputDir       = "./charts"
	DefaultSyntheticSeed   = 1978
)

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	level, err := internal.ParseLogLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return nil, errors.Wrap(errors.ConfigInvalid("LOG_LEVEL: "+err.Error()), "failed to load log configuration")
	}
	config.Log = LogConfig{Level: level}

	dataConfig, err := loadDataConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load data configuration")
	}
	config.Data = *dataConfig

	experimentConfig, err := loadExperimentConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load experiment configuration")
	}
	config.Experiment = *experimentConfig

	renderCharts, err := getEnvBoolOrDefault("RENDER_CHARTS", true)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load output configuration")
	}
	config.Output = OutputConfig{
		Dir:          getEnvOrDefault("OUTPUT_DIR", DefaultOutputDir),
		RenderCharts: renderCharts,
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDataConfig() (*DataConfig, error) {
	syntheticSeed, err := getEnvInt64Strict("SYNTHETIC_SEED", DefaultSyntheticSeed)
	if err != nil {
		return nil, err
	}
	return &DataConfig{
		Path:          getEnvOrDefault("DATASET_PATH", ""),
		TargetColumn:  getEnvOrDefault("TARGET_COLUMN", DefaultTargetColumn),
		SyntheticSeed: syntheticSeed,
	}, nil
}

func loadExperimentConfig() (*ExperimentConfig, error) {
	percentages, err := missingness.ParsePercentages(getEnvOrDefault("MISSING_PERCENTAGES", DefaultPercentages))
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("MISSING_PERCENTAGES: %w", err))
	}

	seed, err := getEnvInt64Strict("SEED", 0)
	if err != nil {
		return nil, err
	}
	trials, err := getEnvIntOrDefault("TRIALS_PER_COLUMN", DefaultTrialsPerColumn)
	if err != nil {
		return nil, err
	}
	fill, err := getEnvFloatOrDefault("CONSTANT_FILL", DefaultConstantFill)
	if err != nil {
		return nil, err
	}
	workers, err := getEnvIntOrDefault("WORKERS", runtime.NumCPU())
	if err != nil {
		return nil, err
	}

	return &ExperimentConfig{
		Percentages:     percentages,
		MCARStrategies:  splitList(getEnvOrDefault("MCAR_STRATEGIES", DefaultMCARStrategies)),
		MNARStrategies:  splitList(getEnvOrDefault("MNAR_STRATEGIES", DefaultMNARStrategies)),
		TrialsPerColumn: trials,
		ConstantFill:    fill,
		Seed:            seed,
		Workers:         workers,
	}, nil
}

func validateConfig(config *Config) error {
	if config.Experiment.TrialsPerColumn < 1 {
		return errors.ConfigInvalid("TRIALS_PER_COLUMN must be at least 1")
	}
	if config.Experiment.Workers < 1 {
		return errors.ConfigInvalid("WORKERS must be at least 1")
	}
	if len(config.Experiment.MCARStrategies) == 0 && len(config.Experiment.MNARStrategies) == 0 {
		return errors.ConfigInvalid("at least one imputation strategy is required")
	}
	if _, err := imputation.ParseStrategies(config.Experiment.MCARStrategies, config.Experiment.ConstantFill); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("MCAR_STRATEGIES: %w", err))
	}
	if _, err := imputation.ParseStrategies(config.Experiment.MNARStrategies, config.Experiment.ConstantFill); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("MNAR_STRATEGIES: %w", err))
	}
	if config.Output.RenderCharts && config.Output.Dir == "" {
		return errors.ConfigInvalid("OUTPUT_DIR is required when RENDER_CHARTS is enabled")
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

func getEnvIntOrDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, errors.ConfigInvalid(key + " must be an integer")
	}
	return intValue, nil
}

func getEnvInt64Strict(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, errors.ConfigInvalid(key + " must be an integer")
	}
	return v, nil
}

func getEnvFloatOrDefault(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	floatValue, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(floatValue) || math.IsInf(floatValue, 0) {
		return 0, errors.ConfigInvalid(key + " must be a finite number")
	}
	return floatValue, nil
}

func getEnvBoolOrDefault(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	boolValue, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false, errors.ConfigInvalid(key + " must be true or false")
	}
	return boolValue, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
}
