package config

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/orestischaral/water-temp-analysis/domain/spectral"
	"github.com/orestischaral/water-temp-analysis/domain/spike"
	"github.com/orestischaral/water-temp-analysis/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Paths    PathConfig
	Analysis AnalysisConfig
}

// DatabaseConfig holds database connection settings. Persistence is
// optional: an empty URL disables the Postgres repository.
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// PathConfig holds file system paths
type PathConfig struct {
	DataSourcesFile string
	AnalysisFile    string
	OutputDir       string
}

// AnalysisConfig carries the detection thresholds and pipeline settings.
// The JSON field names match the configuration files the monitoring
// campaign already produces.
type AnalysisConfig struct {
	UpJumpThreshold   float64 `json:"up_jump_threshold"`
	UpRelaxOffset     float64 `json:"up_relax_offset"`
	DownJumpThreshold float64 `json:"down_jump_threshold"`
	DownRelaxOffset   float64 `json:"down_relax_offset"`

	InnerUpJumpThreshold   float64 `json:"inner_up_jump_threshold"`
	InnerUpRelaxOffset     float64 `json:"inner_up_relax_offset"`
	InnerDownJumpThreshold float64 `json:"inner_down_jump_threshold"`
	InnerDownRelaxOffset   float64 `json:"inner_down_relax_offset"`

	Policy      string `json:"policy"`
	FilterType  string `json:"filter_type"`
	MaxLagHours int    `json:"max_lag_hours"`
	Workers     int    `json:"workers"`

	StratificationPairs [][2]string `json:"stratification_pairs"`
}

// DefaultAnalysisConfig mirrors the campaign's standing defaults.
func DefaultAnalysisConfig() AnalysisConfig {
	t := spike.DefaultThresholds()
	return AnalysisConfig{
		UpJumpThreshold:        t.UpJump,
		UpRelaxOffset:          t.UpRelax,
		DownJumpThreshold:      t.DownJump,
		DownRelaxOffset:        t.DownRelax,
		InnerUpJumpThreshold:   t.UpJump,
		InnerUpRelaxOffset:     t.UpRelax,
		InnerDownJumpThreshold: t.DownJump,
		InnerDownRelaxOffset:   t.DownRelax,
		Policy:                 string(spike.PolicyStrict),
		FilterType:             string(spectral.ModeNone),
		MaxLagHours:            72,
		Workers:                4,
	}
}

// OuterDetection builds the spike.Config for the outer detection pass.
func (a AnalysisConfig) OuterDetection() spike.Config {
	return spike.Config{
		Thresholds: spike.Thresholds{
			UpJump:    a.UpJumpThreshold,
			UpRelax:   a.UpRelaxOffset,
			DownJump:  a.DownJumpThreshold,
			DownRelax: a.DownRelaxOffset,
		},
		Policy: spike.Policy(a.Policy),
	}
}

// InnerDetection builds the spike.Config for the recursive inner pass.
func (a AnalysisConfig) InnerDetection() spike.Config {
	return spike.Config{
		Thresholds: spike.Thresholds{
			UpJump:    a.InnerUpJumpThreshold,
			UpRelax:   a.InnerUpRelaxOffset,
			DownJump:  a.InnerDownJumpThreshold,
			DownRelax: a.InnerDownRelaxOffset,
		},
		Policy: spike.Policy(a.Policy),
	}
}

// FilterMode returns the validated spectral filter selector.
func (a AnalysisConfig) FilterMode() (spectral.Mode, error) {
	mode := spectral.Mode(a.FilterType)
	if a.FilterType == "" {
		mode = spectral.ModeNone
	}
	if !mode.Valid() {
		return "", errors.ConfigInvalid("filter_type must be one of none, diurnal, seasonal, both")
	}
	return mode, nil
}

// Load reads configuration from environment variables and the analysis
// JSON file (when present) and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Paths: PathConfig{
			DataSourcesFile: getEnvOrDefault("DATA_SOURCES_FILE", "data_sources_config.json"),
			AnalysisFile:    getEnvOrDefault("ANALYSIS_CONFIG_FILE", "analysis_config.json"),
			OutputDir:       getEnvOrDefault("OUTPUT_DIR", "output"),
		},
		Analysis: DefaultAnalysisConfig(),
	}

	if err := loadAnalysisFile(cfg.Paths.AnalysisFile, &cfg.Analysis); err != nil {
		return nil, errors.Wrap(err, "failed to load analysis configuration")
	}
	applyAnalysisEnv(&cfg.Analysis)

	if err := validate(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

// loadAnalysisFile merges the analysis JSON file over the defaults.
// A missing file is not an error; the defaults stand.
func loadAnalysisFile(path string, dst *AnalysisConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, dst)
}

// applyAnalysisEnv lets individual thresholds be overridden without
// touching the JSON file.
func applyAnalysisEnv(a *AnalysisConfig) {
	a.UpJumpThreshold = getEnvFloatOrDefault("UP_JUMP_THRESHOLD", a.UpJumpThreshold)
	a.UpRelaxOffset = getEnvFloatOrDefault("UP_RELAX_OFFSET", a.UpRelaxOffset)
	a.DownJumpThreshold = getEnvFloatOrDefault("DOWN_JUMP_THRESHOLD", a.DownJumpThreshold)
	a.DownRelaxOffset = getEnvFloatOrDefault("DOWN_RELAX_OFFSET", a.DownRelaxOffset)
	if v := os.Getenv("FILTER_TYPE"); v != "" {
		a.FilterType = v
	}
	if v := os.Getenv("SPIKE_POLICY"); v != "" {
		a.Policy = v
	}
	a.MaxLagHours = getEnvIntOrDefault("MAX_LAG_HOURS", a.MaxLagHours)
	a.Workers = getEnvIntOrDefault("ANALYSIS_WORKERS", a.Workers)
}

func validate(cfg *Config) error {
	a := cfg.Analysis
	for name, v := range map[string]float64{
		"up_jump_threshold":         a.UpJumpThreshold,
		"up_relax_offset":           a.UpRelaxOffset,
		"down_jump_threshold":       a.DownJumpThreshold,
		"down_relax_offset":         a.DownRelaxOffset,
		"inner_up_jump_threshold":   a.InnerUpJumpThreshold,
		"inner_up_relax_offset":     a.InnerUpRelaxOffset,
		"inner_down_jump_threshold": a.InnerDownJumpThreshold,
		"inner_down_relax_offset":   a.InnerDownRelaxOffset,
	} {
		if v <= 0 {
			return errors.ConfigInvalid(name + " must be positive")
		}
	}
	switch spike.Policy(a.Policy) {
	case spike.PolicyStrict, spike.PolicyPermissive:
	default:
		return errors.ConfigInvalid("policy must be strict or permissive")
	}
	if _, err := a.FilterMode(); err != nil {
		return err
	}
	if a.MaxLagHours <= 0 {
		return errors.ConfigInvalid("max_lag_hours must be positive")
	}
	if a.Workers <= 0 {
		return errors.ConfigInvalid("workers must be positive")
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
