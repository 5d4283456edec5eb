// Package config defines the configuration structures for coalition-intelligence.
// No I/O happens here, only plain data types and validation.
package config

import (
	"fmt"
	"math"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `mapstructure:"format"` // "json" | "console"
	Output string `mapstructure:"output"` // "stderr" | "stdout" | file path
}

// WeightsConfig holds the composite-score multipliers and offsets.
type WeightsConfig struct {
	Historical   float64 `mapstructure:"historical"`
	Ideology     float64 `mapstructure:"ideology"`
	UpperChamber float64 `mapstructure:"upper_chamber"`
	Divergence   float64 `mapstructure:"divergence"`
	PartyCount   float64 `mapstructure:"party_count"`
	FreeParties  int     `mapstructure:"free_parties"`
	PartyStep    float64 `mapstructure:"party_step"`
	SurplusCap   int     `mapstructure:"surplus_cap"`
	SurplusRate  float64 `mapstructure:"surplus_rate"`
	RawMin       float64 `mapstructure:"raw_min"`
	RawMax       float64 `mapstructure:"raw_max"`
}

// ScoringConfig holds the enumeration and ranking parameters.
type ScoringConfig struct {
	Threshold   int           `mapstructure:"threshold"`
	TopK        int           `mapstructure:"top_k"`
	EKMajority  int           `mapstructure:"ek_majority"`
	Concurrency int           `mapstructure:"concurrency"`
	Divergence  string        `mapstructure:"divergence"` // "divergence" | "distance"
	UseTopics   *bool         `mapstructure:"use_topics"` // nil defers to the reference profile
	Timeout     time.Duration `mapstructure:"timeout"`
	Weights     WeightsConfig `mapstructure:"weights"`
}

// ReferenceConfig selects the ideology maps, lineage and unrealistic pairs.
type ReferenceConfig struct {
	Profile string `mapstructure:"profile"`
	File    string `mapstructure:"file"` // optional YAML override
}

// DatasetConfig locates the historical inputs.
type DatasetConfig struct {
	Source       string        `mapstructure:"source"` // "file" | "postgres" | "minio"
	Dir          string        `mapstructure:"dir"`
	Cabinets     []string      `mapstructure:"cabinets"`
	LowerChamber []string      `mapstructure:"lower_chamber"`
	UpperChamber []string      `mapstructure:"upper_chamber"`
	TopicVectors string        `mapstructure:"topic_vectors"`
	Cache        bool          `mapstructure:"cache"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationPath   string        `mapstructure:"migration_path"` // source URL; empty uses the embedded schema
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	PoolSize    int           `mapstructure:"pool_size"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	KeyPrefix   string        `mapstructure:"key_prefix"`
}

// MinIOConfig holds MinIO / S3-compatible object-storage parameters.
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	Region    string `mapstructure:"region"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// MetricsConfig controls the Prometheus registry. Metrics are written to a
// node-exporter textfile; there is no HTTP listener.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Textfile  string `mapstructure:"textfile"`
	// Process and GoRuntime add the standard process_* and go_* collectors.
	Process   bool              `mapstructure:"process"`
	GoRuntime bool              `mapstructure:"go_runtime"`
	Labels    map[string]string `mapstructure:"labels"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Reference ReferenceConfig `mapstructure:"reference"`
	Dataset   DatasetConfig   `mapstructure:"dataset"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	MinIO     MinIOConfig     `mapstructure:"minio"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of a fully-populated Config and
// returns the first problem found. Backend sections are only checked when the
// dataset configuration selects them.
func (c *Config) Validate() error {
	// Log
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	// Scoring
	if c.Scoring.Threshold < 1 {
		return fmt.Errorf("config: scoring.threshold must be ≥ 1, got %d", c.Scoring.Threshold)
	}
	if c.Scoring.TopK < 1 {
		return fmt.Errorf("config: scoring.top_k must be ≥ 1, got %d", c.Scoring.TopK)
	}
	if c.Scoring.EKMajority < 1 {
		return fmt.Errorf("config: scoring.ek_majority must be ≥ 1, got %d", c.Scoring.EKMajority)
	}
	if c.Scoring.Concurrency < 1 {
		return fmt.Errorf("config: scoring.concurrency must be ≥ 1, got %d", c.Scoring.Concurrency)
	}
	switch c.Scoring.Divergence {
	case "divergence", "distance":
	default:
		return fmt.Errorf("config: scoring.divergence %q is invalid; expected divergence|distance", c.Scoring.Divergence)
	}
	if err := c.Scoring.Weights.validate(); err != nil {
		return err
	}

	// Reference
	if c.Reference.Profile == "" && c.Reference.File == "" {
		return fmt.Errorf("config: reference.profile or reference.file is required")
	}

	// Dataset
	switch c.Dataset.Source {
	case "file":
		if len(c.Dataset.Cabinets) == 0 {
			return fmt.Errorf("config: dataset.cabinets must list at least one file")
		}
	case "postgres":
		if err := c.Database.validate(); err != nil {
			return err
		}
	case "minio":
		if c.MinIO.Endpoint == "" {
			return fmt.Errorf("config: minio.endpoint is required")
		}
		if c.MinIO.Bucket == "" {
			return fmt.Errorf("config: minio.bucket is required")
		}
	default:
		return fmt.Errorf("config: dataset.source %q is invalid; expected file|postgres|minio", c.Dataset.Source)
	}
	if c.Dataset.Cache {
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: redis.addr is required when dataset.cache is enabled")
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
		}
	}

	// Metrics
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return fmt.Errorf("config: metrics.namespace is required when metrics are enabled")
	}

	return nil
}

func (w WeightsConfig) validate() error {
	for name, v := range map[string]float64{
		"historical":    w.Historical,
		"ideology":      w.Ideology,
		"upper_chamber": w.UpperChamber,
		"divergence":    w.Divergence,
		"party_count":   w.PartyCount,
		"party_step":    w.PartyStep,
		"surplus_rate":  w.SurplusRate,
	} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("config: scoring.weights.%s must be a finite value ≥ 0, got %v", name, v)
		}
	}
	if w.FreeParties < 0 {
		return fmt.Errorf("config: scoring.weights.free_parties must be ≥ 0, got %d", w.FreeParties)
	}
	if w.SurplusCap < 0 {
		return fmt.Errorf("config: scoring.weights.surplus_cap must be ≥ 0, got %d", w.SurplusCap)
	}
	if w.RawMax <= w.RawMin {
		return fmt.Errorf("config: scoring.weights.raw_max (%v) must exceed raw_min (%v)", w.RawMax, w.RawMin)
	}
	return nil
}

func (d DatabaseConfig) validate() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if d.Port < 1 || d.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", d.Port)
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user is required")
	}
	if d.DBName == "" {
		return fmt.Errorf("config: database.db_name is required")
	}
	if d.MaxConns < 1 {
		return fmt.Errorf("config: database.max_conns must be ≥ 1, got %d", d.MaxConns)
	}
	return nil
}

//Personal.AI order the ending
