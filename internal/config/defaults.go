// Package config provides configuration loading, defaults, and validation for
// coalition-intelligence.
package config

import (
	"runtime"
	"time"

	"github.com/spf13/viper"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"
	DefaultLogOutput = "stderr"

	DefaultThreshold  = 76
	DefaultTopK       = 5
	DefaultEKMajority = 38
	DefaultDivergence = "divergence"
	DefaultTimeout    = 5 * time.Minute

	DefaultWeightHistorical   = 2.0
	DefaultWeightIdeology     = 2.0
	DefaultWeightUpperChamber = 0.25
	DefaultWeightDivergence   = 10.0
	DefaultWeightPartyCount   = 2.0
	DefaultFreeParties        = 4
	DefaultPartyStep          = 2.0
	DefaultSurplusCap         = 90
	DefaultSurplusRate        = 0.5
	DefaultRawMin             = -2.0
	DefaultRawMax             = 2.0

	DefaultReferenceProfile = "tk2023"

	DefaultDatasetSource = "file"
	DefaultDatasetDir    = "data"
	DefaultCacheTTL      = 24 * time.Hour

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBUser     = "coalition"
	DefaultDBName     = "coalition"
	DefaultDBMaxConns = 10

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "coalition:"

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "coalition-data"

	DefaultMetricsNamespace = "coalition"
)

// Default dataset locations, relative to dataset.dir, as laid out by the
// historical research data set.
var (
	DefaultCabinetFiles = []string{"cabinets/kabinetten_schoongemaakt-no2023.csv"}

	DefaultLowerChamberFiles = []string{
		"zetelverdeling/zetel-data/tk_zetels100_1918-1956.csv",
		"zetelverdeling/zetel-data/tk_zetels150_1956-2023-no2023.csv",
	}

	DefaultUpperChamberFiles = []string{
		"zetelverdeling/zetel-data/ek_zetels50_1888-1956_filled.csv",
		"zetelverdeling/zetel-data/ek_zetels75_1956-2023_filled.csv",
	}

	DefaultTopicVectorsFile = "topic_vectors.json"
)

// DefaultConcurrency is the scoring worker count when none is configured.
func DefaultConcurrency() int {
	return runtime.GOMAXPROCS(0)
}

// ─────────────────────────────────────────────────────────────────────────────
// Viper registration
// ─────────────────────────────────────────────────────────────────────────────

// registerDefaults seeds v with every known key. Registering keys is also what
// lets AutomaticEnv resolve COALITION_* variables during Unmarshal.
func registerDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
	v.SetDefault("log.output", DefaultLogOutput)

	v.SetDefault("scoring.threshold", DefaultThreshold)
	v.SetDefault("scoring.top_k", DefaultTopK)
	v.SetDefault("scoring.ek_majority", DefaultEKMajority)
	v.SetDefault("scoring.concurrency", DefaultConcurrency())
	v.SetDefault("scoring.divergence", DefaultDivergence)
	v.SetDefault("scoring.timeout", DefaultTimeout)
	v.SetDefault("scoring.weights.historical", DefaultWeightHistorical)
	v.SetDefault("scoring.weights.ideology", DefaultWeightIdeology)
	v.SetDefault("scoring.weights.upper_chamber", DefaultWeightUpperChamber)
	v.SetDefault("scoring.weights.divergence", DefaultWeightDivergence)
	v.SetDefault("scoring.weights.party_count", DefaultWeightPartyCount)
	v.SetDefault("scoring.weights.free_parties", DefaultFreeParties)
	v.SetDefault("scoring.weights.party_step", DefaultPartyStep)
	v.SetDefault("scoring.weights.surplus_cap", DefaultSurplusCap)
	v.SetDefault("scoring.weights.surplus_rate", DefaultSurplusRate)
	v.SetDefault("scoring.weights.raw_min", DefaultRawMin)
	v.SetDefault("scoring.weights.raw_max", DefaultRawMax)

	v.SetDefault("reference.profile", DefaultReferenceProfile)
	v.SetDefault("reference.file", "")

	v.SetDefault("dataset.source", DefaultDatasetSource)
	v.SetDefault("dataset.dir", DefaultDatasetDir)
	v.SetDefault("dataset.cabinets", DefaultCabinetFiles)
	v.SetDefault("dataset.lower_chamber", DefaultLowerChamberFiles)
	v.SetDefault("dataset.upper_chamber", DefaultUpperChamberFiles)
	v.SetDefault("dataset.topic_vectors", DefaultTopicVectorsFile)
	v.SetDefault("dataset.cache", false)
	v.SetDefault("dataset.cache_ttl", DefaultCacheTTL)

	v.SetDefault("database.host", DefaultDBHost)
	v.SetDefault("database.port", DefaultDBPort)
	v.SetDefault("database.user", DefaultDBUser)
	v.SetDefault("database.password", "")
	v.SetDefault("database.db_name", DefaultDBName)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_conns", DefaultDBMaxConns)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)

	v.SetDefault("redis.addr", DefaultRedisAddr)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 4)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.key_prefix", DefaultRedisKeyPrefix)

	v.SetDefault("minio.endpoint", DefaultMinIOEndpoint)
	v.SetDefault("minio.access_key", "")
	v.SetDefault("minio.secret_key", "")
	v.SetDefault("minio.bucket", DefaultMinIOBucket)
	v.SetDefault("minio.region", "")
	v.SetDefault("minio.prefix", "")
	v.SetDefault("minio.use_ssl", false)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.namespace", DefaultMetricsNamespace)
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("metrics.process", false)
	v.SetDefault("metrics.go_runtime", false)
}

// ─────────────────────────────────────────────────────────────────────────────
// ApplyDefaults
// ─────────────────────────────────────────────────────────────────────────────

// ApplyDefaults fills zero-value fields in a programmatically built cfg.
// Explicit values are left unchanged. Weights are only defaulted as a block,
// because an individual zero weight is a legitimate setting.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = DefaultLogOutput
	}

	// ── Scoring ───────────────────────────────────────────────────────────────
	if cfg.Scoring.Threshold == 0 {
		cfg.Scoring.Threshold = DefaultThreshold
	}
	if cfg.Scoring.TopK == 0 {
		cfg.Scoring.TopK = DefaultTopK
	}
	if cfg.Scoring.EKMajority == 0 {
		cfg.Scoring.EKMajority = DefaultEKMajority
	}
	if cfg.Scoring.Concurrency == 0 {
		cfg.Scoring.Concurrency = DefaultConcurrency()
	}
	if cfg.Scoring.Divergence == "" {
		cfg.Scoring.Divergence = DefaultDivergence
	}
	if cfg.Scoring.Timeout == 0 {
		cfg.Scoring.Timeout = DefaultTimeout
	}
	if cfg.Scoring.Weights == (WeightsConfig{}) {
		cfg.Scoring.Weights = DefaultWeights()
	}

	// ── Reference ─────────────────────────────────────────────────────────────
	if cfg.Reference.Profile == "" && cfg.Reference.File == "" {
		cfg.Reference.Profile = DefaultReferenceProfile
	}

	// ── Dataset ───────────────────────────────────────────────────────────────
	if cfg.Dataset.Source == "" {
		cfg.Dataset.Source = DefaultDatasetSource
	}
	if cfg.Dataset.Dir == "" {
		cfg.Dataset.Dir = DefaultDatasetDir
	}
	if len(cfg.Dataset.Cabinets) == 0 {
		cfg.Dataset.Cabinets = append([]string(nil), DefaultCabinetFiles...)
	}
	if len(cfg.Dataset.LowerChamber) == 0 {
		cfg.Dataset.LowerChamber = append([]string(nil), DefaultLowerChamberFiles...)
	}
	if len(cfg.Dataset.UpperChamber) == 0 {
		cfg.Dataset.UpperChamber = append([]string(nil), DefaultUpperChamberFiles...)
	}
	if cfg.Dataset.TopicVectors == "" {
		cfg.Dataset.TopicVectors = DefaultTopicVectorsFile
	}
	if cfg.Dataset.CacheTTL == 0 {
		cfg.Dataset.CacheTTL = DefaultCacheTTL
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.User == "" {
		cfg.Database.User = DefaultDBUser
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
}

// DefaultWeights returns the reference scoring weights.
func DefaultWeights() WeightsConfig {
	return WeightsConfig{
		Historical:   DefaultWeightHistorical,
		Ideology:     DefaultWeightIdeology,
		UpperChamber: DefaultWeightUpperChamber,
		Divergence:   DefaultWeightDivergence,
		PartyCount:   DefaultWeightPartyCount,
		FreeParties:  DefaultFreeParties,
		PartyStep:    DefaultPartyStep,
		SurplusCap:   DefaultSurplusCap,
		SurplusRate:  DefaultSurplusRate,
		RawMin:       DefaultRawMin,
		RawMax:       DefaultRawMax,
	}
}

//Personal.AI order the ending
