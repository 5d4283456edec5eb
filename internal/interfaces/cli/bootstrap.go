package cli

import (
	"context"
	"os"

	"github.com/turtacn/coalition-intelligence/internal/application/forecast"
	"github.com/turtacn/coalition-intelligence/internal/config"
	"github.com/turtacn/coalition-intelligence/internal/domain/coalition"
	"github.com/turtacn/coalition-intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/coalition-intelligence/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/coalition-intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/coalition-intelligence/internal/infrastructure/dataset"
	"github.com/turtacn/coalition-intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/coalition-intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/coalition-intelligence/internal/infrastructure/storage/minio"
	"github.com/turtacn/coalition-intelligence/pkg/errors"
)

// Dataset backends selectable with dataset.source.
const (
	SourceFile     = "file"
	SourcePostgres = repositories.SourceName
	SourceMinIO    = "minio"
)

// ─────────────────────────────────────────────────────────────────────────────
// Reference data and predictor
// ─────────────────────────────────────────────────────────────────────────────

// loadReference returns the configured reference data. A non-empty profile
// overrides both reference.profile and reference.file.
func loadReference(cfg config.ReferenceConfig, profile string) (coalition.ReferenceData, error) {
	if profile != "" {
		return coalition.Profile(profile)
	}
	if cfg.File == "" {
		return coalition.Profile(cfg.Profile)
	}

	f, err := os.Open(cfg.File)
	if err != nil {
		return coalition.ReferenceData{}, errors.Wrap(err, errors.CodeReferenceInvalid, "failed to open reference file").WithDetail(cfg.File)
	}
	defer f.Close()

	ref, err := coalition.LoadReferenceData(f)
	if err != nil {
		return coalition.ReferenceData{}, errors.Wrap(err, errors.CodeUnknown, "failed to load reference file").WithDetail(cfg.File)
	}
	return ref, nil
}

func weightsFromConfig(w config.WeightsConfig) coalition.Weights {
	return coalition.Weights{
		Historical:   w.Historical,
		Ideology:     w.Ideology,
		UpperChamber: w.UpperChamber,
		Divergence:   w.Divergence,
		PartyCount:   w.PartyCount,
		FreeParties:  w.FreeParties,
		PartyStep:    w.PartyStep,
		SurplusCap:   w.SurplusCap,
		SurplusRate:  w.SurplusRate,
		RawMin:       w.RawMin,
		RawMax:       w.RawMax,
	}
}

func newPredictor(cfg config.ScoringConfig, ref coalition.ReferenceData) (*coalition.Predictor, error) {
	measure, err := coalition.ParseDivergenceMeasure(cfg.Divergence)
	if err != nil {
		return nil, err
	}
	return coalition.NewPredictor(ref,
		coalition.WithWeights(weightsFromConfig(cfg.Weights)),
		coalition.WithMajority(cfg.EKMajority),
		coalition.WithConcurrency(cfg.Concurrency),
		coalition.WithDivergenceMeasure(measure),
	)
}

// ─────────────────────────────────────────────────────────────────────────────
// Backends
// ─────────────────────────────────────────────────────────────────────────────

// backend owns the connections opened for one command and the metrics
// registry flushed when the command ends.
type backend struct {
	cfg       *config.Config
	logger    logging.Logger
	collector prometheus.MetricsCollector
	metrics   *prometheus.ForecastMetrics
	cache     redis.Cache
	cacheDone bool
	closers   []func() error
}

func newBackend(cfg *config.Config, logger logging.Logger) *backend {
	b := &backend{cfg: cfg, logger: logger}
	if cfg.Metrics.Enabled {
		collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:      cfg.Metrics.Namespace,
			ProcessMetrics: cfg.Metrics.Process,
			GoMetrics:      cfg.Metrics.GoRuntime,
			Labels:         cfg.Metrics.Labels,
		}, logger)
		if err != nil {
			logger.Warn("metrics disabled", logging.Err(err))
		} else {
			b.collector = collector
			b.metrics = prometheus.NewForecastMetrics(collector)
		}
	}
	return b
}

func (b *backend) files() dataset.Files {
	return dataset.Files{
		Cabinets:     b.cfg.Dataset.Cabinets,
		LowerChamber: b.cfg.Dataset.LowerChamber,
		UpperChamber: b.cfg.Dataset.UpperChamber,
		TopicVectors: b.cfg.Dataset.TopicVectors,
	}
}

// forecastMetrics returns the metrics as a forecast.Metrics, or nil when
// metrics are disabled.
func (b *backend) forecastMetrics() forecast.Metrics {
	if b.metrics == nil {
		return nil
	}
	return b.metrics
}

func (b *backend) cacheRecorder() dataset.CacheRecorder {
	if b.metrics == nil {
		return nil
	}
	return b.metrics
}

func (b *backend) recordError(component string, err error) {
	if b.metrics != nil && err != nil {
		b.metrics.RecordError(component, err)
	}
}

// openDatabase connects to PostgreSQL.
func (b *backend) openDatabase() (*postgres.Connection, error) {
	conn, err := postgres.NewConnection(postgresConfig(b.cfg.Database), b.logger)
	if err != nil {
		return nil, err
	}
	b.closers = append(b.closers, conn.Close)
	return conn, nil
}

// openObjectStore connects to MinIO and ensures the dataset bucket exists.
func (b *backend) openObjectStore() (*minio.MinIOClient, error) {
	client, err := minio.NewMinIOClient(&minio.MinIOConfig{
		Endpoint:        b.cfg.MinIO.Endpoint,
		AccessKeyID:     b.cfg.MinIO.AccessKey,
		SecretAccessKey: b.cfg.MinIO.SecretKey,
		UseSSL:          b.cfg.MinIO.UseSSL,
		Region:          b.cfg.MinIO.Region,
		Bucket:          b.cfg.MinIO.Bucket,
		Prefix:          b.cfg.MinIO.Prefix,
	}, b.logger)
	if err != nil {
		return nil, err
	}
	b.closers = append(b.closers, client.Close)
	return client, nil
}

// openCache returns the Redis dataset cache, or nil when dataset.cache is
// off or Redis is unreachable. An unreachable cache is not fatal.
func (b *backend) openCache() redis.Cache {
	if b.cacheDone {
		return b.cache
	}
	b.cacheDone = true
	if !b.cfg.Dataset.Cache {
		return nil
	}

	client, err := redis.NewClient(&redis.RedisConfig{
		Addr:        b.cfg.Redis.Addr,
		Password:    b.cfg.Redis.Password,
		DB:          b.cfg.Redis.DB,
		PoolSize:    b.cfg.Redis.PoolSize,
		DialTimeout: b.cfg.Redis.DialTimeout,
	}, b.logger)
	if err != nil {
		b.logger.Warn("dataset cache unavailable, reading datasets directly",
			logging.String("addr", b.cfg.Redis.Addr), logging.Err(err))
		b.recordError("cache", err)
		return nil
	}
	b.closers = append(b.closers, client.Close)
	b.cache = redis.NewRedisCache(client, b.logger,
		redis.WithPrefix(b.cfg.Redis.KeyPrefix),
		redis.WithDefaultTTL(b.cfg.Dataset.CacheTTL),
	)
	return b.cache
}

// rawSource opens the dataset backend named by kind without caching.
func (b *backend) rawSource(kind string) (dataset.Source, error) {
	switch kind {
	case SourceFile:
		return dataset.NewFileSource(b.cfg.Dataset.Dir, b.files(), b.logger), nil
	case SourcePostgres:
		conn, err := b.openDatabase()
		if err != nil {
			return nil, err
		}
		return repositories.NewDatasetRepository(conn, b.logger), nil
	case SourceMinIO:
		client, err := b.openObjectStore()
		if err != nil {
			return nil, err
		}
		return dataset.NewObjectSource(client, b.files(), b.logger), nil
	default:
		return nil, errors.InvalidConfig("unsupported dataset source: " + kind)
	}
}

// source opens the configured dataset backend, behind the Redis cache when
// dataset.cache is set.
func (b *backend) source() (dataset.Source, error) {
	src, err := b.rawSource(b.cfg.Dataset.Source)
	if err != nil {
		return nil, err
	}
	if cache := b.openCache(); cache != nil {
		return dataset.NewCachedSource(src, cache, b.cfg.Dataset.CacheTTL, b.cacheRecorder(), b.logger), nil
	}
	return src, nil
}

// invalidate drops cached datasets read from loc. It is a no-op without a
// cache.
func (b *backend) invalidate(ctx context.Context, loc dataset.Locator) {
	cache := b.openCache()
	if cache == nil {
		return
	}
	n, err := dataset.InvalidateCache(ctx, cache, loc)
	if err != nil {
		b.logger.Warn("failed to invalidate dataset cache", logging.String("source", loc.Name()), logging.Err(err))
		b.recordError("cache", err)
		return
	}
	b.logger.Debug("dataset cache invalidated",
		logging.String("source", loc.Name()), logging.String("location", loc.Location()), logging.Int64("keys", n))
}

// Close flushes the metrics textfile and closes every opened connection in
// reverse order. It returns the first error.
func (b *backend) Close() error {
	var first error
	if b.collector != nil && b.cfg.Metrics.Textfile != "" {
		if err := b.collector.WriteTextfile(b.cfg.Metrics.Textfile); err != nil {
			b.logger.Warn("failed to write metrics textfile",
				logging.String("path", b.cfg.Metrics.Textfile), logging.Err(err))
			first = err
		}
	}
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	b.closers = nil
	return first
}

func postgresConfig(c config.DatabaseConfig) postgres.PostgresConfig {
	return postgres.PostgresConfig{
		Host:            c.Host,
		Port:            c.Port,
		Database:        c.DBName,
		Username:        c.User,
		Password:        c.Password,
		SSLMode:         c.SSLMode,
		MaxOpenConns:    c.MaxConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Forecast session
// ─────────────────────────────────────────────────────────────────────────────

// session is a forecast service wired to the configured backends.
type session struct {
	service   forecast.Service
	reference coalition.ReferenceData
	backend   *backend
}

// newSession builds the reference data, predictor, dataset source and
// forecast service for cliCtx. The caller must Close the session.
func newSession(cliCtx *CLIContext, profile string) (*session, error) {
	cfg := cliCtx.Config
	ref, err := loadReference(cfg.Reference, profile)
	if err != nil {
		return nil, err
	}
	predictor, err := newPredictor(cfg.Scoring, ref)
	if err != nil {
		return nil, err
	}

	b := newBackend(cfg, cliCtx.Logger)
	src, err := b.source()
	if err != nil {
		b.recordError("dataset", err)
		_ = b.Close()
		return nil, err
	}

	svc := forecast.NewService(predictor, src, cliCtx.Logger,
		forecast.WithMetrics(b.forecastMetrics()),
		forecast.WithTimeout(cliCtx.Timeout),
	)
	return &session{service: svc, reference: ref, backend: b}, nil
}

// useTopics resolves the topic divergence switch: the flag when given,
// then scoring.use_topics when set, then the profile's own setting.
func (s *session) useTopics(cfg *config.Config, flagSet, flag bool) bool {
	if flagSet {
		return flag
	}
	if cfg.Scoring.UseTopics != nil {
		return *cfg.Scoring.UseTopics
	}
	return s.reference.UseTopics
}

func (s *session) Close() error {
	return s.backend.Close()
}

//Personal.AI order the ending
