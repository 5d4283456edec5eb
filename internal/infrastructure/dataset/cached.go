package dataset

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/turtacn/coalition-intelligence/internal/domain/coalition"
	"github.com/turtacn/coalition-intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/coalition-intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/coalition-intelligence/pkg/errors"
)

// CacheRecorder receives cache hit and miss events per dataset.
type CacheRecorder interface {
	CacheHit(dataset string)
	CacheMiss(dataset string)
}

type noopRecorder struct{}

func (noopRecorder) CacheHit(string)  {}
func (noopRecorder) CacheMiss(string) {}

// Dataset names used in cache keys and metrics.
const (
	KindCabinets     = "cabinets"
	KindLowerChamber = "lower_chamber"
	KindUpperChamber = "upper_chamber"
	KindTopics       = "topics"
)

// CachedSource serves a Source through a Redis cache. Keys are
// "<source>:<scope>:<dataset>", where scope is a short hash of the source
// location, so two directories or buckets never share entries. Cache
// failures other than a miss are logged and answered from the underlying
// source.
type CachedSource struct {
	next     Source
	cache    redis.Cache
	ttl      time.Duration
	recorder CacheRecorder
	logger   logging.Logger
}

// NewCachedSource wraps next. recorder may be nil.
func NewCachedSource(next Source, cache redis.Cache, ttl time.Duration, recorder CacheRecorder, logger logging.Logger) *CachedSource {
	if recorder == nil {
		recorder = noopRecorder{}
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &CachedSource{next: next, cache: cache, ttl: ttl, recorder: recorder, logger: logger}
}

// Name implements Source.
func (s *CachedSource) Name() string { return s.next.Name() }

// Location implements Source.
func (s *CachedSource) Location() string { return s.next.Location() }

// InvalidateCache drops the cached datasets read from loc. Entries of the
// same backend at other locations are kept.
func InvalidateCache(ctx context.Context, cache redis.Cache, loc Locator) (int64, error) {
	return cache.DeleteByPrefix(ctx, keyPrefix(loc))
}

// keyPrefix returns "<source>:<scope>:" for loc.
func keyPrefix(loc Locator) string {
	sum := sha256.Sum256([]byte(loc.Location()))
	return loc.Name() + ":" + hex.EncodeToString(sum[:6]) + ":"
}

func (s *CachedSource) key(kind string) string {
	return keyPrefix(s.next) + kind
}

// load fills dest through the cache and records whether it was a hit.
func (s *CachedSource) load(ctx context.Context, kind string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	missed := false
	err := s.cache.GetOrSet(ctx, s.key(kind), dest, s.ttl, func(ctx context.Context) (interface{}, error) {
		missed = true
		return loader(ctx)
	})
	if missed {
		s.recorder.CacheMiss(kind)
	} else if err == nil || err == redis.ErrCacheMiss {
		s.recorder.CacheHit(kind)
	}
	return err
}

// fallback reports whether err is a cache failure that should be answered
// from the underlying source.
func (s *CachedSource) fallback(kind string, err error) bool {
	if !errors.IsCode(err, errors.CodeCacheError) && !errors.IsCode(err, errors.ErrCodeSerialization) {
		return false
	}
	s.logger.Warn("dataset cache unavailable, reading source",
		logging.String("source", s.next.Name()), logging.String("dataset", kind), logging.Err(err))
	return true
}

// Cabinets implements Source.
func (s *CachedSource) Cabinets(ctx context.Context) ([][]coalition.PartyID, error) {
	var out [][]coalition.PartyID
	err := s.load(ctx, KindCabinets, &out, func(ctx context.Context) (interface{}, error) {
		return s.next.Cabinets(ctx)
	})
	if err != nil && s.fallback(KindCabinets, err) {
		return s.next.Cabinets(ctx)
	}
	return out, err
}

// LowerChamber implements Source.
func (s *CachedSource) LowerChamber(ctx context.Context) (map[int]coalition.SeatDistribution, error) {
	var out map[int]coalition.SeatDistribution
	err := s.load(ctx, KindLowerChamber, &out, func(ctx context.Context) (interface{}, error) {
		return s.next.LowerChamber(ctx)
	})
	if err != nil && s.fallback(KindLowerChamber, err) {
		return s.next.LowerChamber(ctx)
	}
	return out, err
}

// UpperChamber implements Source.
func (s *CachedSource) UpperChamber(ctx context.Context) (coalition.ChamberSeatTable, error) {
	var out coalition.ChamberSeatTable
	err := s.load(ctx, KindUpperChamber, &out, func(ctx context.Context) (interface{}, error) {
		return s.next.UpperChamber(ctx)
	})
	if err != nil && s.fallback(KindUpperChamber, err) {
		return s.next.UpperChamber(ctx)
	}
	return out, err
}

// TopicVectors implements Source. An absent topic dataset is cached as a
// null marker and reported as nil.
func (s *CachedSource) TopicVectors(ctx context.Context) (coalition.TopicVectors, error) {
	var out coalition.TopicVectors
	err := s.load(ctx, KindTopics, &out, func(ctx context.Context) (interface{}, error) {
		v, err := s.next.TopicVectors(ctx)
		if err != nil || v == nil {
			return nil, err
		}
		return v, nil
	})
	switch {
	case err == redis.ErrCacheMiss:
		return nil, nil
	case err != nil && s.fallback(KindTopics, err):
		return s.next.TopicVectors(ctx)
	}
	return out, err
}
