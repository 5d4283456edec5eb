package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/coalition-intelligence/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/turtacn/coalition-intelligence/pkg/errors"
)

type CacheTestSuite struct {
	suite.Suite
	mock  redismock.ClientMock
	cache Cache
}

func (s *CacheTestSuite) SetupTest() {
	db, mock := redismock.NewClientMock()
	s.mock = mock
	s.cache = NewRedisCache(NewClientWithUniversal(db, logging.NewNopLogger()), logging.NewNopLogger(), WithPrefix("test:"))
}

func (s *CacheTestSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

type seats struct {
	Party string `json:"party"`
	Seats int    `json:"seats"`
}

func (s *CacheTestSuite) TestGet_CacheHit() {
	val := seats{Party: "VVD", Seats: 24}
	data, _ := json.Marshal(val)
	s.mock.ExpectGet("test:k1").SetVal(string(data))

	var dest seats
	err := s.cache.Get(context.Background(), "k1", &dest)

	s.NoError(err)
	s.Equal(val, dest)
}

func (s *CacheTestSuite) TestGet_CacheMiss() {
	s.mock.ExpectGet("test:k1").RedisNil()

	var dest seats
	err := s.cache.Get(context.Background(), "k1", &dest)

	s.Equal(ErrCacheMiss, err)
	s.True(pkgerrors.IsNotFound(err))
}

func (s *CacheTestSuite) TestGet_NullMarker() {
	s.mock.ExpectGet("test:k1").SetVal(nullMarker)

	var dest seats
	s.Equal(ErrCacheMiss, s.cache.Get(context.Background(), "k1", &dest))
}

func (s *CacheTestSuite) TestGet_BackendError() {
	s.mock.ExpectGet("test:k1").SetErr(errors.New("connection reset"))

	var dest seats
	err := s.cache.Get(context.Background(), "k1", &dest)

	s.Error(err)
	s.True(pkgerrors.IsCode(err, pkgerrors.CodeCacheError))
}

func (s *CacheTestSuite) TestGet_CorruptValue() {
	s.mock.ExpectGet("test:k1").SetVal("{not json")

	var dest seats
	err := s.cache.Get(context.Background(), "k1", &dest)

	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeSerialization))
}

func (s *CacheTestSuite) TestDelete() {
	s.mock.ExpectDel("test:k1", "test:k2").SetVal(2)
	s.NoError(s.cache.Delete(context.Background(), "k1", "k2"))
}

func (s *CacheTestSuite) TestDelete_NoKeys() {
	s.NoError(s.cache.Delete(context.Background()))
}

func (s *CacheTestSuite) TestDeleteByPrefix() {
	s.mock.ExpectScan(0, "test:file:*", 100).SetVal([]string{"test:file:cabinets", "test:file:topics"}, 7)
	s.mock.ExpectDel("test:file:cabinets", "test:file:topics").SetVal(2)
	s.mock.ExpectScan(7, "test:file:*", 100).SetVal([]string{"test:file:upper"}, 0)
	s.mock.ExpectDel("test:file:upper").SetVal(1)

	n, err := s.cache.DeleteByPrefix(context.Background(), "file:")

	s.NoError(err)
	s.Equal(int64(3), n)
}

func (s *CacheTestSuite) TestPing() {
	s.mock.ExpectPing().SetVal("PONG")
	s.NoError(s.cache.Ping(context.Background()))
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheTestSuite))
}

func newMiniCache(t *testing.T, opts ...CacheOption) (Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := NewClient(&RedisConfig{Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return NewRedisCache(client, logging.NewNopLogger(), append([]CacheOption{WithPrefix("t:")}, opts...)...), mr
}

func TestCache_SetUsesExactTTLWithoutJitter(t *testing.T) {
	cache, mr := newMiniCache(t, WithoutJitter(), WithDefaultTTL(time.Hour))
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", seats{Party: "D66", Seats: 9}, 0))

	assert.Equal(t, time.Hour, mr.TTL("t:k"))
	raw, err := mr.Get("t:k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"party":"D66","seats":9}`, raw)
}

func TestCache_SetJitterStaysWithinTenPercent(t *testing.T) {
	cache, mr := newMiniCache(t)
	require.NoError(t, cache.Set(context.Background(), "k", 1, time.Hour))

	ttl := mr.TTL("t:k")
	assert.GreaterOrEqual(t, ttl, 54*time.Minute)
	assert.LessOrEqual(t, ttl, 66*time.Minute)
}

func TestCache_GetOrSet_LoadsOnceThenHits(t *testing.T) {
	cache, _ := newMiniCache(t, WithoutJitter())
	ctx := context.Background()

	calls := 0
	loader := func(context.Context) (interface{}, error) {
		calls++
		return []seats{{Party: "PVV", Seats: 37}}, nil
	}

	var first, second []seats
	require.NoError(t, cache.GetOrSet(ctx, "lower", &first, time.Minute, loader))
	require.NoError(t, cache.GetOrSet(ctx, "lower", &second, time.Minute, loader))

	assert.Equal(t, 1, calls)
	assert.Equal(t, []seats{{Party: "PVV", Seats: 37}}, first)
	assert.Equal(t, first, second)
}

func TestCache_GetOrSet_LoaderError(t *testing.T) {
	cache, mr := newMiniCache(t)
	boom := errors.New("source down")

	var dest []seats
	err := cache.GetOrSet(context.Background(), "k", &dest, 0, func(context.Context) (interface{}, error) {
		return nil, boom
	})

	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("t:k"))
}

func TestCache_GetOrSet_NilCachesNullMarker(t *testing.T) {
	cache, mr := newMiniCache(t, WithNullCacheTTL(5*time.Second))

	var dest []seats
	err := cache.GetOrSet(context.Background(), "topics", &dest, 0, func(context.Context) (interface{}, error) {
		return nil, nil
	})

	assert.Equal(t, ErrCacheMiss, err)
	raw, getErr := mr.Get("t:topics")
	require.NoError(t, getErr)
	assert.Equal(t, nullMarker, raw)
	assert.Equal(t, 5*time.Second, mr.TTL("t:topics"))
}

func TestCache_GetOrSet_NullMarkerSkipsLoader(t *testing.T) {
	cache, mr := newMiniCache(t)
	require.NoError(t, mr.Set("t:topics", nullMarker))

	called := false
	var dest []seats
	err := cache.GetOrSet(context.Background(), "topics", &dest, 0, func(context.Context) (interface{}, error) {
		called = true
		return []seats{}, nil
	})

	assert.Equal(t, ErrCacheMiss, err)
	assert.False(t, called)
}

func TestCache_GetOrSet_ConcurrentMissesShareLoader(t *testing.T) {
	cache, _ := newMiniCache(t)
	var calls int32
	release := make(chan struct{})
	loader := func(context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = cache.GetOrSet(context.Background(), "answer", &results[i], 0, loader)
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(4))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(1))
	for _, r := range results {
		assert.Equal(t, 42, r)
	}
}

func TestCache_DeleteByPrefix(t *testing.T) {
	cache, mr := newMiniCache(t)
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "file:cabinets", 1, 0))
	require.NoError(t, cache.Set(ctx, "file:topics", 2, 0))
	require.NoError(t, cache.Set(ctx, "postgres:cabinets", 3, 0))

	n, err := cache.DeleteByPrefix(ctx, "file:")

	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.False(t, mr.Exists("t:file:cabinets"))
	assert.True(t, mr.Exists("t:postgres:cabinets"))
}

//Personal.AI order the ending
