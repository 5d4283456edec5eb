package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/coalition-intelligence/internal/domain/coalition"
	"github.com/turtacn/coalition-intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/coalition-intelligence/internal/infrastructure/monitoring/logging"
)

type MockSource struct {
	mock.Mock
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) Location() string { return "memory" }

func (m *MockSource) Cabinets(ctx context.Context) ([][]coalition.PartyID, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).([][]coalition.PartyID)
	return v, args.Error(1)
}

func (m *MockSource) LowerChamber(ctx context.Context) (map[int]coalition.SeatDistribution, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).(map[int]coalition.SeatDistribution)
	return v, args.Error(1)
}

func (m *MockSource) UpperChamber(ctx context.Context) (coalition.ChamberSeatTable, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).(coalition.ChamberSeatTable)
	return v, args.Error(1)
}

func (m *MockSource) TopicVectors(ctx context.Context) (coalition.TopicVectors, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).(coalition.TopicVectors)
	return v, args.Error(1)
}

type countingRecorder struct {
	hits, misses map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{hits: map[string]int{}, misses: map[string]int{}}
}

func (r *countingRecorder) CacheHit(d string)  { r.hits[d]++ }
func (r *countingRecorder) CacheMiss(d string) { r.misses[d]++ }

func newTestCache(t *testing.T) (redis.Cache, *redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client, err := redis.NewClient(&redis.RedisConfig{Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return redis.NewRedisCache(client, logging.NewNopLogger(), redis.WithoutJitter()), client, mr
}

func TestCachedSource_SecondReadIsServedFromCache(t *testing.T) {
	cache, _, _ := newTestCache(t)
	src := new(MockSource)
	rec := newCountingRecorder()
	lower := map[int]coalition.SeatDistribution{2023: {{Party: "PVV", Seats: 37}, {Party: "VVD", Seats: 24}}}
	src.On("LowerChamber", mock.Anything).Return(lower, nil).Once()

	cached := NewCachedSource(src, cache, time.Hour, rec, logging.NewNopLogger())
	ctx := context.Background()

	first, err := cached.LowerChamber(ctx)
	require.NoError(t, err)
	second, err := cached.LowerChamber(ctx)
	require.NoError(t, err)

	assert.Equal(t, lower, first)
	assert.Equal(t, lower, second)
	assert.Equal(t, 1, rec.misses[KindLowerChamber])
	assert.Equal(t, 1, rec.hits[KindLowerChamber])
	src.AssertExpectations(t)
}

func TestCachedSource_AllDatasetsRoundTrip(t *testing.T) {
	cache, _, mr := newTestCache(t)
	src := new(MockSource)
	cabinets := [][]coalition.PartyID{{"VVD", "CDA"}}
	upper := coalition.ChamberSeatTable{2023: {"BBB": 16}}
	topics := coalition.TopicVectors{"VVD": {0.25, 0.75}}
	src.On("Cabinets", mock.Anything).Return(cabinets, nil).Once()
	src.On("UpperChamber", mock.Anything).Return(upper, nil).Once()
	src.On("TopicVectors", mock.Anything).Return(topics, nil).Once()

	cached := NewCachedSource(src, cache, 0, nil, nil)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		c, err := cached.Cabinets(ctx)
		require.NoError(t, err)
		assert.Equal(t, cabinets, c)
		u, err := cached.UpperChamber(ctx)
		require.NoError(t, err)
		assert.Equal(t, upper, u)
		tv, err := cached.TopicVectors(ctx)
		require.NoError(t, err)
		assert.Equal(t, topics, tv)
	}

	assert.True(t, mr.Exists("coalition:"+keyPrefix(src)+KindCabinets))
	assert.True(t, mr.Exists("coalition:"+keyPrefix(src)+KindUpperChamber))
	src.AssertExpectations(t)
}

func TestCachedSource_AbsentTopicsAreRemembered(t *testing.T) {
	cache, _, _ := newTestCache(t)
	src := new(MockSource)
	src.On("TopicVectors", mock.Anything).Return(nil, nil).Once()

	cached := NewCachedSource(src, cache, time.Hour, nil, nil)
	for i := 0; i < 2; i++ {
		topics, err := cached.TopicVectors(context.Background())
		require.NoError(t, err)
		assert.Nil(t, topics)
	}
	src.AssertExpectations(t)
}

func TestCachedSource_FallsBackWhenCacheIsDown(t *testing.T) {
	cache, client, _ := newTestCache(t)
	require.NoError(t, client.Close())

	src := new(MockSource)
	cabinets := [][]coalition.PartyID{{"KVP", "PvdA"}}
	src.On("Cabinets", mock.Anything).Return(cabinets, nil).Once()

	got, err := NewCachedSource(src, cache, time.Hour, nil, nil).Cabinets(context.Background())

	require.NoError(t, err)
	assert.Equal(t, cabinets, got)
	src.AssertExpectations(t)
}

func TestCachedSource_Invalidate(t *testing.T) {
	cache, _, mr := newTestCache(t)
	src := new(MockSource)
	src.On("Cabinets", mock.Anything).Return([][]coalition.PartyID{{"A", "B"}}, nil).Twice()

	cached := NewCachedSource(src, cache, time.Hour, nil, nil)
	ctx := context.Background()
	_, err := cached.Cabinets(ctx)
	require.NoError(t, err)

	n, err := InvalidateCache(ctx, cache, cached)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.False(t, mr.Exists("coalition:"+keyPrefix(src)+KindCabinets))

	_, err = cached.Cabinets(ctx)
	require.NoError(t, err)
	src.AssertExpectations(t)
}

func writeCabinets(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cabinets.csv"), []byte("Kabinet,Partijen\n"+body), 0o644))
	return dir
}

func TestCachedSource_KeysScopedByLocation(t *testing.T) {
	cache, _, _ := newTestCache(t)
	files := Files{Cabinets: []string{"cabinets.csv"}}
	dirA := writeCabinets(t, "K1,\"A, B\"\n")
	dirB := writeCabinets(t, "K1,\"X, Y, Z\"\n")

	ctx := context.Background()
	srcA := NewCachedSource(NewFileSource(dirA, files, nil), cache, time.Hour, nil, nil)
	srcB := NewCachedSource(NewFileSource(dirB, files, nil), cache, time.Hour, nil, nil)

	a, err := srcA.Cabinets(ctx)
	require.NoError(t, err)
	assert.Equal(t, [][]coalition.PartyID{{"A", "B"}}, a)

	b, err := srcB.Cabinets(ctx)
	require.NoError(t, err)
	assert.Equal(t, [][]coalition.PartyID{{"X", "Y", "Z"}}, b)

	// Same directory, other file list.
	other := NewFileSource(dirA, Files{Cabinets: []string{"cabinets.csv", "extra.csv"}}, nil)
	assert.NotEqual(t, keyPrefix(srcA), keyPrefix(other))

	n, err := InvalidateCache(ctx, cache, srcA)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	b, err = srcB.Cabinets(ctx)
	require.NoError(t, err)
	assert.Equal(t, [][]coalition.PartyID{{"X", "Y", "Z"}}, b)
}
