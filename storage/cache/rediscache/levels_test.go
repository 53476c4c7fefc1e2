package rediscache

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/levelup/core/levels"
)

// clientMock is a map-backed Client; Scan returns one matching key per page.
type clientMock struct {
	data map[string]string
	ttls map[string]time.Duration
	mu   sync.Mutex
}

func newClientMock() *clientMock {
	return &clientMock{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (m *clientMock) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (m *clientMock) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = string(value.([]byte))
	m.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (m *clientMock) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (m *clientMock) Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.TrimSuffix(match, "*")
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return redis.NewScanCmdResult(nil, 0, nil)
	}
	var next uint64
	if len(keys) > 1 {
		next = cursor + 1
	}
	return redis.NewScanCmdResult(keys[:1], next, nil)
}

func TestLevelsCache(t *testing.T) {
	client := newClientMock()
	cache := NewLevelsCache(client, time.Minute)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	info := levels.BuiltInDefaults()
	info.CourseID = 1
	info.Levels[1].Name = "Rookie"
	require.NoError(t, cache.Set(ctx, info))
	assert.Equal(t, time.Minute, client.ttls["levelup:levels:1"])

	got, ok, err := cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, info, got)

	require.NoError(t, cache.Delete(ctx, 1))
	_, ok, err = cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLevelsCache_Flush(t *testing.T) {
	client := newClientMock()
	cache := NewLevelsCache(client, 0)
	ctx := context.Background()

	client.data["other:key"] = "keep me"
	for id := 0; id < 5; id++ {
		info := levels.BuiltInDefaults()
		info.CourseID = id
		require.NoError(t, cache.Set(ctx, info))
	}

	require.NoError(t, cache.Flush(ctx))
	assert.Equal(t, map[string]string{"other:key": "keep me"}, client.data)
}

func TestLevelsCache_corrupted(t *testing.T) {
	client := newClientMock()
	client.data["levelup:levels:2"] = "{not json"
	cache := NewLevelsCache(client, 0)

	_, ok, err := cache.Get(context.Background(), 2)
	assert.Error(t, err)
	assert.False(t, ok)
}
