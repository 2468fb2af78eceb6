package cache

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/skyconnect/config"
	"github.com/Domenick1991/skyconnect/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisCache(t *testing.T) {
	c := NewRedisCache(config.RedisConfig{Addr: "localhost:6379"}, time.Hour, 30*time.Minute)
	assert.NotNil(t, c)
	assert.Equal(t, time.Hour, c.offersTTL)
	assert.Equal(t, 30*time.Minute, c.sessionTTL)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "cache:offers:HYD:GOI:2025-05-28", offersKey("HYD:GOI:2025-05-28"))
	assert.Equal(t, "session:abc", sessionKey("abc"))
	assert.Equal(t, "lock:session:abc", sessionLockKey("abc"))
}

func TestLoadSession_Unreachable(t *testing.T) {
	c := NewRedisCache(config.RedisConfig{Addr: "127.0.0.1:1"}, time.Minute, time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var dst map[string]any
	err := c.LoadSession(ctx, "missing", &dst)

	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSessionNotFound)
}

// fakeRedis implements the handful of commands RedisCache uses.
type fakeRedis struct {
	redis.Cmdable
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.BoolCmd {
	if _, ok := f.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.Set(ctx, key, value, ttl)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisCache_Offers(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	c := NewRedisCacheWithClient(fake, time.Hour, time.Minute)

	got, err := c.GetOffers(ctx, "HYD:GOI:2025-05-28")
	require.NoError(t, err)
	assert.Nil(t, got, "a miss is not an error")

	offers := []domain.FlightOffer{{ID: "1", Airline: "IndiGo", FlightNumber: "6E-1234", From: "HYD", To: "GOI", BasePrice: 3500}}
	require.NoError(t, c.SetOffers(ctx, "HYD:GOI:2025-05-28", offers))
	assert.Equal(t, time.Hour, fake.ttls["cache:offers:HYD:GOI:2025-05-28"])

	got, err = c.GetOffers(ctx, "HYD:GOI:2025-05-28")
	require.NoError(t, err)
	assert.Equal(t, offers, got)
}

func TestRedisCache_Sessions(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	c := NewRedisCacheWithClient(fake, time.Hour, 30*time.Minute)

	type state struct {
		Step int `json:"step"`
	}

	created, err := c.CreateSession(ctx, "abc", state{Step: 1})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = c.CreateSession(ctx, "abc", state{Step: 1})
	require.NoError(t, err)
	assert.False(t, created, "ids are never reused")

	require.NoError(t, c.SaveSession(ctx, "abc", state{Step: 3}))
	assert.Equal(t, 30*time.Minute, fake.ttls["session:abc"])

	var loaded state
	require.NoError(t, c.LoadSession(ctx, "abc", &loaded))
	assert.Equal(t, 3, loaded.Step)

	assert.ErrorIs(t, c.LoadSession(ctx, "xyz", &loaded), domain.ErrSessionNotFound)
}

func TestRedisCache_SessionLock(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	c := NewRedisCacheWithClient(fake, time.Hour, 30*time.Minute)

	ok, err := c.AcquireSessionLock(ctx, "abc", 10*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 10*time.Second, fake.ttls["lock:session:abc"])

	ok, err = c.AcquireSessionLock(ctx, "abc", 10*time.Second)
	require.NoError(t, err)
	assert.False(t, ok, "lock is held")

	ok, err = c.AcquireSessionLock(ctx, "other", 10*time.Second)
	require.NoError(t, err)
	assert.True(t, ok, "locks are per session")

	require.NoError(t, c.ReleaseSessionLock(ctx, "abc"))
	ok, err = c.AcquireSessionLock(ctx, "abc", 10*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}
