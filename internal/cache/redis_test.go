package cache

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/opdqueue/config"
	"github.com/Domenick1991/opdqueue/internal/domain"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisCache(t *testing.T) {
	c := NewRedisCache(config.RedisConfig{Addr: "localhost:6379"}, time.Minute)
	assert.NotNil(t, c)
	assert.Equal(t, time.Minute, c.doctorsTTL)
	assert.NoError(t, c.Close())
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "cache:doctors", doctorsKey())
	assert.Equal(t, "claim:token:global:1234", tokenClaimKey("global", 1234))
	assert.Equal(t, "claim:token:doctor/d-1:9999", tokenClaimKey("doctor/d-1", 9999))
}

func newMiniCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := NewRedisCacheWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCache_ClaimToken(t *testing.T) {
	c, mr := newMiniCache(t)
	ctx := context.Background()

	ok, err := c.ClaimToken(ctx, "doctor/d-1", 1234, 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 30*time.Second, mr.TTL("claim:token:doctor/d-1:1234"))

	ok, err = c.ClaimToken(ctx, "doctor/d-1", 1234, 30*time.Second)
	require.NoError(t, err)
	assert.False(t, ok, "second claim on the same token is refused")

	ok, err = c.ClaimToken(ctx, "doctor/d-2", 1234, 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok, "scopes are independent")

	mr.FastForward(31 * time.Second)
	ok, err = c.ClaimToken(ctx, "doctor/d-1", 1234, 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok, "expired claims can be taken again")
}

func TestRedisCache_ReleaseToken(t *testing.T) {
	c, mr := newMiniCache(t)
	ctx := context.Background()

	ok, err := c.ClaimToken(ctx, "global", 5000, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, c.ReleaseToken(ctx, "global", 5000))
	assert.False(t, mr.Exists("claim:token:global:5000"))

	ok, err = c.ClaimToken(ctx, "global", 5000, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisCache_Doctors(t *testing.T) {
	c, mr := newMiniCache(t)
	ctx := context.Background()

	doctors, err := c.GetDoctors(ctx)
	require.NoError(t, err)
	assert.Nil(t, doctors, "miss")

	want := []domain.Doctor{{ID: "d-1", Name: "Mehta", Specialization: "Cardiology"}}
	require.NoError(t, c.SetDoctors(ctx, want))
	assert.Equal(t, time.Minute, mr.TTL("cache:doctors"))

	got, err := c.GetDoctors(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Mehta", got[0].Name)

	require.NoError(t, c.InvalidateDoctors(ctx))
	got, err = c.GetDoctors(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisCache_CorruptDoctors(t *testing.T) {
	c, mr := newMiniCache(t)
	require.NoError(t, mr.Set("cache:doctors", "not json"))

	_, err := c.GetDoctors(context.Background())
	assert.Error(t, err)
}

func TestRedisCache_Ping(t *testing.T) {
	c, _ := newMiniCache(t)
	assert.NoError(t, c.Ping(context.Background()))
}
