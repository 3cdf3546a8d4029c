package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pharmaguard-server/internal/domain"
)

// startRedis runs a throwaway Redis container and returns its URL
func startRedis(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Redis container test in short mode")
	}
	ctx := context.Background()

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("Redis container unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := redisContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate Redis container: %v", err)
		}
	})

	endpoint, err := redisContainer.Endpoint(ctx, "")
	require.NoError(t, err)
	return "redis://" + endpoint + "/0"
}

func TestRedisCache_RoundTrip(t *testing.T) {
	redisURL := startRedis(t)
	ctx := context.Background()

	c, err := NewRedisCache(redisURL)
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Ping(ctx))

	key := Key("gpt-3.5-turbo", "WARFARIN", "IM", "Adjust Dosage", "CYP2C9", "context")
	_, found, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)

	sections := domain.ExplanationSections{
		Summary:         "Reduced CYP2C9 activity.",
		Mechanism:       "The *2 allele lowers hydroxylation.",
		RiskRationale:   "Warfarin accumulates.",
		PatientFriendly: "Your body clears warfarin slowly.",
	}
	require.NoError(t, c.Set(ctx, key, sections, time.Minute))

	got, found, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, sections, got)

	ttl, err := c.client.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestRedisCache_Expiry(t *testing.T) {
	redisURL := startRedis(t)
	ctx := context.Background()

	c, err := NewRedisCache(redisURL)
	require.NoError(t, err)
	defer c.Close()

	key := Key("m", "CODEINE", "PM", "", "CYP2D6", "")
	require.NoError(t, c.Set(ctx, key, domain.ExplanationSections{Summary: "short lived"}, time.Second))

	assert.Eventually(t, func() bool {
		_, found, err := c.Get(ctx, key)
		return err == nil && !found
	}, 5*time.Second, 100*time.Millisecond)
}

func TestNew_RedisBackendReachable(t *testing.T) {
	redisURL := startRedis(t)

	c, err := New(context.Background(), domain.CacheConfig{
		Enabled:  true,
		Backend:  BackendRedis,
		RedisURL: redisURL,
		TTL:      time.Hour,
	}, testLogger())
	require.NoError(t, err)

	redisCache, ok := c.(*RedisCache)
	require.True(t, ok, "expected a Redis cache, got %T", c)
	assert.NoError(t, redisCache.Close())
}
