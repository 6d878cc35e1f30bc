package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// getTestConfig returns config for testing
func getTestConfig() *Config {
	cfg := DefaultConfig()

	if host := os.Getenv("TEST_REDIS_HOST"); host != "" {
		cfg.Host = host
	}
	if password := os.Getenv("TEST_REDIS_PASSWORD"); password != "" {
		cfg.Password = password
	}

	return cfg
}

func skipUnlessIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 6379, cfg.Port)
	assert.Equal(t, 10, cfg.PoolSize)
	assert.Equal(t, 3, cfg.MaxRetries)
}

func TestConfig_Addr(t *testing.T) {
	cfg := &Config{Host: "redis.example.com", Port: 6380}
	assert.Equal(t, "redis.example.com:6380", cfg.Addr())
}

func TestNewClient_Unreachable(t *testing.T) {
	cfg := &Config{
		Host:          "127.0.0.1",
		Port:          1,
		MaxRetries:    1,
		RetryInterval: 10 * time.Millisecond,
		DialTimeout:   200 * time.Millisecond,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewClient(ctx, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to redis")
}

func TestIsAuthError(t *testing.T) {
	assert.True(t, isAuthError(errors.New("WRONGPASS invalid username-password pair or user is disabled.")))
	assert.True(t, isAuthError(errors.New("NOAUTH Authentication required.")))
	assert.False(t, isAuthError(errors.New("dial tcp 127.0.0.1:1: connect: connection refused")))
	assert.False(t, isAuthError(nil))
}

func TestIsNil(t *testing.T) {
	assert.True(t, IsNil(Nil))
	assert.False(t, IsNil(errors.New("other")))
	assert.False(t, IsNil(nil))
}

// Integration tests - require Redis to be running

func TestClient_BasicOperations_Integration(t *testing.T) {
	skipUnlessIntegration(t)

	ctx := context.Background()
	client, err := NewClient(ctx, getTestConfig())
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Ping(ctx))

	key := "test:key:" + time.Now().Format("20060102150405.000")
	require.NoError(t, client.Set(ctx, key, "value", time.Minute).Err())

	val, err := client.Get(ctx, key).Result()
	require.NoError(t, err)
	assert.Equal(t, "value", val)

	vals, err := client.MGet(ctx, key, key+":missing").Result()
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"value", nil}, vals)

	require.NoError(t, client.Del(ctx, key).Err())
	_, err = client.Get(ctx, key).Result()
	assert.True(t, IsNil(err))
}

func TestClient_PubSub_Integration(t *testing.T) {
	skipUnlessIntegration(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := NewClient(ctx, getTestConfig())
	require.NoError(t, err)
	defer client.Close()

	channel := "test:channel:" + time.Now().Format("150405.000")
	ps, err := client.Subscribe(ctx, channel)
	require.NoError(t, err)
	defer ps.Close()

	require.NoError(t, client.Publish(ctx, channel, "hello").Err())

	msg, err := ps.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Payload)
}
