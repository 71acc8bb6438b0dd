package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{
		"TODO_ADDR", "DEBUG", "HTTP_REQUEST_TIMEOUT", "MONGODB_URL", "MONGODB_DATABASE",
		"TODO_COLLECTION", "MONGODB_MAX_POOL_SIZE", "MONGODB_CONNECT_TIMEOUT",
		"REDIS_URL", "RATE_LIMIT_PER_MINUTE", "TODO_STORE",
	} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":3001", cfg.Server.Addr)
	assert.False(t, cfg.Server.Debug)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "mongodb://localhost:27017/todo", cfg.Mongo.URL)
	assert.Equal(t, "todo", cfg.Mongo.Database)
	assert.Equal(t, "todo_lists", cfg.Mongo.Collection)
	assert.Equal(t, uint64(100), cfg.Mongo.MaxPoolSize)
	assert.Equal(t, 10*time.Second, cfg.Mongo.ConnectTimeout)
	assert.Empty(t, cfg.Redis.URL)
	assert.Equal(t, 600, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, StoreMongo, cfg.Store)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("TODO_ADDR", ":8080")
	t.Setenv("DEBUG", "TRUE")
	t.Setenv("MONGODB_URL", "mongodb://db.internal:27017/lists?replicaSet=rs0")
	t.Setenv("MONGODB_DATABASE", "ignored")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "0")
	t.Setenv("TODO_STORE", "memory")

	cfg := FromEnv()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.True(t, cfg.Server.Debug)
	assert.Equal(t, "lists", cfg.Mongo.Database)
	assert.Equal(t, 0, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, StoreMemory, cfg.Store)
}

func TestDatabaseFallsBackWhenURLHasNoPath(t *testing.T) {
	t.Setenv("MONGODB_URL", "mongodb://localhost:27017")
	t.Setenv("MONGODB_DATABASE", "todo_dev")

	cfg := FromEnv()
	assert.Equal(t, "todo_dev", cfg.Mongo.Database)
}

func TestValidateReportsBadValues(t *testing.T) {
	t.Setenv("MONGODB_MAX_POOL_SIZE", "lots")
	t.Setenv("HTTP_REQUEST_TIMEOUT", "soon")
	t.Setenv("TODO_STORE", "dynamo")

	cfg := FromEnv()
	assert.Equal(t, uint64(100), cfg.Mongo.MaxPoolSize)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGODB_MAX_POOL_SIZE")
	assert.Contains(t, err.Error(), "HTTP_REQUEST_TIMEOUT")
	assert.Contains(t, err.Error(), "TODO_STORE")
}
