package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8004, cfg.HTTPPort)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 168, cfg.CacheTTL)
	assert.Equal(t, "http://localhost:8010", cfg.RecordStoreURL)
	assert.Equal(t, 5000, cfg.RecordStoreTimeoutMS)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoad_InvalidHTTPPort(t *testing.T) {
	t.Setenv("WISHLIST_HTTP_PORT", "0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

func TestLoad_InvalidRecordStoreTimeout(t *testing.T) {
	t.Setenv("RECORD_STORE_TIMEOUT_MS", "0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid record store timeout")
}

func TestLoad_CustomRecordStoreURL(t *testing.T) {
	t.Setenv("RECORD_STORE_URL", "http://records.internal:9000")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "http://records.internal:9000", cfg.RecordStoreURL)
}

func TestLoad_KafkaBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
}
