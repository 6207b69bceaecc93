package config_test

import (
	"testing"
	"time"

	"github.com/DeafMist/fake-news-detector/backend/internal/config"
	"github.com/stretchr/testify/require"
)

func TestLoadAPIDefaults(t *testing.T) {
	for _, key := range []string{
		"API_BIND_ADDR", "MODEL_PATH", "API_MIN_TEXT_LENGTH", "API_MAX_TEXT_LENGTH",
		"API_MAX_BODY_BYTES", "API_REQUEST_TIMEOUT", "CORS_ALLOWED_ORIGINS",
		"EXPLANATION_TOP_K", "EVENTS_KAFKA_BROKERS", "EVENTS_KAFKA_TOPIC",
	} {
		t.Setenv(key, "")
	}

	cfg, err := config.LoadAPI()
	require.NoError(t, err)

	require.Equal(t, "0.0.0.0:8000", cfg.BindAddr)
	require.Empty(t, cfg.ModelPath)
	require.Equal(t, 50, cfg.MinTextLength)
	require.Equal(t, 20000, cfg.MaxTextLength)
	require.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
	require.Equal(t, 5*time.Second, cfg.RequestTimeout)
	require.Equal(t, []string{"*"}, cfg.CORSOrigins)
	require.Equal(t, 4, cfg.ExplanationTopK)
	require.False(t, cfg.Events.Enabled())
	require.Equal(t, "verdict_events", cfg.Events.KafkaTopic)
}

func TestLoadAPIOverrides(t *testing.T) {
	t.Setenv("API_BIND_ADDR", ":9090")
	t.Setenv("MODEL_PATH", "/models/v4.json")
	t.Setenv("API_MIN_TEXT_LENGTH", "80")
	t.Setenv("API_MAX_TEXT_LENGTH", "5000")
	t.Setenv("API_MAX_BODY_BYTES", "4096")
	t.Setenv("API_REQUEST_TIMEOUT", "2s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://newscheck.app, http://localhost:5173")
	t.Setenv("EXPLANATION_TOP_K", "3")
	t.Setenv("EVENTS_KAFKA_BROKERS", "broker-a:29092,broker-b:29093")
	t.Setenv("EVENTS_KAFKA_TOPIC", "verdicts")
	t.Setenv("EVENTS_BUFFER_SIZE", "16")
	t.Setenv("EVENTS_MAX_ATTEMPTS", "5")

	cfg, err := config.LoadAPI()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.BindAddr)
	require.Equal(t, "/models/v4.json", cfg.ModelPath)
	require.Equal(t, 80, cfg.MinTextLength)
	require.Equal(t, 5000, cfg.MaxTextLength)
	require.Equal(t, int64(4096), cfg.MaxBodyBytes)
	require.Equal(t, 2*time.Second, cfg.RequestTimeout)
	require.Equal(t, []string{"https://newscheck.app", "http://localhost:5173"}, cfg.CORSOrigins)
	require.Equal(t, 3, cfg.ExplanationTopK)
	require.True(t, cfg.Events.Enabled())
	require.Equal(t, []string{"broker-a:29092", "broker-b:29093"}, cfg.Events.KafkaBrokers)
	require.Equal(t, "verdicts", cfg.Events.KafkaTopic)
	require.Equal(t, 16, cfg.Events.BufferSize)
	require.Equal(t, 5, cfg.Events.MaxAttempts)
}

func TestLoadAPIValidation(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "min length", key: "API_MIN_TEXT_LENGTH", val: "0"},
		{name: "max below min", key: "API_MAX_TEXT_LENGTH", val: "10"},
		{name: "body limit", key: "API_MAX_BODY_BYTES", val: "-1"},
		{name: "top k", key: "EXPLANATION_TOP_K", val: "0"},
		{name: "event buffer", key: "EVENTS_BUFFER_SIZE", val: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := config.LoadAPI()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoadWorkerDefaults(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("KAFKA_REQUEST_TOPIC", "")
	t.Setenv("KAFKA_RESULT_TOPIC", "")
	t.Setenv("KAFKA_CONSUMER_GROUP", "")

	cfg, err := config.LoadWorker()
	require.NoError(t, err)

	require.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	require.Equal(t, "verify_requests", cfg.RequestTopic)
	require.Equal(t, "verify_results", cfg.ResultTopic)
	require.Equal(t, "verify-worker", cfg.KafkaConsumer)
	require.Equal(t, 20000, cfg.DedupeCapacity)
	require.Equal(t, time.Hour, cfg.DedupeTTL)
	require.Equal(t, 10, cfg.BatchSize)
}

func TestLoadWorkerOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker-a:29092,broker-b:29093")
	t.Setenv("KAFKA_REQUEST_TOPIC", "in")
	t.Setenv("KAFKA_RESULT_TOPIC", "out")
	t.Setenv("KAFKA_CONSUMER_GROUP", "custom-group")
	t.Setenv("WORKER_DEDUPE_CAPACITY", "5")
	t.Setenv("WORKER_DEDUPE_TTL", "48h")
	t.Setenv("WORKER_BATCH_SIZE", "3")

	cfg, err := config.LoadWorker()
	require.NoError(t, err)

	require.Len(t, cfg.KafkaBrokers, 2)
	require.Equal(t, "in", cfg.RequestTopic)
	require.Equal(t, "out", cfg.ResultTopic)
	require.Equal(t, "custom-group", cfg.KafkaConsumer)
	require.Equal(t, 5, cfg.DedupeCapacity)
	require.Equal(t, 48*time.Hour, cfg.DedupeTTL)
	require.Equal(t, 3, cfg.BatchSize)
}

func TestLoadWorkerRejectsSameTopics(t *testing.T) {
	t.Setenv("KAFKA_REQUEST_TOPIC", "jobs")
	t.Setenv("KAFKA_RESULT_TOPIC", "jobs")

	_, err := config.LoadWorker()
	require.Error(t, err)
}
