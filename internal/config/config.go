package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Common contains model and validation parameters shared by every service.
type Common struct {
	ModelPath       string
	MinTextLength   int
	MaxTextLength   int
	ExplanationTopK int
}

// Events configures the optional verdict event publisher.
type Events struct {
	KafkaBrokers []string
	KafkaTopic   string
	BufferSize   int
	MaxAttempts  int
	Backoff      time.Duration
}

// Enabled reports whether any broker is configured.
func (e Events) Enabled() bool {
	return len(e.KafkaBrokers) > 0
}

// API describes HTTP-layer configuration.
type API struct {
	Common
	Events         Events
	BindAddr       string
	MaxBodyBytes   int64
	RequestTimeout time.Duration
	CORSOrigins    []string
}

// Worker holds configuration for the Kafka verification worker.
type Worker struct {
	Common
	Events         Events
	KafkaBrokers   []string
	RequestTopic   string
	ResultTopic    string
	KafkaConsumer  string
	DedupeCapacity int
	DedupeTTL      time.Duration
	BatchSize      int
}

// LoadAPI builds an API config from environment variables.
func LoadAPI() (*API, error) {
	c := &API{
		Common:         loadCommon(),
		Events:         loadEvents(),
		BindAddr:       getEnv("API_BIND_ADDR", "0.0.0.0:8000"),
		MaxBodyBytes:   int64(getInt("API_MAX_BODY_BYTES", 1<<20)),
		RequestTimeout: getDuration("API_REQUEST_TIMEOUT", "5s"),
		CORSOrigins:    splitAndTrim(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}

	if err := c.Common.validate(); err != nil {
		return nil, err
	}
	if err := c.Events.validate(); err != nil {
		return nil, err
	}
	if c.MaxBodyBytes <= 0 {
		return nil, fmt.Errorf("API_MAX_BODY_BYTES must be positive")
	}
	if c.RequestTimeout <= 0 {
		return nil, fmt.Errorf("API_REQUEST_TIMEOUT must be positive")
	}
	if len(c.CORSOrigins) == 0 {
		return nil, fmt.Errorf("CORS_ALLOWED_ORIGINS must contain at least one origin")
	}

	return c, nil
}

// LoadWorker builds a Worker config from environment variables.
func LoadWorker() (*Worker, error) {
	c := &Worker{
		Common:         loadCommon(),
		Events:         loadEvents(),
		KafkaBrokers:   splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		RequestTopic:   getEnv("KAFKA_REQUEST_TOPIC", "verify_requests"),
		ResultTopic:    getEnv("KAFKA_RESULT_TOPIC", "verify_results"),
		KafkaConsumer:  getEnv("KAFKA_CONSUMER_GROUP", "verify-worker"),
		DedupeCapacity: getInt("WORKER_DEDUPE_CAPACITY", 20000),
		DedupeTTL:      getDuration("WORKER_DEDUPE_TTL", "1h"),
		BatchSize:      getInt("WORKER_BATCH_SIZE", 10),
	}

	if err := c.Common.validate(); err != nil {
		return nil, err
	}
	if err := c.Events.validate(); err != nil {
		return nil, err
	}
	if len(c.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}
	if c.RequestTopic == c.ResultTopic {
		return nil, fmt.Errorf("KAFKA_REQUEST_TOPIC and KAFKA_RESULT_TOPIC must differ")
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("WORKER_BATCH_SIZE must be positive")
	}
	if c.DedupeCapacity <= 0 {
		return nil, fmt.Errorf("WORKER_DEDUPE_CAPACITY must be positive")
	}

	return c, nil
}

func loadCommon() Common {
	return Common{
		ModelPath:       strings.TrimSpace(os.Getenv("MODEL_PATH")),
		MinTextLength:   getInt("API_MIN_TEXT_LENGTH", 50),
		MaxTextLength:   getInt("API_MAX_TEXT_LENGTH", 20000),
		ExplanationTopK: getInt("EXPLANATION_TOP_K", 4),
	}
}

func (c Common) validate() error {
	if c.MinTextLength <= 0 {
		return fmt.Errorf("API_MIN_TEXT_LENGTH must be positive")
	}
	if c.MaxTextLength < c.MinTextLength {
		return fmt.Errorf("API_MAX_TEXT_LENGTH cannot be below API_MIN_TEXT_LENGTH")
	}
	if c.ExplanationTopK <= 0 {
		return fmt.Errorf("EXPLANATION_TOP_K must be positive")
	}
	return nil
}

func loadEvents() Events {
	return Events{
		KafkaBrokers: splitAndTrim(os.Getenv("EVENTS_KAFKA_BROKERS")),
		KafkaTopic:   getEnv("EVENTS_KAFKA_TOPIC", "verdict_events"),
		BufferSize:   getInt("EVENTS_BUFFER_SIZE", 256),
		MaxAttempts:  getInt("EVENTS_MAX_ATTEMPTS", 3),
		Backoff:      getDuration("EVENTS_BACKOFF", "500ms"),
	}
}

func (e Events) validate() error {
	if e.BufferSize <= 0 {
		return fmt.Errorf("EVENTS_BUFFER_SIZE must be positive")
	}
	if e.MaxAttempts <= 0 {
		return fmt.Errorf("EVENTS_MAX_ATTEMPTS must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
