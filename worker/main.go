package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/DeafMist/fake-news-detector/backend/internal/config"
	"github.com/DeafMist/fake-news-detector/backend/internal/dedupe"
	"github.com/DeafMist/fake-news-detector/backend/internal/events"
	"github.com/DeafMist/fake-news-detector/backend/internal/explain"
	"github.com/DeafMist/fake-news-detector/backend/internal/logger"
	"github.com/DeafMist/fake-news-detector/backend/internal/model"
	"github.com/DeafMist/fake-news-detector/backend/internal/models"
	"github.com/DeafMist/fake-news-detector/backend/internal/verify"
)

type verifier interface {
	Verify(ctx context.Context, text string) (models.PredictionResult, error)
}

type resultWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

var errUndecodable = errors.New("undecodable job")

func main() {
	log := logger.New("worker")
	cfg, err := config.LoadWorker()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	m, err := model.Load(cfg.ModelPath)
	if err != nil {
		log.Error("load model", slog.Any("err", err))
		os.Exit(1)
	}
	pipeline, err := verify.NewPipeline(m, explain.Options{TopK: cfg.ExplanationTopK})
	if err != nil {
		log.Error("init pipeline", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	var sink verify.EventSink
	if cfg.Events.Enabled() {
		publisher := events.NewPublisher(ctx, events.NewKafkaWriter(cfg.Events.KafkaBrokers, cfg.Events.KafkaTopic), log, events.Settings{
			BufferSize:  cfg.Events.BufferSize,
			MaxAttempts: cfg.Events.MaxAttempts,
			Backoff:     cfg.Events.Backoff,
		})
		defer publisher.Close()
		sink = publisher
	}

	svc := verify.NewService(pipeline, sink, log, verify.Options{
		MinLength:    cfg.MinTextLength,
		MaxLength:    cfg.MaxTextLength,
		ModelID:      m.ID,
		ModelVersion: m.Version,
		Source:       "worker",
	})
	cache := dedupe.NewCache(cfg.DedupeCapacity, cfg.DedupeTTL)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		Topic:          cfg.RequestTopic,
		GroupID:        cfg.KafkaConsumer,
		QueueCapacity:  cfg.BatchSize,
		MinBytes:       1e3,
		MaxBytes:       10e6,
		CommitInterval: 0, // Disable auto-commit; manual commit only
	})
	defer reader.Close()

	resultsWriter := events.NewKafkaWriter(cfg.KafkaBrokers, cfg.ResultTopic)
	defer resultsWriter.Close()

	dlqWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       cfg.RequestTopic + "_dlq",
		MaxAttempts: 3,
	})
	defer dlqWriter.Close()

	log.Info("worker started",
		slog.String("topic", cfg.RequestTopic),
		slog.String("results_topic", cfg.ResultTopic),
		slog.String("group", cfg.KafkaConsumer),
		slog.String("model_id", m.ID),
	)

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("context canceled, stopping")
				return
			}
			log.Error("fetch message", slog.Any("err", err))
			continue
		}

		if err := processMessage(ctx, log, svc, resultsWriter, cache, msg); err != nil {
			if ctx.Err() != nil {
				log.Info("context canceled, leaving message uncommitted")
				return
			}
			log.Warn("process message failed, sending to DLQ",
				slog.Any("err", err),
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
			)

			if !sendToDLQ(ctx, log, dlqWriter, msg, err) {
				log.Error("DLQ write exhausted retries, message may be lost if later messages commit",
					slog.Int("partition", msg.Partition),
					slog.Int64("offset", msg.Offset),
				)
				continue
			}
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message", slog.Any("err", err))
		}
	}
}

// processMessage answers one job. Rejected texts produce a result carrying
// the rejection detail; only undecodable payloads and failed writes are
// returned as errors.
func processMessage(ctx context.Context, log *slog.Logger, svc verifier, out resultWriter, cache *dedupe.Cache, msg kafka.Message) error {
	var job models.VerifyJob
	if err := json.Unmarshal(msg.Value, &job); err != nil {
		return fmt.Errorf("%w: %w", errUndecodable, err)
	}

	job.ID = strings.TrimSpace(job.ID)
	if job.ID == "" {
		job.ID = strings.TrimSpace(string(msg.Key))
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}

	if cache.IsSeen(job.ID) {
		log.Debug("duplicate job", slog.String("id", job.ID))
		return nil
	}

	result := models.VerifyJobResult{ID: job.ID}
	res, err := svc.Verify(ctx, job.Text)
	switch {
	case err == nil:
		result.Prediction = res.Prediction
		result.Confidence = res.Confidence
		result.Explanation = res.Explanation
	case verify.IsInputError(err):
		result.Detail = verify.Detail(err)
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		log.Error("verify job", slog.String("id", job.ID), slog.Any("err", err))
		result.Detail = verify.Detail(err)
	}

	value, err := json.Marshal(result)
	if err != nil {
		return err
	}
	if err := out.WriteMessages(ctx, kafka.Message{Key: []byte(job.ID), Value: value}); err != nil {
		return fmt.Errorf("write result: %w", err)
	}

	cache.MarkSeen(job.ID)
	log.Info("verified job", slog.String("id", job.ID), slog.String("prediction", result.Prediction))
	return nil
}

// sendToDLQ forwards msg with error context, retrying with backoff. Payloads
// that decoded as jobs are forwarded without their value so submitted text
// never lands in the DLQ.
func sendToDLQ(ctx context.Context, log *slog.Logger, w resultWriter, msg kafka.Message, cause error) bool {
	value := msg.Value
	if !errors.Is(cause, errUndecodable) {
		value = nil
	}
	dlqMsg := kafka.Message{
		Key:   msg.Key,
		Value: value,
		Headers: append(msg.Headers,
			kafka.Header{Key: "original_partition", Value: []byte(fmt.Sprintf("%d", msg.Partition))},
			kafka.Header{Key: "original_offset", Value: []byte(fmt.Sprintf("%d", msg.Offset))},
			kafka.Header{Key: "error", Value: []byte(cause.Error())},
			kafka.Header{Key: "timestamp", Value: []byte(time.Now().UTC().Format(time.RFC3339))},
		),
	}

	for attempt := 0; attempt < 5; attempt++ {
		dlqErr := w.WriteMessages(ctx, dlqMsg)
		if dlqErr == nil {
			log.Info("message sent to DLQ",
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
				slog.Int("attempt", attempt+1),
			)
			return true
		}
		backoff := time.Duration(1<<uint(attempt)) * time.Second
		log.Warn("DLQ write failed, retrying",
			slog.Any("err", dlqErr),
			slog.Int("attempt", attempt+1),
			slog.Duration("backoff", backoff),
		)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return false
		}
	}
	return false
}
