// Package events publishes verdict metadata to Kafka. Events never contain
// submitted text.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/DeafMist/fake-news-detector/backend/internal/models"
)

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Settings bound the in-memory queue and the retry loop.
type Settings struct {
	BufferSize  int
	MaxAttempts int
	// Backoff is the first retry delay; it doubles per attempt.
	Backoff time.Duration
}

// Publisher queues events and writes them from a single goroutine.
// Publish never blocks: a full queue drops the event.
type Publisher struct {
	writer   MessageWriter
	log      *slog.Logger
	settings Settings

	mu     sync.RWMutex
	closed bool
	ch     chan models.VerdictEvent
	done   chan struct{}
}

// NewKafkaWriter returns a writer for topic.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           100 * time.Millisecond,
	}
}

// NewPublisher starts the drain goroutine. Writes use ctx; cancel it or call
// Close to stop.
func NewPublisher(ctx context.Context, w MessageWriter, log *slog.Logger, s Settings) *Publisher {
	if s.BufferSize <= 0 {
		s.BufferSize = 1
	}
	if s.MaxAttempts <= 0 {
		s.MaxAttempts = 1
	}
	p := &Publisher{
		writer:   w,
		log:      log,
		settings: s,
		ch:       make(chan models.VerdictEvent, s.BufferSize),
		done:     make(chan struct{}),
	}
	go p.run(ctx)
	return p
}

// Publish enqueues ev.
func (p *Publisher) Publish(ev models.VerdictEvent) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return
	}
	select {
	case p.ch <- ev:
	default:
		p.log.Warn("event queue full, dropping verdict event", slog.String("id", ev.ID))
	}
}

// Close flushes queued events and closes the writer.
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.ch)
	p.mu.Unlock()

	<-p.done
	return p.writer.Close()
}

func (p *Publisher) run(ctx context.Context) {
	defer close(p.done)
	for ev := range p.ch {
		p.write(ctx, ev)
	}
}

func (p *Publisher) write(ctx context.Context, ev models.VerdictEvent) {
	msg, err := Message(ev)
	if err != nil {
		p.log.Error("encode verdict event", slog.Any("err", err))
		return
	}

	for attempt := 0; attempt < p.settings.MaxAttempts; attempt++ {
		err := p.writer.WriteMessages(ctx, msg)
		if err == nil {
			return
		}
		if attempt == p.settings.MaxAttempts-1 {
			p.log.Error("verdict event dropped after retries",
				slog.Any("err", err),
				slog.String("id", ev.ID),
				slog.Int("attempts", attempt+1),
			)
			return
		}

		backoff := time.Duration(1<<uint(attempt)) * p.settings.Backoff
		p.log.Warn("verdict event write failed, retrying",
			slog.Any("err", err),
			slog.Int("attempt", attempt+1),
			slog.Duration("backoff", backoff),
		)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return
		}
	}
}

// Message encodes ev as a Kafka message keyed by event id.
func Message(ev models.VerdictEvent) (kafka.Message, error) {
	value, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(ev.ID),
		Value: value,
		Time:  ev.Timestamp,
		Headers: []kafka.Header{
			{Key: "model_id", Value: []byte(ev.ModelID)},
			{Key: "model_version", Value: []byte(ev.ModelVersion)},
		},
	}, nil
}
