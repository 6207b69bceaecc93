// Package verify validates submissions and runs them through the
// verification pipeline, mapping every failure to a stable category.
package verify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/DeafMist/fake-news-detector/backend/internal/models"
)

const (
	DefaultMinLength = 50
	DefaultMaxLength = 20000
)

// EventSink receives metadata about finished verifications.
type EventSink interface {
	Publish(ev models.VerdictEvent)
}

// Options configure validation and event metadata.
type Options struct {
	MinLength    int
	MaxLength    int
	ModelID      string
	ModelVersion string
	// Source tags emitted events, e.g. "api" or "worker".
	Source string
}

// Service is safe for concurrent use.
type Service struct {
	analyzer Analyzer
	sink     EventSink
	log      *slog.Logger
	opts     Options
	now      func() time.Time
}

// NewService builds a Service. A nil sink disables events.
func NewService(analyzer Analyzer, sink EventSink, log *slog.Logger, opts Options) *Service {
	if opts.MinLength <= 0 {
		opts.MinLength = DefaultMinLength
	}
	if opts.MaxLength <= 0 {
		opts.MaxLength = DefaultMaxLength
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{analyzer: analyzer, sink: sink, log: log, opts: opts, now: time.Now}
}

// Validate checks text without running the pipeline and returns it trimmed.
func (s *Service) Validate(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", inputError(ErrInputEmpty, "Text cannot be empty.")
	}
	n := utf8.RuneCountInString(trimmed)
	if n < s.opts.MinLength {
		return "", inputError(ErrInputTooShort, "Text must be at least %d characters long (got %d).", s.opts.MinLength, n)
	}
	if n > s.opts.MaxLength {
		return "", inputError(ErrInputTooLong, "Text must be at most %d characters long (got %d).", s.opts.MaxLength, n)
	}
	return trimmed, nil
}

// Verify validates text and returns its verdict. Errors are either an
// *InputError, a context error, or wrap ErrPipelineFailure.
func (s *Service) Verify(ctx context.Context, text string) (res models.PredictionResult, err error) {
	trimmed, err := s.Validate(text)
	if err != nil {
		return models.PredictionResult{}, err
	}

	start := s.now()
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("pipeline panic", slog.Any("panic", r))
			res, err = models.PredictionResult{}, fmt.Errorf("%w: panic: %v", ErrPipelineFailure, r)
		}
	}()

	res, err = s.analyzer.Analyze(ctx, trimmed)
	if err != nil {
		if IsInputError(err) || isContextErr(err) {
			return models.PredictionResult{}, err
		}
		s.log.Error("pipeline failed", slog.Any("err", err))
		if !errors.Is(err, ErrPipelineFailure) {
			err = fmt.Errorf("%w: %w", ErrPipelineFailure, err)
		}
		return models.PredictionResult{}, err
	}

	latency := s.now().Sub(start)
	s.log.Debug("verified",
		slog.String("prediction", res.Prediction),
		slog.Float64("confidence", res.Confidence),
		slog.Int("text_length", utf8.RuneCountInString(trimmed)),
		slog.Duration("latency", latency),
	)

	if s.sink != nil {
		s.sink.Publish(models.VerdictEvent{
			ID:           uuid.NewString(),
			ModelID:      s.opts.ModelID,
			ModelVersion: s.opts.ModelVersion,
			Prediction:   res.Prediction,
			Confidence:   res.Confidence,
			TextLength:   utf8.RuneCountInString(trimmed),
			LatencyMS:    float64(latency.Microseconds()) / 1000,
			Source:       s.opts.Source,
			Timestamp:    s.now().UTC(),
		})
	}
	return res, nil
}
