package verify

import (
	"context"
	"errors"
	"fmt"

	"github.com/DeafMist/fake-news-detector/backend/internal/classifier"
	"github.com/DeafMist/fake-news-detector/backend/internal/explain"
	"github.com/DeafMist/fake-news-detector/backend/internal/model"
	"github.com/DeafMist/fake-news-detector/backend/internal/models"
	"github.com/DeafMist/fake-news-detector/backend/internal/processing"
)

// Analyzer runs the verification stages on already validated text.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (models.PredictionResult, error)
}

// Pipeline is normalize -> extract -> classify -> explain over a loaded model.
// It holds no per-request state.
type Pipeline struct {
	model *model.Model
	opts  explain.Options
}

// NewPipeline wires the stages to m.
func NewPipeline(m *model.Model, opts explain.Options) (*Pipeline, error) {
	if m == nil || m.Vocabulary == nil || m.Weights == nil {
		return nil, model.ErrUnavailable
	}
	if m.Vocabulary.Len() != m.Weights.Len() {
		return nil, fmt.Errorf("%w: vocabulary has %d terms, weights %d", model.ErrUnavailable, m.Vocabulary.Len(), m.Weights.Len())
	}
	return &Pipeline{model: m, opts: opts}, nil
}

// Model returns the model the pipeline runs.
func (p *Pipeline) Model() *model.Model {
	return p.model
}

// Analyze returns the verdict for text. ErrNoContent is returned when
// normalization leaves nothing to analyze.
func (p *Pipeline) Analyze(ctx context.Context, text string) (models.PredictionResult, error) {
	markers := processing.StyleMarkers(text)
	normalized := processing.Normalize(text)
	if normalized == "" {
		return models.PredictionResult{}, inputError(ErrNoContent, "Text contains no analyzable words.")
	}
	if err := ctx.Err(); err != nil {
		return models.PredictionResult{}, err
	}

	vec := p.model.Vocabulary.Extract(normalized, markers...)
	if err := ctx.Err(); err != nil {
		return models.PredictionResult{}, err
	}

	res, err := classifier.Classify(vec, p.model.Weights)
	if err != nil {
		return models.PredictionResult{}, fmt.Errorf("%w: classify: %w", ErrPipelineFailure, err)
	}

	return models.PredictionResult{
		Prediction:  string(res.Label),
		Confidence:  res.Confidence,
		Explanation: explain.Explain(normalized, vec, p.model.Vocabulary, p.model.Weights, res, p.opts),
	}, nil
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
