// Package classifier applies a fitted linear model to TF-IDF vectors.
//
// The model scores the Fake class: a probability of 0.5 or more means Fake.
package classifier

import (
	"errors"
	"fmt"
	"math"

	"github.com/DeafMist/fake-news-detector/backend/internal/features"
)

// Label is the verdict reported to clients.
type Label string

const (
	Real Label = "Real"
	Fake Label = "Fake"
)

// PositiveLabel is the class the linear score is fitted for.
const PositiveLabel = Fake

// Weights are the fitted coefficients, one per vocabulary index. They are
// never modified after construction.
type Weights struct {
	coef      []float64
	intercept float64
}

var ErrDimensionMismatch = errors.New("vector dimension does not match weights")

// NewWeights copies coef and validates every value is finite.
func NewWeights(coef []float64, intercept float64) (*Weights, error) {
	if len(coef) == 0 {
		return nil, errors.New("classifier: coefficients must not be empty")
	}
	if !finite(intercept) {
		return nil, fmt.Errorf("classifier: invalid intercept %v", intercept)
	}
	owned := make([]float64, len(coef))
	for i, c := range coef {
		if !finite(c) {
			return nil, fmt.Errorf("classifier: invalid coefficient %v at %d", c, i)
		}
		owned[i] = c
	}
	return &Weights{coef: owned, intercept: intercept}, nil
}

// Len returns the number of coefficients.
func (w *Weights) Len() int {
	return len(w.coef)
}

// Coef returns the coefficient at index i.
func (w *Weights) Coef(i int) float64 {
	return w.coef[i]
}

// Intercept returns the bias term.
func (w *Weights) Intercept() float64 {
	return w.intercept
}

// Result is the outcome for one vector.
type Result struct {
	Label Label
	// Probability is P(Fake).
	Probability float64
	// Confidence is the probability of Label, always >= 0.5.
	Confidence float64
	Score      float64
}

// Classify computes score = v·coef + intercept and maps it through the
// logistic function. A zero vector scores the intercept alone.
func Classify(v features.Vector, w *Weights) (Result, error) {
	if w == nil {
		return Result{}, errors.New("classifier: nil weights")
	}
	if v.Dim != len(w.coef) {
		return Result{}, fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, v.Dim, len(w.coef))
	}

	score := w.intercept
	for k, i := range v.Indices {
		score += v.Values[k] * w.coef[i]
	}
	if !finite(score) {
		return Result{}, fmt.Errorf("classifier: non-finite score %v", score)
	}

	p := Sigmoid(score)
	res := Result{Label: Real, Probability: p, Confidence: 1 - p, Score: score}
	if p >= 0.5 {
		res.Label = Fake
		res.Confidence = p
	}
	return res, nil
}

// Contribution is the signed share of one present term in the score.
type Contribution struct {
	Index int
	Value float64
}

// Contributions lists coef×value for every non-zero entry of v, in index order.
func Contributions(v features.Vector, w *Weights) []Contribution {
	out := make([]Contribution, 0, len(v.Indices))
	for k, i := range v.Indices {
		if i >= len(w.coef) {
			continue
		}
		if c := v.Values[k] * w.coef[i]; c != 0 {
			out = append(out, Contribution{Index: i, Value: c})
		}
	}
	return out
}

// Sigmoid is the numerically stable logistic function.
func Sigmoid(x float64) float64 {
	if x >= 0 {
		z := math.Exp(-x)
		return 1 / (1 + z)
	}
	z := math.Exp(x)
	return z / (1 + z)
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
