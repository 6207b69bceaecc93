package evaluation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/DeafMist/fake-news-detector/backend/internal/classifier"
	"github.com/DeafMist/fake-news-detector/backend/internal/models"
	"github.com/DeafMist/fake-news-detector/backend/internal/verify"
)

// Verifier is satisfied by *verify.Service.
type Verifier interface {
	Verify(ctx context.Context, text string) (models.PredictionResult, error)
}

// Miss is a sample the model got wrong.
type Miss struct {
	Text       string           `json:"text"`
	Expected   classifier.Label `json:"expected"`
	Predicted  classifier.Label `json:"predicted"`
	Confidence float64          `json:"confidence"`
}

// Report holds the confusion matrix with Fake as the positive class.
type Report struct {
	Total          int    `json:"total"`
	Skipped        int    `json:"skipped"`
	TruePositives  int    `json:"true_positives"`
	FalsePositives int    `json:"false_positives"`
	TrueNegatives  int    `json:"true_negatives"`
	FalseNegatives int    `json:"false_negatives"`
	Misses         []Miss `json:"misses,omitempty"`
}

// Evaluated is the number of samples that produced a verdict.
func (r Report) Evaluated() int {
	return r.TruePositives + r.FalsePositives + r.TrueNegatives + r.FalseNegatives
}

// Accuracy is correct / evaluated.
func (r Report) Accuracy() float64 {
	return ratio(r.TruePositives+r.TrueNegatives, r.Evaluated())
}

// Precision for the Fake class.
func (r Report) Precision() float64 {
	return ratio(r.TruePositives, r.TruePositives+r.FalsePositives)
}

// Recall for the Fake class.
func (r Report) Recall() float64 {
	return ratio(r.TruePositives, r.TruePositives+r.FalseNegatives)
}

// F1 for the Fake class.
func (r Report) F1() float64 {
	p, rc := r.Precision(), r.Recall()
	if p+rc == 0 {
		return 0
	}
	return 2 * p * rc / (p + rc)
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}

// Evaluate verifies every sample. Samples rejected as input errors are
// counted as skipped; any other failure aborts the run.
func Evaluate(ctx context.Context, v Verifier, samples []Sample) (Report, error) {
	rep := Report{Total: len(samples)}
	for i, s := range samples {
		res, err := v.Verify(ctx, s.Text)
		if err != nil {
			if verify.IsInputError(err) {
				rep.Skipped++
				continue
			}
			return rep, fmt.Errorf("sample %d: %w", i+1, err)
		}

		got := classifier.Label(res.Prediction)
		switch {
		case got == classifier.Fake && s.Label == classifier.Fake:
			rep.TruePositives++
		case got == classifier.Fake:
			rep.FalsePositives++
		case s.Label == classifier.Fake:
			rep.FalseNegatives++
		default:
			rep.TrueNegatives++
		}
		if got != s.Label {
			rep.Misses = append(rep.Misses, Miss{Text: s.Text, Expected: s.Label, Predicted: got, Confidence: res.Confidence})
		}
	}
	if rep.Evaluated() == 0 && rep.Total > 0 {
		return rep, errors.New("no sample produced a verdict")
	}
	return rep, nil
}

// WriteText renders a human-readable summary.
func WriteText(w io.Writer, r Report, showMisses bool) error {
	var b strings.Builder
	fmt.Fprintf(&b, "samples:   %d (evaluated %d, skipped %d)\n", r.Total, r.Evaluated(), r.Skipped)
	fmt.Fprintf(&b, "accuracy:  %.3f (%d/%d)\n", r.Accuracy(), r.TruePositives+r.TrueNegatives, r.Evaluated())
	fmt.Fprintf(&b, "precision: %.3f\n", r.Precision())
	fmt.Fprintf(&b, "recall:    %.3f\n", r.Recall())
	fmt.Fprintf(&b, "f1:        %.3f\n", r.F1())
	b.WriteString("\n            pred Fake  pred Real\n")
	fmt.Fprintf(&b, "true Fake   %9d  %9d\n", r.TruePositives, r.FalseNegatives)
	fmt.Fprintf(&b, "true Real   %9d  %9d\n", r.FalsePositives, r.TrueNegatives)

	if showMisses && len(r.Misses) > 0 {
		b.WriteString("\nmisses:\n")
		for _, m := range r.Misses {
			fmt.Fprintf(&b, "  expected %-4s got %-4s (%.2f)  %s\n", m.Expected, m.Predicted, m.Confidence, preview(m.Text, 60))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
