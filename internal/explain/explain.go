// Package explain renders a short rationale for a verdict from the terms that
// pushed the score towards it.
package explain

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/DeafMist/fake-news-detector/backend/internal/classifier"
	"github.com/DeafMist/fake-news-detector/backend/internal/features"
)

// DefaultTopK is the number of example terms quoted in an explanation.
const DefaultTopK = 4

// HighConfidence is the tier boundary for the "highly confident" wording.
const HighConfidence = 0.9

// Options tune the rendering.
type Options struct {
	TopK int
}

var cuePatterns = map[string]string{
	"sensational":   "sensational language",
	"urgency":       "calls for urgency",
	"conspiracy":    "conspiracy framing",
	"unverified":    "unverified or anonymous sourcing",
	"clickbait":     "clickbait phrasing",
	"style":         "stylistic red flags",
	"attribution":   "attribution to named sources",
	"institutional": "references to official institutions",
	"measured":      "measured, quantitative reporting",
	"neutral":       "neutral, factual wording",
}

// Driver is a vocabulary term that supports the predicted label.
type Driver struct {
	Term         features.Term
	Contribution float64
}

// Drivers returns up to k present terms whose contribution pushes towards
// r.Label, strongest first. Ties are broken by term text.
func Drivers(v features.Vector, vocab *features.Vocabulary, w *classifier.Weights, r classifier.Result, k int) []Driver {
	var out []Driver
	for _, c := range classifier.Contributions(v, w) {
		if (r.Label == classifier.Fake) != (c.Value > 0) {
			continue
		}
		out = append(out, Driver{Term: vocab.Term(c.Index), Contribution: c.Value})
	}
	sort.Slice(out, func(i, j int) bool {
		ai, aj := math.Abs(out[i].Contribution), math.Abs(out[j].Contribution)
		if ai == aj {
			return out[i].Term.Text < out[j].Term.Text
		}
		return ai > aj
	})
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}

// Explain builds the explanation sentence. It is deterministic and has no
// side effects.
func Explain(normalized string, v features.Vector, vocab *features.Vocabulary, w *classifier.Weights, r classifier.Result, opts Options) string {
	k := opts.TopK
	if k <= 0 {
		k = DefaultTopK
	}

	var b strings.Builder
	b.WriteString(lead(r))

	drivers := Drivers(v, vocab, w, r, k)
	if len(drivers) > 0 {
		b.WriteString(" ")
		b.WriteString(patterns(drivers))
	}

	if v.IsZero() {
		words := len(strings.Fields(normalized))
		fmt.Fprintf(&b, " None of the %d analyzed words matched the model's vocabulary, so confidence is low and the verdict rests on the baseline alone.", words)
	} else if len(drivers) == 0 {
		b.WriteString(" No single phrase stood out; the verdict reflects the overall mix of words.")
	}
	return b.String()
}

func lead(r classifier.Result) string {
	high := r.Confidence > HighConfidence
	switch {
	case r.Label == classifier.Fake && high:
		return "The model is highly confident that this is a fake news article."
	case r.Label == classifier.Fake:
		return "The model predicts this is a fake news article, but with some uncertainty. It's advisable to cross-reference with other sources."
	case high:
		return "The model is highly confident that this is a real news article."
	default:
		return "The model predicts this is a real news article, but with some uncertainty. It shares characteristics with both real and fake news."
	}
}

func patterns(drivers []Driver) string {
	weight := make(map[string]float64)
	var examples []string
	for _, d := range drivers {
		if pattern, ok := cuePatterns[d.Term.Cue]; ok {
			weight[pattern] += math.Abs(d.Contribution)
		}
		if d.Term.Display != "" {
			examples = append(examples, d.Term.Display)
		} else {
			examples = append(examples, fmt.Sprintf("%q", d.Term.Text))
		}
	}

	names := make([]string, 0, len(weight))
	for name := range weight {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if weight[names[i]] == weight[names[j]] {
			return names[i] < names[j]
		}
		return weight[names[i]] > weight[names[j]]
	})

	if len(names) == 0 {
		return "The strongest signals were " + joinAnd(examples) + "."
	}
	return "It detected " + joinAnd(names) + ", for example " + joinAnd(examples) + "."
}

func joinAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}
