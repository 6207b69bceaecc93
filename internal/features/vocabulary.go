// Package features turns normalized text into TF-IDF vectors over a fixed,
// pre-fitted vocabulary of unigrams and bigrams.
package features

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Term is one vocabulary entry. Cue and Display annotate the term for
// explanations and play no part in the vector itself.
type Term struct {
	Text    string
	IDF     float64
	Cue     string
	Display string
}

// Settings mirror the vectorizer configuration used at training time.
type Settings struct {
	MinN           int
	MaxN           int
	SublinearTF    bool
	L2Norm         bool
	StopWords      bool
	MinTokenLength int
}

// DefaultSettings matches the training pipeline defaults.
func DefaultSettings() Settings {
	return Settings{
		MinN:           1,
		MaxN:           2,
		SublinearTF:    true,
		L2Norm:         true,
		StopWords:      true,
		MinTokenLength: 2,
	}
}

// Vocabulary maps n-grams to fixed vector positions. It is immutable after
// construction and safe for concurrent use.
type Vocabulary struct {
	terms    []Term
	index    map[string]int
	settings Settings
}

var ErrEmptyVocabulary = errors.New("vocabulary is empty")

// NewVocabulary builds a vocabulary; term order defines vector indices.
func NewVocabulary(terms []Term, settings Settings) (*Vocabulary, error) {
	if len(terms) == 0 {
		return nil, ErrEmptyVocabulary
	}
	if settings.MinN < 1 || settings.MaxN < settings.MinN || settings.MaxN > 2 {
		return nil, fmt.Errorf("unsupported n-gram range [%d,%d]", settings.MinN, settings.MaxN)
	}
	if settings.MinTokenLength < 1 {
		settings.MinTokenLength = 1
	}

	index := make(map[string]int, len(terms))
	owned := make([]Term, len(terms))
	for i, t := range terms {
		text := strings.TrimSpace(t.Text)
		if text == "" {
			return nil, fmt.Errorf("term %d is empty", i)
		}
		if _, dup := index[text]; dup {
			return nil, fmt.Errorf("duplicate term %q", text)
		}
		if t.IDF <= 0 || math.IsNaN(t.IDF) || math.IsInf(t.IDF, 0) {
			return nil, fmt.Errorf("term %q has invalid idf %v", text, t.IDF)
		}
		t.Text = text
		owned[i] = t
		index[text] = i
	}

	return &Vocabulary{terms: owned, index: index, settings: settings}, nil
}

// Len returns the vector dimensionality.
func (v *Vocabulary) Len() int {
	return len(v.terms)
}

// Term returns the entry at index i.
func (v *Vocabulary) Term(i int) Term {
	return v.terms[i]
}

// Lookup returns the index of an n-gram.
func (v *Vocabulary) Lookup(ngram string) (int, bool) {
	i, ok := v.index[ngram]
	return i, ok
}

// Settings returns the vectorizer configuration.
func (v *Vocabulary) Settings() Settings {
	return v.settings
}
