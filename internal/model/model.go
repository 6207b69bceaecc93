// Package model loads the fitted vocabulary and classifier weights produced by
// offline training. A loaded Model is immutable and shared by all requests.
package model

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/DeafMist/fake-news-detector/backend/internal/classifier"
	"github.com/DeafMist/fake-news-detector/backend/internal/features"
)

// Embedded artifact metadata used for checksum and loading validation.
const (
	EmbeddedArtifactPath   = "data/tfidf-logreg-v3.json"
	EmbeddedArtifactSHA256 = "1e45f9d31acec524a09e4b6700b2d2d9a0a795615125e18e4e424cad877f1460"
)

//go:embed data/tfidf-logreg-v3.json
var embeddedArtifact []byte

// ErrUnavailable wraps every failure to produce a usable model.
var ErrUnavailable = errors.New("model unavailable")

type artifact struct {
	ModelID       string     `json:"model_id"`
	Version       string     `json:"version"`
	PositiveLabel string     `json:"positive_label"`
	Vectorizer    vectorizer `json:"vectorizer"`
	Intercept     float64    `json:"intercept"`
	Features      []feature  `json:"features"`
}

type vectorizer struct {
	NGramRange     []int  `json:"ngram_range"`
	SublinearTF    bool   `json:"sublinear_tf"`
	Norm           string `json:"norm"`
	StopWords      string `json:"stop_words"`
	MinTokenLength int    `json:"min_token_length"`
}

type feature struct {
	Term    string  `json:"term"`
	IDF     float64 `json:"idf"`
	Coef    float64 `json:"coef"`
	Cue     string  `json:"cue,omitempty"`
	Display string  `json:"display,omitempty"`
}

// Model bundles the vocabulary/IDF table with the classifier weights.
type Model struct {
	ID         string
	Version    string
	Vocabulary *features.Vocabulary
	Weights    *classifier.Weights
}

// Load reads the artifact at path, or the embedded artifact when path is empty.
func Load(path string) (*Model, error) {
	if strings.TrimSpace(path) == "" {
		return LoadEmbedded()
	}
	return LoadFile(path)
}

// LoadEmbedded loads and verifies the embedded model artifact.
func LoadEmbedded() (*Model, error) {
	sum := sha256.Sum256(embeddedArtifact)
	got := hex.EncodeToString(sum[:])
	if got != EmbeddedArtifactSHA256 {
		return nil, fmt.Errorf(
			"%w: embedded artifact checksum mismatch: got %s want %s",
			ErrUnavailable, got, EmbeddedArtifactSHA256,
		)
	}
	return Parse(embeddedArtifact)
}

// LoadFile loads an artifact from disk.
func LoadFile(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrUnavailable, path, err)
	}
	return Parse(data)
}

// Parse decodes and validates artifact bytes.
func Parse(data []byte) (*Model, error) {
	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: decode artifact: %w", ErrUnavailable, err)
	}
	if err := validateArtifact(a); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	terms := make([]features.Term, len(a.Features))
	coef := make([]float64, len(a.Features))
	for i, f := range a.Features {
		terms[i] = features.Term{Text: f.Term, IDF: f.IDF, Cue: f.Cue, Display: f.Display}
		coef[i] = f.Coef
	}

	settings := features.DefaultSettings()
	if len(a.Vectorizer.NGramRange) == 2 {
		settings.MinN, settings.MaxN = a.Vectorizer.NGramRange[0], a.Vectorizer.NGramRange[1]
	}
	settings.SublinearTF = a.Vectorizer.SublinearTF
	settings.L2Norm = a.Vectorizer.Norm == "l2"
	settings.StopWords = a.Vectorizer.StopWords == "english"
	if a.Vectorizer.MinTokenLength > 0 {
		settings.MinTokenLength = a.Vectorizer.MinTokenLength
	}

	vocab, err := features.NewVocabulary(terms, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	weights, err := classifier.NewWeights(coef, a.Intercept)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	return &Model{ID: a.ModelID, Version: a.Version, Vocabulary: vocab, Weights: weights}, nil
}

func validateArtifact(a artifact) error {
	if a.ModelID == "" {
		return errors.New("model_id must not be empty")
	}
	if a.Version == "" {
		return errors.New("version must not be empty")
	}
	if a.PositiveLabel != string(classifier.PositiveLabel) {
		return fmt.Errorf("positive_label must be %q, got %q", classifier.PositiveLabel, a.PositiveLabel)
	}
	if n := len(a.Vectorizer.NGramRange); n != 0 && n != 2 {
		return fmt.Errorf("ngram_range must have two entries, got %d", n)
	}
	switch a.Vectorizer.Norm {
	case "", "l2":
	default:
		return fmt.Errorf("unsupported norm %q", a.Vectorizer.Norm)
	}
	switch a.Vectorizer.StopWords {
	case "", "english":
	default:
		return fmt.Errorf("unsupported stop_words %q", a.Vectorizer.StopWords)
	}
	if len(a.Features) == 0 {
		return errors.New("features must not be empty")
	}
	return nil
}

// Features returns the vector dimensionality.
func (m *Model) Features() int {
	return m.Vocabulary.Len()
}
