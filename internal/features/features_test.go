package features_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/fake-news-detector/backend/internal/features"
)

func testVocabulary(t *testing.T, s features.Settings) *features.Vocabulary {
	t.Helper()
	v, err := features.NewVocabulary([]features.Term{
		{Text: "miracle", IDF: 2},
		{Text: "cure", IDF: 1},
		{Text: "miracle cure", IDF: 4},
		{Text: "doctors", IDF: 1.5},
		{Text: "feat_many_exclamations", IDF: 3},
		{Text: "cure doctors", IDF: 5},
	}, s)
	require.NoError(t, err)
	return v
}

func TestTokenize(t *testing.T) {
	s := features.DefaultSettings()
	got := features.Tokenize("the miracle cure. a doctors said x. ok", s)
	require.Equal(t, [][]string{{"miracle", "cure"}, {"doctors", "said"}, {"ok"}}, got)

	s.StopWords = false
	got = features.Tokenize("the miracle", s)
	require.Equal(t, [][]string{{"the", "miracle"}}, got)
}

func TestNGrams(t *testing.T) {
	got := features.NGrams([][]string{{"a1", "b1", "c1"}, {"d1"}}, 1, 2)
	require.Equal(t, []string{"a1", "b1", "c1", "d1", "a1 b1", "b1 c1"}, got)
}

func TestExtractWeightsAndNormalizes(t *testing.T) {
	v := testVocabulary(t, features.DefaultSettings())

	vec := v.Extract("miracle cure miracle. doctors")
	require.Equal(t, 6, vec.Dim)
	require.Equal(t, []int{0, 1, 2, 3}, vec.Indices)
	require.InDelta(t, 1.0, vec.Norm(), 1e-12)

	// sublinear tf: "miracle" appears twice
	raw := []float64{(1 + math.Log(2)) * 2, 1, 4, 1.5}
	norm := 0.0
	for _, x := range raw {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	for k, x := range raw {
		require.InDelta(t, x/norm, vec.Values[k], 1e-12)
	}
}

func TestExtractBigramsStopAtSentenceBoundary(t *testing.T) {
	v := testVocabulary(t, features.DefaultSettings())

	joined := v.Extract("cure doctors")
	_, ok := v.Lookup("cure doctors")
	require.True(t, ok)
	require.Contains(t, joined.Indices, 5)

	split := v.Extract("cure. doctors")
	require.NotContains(t, split.Indices, 5)
}

func TestExtractMarkersAndUnknownTerms(t *testing.T) {
	s := features.DefaultSettings()
	s.L2Norm = false
	v := testVocabulary(t, s)

	vec := v.Extract("completely unrelated words", "feat_many_exclamations", "feat_unknown")
	require.Equal(t, []int{4}, vec.Indices)
	require.Equal(t, []float64{3}, vec.Values)

	empty := v.Extract("nothing here matches")
	require.True(t, empty.IsZero())
	require.Equal(t, 6, empty.Dim)
	require.Equal(t, make([]float64, 6), empty.Dense())
}

func TestExtractDeterministic(t *testing.T) {
	v := testVocabulary(t, features.DefaultSettings())
	text := "doctors miracle cure doctors. cure miracle miracle cure doctors"

	first := v.Extract(text, "feat_many_exclamations")
	for i := 0; i < 20; i++ {
		require.Equal(t, first, v.Extract(text, "feat_many_exclamations"))
	}
}

func TestNewVocabularyValidation(t *testing.T) {
	s := features.DefaultSettings()

	_, err := features.NewVocabulary(nil, s)
	require.ErrorIs(t, err, features.ErrEmptyVocabulary)

	_, err = features.NewVocabulary([]features.Term{{Text: "a1", IDF: 1}, {Text: "a1", IDF: 2}}, s)
	require.ErrorContains(t, err, "duplicate")

	_, err = features.NewVocabulary([]features.Term{{Text: "a1", IDF: 0}}, s)
	require.ErrorContains(t, err, "invalid idf")

	bad := s
	bad.MaxN = 3
	_, err = features.NewVocabulary([]features.Term{{Text: "a1", IDF: 1}}, bad)
	require.Error(t, err)
}

func TestIsStopWord(t *testing.T) {
	require.True(t, features.IsStopWord("the"))
	require.True(t, features.IsStopWord("everyone"))
	require.False(t, features.IsStopWord("miracle"))
}
