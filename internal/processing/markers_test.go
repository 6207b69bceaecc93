package processing_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/fake-news-detector/backend/internal/processing"
)

func TestStyleMarkers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "  ", want: nil},
		{name: "calm", input: "The committee met on Tuesday to review the annual budget.", want: nil},
		{
			name:  "headline",
			input: "BREAKING: Scientists discover miracle cure! Doctors SHOCKED by this one weird trick!",
			want: []string{
				processing.MarkerManyExclamations,
				processing.MarkerHighCaps,
				processing.MarkerCapsPhrases,
			},
		},
		{
			name:  "vague source",
			input: "Wake up people, they don't want you to know this.",
			want:  []string{processing.MarkerVagueSource},
		},
		{
			name:  "shouting",
			input: "SHARE THIS NOW!!! BREAKING ALERT!!! Is it true??",
			want: []string{
				processing.MarkerManyExclamations,
				processing.MarkerExtremeExclamations,
				processing.MarkerHighCaps,
				processing.MarkerExtremeCaps,
				processing.MarkerManyCapsWords,
				processing.MarkerCapsPhrases,
				processing.MarkerManyQuestions,
				processing.MarkerHeavyPunctuation,
				processing.MarkerHighUrgency,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, processing.StyleMarkers(tt.input))
		})
	}
}
