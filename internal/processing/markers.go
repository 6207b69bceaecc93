package processing

import (
	"regexp"
	"strings"
	"unicode"
)

// Style markers are pseudo-terms describing how a text is written. They are
// computed on the raw input because normalization erases case and punctuation.
const (
	MarkerManyExclamations    = "feat_many_exclamations"
	MarkerExtremeExclamations = "feat_extreme_exclamations"
	MarkerHighCaps            = "feat_high_caps"
	MarkerExtremeCaps         = "feat_extreme_caps"
	MarkerManyCapsWords       = "feat_many_caps_words"
	MarkerCapsPhrases         = "feat_caps_phrases"
	MarkerManyQuestions       = "feat_many_questions"
	MarkerHeavyPunctuation    = "feat_heavy_punctuation"
	MarkerHighUrgency         = "feat_high_urgency"
	MarkerVagueSource         = "feat_vague_source"
)

var capsWordRegex = regexp.MustCompile(`\b[A-Z]{3,}\b`)

var urgencyWords = []string{
	"breaking", "urgent", "alert", "warning", "exposed",
	"leaked", "banned", "shocking", "bombshell",
}

// Matched against normalized text, so apostrophes are already gone.
var vagueSourcePhrases = []string{
	"they don t", "they won t", "they are hiding", "doctors hate",
	"doctors won t", "wake up", "open your eyes", "sheeple",
}

// StyleMarkers returns the style markers present in raw, in a fixed order.
func StyleMarkers(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	exclamations := strings.Count(raw, "!")
	questions := strings.Count(raw, "?")

	total, upper := 0, 0
	for _, r := range raw {
		total++
		if unicode.IsUpper(r) {
			upper++
		}
	}
	capsRatio := float64(upper) / float64(total)

	capsWords := 0
	for _, w := range strings.Fields(raw) {
		if len([]rune(w)) > 2 && isShouted(w) {
			capsWords++
		}
	}

	normalized := Normalize(raw)
	urgency := 0
	for _, w := range urgencyWords {
		if strings.Contains(normalized, w) {
			urgency++
		}
	}

	var markers []string
	if exclamations >= 2 {
		markers = append(markers, MarkerManyExclamations)
	}
	if exclamations >= 5 {
		markers = append(markers, MarkerExtremeExclamations)
	}
	if capsRatio > 0.15 {
		markers = append(markers, MarkerHighCaps)
	}
	if capsRatio > 0.30 {
		markers = append(markers, MarkerExtremeCaps)
	}
	if capsWords >= 3 {
		markers = append(markers, MarkerManyCapsWords)
	}
	if len(capsWordRegex.FindAllStringIndex(raw, 2)) >= 2 {
		markers = append(markers, MarkerCapsPhrases)
	}
	if questions >= 2 {
		markers = append(markers, MarkerManyQuestions)
	}
	if exclamations+questions >= 4 {
		markers = append(markers, MarkerHeavyPunctuation)
	}
	if urgency >= 2 {
		markers = append(markers, MarkerHighUrgency)
	}
	for _, phrase := range vagueSourcePhrases {
		if strings.Contains(normalized, phrase) {
			markers = append(markers, MarkerVagueSource)
			break
		}
	}
	return markers
}

// isShouted reports whether w has cased letters and all of them are upper case.
func isShouted(w string) bool {
	cased := false
	for _, r := range w {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}
