package processing

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var urlRegex = regexp.MustCompile(`(?i)(?:https?://|www\.)[^\s]+`)

// Bare domains like "example.com/path" without a scheme.
var bareDomainRegex = regexp.MustCompile(
	`(?i)\b[\p{L}\p{N}-]+(?:\.[\p{L}\p{N}-]+)*\.(?:com|org|net|gov|edu|info|biz|news|io|co|uk|us|ru|de|ly|me|tv)\b(?:/[^\s]*)?`,
)

var mentionRegex = regexp.MustCompile(`@\w+`)

// RemoveURLs replaces every URL and bare domain in the input with a space.
func RemoveURLs(input string) string {
	out := urlRegex.ReplaceAllString(input, " ")
	return bareDomainRegex.ReplaceAllString(out, " ")
}

// Normalize canonicalizes raw text for feature extraction: accents folded,
// lowercased, URLs and mentions removed, punctuation dropped and whitespace
// collapsed. A run of sentence terminators at the end of a chunk survives as a
// single "." glued to the preceding word so bigrams never span sentences.
//
// Normalize is idempotent. It returns "" when nothing analyzable is left.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	text := foldAccents(strings.ToLower(raw))
	text = RemoveURLs(text)
	text = mentionRegex.ReplaceAllString(text, " ")

	var b strings.Builder
	b.Grow(len(text))
	dotted := false
	for _, chunk := range strings.Fields(text) {
		for _, word := range splitWords(chunk) {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(word)
			dotted = false
		}
		if endsSentence(chunk) && b.Len() > 0 && !dotted {
			b.WriteByte('.')
			dotted = true
		}
	}
	return b.String()
}

func foldAccents(s string) string {
	// transform.Chain keeps state, so it is built per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.Is(unicode.M, r)
}

func splitWords(chunk string) []string {
	return strings.FieldsFunc(chunk, func(r rune) bool { return !isWordRune(r) })
}

func endsSentence(chunk string) bool {
	trimmed := strings.TrimRightFunc(chunk, func(r rune) bool {
		return strings.ContainsRune("\"')]}»”’", r)
	})
	if trimmed == "" {
		return false
	}
	last, _ := utf8.DecodeLastRuneInString(trimmed)
	return last == '.' || last == '!' || last == '?' || last == '…'
}
