package features

import (
	"strings"
	"unicode/utf8"
)

// Tokenize splits normalized text into sentences of kept tokens. A token
// ending in "." closes its sentence. Short tokens and, when enabled, stop
// words are dropped before n-grams are formed.
func Tokenize(normalized string, s Settings) [][]string {
	var (
		sentences [][]string
		current   []string
	)
	flush := func() {
		if len(current) > 0 {
			sentences = append(sentences, current)
			current = nil
		}
	}

	for _, tok := range strings.Fields(normalized) {
		end := strings.HasSuffix(tok, ".")
		tok = strings.TrimRight(tok, ".")
		if utf8.RuneCountInString(tok) >= s.MinTokenLength && !(s.StopWords && IsStopWord(tok)) {
			current = append(current, tok)
		}
		if end {
			flush()
		}
	}
	flush()
	return sentences
}

// NGrams lists every n-gram with minN <= n <= maxN inside each sentence,
// unigrams first.
func NGrams(sentences [][]string, minN, maxN int) []string {
	var out []string
	for n := minN; n <= maxN; n++ {
		for _, sent := range sentences {
			for i := 0; i+n <= len(sent); i++ {
				out = append(out, strings.Join(sent[i:i+n], " "))
			}
		}
	}
	return out
}
