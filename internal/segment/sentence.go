package segment

import (
	"regexp"
	"strings"
)

// sentenceRe matches sentence-like units terminated by sentence punctuation
// (including the Arabic question mark and ellipsis) or end of input.
var sentenceRe = regexp.MustCompile(`[^.!?؟…]+(?:[.!?؟…]+|$)`)

// SplitSentences splits text into trimmed sentence-like units.
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	var sentences []string
	for _, m := range sentenceRe.FindAllString(text, -1) {
		if s := strings.TrimSpace(m); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// MergeShort glues sentences shorter than minWords onto a running buffer so
// tiny fragments ("Да.", "Ну вот.") do not each claim a speech window.
func MergeShort(sentences []string, minWords int) []string {
	if minWords <= 1 {
		return sentences
	}
	var out []string
	var buf string

	for _, s := range sentences {
		if countWords(s) < minWords {
			buf += " " + s
			continue
		}
		if strings.TrimSpace(buf) != "" {
			out = append(out, strings.TrimSpace(buf))
			buf = ""
		}
		out = append(out, s)
	}
	if strings.TrimSpace(buf) != "" {
		out = append(out, strings.TrimSpace(buf))
	}
	return out
}

// SplitLong breaks sentences longer than maxWords into word-bounded pieces,
// keeping any one synthesis unit within a speakable length.
func SplitLong(sentences []string, maxWords int) []string {
	if maxWords <= 0 {
		return sentences
	}
	var out []string
	for _, s := range sentences {
		words := strings.Fields(s)
		if len(words) <= maxWords {
			out = append(out, s)
			continue
		}
		for i := 0; i < len(words); i += maxWords {
			end := min(i+maxWords, len(words))
			out = append(out, strings.Join(words[i:end], " "))
		}
	}
	return out
}

// countWords counts whitespace-separated words.
func countWords(s string) int {
	return len(strings.Fields(s))
}
