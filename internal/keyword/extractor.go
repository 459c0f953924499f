// Package keyword extracts candidate topic keywords from a question string.
// It is a pure function pipeline: strip interrogative markers, split on
// punctuation, drop stop words, merge stray single characters into
// two-character phrases, and rank the survivors by length.
package keyword

import (
	"sort"
	"strings"

	"golang.org/x/text/width"
)

// MaxKeywords is the maximum number of keywords returned by Extract.
const MaxKeywords = 5

// Extractor extracts keywords using a fixed language pack.
type Extractor struct {
	lang Language
}

// NewExtractor creates an extractor for the given language.
func NewExtractor(lang Language) *Extractor {
	return &Extractor{lang: lang}
}

// Extract returns up to MaxKeywords candidate keywords from the question,
// longest first. Ties keep first-seen order, so the result is stable for
// identical input. Returns an empty slice when nothing survives filtering;
// callers substitute generic placeholder terms in that case.
func (e *Extractor) Extract(question string) []string {
	// Fold full-width ASCII variants so "ＡＢＣ？" splits like "ABC?".
	processed := width.Fold.String(question)

	for _, w := range e.lang.QuestionWords {
		processed = strings.ReplaceAll(processed, w, " ")
	}

	fragments := e.split(processed)

	var (
		multi   []string
		singles []string
	)
	for _, f := range fragments {
		if runeLen(f) > 1 {
			if !e.containsStopWord(f) {
				multi = append(multi, f)
			}
			continue
		}
		if !e.isStopWord(f) {
			singles = append(singles, f)
		}
	}

	// Merge adjacent stray single characters into two-character phrases.
	var phrases []string
	for i := 0; i+1 < len(singles); i++ {
		phrases = append(phrases, singles[i]+singles[i+1])
	}

	candidates := dedupe(append(multi, phrases...))

	// Longest first; sort.SliceStable keeps encounter order for equal lengths.
	sort.SliceStable(candidates, func(i, j int) bool {
		return runeLen(candidates[i]) > runeLen(candidates[j])
	})

	if len(candidates) > MaxKeywords {
		candidates = candidates[:MaxKeywords]
	}
	return candidates
}

// split breaks text on spaces and the language's punctuation set, trimming
// and discarding empty fragments.
func (e *Extractor) split(text string) []string {
	isSplitter := func(r rune) bool {
		for _, s := range e.lang.Splitters {
			if r == s {
				return true
			}
		}
		return false
	}

	var fragments []string
	for _, f := range strings.FieldsFunc(text, isSplitter) {
		f = strings.TrimSpace(f)
		if f != "" {
			fragments = append(fragments, f)
		}
	}
	return fragments
}

func (e *Extractor) containsStopWord(fragment string) bool {
	for _, sw := range e.lang.StopWords {
		if strings.Contains(fragment, sw) {
			return true
		}
	}
	return false
}

func (e *Extractor) isStopWord(fragment string) bool {
	for _, sw := range e.lang.StopWords {
		if fragment == sw {
			return true
		}
	}
	return false
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			result = append(result, item)
		}
	}
	return result
}

func runeLen(s string) int {
	return len([]rune(s))
}
