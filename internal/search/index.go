// Package search indexes question history for keyword search. Questions are
// segmented with gse and scored with BM25; the store's LIKE search remains
// the fallback when the index is empty or not yet built.
package search

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/go-ego/gse"
	bm25 "github.com/iwilltry42/bm25-go/bm25"

	"github.com/zzy/curiosity-engine-go/internal/storage"
)

// Result is a scored match from the question index.
type Result struct {
	Question storage.Question
	Score    float64
	Rank     int // 1-indexed by descending score
}

// Index provides BM25 search over stored questions. The whole index is
// rebuilt on data changes; history sizes here make that cheap, and BM25
// needs the full corpus for IDF anyway.
type Index struct {
	mu    sync.RWMutex
	seg   gse.Segmenter
	okapi *bm25.BM25Okapi
	docs  []storage.Question
}

// NewIndex creates an empty index with the default segmenter dictionary.
func NewIndex() (*Index, error) {
	idx := &Index{}
	if err := idx.seg.LoadDict(); err != nil {
		return nil, fmt.Errorf("load segmenter dictionary: %w", err)
	}
	return idx, nil
}

// Rebuild replaces the index contents with the given questions.
func (idx *Index) Rebuild(questions []storage.Question) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.docs = nil
	idx.okapi = nil

	var corpus []string
	var docs []storage.Question
	for _, q := range questions {
		if strings.TrimSpace(q.Content) == "" {
			continue
		}
		corpus = append(corpus, q.Content)
		docs = append(docs, q)
	}
	if len(corpus) == 0 {
		return nil
	}

	// k1=1.5, b=0.75 are standard BM25 parameters
	okapi, err := bm25.NewBM25Okapi(corpus, idx.tokenize, 1.5, 0.75, nil)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	idx.okapi = okapi
	idx.docs = docs
	return nil
}

// Size returns the number of indexed questions.
func (idx *Index) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.docs)
}

// Search returns up to topN questions ranked by BM25 score. An empty query
// or an empty index yields no results and no error.
func (idx *Index) Search(query string, topN int) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.okapi == nil {
		return nil, nil
	}

	tokens := idx.tokenize(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	scores, err := idx.okapi.GetScores(tokens)
	if err != nil {
		return nil, fmt.Errorf("score query: %w", err)
	}

	var results []Result
	for docID, score := range scores {
		if score > 0 && docID < len(idx.docs) {
			results = append(results, Result{Question: idx.docs[docID], Score: score})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topN > 0 && len(results) > topN {
		results = results[:topN]
	}
	for i := range results {
		results[i].Rank = i + 1
	}
	return results, nil
}

// tokenize segments text into searchable tokens, dropping whitespace and
// pure punctuation.
func (idx *Index) tokenize(text string) []string {
	var tokens []string
	for _, token := range idx.seg.CutSearch(text, true) {
		token = strings.TrimSpace(token)
		if token == "" || isPunctuation(token) {
			continue
		}
		tokens = append(tokens, strings.ToLower(token))
	}
	return tokens
}

func isPunctuation(token string) bool {
	for _, r := range token {
		if !unicode.IsPunct(r) && !unicode.IsSymbol(r) {
			return false
		}
	}
	return true
}
