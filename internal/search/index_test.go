package search

import (
	"testing"

	"github.com/zzy/curiosity-engine-go/internal/storage"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewIndex()
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	return idx
}

func testQuestions() []storage.Question {
	return []storage.Question{
		{ID: 1, Content: "为什么恐龙会灭绝？"},
		{ID: 2, Content: "恐龙吃什么食物？"},
		{ID: 3, Content: "月亮为什么会有圆缺变化？"},
		{ID: 4, Content: "彩虹是怎么形成的？"},
	}
}

func TestSearchRanksMatchesFirst(t *testing.T) {
	t.Parallel()

	idx := newTestIndex(t)
	if err := idx.Rebuild(testQuestions()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	results, err := idx.Search("恐龙", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("no results for an indexed term")
	}

	for i, r := range results {
		if r.Rank != i+1 {
			t.Errorf("result %d has Rank %d", i, r.Rank)
		}
		if i > 0 && results[i-1].Score < r.Score {
			t.Errorf("results not sorted by descending score: %v", results)
		}
	}

	// Both dinosaur questions score, the moon question does not.
	ids := make(map[int64]bool)
	for _, r := range results {
		ids[r.Question.ID] = true
	}
	if !ids[1] || !ids[2] {
		t.Errorf("dinosaur questions missing from results: %v", ids)
	}
	if ids[3] {
		t.Error("unrelated question matched")
	}
}

func TestSearchTopN(t *testing.T) {
	t.Parallel()

	idx := newTestIndex(t)
	if err := idx.Rebuild(testQuestions()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	results, err := idx.Search("恐龙", 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("got %d results, want 1", len(results))
	}
}

func TestSearchEmptyQueryAndIndex(t *testing.T) {
	t.Parallel()

	idx := newTestIndex(t)

	// Empty index
	results, err := idx.Search("恐龙", 10)
	if err != nil || results != nil {
		t.Errorf("empty index: results = %v, err = %v", results, err)
	}

	if err := idx.Rebuild(testQuestions()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	// Empty and punctuation-only queries
	for _, query := range []string{"", "   ", "？？？"} {
		results, err := idx.Search(query, 10)
		if err != nil || results != nil {
			t.Errorf("query %q: results = %v, err = %v", query, results, err)
		}
	}
}

func TestRebuildSkipsBlankQuestions(t *testing.T) {
	t.Parallel()

	idx := newTestIndex(t)
	questions := append(testQuestions(), storage.Question{ID: 5, Content: "   "})
	if err := idx.Rebuild(questions); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if got := idx.Size(); got != 4 {
		t.Errorf("Size = %d, want 4", got)
	}
}

func TestRebuildReplacesContents(t *testing.T) {
	t.Parallel()

	idx := newTestIndex(t)
	if err := idx.Rebuild(testQuestions()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if err := idx.Rebuild([]storage.Question{{ID: 9, Content: "星星为什么会眨眼？"}}); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	if got := idx.Size(); got != 1 {
		t.Errorf("Size = %d, want 1", got)
	}
	results, err := idx.Search("恐龙", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("stale documents still match: %v", results)
	}
}
