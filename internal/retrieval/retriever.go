package retrieval

import "context"

// Passage is one retrieved reference fragment. Rank preserves the index's
// relevance ordering (0 = most relevant); Score is the index's own measure.
type Passage struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}

// Retriever exposes the semantic document index as an opaque nearest
// neighbor lookup. A failing index yields an error alongside an empty
// slice; the caller degrades to live-data-only grounding.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]Passage, error)
}

// Static is a fixed-result retriever for tests and for running without an
// index configured.
type Static struct {
	Passages []Passage
	Err      error
}

func (s *Static) Retrieve(_ context.Context, _ string, k int) ([]Passage, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if k > 0 && k < len(s.Passages) {
		return s.Passages[:k], nil
	}
	return s.Passages, nil
}
