package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// IndexClient queries a chroma-style vector index over HTTP. The index is
// populated out-of-band by the ingestion script; this client only issues
// nearest-neighbor queries.
type IndexClient struct {
	baseURL    string
	collection string
	timeout    time.Duration
	client     *http.Client
}

func NewIndexClient(baseURL, collection string, timeout time.Duration) *IndexClient {
	if collection == "" {
		collection = "travel_knowledge"
	}
	return &IndexClient{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		collection: collection,
		timeout:    timeout,
		client:     &http.Client{},
	}
}

type queryRequest struct {
	QueryTexts []string `json:"query_texts"`
	NResults   int      `json:"n_results"`
}

type queryResponse struct {
	Documents [][]string  `json:"documents"`
	Distances [][]float64 `json:"distances"`
}

func (c *IndexClient) Retrieve(ctx context.Context, query string, k int) ([]Passage, error) {
	if k <= 0 {
		k = 5
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(queryRequest{QueryTexts: []string{query}, NResults: k})
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/collections/%s/query", c.baseURL, c.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 1<<10))
		return nil, fmt.Errorf("index status %d: %s", res.StatusCode, string(body))
	}

	var out queryResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode index response: %w", err)
	}
	if len(out.Documents) == 0 {
		return nil, nil
	}

	docs := out.Documents[0]
	var dists []float64
	if len(out.Distances) > 0 {
		dists = out.Distances[0]
	}
	passages := make([]Passage, 0, len(docs))
	for i, text := range docs {
		if strings.TrimSpace(text) == "" {
			continue
		}
		p := Passage{Text: text, Rank: len(passages)}
		if i < len(dists) {
			p.Score = dists[i]
		}
		passages = append(passages, p)
	}
	return passages, nil
}
