package retrieval

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestIndexClientRetrievePreservesRankOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/collections/travel_knowledge/query" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req queryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.NResults != 3 {
			t.Errorf("n_results = %d, want 3", req.NResults)
		}
		_, _ = w.Write([]byte(`{"documents":[["first passage","second passage","third passage"]],"distances":[[0.1,0.4,0.9]]}`))
	}))
	defer srv.Close()

	c := NewIndexClient(srv.URL, "", time.Second)
	got, err := c.Retrieve(context.Background(), "paris museums", 3)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Text != "first passage" || got[0].Rank != 0 || got[0].Score != 0.1 {
		t.Fatalf("got[0] = %+v", got[0])
	}
	if got[2].Rank != 2 {
		t.Fatalf("got[2].Rank = %d, want 2", got[2].Rank)
	}
}

func TestIndexClientRetrieveErrorOnBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "index offline", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewIndexClient(srv.URL, "kb", time.Second)
	got, err := c.Retrieve(context.Background(), "anything", 5)
	if err == nil {
		t.Fatalf("Retrieve() error = nil, want error")
	}
	if len(got) != 0 {
		t.Fatalf("len = %d, want 0 on failure", len(got))
	}
}

func TestIndexClientSkipsEmptyDocuments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"documents":[["keep","  ","also keep"]],"distances":[[0.1,0.2,0.3]]}`))
	}))
	defer srv.Close()

	c := NewIndexClient(srv.URL, "kb", time.Second)
	got, err := c.Retrieve(context.Background(), "q", 5)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(got) != 2 || got[1].Text != "also keep" || got[1].Rank != 1 {
		t.Fatalf("got = %+v", got)
	}
}
