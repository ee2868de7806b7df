package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// PageServer serves canned HTML pages by request path and records hits.
type PageServer struct {
	*httptest.Server

	mu    sync.Mutex
	pages map[string]string
	hits  map[string]int
}

// NewPageServer starts a server for pages keyed by URL path. Unknown paths
// return 404. The server is closed when the test completes.
func NewPageServer(t *testing.T, pages map[string]string) *PageServer {
	t.Helper()

	ps := &PageServer{pages: pages, hits: make(map[string]int)}
	ps.Server = httptest.NewServer(http.HandlerFunc(ps.serve))
	t.Cleanup(ps.Close)
	return ps
}

func (ps *PageServer) serve(w http.ResponseWriter, r *http.Request) {
	ps.mu.Lock()
	ps.hits[r.URL.Path]++
	body, ok := ps.pages[r.URL.Path]
	ps.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(body))
}

// Hits reports how many times path was requested.
func (ps *PageServer) Hits(path string) int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.hits[path]
}
