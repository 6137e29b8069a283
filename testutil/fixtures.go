package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// FakeBotID is the id the fake API assigns to created bots
const FakeBotID = "bot-1"

// RecordedRequest is one call received by a FakeAPI
type RecordedRequest struct {
	Method string
	Path   string
	Body   []byte
	Values url.Values
	Files  []string
}

type cannedResponse struct {
	status int
	body   string
}

// FakeAPI serves the query and bot endpoints with canned answers and
// records every request
type FakeAPI struct {
	URL string

	mu        sync.Mutex
	requests  []RecordedRequest
	overrides map[string]cannedResponse
}

// NewFakeAPI starts a fake API server stopped when the test ends.
// By default /query and /api/chat answer "Stub answer", and the bot
// endpoints echo the submitted form.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()
	f := &FakeAPI{overrides: make(map[string]cannedResponse)}

	r := chi.NewRouter()
	r.Get("/", f.handle(func(w http.ResponseWriter, _ RecordedRequest) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "fake"})
	}))
	r.Get("/health", f.handle(func(w http.ResponseWriter, _ RecordedRequest) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}))
	r.Post("/query", f.handle(func(w http.ResponseWriter, _ RecordedRequest) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"llm_response": "Stub answer",
			"results":      []string{"Auth section"},
			"metadata":     map[string]interface{}{"total_results": 1},
		})
	}))
	r.Post("/api/chat", f.handle(func(w http.ResponseWriter, _ RecordedRequest) {
		writeJSON(w, http.StatusOK, map[string]string{"response": "Stub answer"})
	}))
	r.Post("/api/create-bot", f.handle(echoBot))
	r.Put("/api/update-bot", f.handle(echoBot))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	f.URL = srv.URL
	return f
}

// Respond makes method+path answer with status and body from now on
func (f *FakeAPI) Respond(method, path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overrides[method+" "+path] = cannedResponse{status: status, body: body}
}

// Requests returns the requests received so far
func (f *FakeAPI) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RecordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

// Count returns how many requests hit path
func (f *FakeAPI) Count(path string) int {
	n := 0
	for _, req := range f.Requests() {
		if req.Path == path {
			n++
		}
	}
	return n
}

func (f *FakeAPI) handle(fallback func(http.ResponseWriter, RecordedRequest)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := RecordedRequest{Method: r.Method, Path: r.URL.Path}
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
			if err := r.ParseMultipartForm(10 << 20); err == nil {
				rec.Values = r.MultipartForm.Value
				for _, fh := range r.MultipartForm.File["documents"] {
					rec.Files = append(rec.Files, fh.Filename)
				}
			}
		} else if r.Body != nil {
			rec.Body, _ = io.ReadAll(r.Body)
		}

		f.mu.Lock()
		f.requests = append(f.requests, rec)
		canned, ok := f.overrides[r.Method+" "+r.URL.Path]
		f.mu.Unlock()

		if ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(canned.status)
			_, _ = io.WriteString(w, canned.body)
			return
		}
		fallback(w, rec)
	}
}

func echoBot(w http.ResponseWriter, rec RecordedRequest) {
	id := FakeBotID
	if ids := rec.Values["botId"]; len(ids) > 0 && ids[0] != "" {
		id = ids[0]
	}
	name := ""
	if names := rec.Values["name"]; len(names) > 0 {
		name = names[0]
	}
	docs := append([]string{}, rec.Values["documents"]...)
	docs = append(docs, rec.Files...)
	urls := append([]string{}, rec.Values["urls"]...)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":        id,
		"name":      name,
		"documents": docs,
		"urls":      urls,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
