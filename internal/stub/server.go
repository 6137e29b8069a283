// Package stub serves the bot and query HTTP contract from a local SQLite
// database so the front ends can run without the real services.
package stub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/iksnae/anybot/internal"
)

const (
	defaultTopN    = 5
	chatReferences = 3
	maxUploadBytes = 32 << 20
)

// Server answers create, update, chat and query calls
type Server struct {
	store  *BotStore
	index  *Index
	router chi.Router
}

// NewServer builds the router and indexes every stored bot
func NewServer(ctx context.Context, store *BotStore) (*Server, error) {
	s := &Server{store: store, index: NewIndex()}
	if err := s.reindex(ctx); err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Post("/query", s.handleQuery)
	r.Route("/api", func(api chi.Router) {
		api.Post("/create-bot", s.handleCreateBot)
		api.Put("/update-bot", s.handleUpdateBot)
		api.Post("/chat", s.handleChat)
	})
	s.router = r
	return s, nil
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		internal.LogInfo("Stub API listening on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		internal.LogInfo("Stub API shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	}
}

func (s *Server) reindex(ctx context.Context) error {
	ids, err := s.store.IDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		docs, err := s.store.Documents(ctx, id)
		if err != nil {
			return err
		}
		s.index.Set(id, docs)
	}
	internal.LogDebug("Indexed %d bots, %d chunks", len(ids), s.index.Len())
	return nil
}

type queryRequest struct {
	Query string `json:"query"`
	TopN  int    `json:"top_n"`
}

type chatRequest struct {
	BotID string `json:"botId"`
	Query string `json:"query"`
}

type botResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Documents []string `json:"documents"`
	URLs      []string `json:"urls"`
}

func toResponse(bot internal.BotDescriptor) botResponse {
	resp := botResponse{ID: bot.ID, Name: bot.Name, Documents: []string{}, URLs: []string{}}
	for _, doc := range bot.Documents {
		resp.Documents = append(resp.Documents, doc.Name)
	}
	resp.URLs = append(resp.URLs, bot.URLs...)
	return resp
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "anybot stub API is running",
		"endpoints": map[string]string{
			"/query":          "POST search every bot's documents",
			"/health":         "GET check API health",
			"/api/create-bot": "POST create a bot",
			"/api/update-bot": "PUT update a bot",
			"/api/chat":       "POST chat with one bot",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	database := map[string]interface{}{"status": "connected"}
	if n, err := s.store.Count(r.Context()); err != nil {
		status = "warning"
		database = map[string]interface{}{"status": "error", "message": err.Error()}
	} else {
		database["bot_count"] = n
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   status,
		"database": database,
		"index":    map[string]interface{}{"chunk_count": s.index.Len()},
	})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "error", "Invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		respondError(w, http.StatusBadRequest, "error", "No query provided")
		return
	}
	topN := req.TopN
	if topN <= 0 {
		topN = defaultTopN
	}

	results := s.index.SearchAll(req.Query, topN)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"llm_response": FormatAnswer(results),
		"results":      results,
		"metadata": map[string]interface{}{
			"total_results": len(results),
			"top_n":         topN,
		},
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "error", "Invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		respondError(w, http.StatusBadRequest, "error", "No query provided")
		return
	}
	if req.BotID == "" {
		respondError(w, http.StatusBadRequest, "message", "Bot ID is required")
		return
	}
	if _, err := s.store.Get(r.Context(), req.BotID); err != nil {
		s.storeError(w, err)
		return
	}

	chunks := s.index.Search(req.BotID, req.Query, chatReferences)
	respondJSON(w, http.StatusOK, map[string]string{"response": FormatAnswer(chunks)})
}

func (s *Server) handleCreateBot(w http.ResponseWriter, r *http.Request) {
	form, err := parseBotForm(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "message", err.Error())
		return
	}
	if form.name == "" {
		respondError(w, http.StatusBadRequest, "message", internal.MsgNameRequired)
		return
	}

	// Names sent without a file have no content to index but are still recorded.
	docs := form.uploads
	for _, name := range form.kept {
		docs = append(docs, StoredDocument{Name: name})
	}

	bot, err := s.store.Create(r.Context(), form.name, docs, form.urls)
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.index.Set(bot.ID, docs)
	internal.LogInfo("Created bot %s (%s) with %d documents", bot.ID, bot.Name, len(docs))
	respondJSON(w, http.StatusOK, toResponse(bot))
}

func (s *Server) handleUpdateBot(w http.ResponseWriter, r *http.Request) {
	form, err := parseBotForm(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "message", err.Error())
		return
	}
	if form.botID == "" {
		respondError(w, http.StatusBadRequest, "message", "Bot ID is required")
		return
	}
	if form.name == "" {
		respondError(w, http.StatusBadRequest, "message", internal.MsgNameRequired)
		return
	}

	existing, err := s.store.Documents(r.Context(), form.botID)
	if err != nil {
		s.storeError(w, err)
		return
	}
	docs := mergeDocuments(existing, form.kept, form.uploads)

	bot, err := s.store.Update(r.Context(), form.botID, form.name, docs, form.urls)
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.index.Set(bot.ID, docs)
	internal.LogInfo("Updated bot %s (%s) with %d documents", bot.ID, bot.Name, len(docs))
	respondJSON(w, http.StatusOK, toResponse(bot))
}

func (s *Server) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrBotNotFound) {
		respondError(w, http.StatusNotFound, "message", "Bot not found")
		return
	}
	internal.LogError("Stub store failure: %v", err)
	respondError(w, http.StatusInternalServerError, "error", err.Error())
}

type botForm struct {
	name    string
	botID   string
	kept    []string
	uploads []StoredDocument
	urls    []string
}

func parseBotForm(r *http.Request) (*botForm, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, fmt.Errorf("invalid multipart body: %w", err)
	}
	form := &botForm{
		name:  strings.TrimSpace(r.FormValue("name")),
		botID: strings.TrimSpace(r.FormValue("botId")),
	}
	for _, name := range r.MultipartForm.Value["documents"] {
		if name = strings.TrimSpace(name); name != "" {
			form.kept = append(form.kept, name)
		}
	}
	for _, fh := range r.MultipartForm.File["documents"] {
		doc, err := readUpload(fh)
		if err != nil {
			return nil, err
		}
		form.uploads = append(form.uploads, doc)
	}
	for _, u := range r.MultipartForm.Value["urls"] {
		if u = strings.TrimSpace(u); u != "" {
			form.urls = append(form.urls, u)
		}
	}
	return form, nil
}

func readUpload(fh *multipart.FileHeader) (StoredDocument, error) {
	f, err := fh.Open()
	if err != nil {
		return StoredDocument{}, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return StoredDocument{}, fmt.Errorf("failed to read upload %s: %w", fh.Filename, err)
	}
	return StoredDocument{Name: fh.Filename, Content: data}, nil
}

// mergeDocuments keeps the existing documents named in kept, then adds
// uploads. An upload replaces a kept document of the same name.
func mergeDocuments(existing []StoredDocument, kept []string, uploads []StoredDocument) []StoredDocument {
	uploaded := make(map[string]bool, len(uploads))
	for _, doc := range uploads {
		uploaded[doc.Name] = true
	}
	keep := make(map[string]bool, len(kept))
	for _, name := range kept {
		keep[name] = true
	}

	out := make([]StoredDocument, 0, len(kept)+len(uploads))
	for _, doc := range existing {
		if keep[doc.Name] && !uploaded[doc.Name] {
			out = append(out, doc)
		}
	}
	return append(out, uploads...)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		internal.LogWarn("Failed to write response: %v", err)
	}
}

// respondError writes {key: message}. The bot endpoints report under
// "message", the query endpoints under "error".
func respondError(w http.ResponseWriter, status int, key, message string) {
	respondJSON(w, status, map[string]string{key: message})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		internal.LogDebug("%s %s %d %s [%s]", r.Method, r.URL.Path, ww.Status(), time.Since(start), middleware.GetReqID(r.Context()))
	})
}
