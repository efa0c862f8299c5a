// Package server serves the persisted games table over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gamefeatures/internal/store"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultLimit     = 10
	searchMinChars   = 2
	DefaultCacheSize = 1024
	cacheTTL         = 10 * time.Minute
)

// Games is the read side the handlers need.
type Games interface {
	List(ctx context.Context, limit, offset int) ([]map[string]any, error)
	Get(ctx context.Context, id int64) (map[string]any, error)
	Count(ctx context.Context) (int, error)
	IDs(ctx context.Context, limit, offset int) ([]int64, error)
	Search(ctx context.Context, query string, limit, offset int) (int, []map[string]any, error)
}

// Options tune a Server. Zero values pick the defaults.
type Options struct {
	CacheSize        int
	SitemapChunkSize int
}

type Server struct {
	games     Games
	cache     *expirable.LRU[int64, map[string]any]
	chunkSize int
}

func New(games Games, opts Options) *Server {
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	return &Server{
		games:     games,
		cache:     expirable.NewLRU[int64, map[string]any](opts.CacheSize, nil, cacheTTL),
		chunkSize: clampChunkSize(opts.SitemapChunkSize),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /{$}", s.home)
	mux.HandleFunc("GET /games", s.listGames)
	mux.HandleFunc("GET /games/{rawg_id}", s.getGame)
	mux.HandleFunc("GET /search", s.search)
	mux.HandleFunc("GET /sitemap.xml", s.sitemapIndex)
	mux.HandleFunc("GET /sitemaps/{page}", s.sitemapPage)
	return withRequestLog(mux)
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Video Games API",
		"endpoints": map[string]string{
			"/games":           "List games (pagination)",
			"/games/<rawg_id>": "Game details",
			"/search?q=":       "Search games by name, genre, developer or publisher",
		},
	})
}

func (s *Server) listGames(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseIntQueryParam(r, "limit", DefaultLimit)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	offset, ok := parseIntQueryParam(r, "offset", 0)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid offset")
		return
	}
	games, err := s.games.List(r.Context(), limit, offset)
	if err != nil {
		slog.ErrorContext(r.Context(), "list games", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(games),
		"results": games,
	})
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if len([]rune(q)) < searchMinChars {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("query must be at least %d characters", searchMinChars))
		return
	}
	limit, ok := parseIntQueryParam(r, "limit", DefaultLimit)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	offset, ok := parseIntQueryParam(r, "offset", 0)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid offset")
		return
	}
	total, items, err := s.games.Search(r.Context(), q, limit, offset)
	if err != nil {
		slog.ErrorContext(r.Context(), "search games", "q", q, "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":   q,
		"total":   total,
		"count":   len(items),
		"results": items,
	})
}

func (s *Server) getGame(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("rawg_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Game not found")
		return
	}
	if game, hit := s.cache.Get(id); hit {
		writeJSON(w, http.StatusOK, game)
		return
	}
	game, err := s.games.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Game not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "get game", "rawg_id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.cache.Add(id, game)
	writeJSON(w, http.StatusOK, game)
}

func parseIntQueryParam(r *http.Request, key string, fallback int) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		slog.Error("encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		slog.Info("request",
			"id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"took", time.Since(start),
		)
	})
}
