// Package proxy serves a same-origin passthrough to the trivia API.
package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// DefaultAddr is the listen address for the proxy.
	DefaultAddr = ":8080"
	// DefaultCacheTTL is how long a category listing is reused.
	DefaultCacheTTL = 10 * time.Minute

	categoriesKey = "categories"
)

// forwardedParams are the only query parameters passed upstream.
var forwardedParams = []string{"amount", "category", "difficulty", "type"}

type cachedBody struct {
	contentType string
	body        []byte
}

// Server forwards question and category requests to an upstream trivia API.
type Server struct {
	upstream string
	client   *http.Client
	cache    *expirable.LRU[string, cachedBody]
}

// New returns a proxy for upstream.
func New(upstream string, timeout, cacheTTL time.Duration) *Server {
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &Server{
		upstream: strings.TrimRight(upstream, "/"),
		client:   &http.Client{Timeout: timeout},
		cache:    expirable.NewLRU[string, cachedBody](8, nil, cacheTTL),
	}
}

// Handler returns the router. Paths under /api mirror the upstream's so
// the trivia client can use the proxy as its base URL.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/questions", s.handleQuestions).Methods(http.MethodGet)
	api.HandleFunc("/api.php", s.handleQuestions).Methods(http.MethodGet)
	api.HandleFunc("/categories", s.handleCategories).Methods(http.MethodGet)
	api.HandleFunc("/api_category.php", s.handleCategories).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodGet)
	return r
}

// ListenAndServe runs the proxy until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	query := url.Values{}
	for _, key := range forwardedParams {
		if v := r.URL.Query().Get(key); v != "" {
			query.Set(key, v)
		}
	}
	status, contentType, body, err := s.fetch(r.Context(), "/api.php", query)
	if err != nil {
		logErrf("proxy questions: %v\n", err)
		writeError(w, http.StatusBadGateway, "upstream request failed")
		return
	}
	writeBody(w, status, contentType, body)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if cached, ok := s.cache.Get(categoriesKey); ok {
		writeBody(w, http.StatusOK, cached.contentType, cached.body)
		return
	}
	status, contentType, body, err := s.fetch(r.Context(), "/api_category.php", nil)
	if err != nil {
		logErrf("proxy categories: %v\n", err)
		writeError(w, http.StatusBadGateway, "upstream request failed")
		return
	}
	if status == http.StatusOK {
		s.cache.Add(categoriesKey, cachedBody{contentType: contentType, body: body})
	}
	writeBody(w, status, contentType, body)
}

func (s *Server) fetch(ctx context.Context, path string, query url.Values) (int, string, []byte, error) {
	target := s.upstream + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return 0, "", nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, "", nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, "", nil, fmt.Errorf("failed to read upstream body: %w", err)
	}
	return resp.StatusCode, resp.Header.Get("Content-Type"), body, nil
}

func writeBody(w http.ResponseWriter, status int, contentType string, body []byte) {
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
