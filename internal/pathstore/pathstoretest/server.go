// Package pathstoretest provides an in-memory pathstore KV server for tests.
package pathstoretest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Server is a minimal pathstore: PUT, GET, prefix scan and DELETE on /kv.
type Server struct {
	*httptest.Server

	mu    sync.Mutex
	nodes map[string]json.RawMessage
	fail  int
}

func NewServer() *Server {
	s := &Server{nodes: make(map[string]json.RawMessage)}
	r := chi.NewRouter()
	r.Put("/kv/*", s.handlePut)
	r.Get("/kv/*", s.handleGet)
	r.Delete("/kv/*", s.handleDelete)
	s.Server = httptest.NewServer(s.failing(r))
	return s
}

func (s *Server) failing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		fail := s.fail
		s.mu.Unlock()
		if fail != 0 {
			http.Error(w, "injected failure", fail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SetFail makes every request fail with status. Zero clears it.
func (s *Server) SetFail(status int) {
	s.mu.Lock()
	s.fail = status
	s.mu.Unlock()
}

// Keys returns every stored key, sorted.
func (s *Server) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.nodes))
	for k := range s.nodes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Value returns the raw value stored at key.
func (s *Server) Value(key string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.nodes[key]
	return v, ok
}

type node struct {
	Key   string          `json:"key_path"`
	Value json.RawMessage `json:"value"`
}

func dotted(key string) string {
	return strings.ReplaceAll(key, "/", ".")
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	var body struct {
		Value json.RawMessage `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.nodes[key] = body.Value
	s.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	w.Header().Set("Content-Type", "application/json")

	if prefix, ok := strings.CutSuffix(key, "/*"); ok {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		out := []node{}
		for _, k := range s.Keys() {
			if !strings.HasPrefix(k, prefix+"/") {
				continue
			}
			v, _ := s.Value(k)
			out = append(out, node{Key: dotted(k), Value: v})
			if limit > 0 && len(out) == limit {
				break
			}
		}
		json.NewEncoder(w).Encode(map[string]any{"nodes": out})
		return
	}

	v, ok := s.Value(key)
	if !ok {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(node{Key: dotted(key), Value: v})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	children := r.URL.Query().Get("children") == "true"
	s.mu.Lock()
	delete(s.nodes, key)
	if children {
		for k := range s.nodes {
			if strings.HasPrefix(k, key+"/") {
				delete(s.nodes, k)
			}
		}
	}
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}
