// Package http exposes a detector over REST: clients register watches against
// a mutable JSON document, patch the document, and trigger digest passes.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/mitchellh/mapstructure"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/vigil/pkg/detector"
	"github.com/aretw0/vigil/pkg/domain"
	"github.com/aretw0/vigil/pkg/observability"
)

// Server hosts one detector over a mutable JSON document. The engine is
// single-threaded by contract, so every handler runs under one mutex.
type Server struct {
	mu      sync.Mutex
	det     *detector.Detector
	doc     map[string]any
	cells   map[string]*any
	watches map[string]*watchEntry
	nextID  int
	logger  *slog.Logger
}

type watchEntry struct {
	ID     string `json:"id"`
	Field  string `json:"field"`
	Kind   string `json:"kind"`
	record *detector.WatchRecord
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates the HTTP handler. Detector metrics are registered on a
// private Prometheus registry served at /metrics.
func NewHandler(opts ...Option) http.Handler {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	s := &Server{
		doc:     make(map[string]any),
		cells:   make(map[string]*any),
		watches: make(map[string]*watchEntry),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.det = detector.New(
		detector.WithLogger(s.logger),
		detector.WithLifecycleHooks(metrics.Hooks()),
	)

	r := chi.NewRouter()
	r.Post("/watches", s.handleCreateWatch)
	r.Get("/watches", s.handleListWatches)
	r.Delete("/watches/{id}", s.handleDeleteWatch)
	r.Patch("/document", s.handlePatchDocument)
	r.Get("/document", s.handleGetDocument)
	r.Post("/digest", s.handleDigest)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type watchRequest struct {
	Field string `mapstructure:"field"`
	Kind  string `mapstructure:"kind"`
}

func (s *Server) handleCreateWatch(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid body: %w", err))
		return
	}
	var req watchRequest
	if err := mapstructure.Decode(raw, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid watch request: %w", err))
		return
	}
	if req.Field == "" {
		writeError(w, http.StatusBadRequest, errors.New("field is required"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var rec *detector.WatchRecord
	var err error
	switch req.Kind {
	case "", "field":
		req.Kind = "field"
		rec, err = s.det.Root().Watch(s.doc, domain.Field(req.Field), req.Field)
	case "items":
		rec, err = s.det.Root().Watch(s.cell(req.Field), domain.Items(), req.Field)
	case "entries":
		rec, err = s.det.Root().Watch(s.cell(req.Field), domain.Entries(), req.Field)
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown watch kind %q", req.Kind))
		return
	}
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrInvalidSelector) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err)
		return
	}

	s.nextID++
	entry := &watchEntry{
		ID:     fmt.Sprintf("w%d", s.nextID),
		Field:  req.Field,
		Kind:   req.Kind,
		record: rec,
	}
	s.watches[entry.ID] = entry
	s.logger.Info("watch registered", "id", entry.ID, "field", entry.Field, "kind", entry.Kind)
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleListWatches(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]*watchEntry, 0, len(s.watches))
	for _, e := range s.watches {
		entries = append(entries, e)
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleDeleteWatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.watches[id]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("watch %s not found", id))
		return
	}
	if err := entry.record.Remove(); err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	delete(s.watches, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePatchDocument(w http.ResponseWriter, r *http.Request) {
	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid body: %w", err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range patch {
		if v == nil {
			delete(s.doc, k)
		} else {
			s.doc[k] = v
		}
		if cell, ok := s.cells[k]; ok {
			*cell = v
		}
	}
	writeJSON(w, http.StatusOK, s.doc)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.doc)
}

func (s *Server) handleDigest(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	head, err := s.det.CollectChanges(nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, changesToJSON(head))
}

// cell returns the pointer cell backing sequence/map watches for a field,
// creating it from the document's current value on first use. Patching the
// document updates the cell, which is how reassignment stays visible to the
// differ between passes.
func (s *Server) cell(field string) *any {
	if cell, ok := s.cells[field]; ok {
		return cell
	}
	v := s.doc[field]
	cell := &v
	s.cells[field] = cell
	return cell
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
