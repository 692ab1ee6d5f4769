package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/grove"
	"github.com/aretw0/grove/internal/logging"
	"github.com/aretw0/grove/internal/presentation/graph"
	"github.com/aretw0/grove/pkg/domain"
	"github.com/aretw0/grove/pkg/reporter"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Suite defines what the HTTP adapter needs from a grove suite.
type Suite interface {
	Tree() (*domain.Tree, error)
	RunWithHooks(ctx context.Context, hooks domain.LifecycleHooks, addrs ...domain.Address) (*domain.Report, error)
}

var _ Suite = (*grove.Suite)(nil)

// Server exposes a suite over HTTP.
type Server struct {
	Suite   Suite
	Streams *StreamManager

	logger   *slog.Logger
	gatherer prometheus.Gatherer
	metrics  reporter.Reporter
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics records every run in m and serves reg on GET /metrics.
func WithMetrics(reg *prometheus.Registry, m *reporter.Metrics) Option {
	return func(s *Server) {
		s.gatherer = reg
		s.metrics = m
	}
}

// RunRequest is the body of POST /runs.
type RunRequest struct {
	// Select holds "<file>[i:j]", "[i:j]" or "<file>:<line>" selectors. Empty runs everything.
	Select []string `json:"select,omitempty"`
}

// NewHandler creates a new HTTP handler for the suite.
func NewHandler(suite Suite, opts ...Option) http.Handler {
	server := &Server{
		Suite:   suite,
		Streams: NewStreamManager(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}
	server.Streams.logger = server.logger

	r := chi.NewRouter()
	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Get("/nodes", server.GetNodes)
	r.Get("/nodes/{address}", server.GetNode)
	r.Get("/graph", server.GetGraph)
	r.Post("/runs", server.PostRun)
	r.Get("/events", server.SubscribeEvents)
	if server.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(server.gatherer, promhttp.HandlerOpts{}))
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "grove-http",
		"version": strings.TrimSpace(grove.Version),
	})
}

// GetNodes handles the GET /nodes request: the whole tree with addresses.
func (s *Server) GetNodes(w http.ResponseWriter, r *http.Request) {
	tree, ok := s.tree(w)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, tree.Root.Children)
}

// GetNode handles the GET /nodes/{address} request, e.g. /nodes/0:1.
func (s *Server) GetNode(w http.ResponseWriter, r *http.Request) {
	tree, ok := s.tree(w)
	if !ok {
		return
	}
	addr, err := domain.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	n, err := tree.Lookup(addr)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, n)
}

// GetGraph handles the GET /graph request: the tree as a Mermaid flowchart.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	tree, ok := s.tree(w)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, graph.GenerateMermaid(tree, nil))
}

// PostRun handles the POST /runs request. It blocks until the run is over.
func (s *Server) PostRun(w http.ResponseWriter, r *http.Request) {
	var body RunRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			s.logger.Warn("PostRun: Invalid request body", "err", err)
			return
		}
	}

	tree, ok := s.tree(w)
	if !ok {
		return
	}
	addrs, err := tree.ResolveAll(body.Select)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	hooks := s.Streams.Hooks()
	if s.metrics != nil {
		hooks = reporter.Combine(hooks, s.metrics.Hooks())
	}

	report, err := s.Suite.RunWithHooks(r.Context(), hooks, addrs...)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrUnknownAddress) {
			status = http.StatusBadRequest
		}
		http.Error(w, fmt.Sprintf("Run error: %v", err), status)
		s.logger.Error("Run failed", "err", err)
		return
	}
	if s.metrics != nil {
		if err := s.metrics.Finish(report); err != nil {
			s.logger.Warn("Metrics finish failed", "err", err)
		}
	}
	s.writeJSON(w, http.StatusOK, report)
}

// SubscribeEvents handles the GET /events request (SSE).
// The optional "type" query parameter filters events, e.g. ?type=result,context_failure.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	var filter []string
	if q := r.URL.Query().Get("type"); q != "" {
		for _, t := range strings.Split(q, ",") {
			filter = append(filter, strings.TrimSpace(t))
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE Client Disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(filter) > 0 && !slices.Contains(filter, string(msg.Type)) {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Type, msg.Data)
			flusher.Flush()
		}
	}
}

func (s *Server) tree(w http.ResponseWriter) (*domain.Tree, bool) {
	tree, err := s.Suite.Tree()
	if err != nil {
		http.Error(w, fmt.Sprintf("Build error: %v", err), http.StatusInternalServerError)
		s.logger.Error("Tree failed", "err", err)
		return nil, false
	}
	return tree, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

// Message is one engine event serialized for SSE subscribers.
type Message struct {
	Type domain.EventType
	Data []byte
}

// StreamManager fans run events out to active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan Message]struct{}
	logger      *slog.Logger
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[chan Message]struct{}),
		logger:      logging.NewNop(),
	}
}

// Subscribe registers a new listener. The returned func unregisters it.
func (sm *StreamManager) Subscribe() (<-chan Message, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan Message, 64)
	sm.subscribers[ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if _, ok := sm.subscribers[ch]; ok {
			delete(sm.subscribers, ch)
			close(ch)
		}
	}
}

// Broadcast serializes v and sends it to every subscriber.
func (sm *StreamManager) Broadcast(typ domain.EventType, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		sm.logger.Warn("StreamManager: encode failed", "err", err)
		return
	}

	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers {
		select {
		case ch <- Message{Type: typ, Data: data}:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping message", "type", typ)
		}
	}
}

// Hooks returns lifecycle hooks that broadcast every event.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) { sm.Broadcast(e.Type, e) },
		OnNodeLeave: func(_ context.Context, e *domain.NodeEvent) { sm.Broadcast(e.Type, e) },
		OnResult: func(_ context.Context, e *domain.ResultEvent) {
			sm.Broadcast(e.Type, e)
		},
		OnContextFailure: func(_ context.Context, e *domain.ContextFailureEvent) {
			sm.Broadcast(e.Type, e)
		},
	}
}
