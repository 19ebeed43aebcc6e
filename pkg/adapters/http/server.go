package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/chatlist"
	"github.com/aretw0/chatlist/internal/logging"
	"github.com/aretw0/chatlist/pkg/domain"
	"github.com/aretw0/chatlist/pkg/listsync"
	"github.com/aretw0/chatlist/pkg/merge"
	"github.com/aretw0/chatlist/pkg/ports"
	"github.com/go-chi/chi/v5"
)

// Lists defines what the HTTP layer needs from the list manager.
type Lists interface {
	Update(ctx context.Context, listID string, cells []domain.Cell, opts ...listsync.UpdateOption) (*domain.Transition[domain.Cell], error)
	ScrollToLast(ctx context.Context, listID string) (*domain.Transition[domain.Cell], error)
	Load(ctx context.Context, listID string) (*domain.Snapshot, error)
	Delete(ctx context.Context, listID string) error
	List(ctx context.Context) ([]string, error)
	Dispatch(ctx context.Context, event domain.InteractionEvent) error
	Attach(ctx context.Context, listID string, r ports.Renderer) (func(), error)
}

var _ Lists = (*listsync.Manager)(nil)

// UpdateRequest is the body of PUT /lists/{id}.
type UpdateRequest struct {
	Cells       []domain.Cell           `json:"cells"`
	AllUpdated  bool                    `json:"all_updated,omitempty"`
	SortByTitle bool                    `json:"sort_by_title,omitempty"`
	ScrollTo    *int                    `json:"scroll_to,omitempty"`
	Stationary  *domain.StationaryRange `json:"stationary,omitempty"`
}

// DiffRequest is the body of POST /diff.
type DiffRequest struct {
	Previous   []domain.Cell `json:"previous"`
	Current    []domain.Cell `json:"current"`
	AllUpdated bool          `json:"all_updated,omitempty"`
}

// Server serves the list manager over HTTP.
type Server struct {
	Lists   Lists
	Streams *StreamManager
	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithMetrics mounts h at GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger configures request logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates a new HTTP handler for the list manager.
func NewHandler(lists Lists, opts ...Option) http.Handler {
	server := &Server{
		Lists:   lists,
		Streams: NewStreamManager(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Get("/healthz", server.GetHealth)
	r.Get("/info", server.GetInfo)
	if server.metrics != nil {
		r.Method(http.MethodGet, "/metrics", server.metrics)
	}
	r.Post("/diff", server.Diff)
	r.Route("/lists", func(r chi.Router) {
		r.Get("/", server.ListLists)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", server.GetList)
			r.Put("/", server.UpdateList)
			r.Delete("/", server.DeleteList)
			r.Post("/scroll-to-last", server.ScrollToLast)
			r.Post("/events", server.SendEvent)
			r.Get("/stream", server.SubscribeTransitions)
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ListLists handles GET /lists.
func (s *Server) ListLists(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Lists.List(r.Context())
	if err != nil {
		s.writeError(w, "List", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"lists": ids})
}

// GetList handles GET /lists/{id}.
func (s *Server) GetList(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.Lists.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, "GetList", err)
		return
	}
	s.writeJSON(w, http.StatusOK, snapshot)
}

// UpdateList handles PUT /lists/{id}.
func (s *Server) UpdateList(w http.ResponseWriter, r *http.Request) {
	var body UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("UpdateList: Invalid request body", "err", err)
		return
	}

	var opts []listsync.UpdateOption
	if body.AllUpdated {
		opts = append(opts, listsync.WithAllUpdated())
	}
	if body.SortByTitle {
		opts = append(opts, listsync.WithSortByTitle())
	}
	if body.ScrollTo != nil {
		opts = append(opts, listsync.WithScrollTo(*body.ScrollTo))
	}
	if body.Stationary != nil {
		opts = append(opts, listsync.WithStationaryRange(body.Stationary.Start, body.Stationary.End))
	}

	listID := chi.URLParam(r, "id")
	tr, err := s.Lists.Update(r.Context(), listID, body.Cells, opts...)
	if err != nil {
		s.writeError(w, "UpdateList", err)
		return
	}
	s.writeJSON(w, http.StatusOK, tr)
}

// DeleteList handles DELETE /lists/{id}.
func (s *Server) DeleteList(w http.ResponseWriter, r *http.Request) {
	if err := s.Lists.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, "DeleteList", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ScrollToLast handles POST /lists/{id}/scroll-to-last.
func (s *Server) ScrollToLast(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "id")
	tr, err := s.Lists.ScrollToLast(r.Context(), listID)
	if err != nil {
		s.writeError(w, "ScrollToLast", err)
		return
	}
	s.writeJSON(w, http.StatusOK, tr)
}

// SendEvent handles POST /lists/{id}/events.
func (s *Server) SendEvent(w http.ResponseWriter, r *http.Request) {
	var event domain.InteractionEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("SendEvent: Invalid request body", "err", err)
		return
	}
	event.ListID = chi.URLParam(r, "id")

	if err := s.Lists.Dispatch(r.Context(), event); err != nil {
		s.writeError(w, "SendEvent", err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// Diff handles POST /diff. It reconciles two snapshots without touching any stored list.
func (s *Server) Diff(w http.ResponseWriter, r *http.Request) {
	var body DiffRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Diff: Invalid request body", "err", err)
		return
	}

	tr, err := merge.Reconcile(body.Previous, body.Current, merge.Strategy[domain.Cell, string]{
		ID:    domain.Cell.StableID,
		Equal: domain.Cell.Equal,
	}, body.AllUpdated)
	if err != nil {
		s.writeError(w, "Diff", err)
		return
	}
	s.writeJSON(w, http.StatusOK, tr)
}

// GetHealth handles the GET /healthz request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "chatlist-http",
		"version": strings.TrimSpace(chatlist.Version),
	})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrListNotFound), errors.Is(err, domain.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateID),
		errors.Is(err, domain.ErrInvalidRange),
		errors.Is(err, domain.ErrUnknownEvent),
		errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	} else {
		s.logger.Debug(op+" rejected", "err", err, "status", status)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

// StreamManager handles active SSE connections
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // ListID -> Set of Channels
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
	}
}

func (sm *StreamManager) Subscribe(listID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 16)
	if _, ok := sm.subscribers[listID]; !ok {
		sm.subscribers[listID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[listID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[listID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, listID)
			}
		}
	}
}

// Send delivers msg to one subscriber if it is still open.
// A full channel drops the message; subscribers notice the gap in versions.
func (sm *StreamManager) Send(listID string, ch chan<- string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if _, ok := sm.subscribers[listID][ch]; !ok {
		return
	}
	select {
	case ch <- msg:
	default:
		// Drop message if channel is full (slow client)
	}
}

// Subscribers returns the number of open streams for a list.
func (sm *StreamManager) Subscribers(listID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[listID])
}

// streamRenderer forwards the transitions of a list to one SSE subscriber.
// The manager calls it under the list lock, so events leave in version order.
type streamRenderer struct {
	streams *StreamManager
	listID  string
	ch      chan<- string
}

func (r *streamRenderer) Apply(_ context.Context, tr *domain.Transition[domain.Cell]) error {
	data, err := json.Marshal(tr)
	if err != nil {
		return err
	}
	r.streams.Send(r.listID, r.ch, string(data))
	return nil
}

// SubscribeTransitions handles GET /lists/{id}/stream (SSE).
func (s *Server) SubscribeTransitions(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	listID := chi.URLParam(r, "id")
	s.logger.Info("SSE: Subscribing to list transitions", "list_id", listID)

	ch, cancel := s.Streams.Subscribe(listID)
	defer cancel()

	// The first event replays the stored rows when the list exists.
	detach, err := s.Lists.Attach(r.Context(), listID, &streamRenderer{streams: s.Streams, listID: listID, ch: ch})
	if err != nil {
		s.writeError(w, "SubscribeTransitions", err)
		return
	}
	defer detach()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "list_id", listID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: transition\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
