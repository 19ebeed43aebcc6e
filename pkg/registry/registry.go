package registry

import (
	"context"
	"sync"

	"github.com/aretw0/chatlist/pkg/domain"
	"github.com/aretw0/chatlist/pkg/ports"
)

// Registry routes interaction events to the handler registered for their type.
// It implements ports.EventHandler, so it can be handed to the list manager.
type Registry struct {
	mu       sync.RWMutex
	handlers map[domain.EventType]ports.EventHandler
	fallback ports.EventHandler
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[domain.EventType]ports.EventHandler),
	}
}

// Register adds a handler for an event type.
// If a handler for the same type exists, it is overwritten.
func (r *Registry) Register(t domain.EventType, h ports.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[t] = h
}

// RegisterFunc is Register for plain functions.
func (r *Registry) RegisterFunc(t domain.EventType, fn func(context.Context, domain.InteractionEvent) error) {
	r.Register(t, ports.EventHandlerFunc(fn))
}

// SetFallback sets the handler for event types with no registration.
func (r *Registry) SetFallback(h ports.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = h
}

// Handle looks up the handler for the event type and runs it.
// Events with no handler and no fallback are dropped.
func (r *Registry) Handle(ctx context.Context, event domain.InteractionEvent) error {
	r.mu.RLock()
	h, ok := r.handlers[event.Type]
	if !ok {
		h = r.fallback
	}
	r.mu.RUnlock()

	if h == nil {
		return nil
	}
	return h.Handle(ctx, event)
}

var _ ports.EventHandler = (*Registry)(nil)
