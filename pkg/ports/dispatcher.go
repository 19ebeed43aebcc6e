package ports

import (
	"context"

	"github.com/aretw0/chatlist/pkg/domain"
)

// EventHandler receives the interaction events emitted by the rendering layer.
// It replaces per-row callbacks: one handler serves every row of every list.
type EventHandler interface {
	Handle(ctx context.Context, event domain.InteractionEvent) error
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(ctx context.Context, event domain.InteractionEvent) error

// Handle calls f(ctx, event).
func (f EventHandlerFunc) Handle(ctx context.Context, event domain.InteractionEvent) error {
	return f(ctx, event)
}
