package ports

import (
	"context"

	"github.com/aretw0/chatlist/pkg/domain"
)

// Renderer applies transitions to a visual list.
// Calls for one list arrive in the order the transitions were produced.
type Renderer interface {
	Apply(ctx context.Context, transition *domain.Transition[domain.Cell]) error
}
