package ports

import (
	"context"

	"github.com/aretw0/chatlist/pkg/domain"
)

// SnapshotStore defines the interface for persisting the last applied snapshot of a list.
// The stored snapshot is the "previous" side of the next reconciliation.
type SnapshotStore interface {
	// Save persists the snapshot for a given list ID.
	Save(ctx context.Context, listID string, snapshot *domain.Snapshot) error

	// Load retrieves the snapshot for a given list ID.
	// Returns domain.ErrListNotFound if the list does not exist.
	Load(ctx context.Context, listID string) (*domain.Snapshot, error)

	// Delete removes the snapshot for a given list ID.
	Delete(ctx context.Context, listID string) error

	// List returns the IDs of the stored lists.
	List(ctx context.Context) ([]string, error)
}
