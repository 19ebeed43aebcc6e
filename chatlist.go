package chatlist

import (
	"log/slog"

	"github.com/aretw0/chatlist/pkg/adapters/memory"
	"github.com/aretw0/chatlist/pkg/domain"
	"github.com/aretw0/chatlist/pkg/listsync"
	"github.com/aretw0/chatlist/pkg/merge"
	"github.com/aretw0/chatlist/pkg/ports"
)

// Strategy identifies cells by room ID and compares them by title.
var Strategy = merge.Strategy[domain.Cell, string]{
	ID:    domain.Cell.StableID,
	Equal: domain.Cell.Equal,
}

// Reconcile computes the transition between two chat list snapshots.
func Reconcile(previous, current []domain.Cell, allUpdated bool) (*domain.Transition[domain.Cell], error) {
	return merge.Reconcile(previous, current, Strategy, allUpdated)
}

type settings struct {
	store  ports.SnapshotStore
	listOp []listsync.Option
}

// Option defines a functional option for configuring the list manager.
type Option func(*settings)

// WithStore replaces the default in-memory snapshot store.
func WithStore(store ports.SnapshotStore) Option {
	return func(s *settings) {
		s.store = store
	}
}

// WithLocker enables distributed locking across processes sharing the store.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(s *settings) {
		s.listOp = append(s.listOp, listsync.WithLocker(locker))
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.listOp = append(s.listOp, listsync.WithLogger(logger))
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *settings) {
		s.listOp = append(s.listOp, listsync.WithLifecycleHooks(hooks))
	}
}

// WithEventHandler sets the handler for interaction events.
func WithEventHandler(handler ports.EventHandler) Option {
	return func(s *settings) {
		s.listOp = append(s.listOp, listsync.WithEventHandler(handler))
	}
}

// New returns a list manager. By default, snapshots are kept in memory.
func New(opts ...Option) *listsync.Manager {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	if s.store == nil {
		s.store = memory.NewStore()
	}
	return listsync.NewManager(s.store, s.listOp...)
}
