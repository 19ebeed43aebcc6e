package listsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/chatlist/internal/logging"
	"github.com/aretw0/chatlist/pkg/domain"
	"github.com/aretw0/chatlist/pkg/merge"
	"github.com/aretw0/chatlist/pkg/ports"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager reconciles list updates against the last applied snapshot.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store      ports.SnapshotStore
	reconciler *merge.Reconciler[domain.Cell, string]

	mu    sync.Mutex            // Global lock for the maps below
	locks map[string]*lockEntry // Map of active locks
	views map[string][]*attachment

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	hooks   domain.LifecycleHooks
	handler ports.EventHandler
	logger  *slog.Logger
	now     func() time.Time
}

// NewManager creates a new list Manager with the given persistence store.
func NewManager(store ports.SnapshotStore, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		reconciler: merge.New(merge.Strategy[domain.Cell, string]{
			ID:    domain.Cell.StableID,
			Equal: domain.Cell.Equal,
		}),
		locks:   make(map[string]*lockEntry),
		views:   make(map[string][]*attachment),
		lockTTL: 30 * time.Second,
		logger:  logging.NewNop(), // Default to no-op
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// attachment wraps a renderer so it can be detached by identity.
type attachment struct {
	renderer ports.Renderer
}

// Attach registers a renderer for a list. Under the list lock, the renderer
// first receives a transition that inserts the stored rows (when the list
// exists), then every transition produced for the list in version order.
// The returned function detaches it.
func (m *Manager) Attach(ctx context.Context, listID string, r ports.Renderer) (func(), error) {
	a := &attachment{renderer: r}
	err := m.WithLock(ctx, listID, func(ctx context.Context) error {
		snapshot, err := m.store.Load(ctx, listID)
		switch {
		case errors.Is(err, domain.ErrListNotFound):
		case err != nil:
			return fmt.Errorf("failed to load list: %w", err)
		default:
			seed, err := m.reconciler.Reconcile(nil, snapshot.Cells, false)
			if err != nil {
				return err
			}
			seed.Version = snapshot.Version
			if err := r.Apply(ctx, seed); err != nil {
				return fmt.Errorf("%w: %w", domain.ErrRenderFailed, err)
			}
		}

		m.mu.Lock()
		m.views[listID] = append(m.views[listID], a)
		m.mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return func() { m.detach(listID, a) }, nil
}

func (m *Manager) detach(listID string, a *attachment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	views := slices.DeleteFunc(slices.Clone(m.views[listID]), func(v *attachment) bool {
		return v == a
	})
	if len(views) == 0 {
		delete(m.views, listID)
		return
	}
	m.views[listID] = views
}

// render applies tr to every renderer attached to listID. A renderer that
// rejects it is detached, since its rows no longer match the stored snapshot.
func (m *Manager) render(ctx context.Context, listID string, tr *domain.Transition[domain.Cell]) error {
	m.mu.Lock()
	views := m.views[listID]
	m.mu.Unlock()

	var errs []error
	for _, a := range views {
		if err := a.renderer.Apply(ctx, tr); err != nil {
			m.detach(listID, a)
			m.logger.Warn("Renderer detached after failed transition",
				"list_id", listID,
				"version", tr.Version,
				"err", err,
			)
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrRenderFailed, errors.Join(errs...))
	}
	return nil
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(listID) after unlocking.
func (m *Manager) acquire(listID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[listID]
	if !exists {
		entry = &lockEntry{}
		m.locks[listID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(listID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[listID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, listID)
	}
}

// WithLock executes a function while holding the lock for the list.
func (m *Manager) WithLock(ctx context.Context, listID string, fn func(context.Context) error) error {
	entry := m.acquire(listID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(listID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, listID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"list_id", listID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// loadOrEmpty returns the stored snapshot, or an empty one at version 0.
func (m *Manager) loadOrEmpty(ctx context.Context, listID string) (*domain.Snapshot, error) {
	snapshot, err := m.store.Load(ctx, listID)
	if err == nil {
		return snapshot, nil
	}
	if errors.Is(err, domain.ErrListNotFound) {
		return domain.NewSnapshot(listID), nil
	}
	return nil, fmt.Errorf("failed to load list: %w", err)
}

// Update makes cells the new content of the list and returns the transition
// from the previously applied snapshot. The new snapshot is persisted with
// the next version before the transition is handed to the attached renderers.
//
// When a renderer rejects the transition, the snapshot stays saved: Update
// returns the transition together with an error wrapping
// domain.ErrRenderFailed, and that renderer is detached.
//
// Snapshots with duplicate room IDs are rejected with domain.ErrDuplicateID
// and leave the stored snapshot untouched.
func (m *Manager) Update(ctx context.Context, listID string, cells []domain.Cell, opts ...UpdateOption) (*domain.Transition[domain.Cell], error) {
	var cfg updateConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	next := slices.Clone(cells)
	if next == nil {
		next = []domain.Cell{}
	}
	if cfg.sortByTitle {
		next = merge.SortStable(next, domain.Cell.Less)
	}
	if r := cfg.stationary; r != nil {
		if r.Start < 0 || r.Start > r.End || r.End >= len(next) {
			return nil, fmt.Errorf("%w: stationary [%d, %d] for %d items", domain.ErrInvalidRange, r.Start, r.End, len(next))
		}
	}

	var (
		result    *domain.Transition[domain.Cell]
		renderErr error
	)
	err := m.WithLock(ctx, listID, func(ctx context.Context) error {
		start := m.now()

		previous, err := m.loadOrEmpty(ctx, listID)
		if err != nil {
			return err
		}

		tr, err := m.reconciler.Reconcile(previous.Cells, next, cfg.allUpdated)
		if err != nil {
			return err
		}
		if idx := cfg.scrollTo; idx != nil && *idx >= 0 && *idx < len(next) {
			tr.ScrollTo = domain.NewScrollToItem(*idx)
		}
		if cfg.stationary != nil {
			r := *cfg.stationary
			tr.Stationary = &r
		}

		snapshot := &domain.Snapshot{
			ListID:    listID,
			Version:   previous.Version + 1,
			Cells:     next,
			UpdatedAt: m.now(),
		}
		if err := m.store.Save(ctx, listID, snapshot); err != nil {
			return fmt.Errorf("failed to save list: %w", err)
		}
		tr.Version = snapshot.Version

		counts := tr.Counts()
		m.logger.Debug("list reconciled",
			"list_id", listID,
			"version", snapshot.Version,
			"deleted", counts.Deleted,
			"inserted", counts.Inserted,
			"moved", counts.Moved,
			"updated", counts.Updated,
		)
		if m.hooks.OnReconcile != nil {
			m.hooks.OnReconcile(ctx, &domain.ReconcileEvent{
				Timestamp: snapshot.UpdatedAt,
				ListID:    listID,
				Version:   snapshot.Version,
				Counts:    counts,
				Duration:  m.now().Sub(start),
			})
		}

		result = tr
		renderErr = m.render(ctx, listID, tr)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, renderErr
}

// ScrollToLast returns a transition with no list operations that anchors the
// view at the last row. An empty list yields a transition without anchor.
func (m *Manager) ScrollToLast(ctx context.Context, listID string) (*domain.Transition[domain.Cell], error) {
	var result *domain.Transition[domain.Cell]
	err := m.WithLock(ctx, listID, func(ctx context.Context) error {
		snapshot, err := m.store.Load(ctx, listID)
		if err != nil {
			return err
		}

		tr := domain.NewTransition[domain.Cell]()
		tr.Version = snapshot.Version
		if n := len(snapshot.Cells); n > 0 {
			tr.ScrollTo = domain.NewScrollToItem(n - 1)
		}

		result = tr
		return m.render(ctx, listID, tr)
	})
	return result, err
}

// Load returns the last applied snapshot of a list.
func (m *Manager) Load(ctx context.Context, listID string) (*domain.Snapshot, error) {
	var snapshot *domain.Snapshot
	err := m.WithLock(ctx, listID, func(ctx context.Context) error {
		var err error
		snapshot, err = m.store.Load(ctx, listID)
		return err
	})
	return snapshot, err
}

// Delete removes the list from the store.
func (m *Manager) Delete(ctx context.Context, listID string) error {
	return m.WithLock(ctx, listID, func(ctx context.Context) error {
		return m.store.Delete(ctx, listID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Dispatch validates an interaction event against the current snapshot and
// forwards it to the event handler. The handler runs outside the list lock,
// so it may call Update on the same list.
func (m *Manager) Dispatch(ctx context.Context, event domain.InteractionEvent) error {
	if !event.Type.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownEvent, event.Type)
	}

	snapshot, err := m.Load(ctx, event.ListID)
	if err != nil {
		return err
	}
	if snapshot.IndexOf(event.RoomID) < 0 {
		return fmt.Errorf("%w: room %q in list %q", domain.ErrItemNotFound, event.RoomID, event.ListID)
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = m.now()
	}

	m.logger.Debug("interaction", "list_id", event.ListID, "room_id", event.RoomID, "type", event.Type)
	if m.hooks.OnInteraction != nil {
		m.hooks.OnInteraction(ctx, &event)
	}
	if m.handler == nil {
		return nil
	}
	return m.handler.Handle(ctx, event)
}

// Store returns the underlying snapshot store.
func (m *Manager) Store() ports.SnapshotStore {
	return m.store
}
