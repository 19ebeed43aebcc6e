package listsync

import (
	"log/slog"
	"time"

	"github.com/aretw0/chatlist/pkg/domain"
	"github.com/aretw0/chatlist/pkg/ports"
)

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks (default 30s).
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Manager) {
		m.hooks = hooks
	}
}

// WithEventHandler sets the handler that receives dispatched interaction events.
func WithEventHandler(handler ports.EventHandler) Option {
	return func(m *Manager) {
		m.handler = handler
	}
}

// UpdateOption tunes a single Update call.
type UpdateOption func(*updateConfig)

type updateConfig struct {
	allUpdated  bool
	sortByTitle bool
	scrollTo    *int
	stationary  *domain.StationaryRange
}

// WithAllUpdated treats every surviving row as changed.
func WithAllUpdated() UpdateOption {
	return func(c *updateConfig) {
		c.allUpdated = true
	}
}

// WithSortByTitle derives the order of the new snapshot from cell titles
// instead of taking it as given.
func WithSortByTitle() UpdateOption {
	return func(c *updateConfig) {
		c.sortByTitle = true
	}
}

// WithScrollTo anchors the view at index once the transition is applied.
// Indices outside the new list are ignored.
func WithScrollTo(index int) UpdateOption {
	return func(c *updateConfig) {
		c.scrollTo = &index
	}
}

// WithStationaryRange keeps the rows in [start, end] visually fixed during the transition.
func WithStationaryRange(start, end int) UpdateOption {
	return func(c *updateConfig) {
		c.stationary = &domain.StationaryRange{Start: start, End: end}
	}
}
