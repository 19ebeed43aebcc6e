package listsync_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/chatlist/pkg/adapters/listview"
	"github.com/aretw0/chatlist/pkg/adapters/memory"
	"github.com/aretw0/chatlist/pkg/adapters/redis"
	"github.com/aretw0/chatlist/pkg/domain"
	"github.com/aretw0/chatlist/pkg/listsync"
	"github.com/aretw0/chatlist/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cells(n int) []domain.Cell {
	out := make([]domain.Cell, 0, n)
	for i := range n {
		out = append(out, domain.Cell{RoomID: fmt.Sprint(i + 1), Title: fmt.Sprintf("title %d", i)})
	}
	return out
}

func TestManager_UpdateScenarios(t *testing.T) {
	ctx := context.Background()
	m := listsync.NewManager(memory.NewStore())

	t.Run("Initial Load", func(t *testing.T) {
		tr, err := m.Update(ctx, "a", cells(2))
		require.NoError(t, err)
		assert.Len(t, tr.Insertions, 2)
		assert.Empty(t, tr.Deletions)
	})

	t.Run("Delete And Insert", func(t *testing.T) {
		tr, err := m.Update(ctx, "a", []domain.Cell{
			{RoomID: "1", Title: "title 0"},
			{RoomID: "3", Title: "title 2"},
		})
		require.NoError(t, err)
		require.Len(t, tr.Deletions, 1)
		assert.Equal(t, 1, tr.Deletions[0].Index)
		require.Len(t, tr.Insertions, 1)
		assert.Equal(t, 1, tr.Insertions[0].Index)
		assert.Nil(t, tr.Insertions[0].PreviousIndex)
		assert.Empty(t, tr.Updates)
	})

	t.Run("Update In Place", func(t *testing.T) {
		tr, err := m.Update(ctx, "b", []domain.Cell{{RoomID: "1", Title: "title 0"}})
		require.NoError(t, err)
		require.Len(t, tr.Insertions, 1)

		tr, err = m.Update(ctx, "b", []domain.Cell{{RoomID: "1", Title: "title update 0"}})
		require.NoError(t, err)
		assert.Equal(t, []domain.UpdateItem[domain.Cell]{
			{Index: 0, PreviousIndex: 0, Item: domain.Cell{RoomID: "1", Title: "title update 0"}},
		}, tr.Updates)
		assert.Empty(t, tr.Insertions)
		assert.Empty(t, tr.Deletions)
	})

	t.Run("Append With Scroll Anchor", func(t *testing.T) {
		initial := cells(20)
		_, err := m.Update(ctx, "c", initial)
		require.NoError(t, err)

		next := append(cells(20), domain.Cell{RoomID: "21", Title: "title 20"})
		tr, err := m.Update(ctx, "c", next, listsync.WithScrollTo(len(next)-1))
		require.NoError(t, err)

		require.Len(t, tr.Insertions, 1)
		assert.Equal(t, 20, tr.Insertions[0].Index)
		assert.Equal(t, "21", tr.Insertions[0].Item.RoomID)
		assert.Empty(t, tr.Deletions)
		assert.Empty(t, tr.Updates)

		require.NotNil(t, tr.ScrollTo)
		assert.Equal(t, 20, tr.ScrollTo.Index)
		assert.Equal(t, domain.ScrollBottom, tr.ScrollTo.Position.Kind)
		assert.True(t, tr.ScrollTo.Animated)
		assert.Equal(t, domain.DirectionDown, tr.ScrollTo.DirectionHint)
	})
}

func TestManager_VersionsAndPersistence(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	m := listsync.NewManager(store)

	for i := 1; i <= 3; i++ {
		_, err := m.Update(ctx, "chats", cells(i))
		require.NoError(t, err)
	}

	snapshot, err := m.Load(ctx, "chats")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), snapshot.Version)
	assert.Equal(t, cells(3), snapshot.Cells)

	require.NoError(t, m.Delete(ctx, "chats"))
	_, err = m.Load(ctx, "chats")
	assert.ErrorIs(t, err, domain.ErrListNotFound)
}

func TestManager_RejectsDuplicatesWithoutSaving(t *testing.T) {
	ctx := context.Background()
	m := listsync.NewManager(memory.NewStore())

	_, err := m.Update(ctx, "chats", cells(2))
	require.NoError(t, err)

	_, err = m.Update(ctx, "chats", []domain.Cell{{RoomID: "1"}, {RoomID: "1"}})
	assert.ErrorIs(t, err, domain.ErrDuplicateID)

	snapshot, err := m.Load(ctx, "chats")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), snapshot.Version)
	assert.Equal(t, cells(2), snapshot.Cells)
}

func TestManager_ScrollAndStationaryOptions(t *testing.T) {
	ctx := context.Background()
	m := listsync.NewManager(memory.NewStore())

	tr, err := m.Update(ctx, "chats", cells(3), listsync.WithScrollTo(7))
	require.NoError(t, err)
	assert.Nil(t, tr.ScrollTo, "out of range anchors are dropped")

	tr, err = m.Update(ctx, "chats", cells(3), listsync.WithScrollTo(-1))
	require.NoError(t, err)
	assert.Nil(t, tr.ScrollTo)

	// The first row is a valid anchor.
	tr, err = m.Update(ctx, "chats", cells(3), listsync.WithScrollTo(0))
	require.NoError(t, err)
	require.NotNil(t, tr.ScrollTo)
	assert.Equal(t, domain.NewScrollToItem(0), tr.ScrollTo)

	tr, err = m.Update(ctx, "chats", cells(3), listsync.WithStationaryRange(0, 1))
	require.NoError(t, err)
	assert.Equal(t, &domain.StationaryRange{Start: 0, End: 1}, tr.Stationary)

	_, err = m.Update(ctx, "chats", cells(3), listsync.WithStationaryRange(2, 3))
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
	_, err = m.Update(ctx, "chats", cells(3), listsync.WithStationaryRange(2, 1))
	assert.ErrorIs(t, err, domain.ErrInvalidRange)
}

func TestManager_SortByTitleAndAllUpdated(t *testing.T) {
	ctx := context.Background()
	m := listsync.NewManager(memory.NewStore())

	unsorted := []domain.Cell{{RoomID: "x", Title: "c"}, {RoomID: "y", Title: "a"}, {RoomID: "z", Title: "b"}}
	_, err := m.Update(ctx, "chats", unsorted, listsync.WithSortByTitle())
	require.NoError(t, err)

	snapshot, err := m.Load(ctx, "chats")
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "z", "x"}, []string{snapshot.Cells[0].RoomID, snapshot.Cells[1].RoomID, snapshot.Cells[2].RoomID})

	tr, err := m.Update(ctx, "chats", snapshot.Cells, listsync.WithAllUpdated())
	require.NoError(t, err)
	assert.Len(t, tr.Updates, 3)
}

func TestManager_ScrollToLast(t *testing.T) {
	ctx := context.Background()
	m := listsync.NewManager(memory.NewStore())

	_, err := m.ScrollToLast(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrListNotFound)

	_, err = m.Update(ctx, "chats", cells(5))
	require.NoError(t, err)

	tr, err := m.ScrollToLast(ctx, "chats")
	require.NoError(t, err)
	assert.False(t, tr.HasChanges())
	assert.Equal(t, uint64(1), tr.Version)
	require.NotNil(t, tr.ScrollTo)
	assert.Equal(t, 4, tr.ScrollTo.Index)
}

func TestManager_AttachedViewFollowsConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	m := listsync.NewManager(memory.NewStore())
	view := listview.New()
	detach, err := m.Attach(ctx, "chats", view)
	require.NoError(t, err)
	defer detach()

	// Each writer appends its own room to whatever the list holds now.
	var wg sync.WaitGroup
	var mu sync.Mutex
	latest := []domain.Cell{}
	for i := range 25 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			mu.Lock()
			defer mu.Unlock()
			latest = append(latest, domain.Cell{RoomID: fmt.Sprintf("r%d", i), Title: "t"})
			_, err := m.Update(ctx, "chats", latest)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	snapshot, err := m.Load(ctx, "chats")
	require.NoError(t, err)
	assert.Equal(t, uint64(25), snapshot.Version)
	assert.Equal(t, uint64(25), view.Version())
	assert.Equal(t, snapshot.Cells, view.Rows())
	assert.Equal(t, 25, view.Applied())
}

func TestManager_AttachSeedsFromStoredSnapshot(t *testing.T) {
	ctx := context.Background()
	m := listsync.NewManager(memory.NewStore())

	_, err := m.Update(ctx, "chats", cells(2))
	require.NoError(t, err)

	view := listview.New()
	detach, err := m.Attach(ctx, "chats", view)
	require.NoError(t, err)
	defer detach()
	assert.Equal(t, cells(2), view.Rows())
	assert.Equal(t, uint64(1), view.Version())

	tr, err := m.Update(ctx, "chats", cells(1))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), tr.Version)
	assert.Equal(t, cells(1), view.Rows())
	assert.Equal(t, uint64(2), view.Version())
}

func TestManager_AttachToMissingListStartsEmpty(t *testing.T) {
	ctx := context.Background()
	m := listsync.NewManager(memory.NewStore())

	view := listview.New()
	detach, err := m.Attach(ctx, "chats", view)
	require.NoError(t, err)
	defer detach()
	assert.Equal(t, 0, view.Applied())

	_, err = m.Update(ctx, "chats", cells(3))
	require.NoError(t, err)
	assert.Equal(t, cells(3), view.Rows())
}

type failingRenderer struct {
	calls int
}

func (f *failingRenderer) Apply(context.Context, *domain.Transition[domain.Cell]) error {
	f.calls++
	return errors.New("screen gone")
}

func TestManager_FailedRendererIsDetached(t *testing.T) {
	ctx := context.Background()
	m := listsync.NewManager(memory.NewStore())

	healthy := listview.New()
	detachHealthy, err := m.Attach(ctx, "chats", healthy)
	require.NoError(t, err)
	defer detachHealthy()

	broken := &failingRenderer{}
	_, err = m.Attach(ctx, "chats", broken)
	require.NoError(t, err, "nothing to seed for a missing list")

	tr, err := m.Update(ctx, "chats", cells(2))
	assert.ErrorIs(t, err, domain.ErrRenderFailed)
	require.NotNil(t, tr, "the snapshot is saved even though rendering failed")
	assert.Equal(t, uint64(1), tr.Version)
	assert.Equal(t, 1, broken.calls)

	// The store, the transition and the healthy view stay in step.
	tr, err = m.Update(ctx, "chats", cells(1))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), tr.Version)
	assert.Equal(t, []domain.DeleteItem{{Index: 1}}, tr.Deletions)
	assert.Equal(t, 1, broken.calls, "detached renderer receives nothing")
	assert.Equal(t, cells(1), healthy.Rows())

	snapshot, err := m.Load(ctx, "chats")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), snapshot.Version)
	assert.Equal(t, cells(1), snapshot.Cells)
}

func TestManager_AttachReportsSeedFailure(t *testing.T) {
	ctx := context.Background()
	m := listsync.NewManager(memory.NewStore())
	_, err := m.Update(ctx, "chats", cells(2))
	require.NoError(t, err)

	broken := &failingRenderer{}
	_, err = m.Attach(ctx, "chats", broken)
	assert.ErrorIs(t, err, domain.ErrRenderFailed)

	_, err = m.Update(ctx, "chats", cells(3))
	require.NoError(t, err)
	assert.Equal(t, 1, broken.calls)
}

func TestManager_Detach(t *testing.T) {
	ctx := context.Background()
	m := listsync.NewManager(memory.NewStore())

	first, second := listview.New(), listview.New()
	detachFirst, err := m.Attach(ctx, "chats", first)
	require.NoError(t, err)
	detachSecond, err := m.Attach(ctx, "chats", second)
	require.NoError(t, err)
	defer detachSecond()

	_, err = m.Update(ctx, "chats", cells(1))
	require.NoError(t, err)
	detachFirst()
	_, err = m.Update(ctx, "chats", cells(2))
	require.NoError(t, err)

	assert.Equal(t, cells(1), first.Rows())
	assert.Equal(t, cells(2), second.Rows())
}

func TestManager_IndependentListsRunConcurrently(t *testing.T) {
	ctx := context.Background()
	m := listsync.NewManager(memory.NewStore())

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			listID := fmt.Sprintf("list-%d", i)
			for n := 1; n <= 5; n++ {
				_, err := m.Update(ctx, listID, cells(n))
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()

	lists, err := m.List(ctx)
	require.NoError(t, err)
	assert.Len(t, lists, 10)
}

func TestManager_DistributedLock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer client.Close()

	store := redis.NewFromClient(client)
	m := listsync.NewManager(store,
		listsync.WithLocker(redis.NewLocker(client, "test:")),
		listsync.WithLockTTL(2*time.Second),
	)
	ctx := context.Background()

	tr, err := m.Update(ctx, "chats", cells(2))
	require.NoError(t, err)
	assert.Len(t, tr.Insertions, 2)
	assert.False(t, mr.Exists("test:lock:chats"), "lock must be released after the update")

	// A foreign holder blocks the update until the context expires.
	require.NoError(t, mr.Set("test:lock:chats", "other-replica"))
	ctxTimeout, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
	defer cancel()
	_, err = m.Update(ctxTimeout, "chats", cells(3))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type recordingHandler struct {
	mu     sync.Mutex
	events []domain.InteractionEvent
	err    error
}

func (h *recordingHandler) Handle(ctx context.Context, e domain.InteractionEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
	return h.err
}

var _ ports.EventHandler = (*recordingHandler)(nil)

func TestManager_Dispatch(t *testing.T) {
	ctx := context.Background()
	handler := &recordingHandler{}
	var hooked []domain.EventType
	m := listsync.NewManager(memory.NewStore(),
		listsync.WithEventHandler(handler),
		listsync.WithLifecycleHooks(domain.LifecycleHooks{
			OnInteraction: func(ctx context.Context, e *domain.InteractionEvent) {
				hooked = append(hooked, e.Type)
			},
		}),
	)
	_, err := m.Update(ctx, "chats", cells(3))
	require.NoError(t, err)

	err = m.Dispatch(ctx, domain.InteractionEvent{Type: domain.EventSetPinned, ListID: "chats", RoomID: "2", Value: true})
	require.NoError(t, err)
	require.Len(t, handler.events, 1)
	assert.Equal(t, "2", handler.events[0].RoomID)
	assert.True(t, handler.events[0].Value)
	assert.False(t, handler.events[0].Timestamp.IsZero())
	assert.Equal(t, []domain.EventType{domain.EventSetPinned}, hooked)

	err = m.Dispatch(ctx, domain.InteractionEvent{Type: "archive", ListID: "chats", RoomID: "2"})
	assert.ErrorIs(t, err, domain.ErrUnknownEvent)

	err = m.Dispatch(ctx, domain.InteractionEvent{Type: domain.EventSetRead, ListID: "chats", RoomID: "99"})
	assert.ErrorIs(t, err, domain.ErrItemNotFound)

	err = m.Dispatch(ctx, domain.InteractionEvent{Type: domain.EventSetRead, ListID: "nope", RoomID: "1"})
	assert.ErrorIs(t, err, domain.ErrListNotFound)

	handler.err = errors.New("handler failed")
	err = m.Dispatch(ctx, domain.InteractionEvent{Type: domain.EventPeerSelected, ListID: "chats", RoomID: "1"})
	assert.EqualError(t, err, "handler failed")
}

func TestManager_DeleteHandlerMayUpdateSameList(t *testing.T) {
	ctx := context.Background()
	var m *listsync.Manager
	handler := ports.EventHandlerFunc(func(ctx context.Context, e domain.InteractionEvent) error {
		snapshot, err := m.Load(ctx, e.ListID)
		if err != nil {
			return err
		}
		idx := snapshot.IndexOf(e.RoomID)
		remaining := append(snapshot.Cells[:idx:idx], snapshot.Cells[idx+1:]...)
		_, err = m.Update(ctx, e.ListID, remaining)
		return err
	})
	m = listsync.NewManager(memory.NewStore(), listsync.WithEventHandler(handler))

	_, err := m.Update(ctx, "chats", cells(3))
	require.NoError(t, err)

	require.NoError(t, m.Dispatch(ctx, domain.InteractionEvent{Type: domain.EventDeletePeer, ListID: "chats", RoomID: "2"}))

	snapshot, err := m.Load(ctx, "chats")
	require.NoError(t, err)
	assert.Equal(t, -1, snapshot.IndexOf("2"))
	assert.Len(t, snapshot.Cells, 2)
}

func TestManager_ReconcileHook(t *testing.T) {
	ctx := context.Background()
	var events []domain.ReconcileEvent
	m := listsync.NewManager(memory.NewStore(), listsync.WithLifecycleHooks(domain.LifecycleHooks{
		OnReconcile: func(ctx context.Context, e *domain.ReconcileEvent) {
			events = append(events, *e)
		},
	}))

	_, err := m.Update(ctx, "chats", cells(2))
	require.NoError(t, err)
	_, err = m.Update(ctx, "chats", []domain.Cell{{RoomID: "2", Title: "title 1"}, {RoomID: "1", Title: "title 0"}})
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, domain.TransitionCounts{Inserted: 2}, events[0].Counts)
	assert.Equal(t, uint64(2), events[1].Version)
	assert.Equal(t, domain.TransitionCounts{Moved: 1}, events[1].Counts)
}
