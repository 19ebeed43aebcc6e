package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/chatlist/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore implementation
// adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	listID := "contract-test-list-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		snapshot := domain.NewSnapshot(listID)
		snapshot.Version = 3
		snapshot.Cells = []domain.Cell{
			{RoomID: "1", Title: "title 0"},
			{RoomID: "2", Title: "title 1"},
		}

		err := store.Save(ctx, listID, snapshot)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, listID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, listID, loaded.ListID)
		assert.Equal(t, uint64(3), loaded.Version)
		assert.Equal(t, snapshot.Cells, loaded.Cells, "order and content must be preserved")
	})

	t.Run("Load Isolation", func(t *testing.T) {
		loaded, err := store.Load(ctx, listID)
		require.NoError(t, err)
		loaded.Cells[0].Title = "mutated"

		again, err := store.Load(ctx, listID)
		require.NoError(t, err)
		assert.Equal(t, "title 0", again.Cells[0].Title, "mutating a loaded snapshot must not affect the store")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+listID)
		assert.ErrorIs(t, err, domain.ErrListNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, listID, domain.NewSnapshot(listID))
		require.NoError(t, err)

		err = store.Delete(ctx, listID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, listID)
		assert.ErrorIs(t, err, domain.ErrListNotFound, "Load after Delete should return ErrListNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := listID + "-1"
		id2 := listID + "-2"
		_ = store.Save(ctx, id1, domain.NewSnapshot(id1))
		_ = store.Save(ctx, id2, domain.NewSnapshot(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		lists, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, lists, id1)
		assert.Contains(t, lists, id2)
	})

	t.Run("Reserved Looking IDs", func(t *testing.T) {
		for _, id := range []string{"index", "lock", "__encrypted__"} {
			require.NoError(t, store.Save(ctx, id, domain.NewSnapshot(id)), "save %q", id)
		}
		defer func() {
			for _, id := range []string{"index", "lock", "__encrypted__"} {
				_ = store.Delete(ctx, id)
			}
		}()

		lists, err := store.List(ctx)
		require.NoError(t, err)
		assert.Subset(t, lists, []string{"index", "lock", "__encrypted__"})

		loaded, err := store.Load(ctx, "index")
		require.NoError(t, err)
		assert.Equal(t, "index", loaded.ListID)
	})
}
