package viewmodel_test

import (
	"testing"

	"github.com/aretw0/chatlist/pkg/domain"
	"github.com/aretw0/chatlist/pkg/merge"
	"github.com/aretw0/chatlist/pkg/viewmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var strategy = merge.Strategy[domain.Cell, string]{ID: domain.Cell.StableID, Equal: domain.Cell.Equal}

func TestViewModel_MockData(t *testing.T) {
	vm := viewmodel.New()
	vm.MockData(viewmodel.DefaultMockCount)

	cells := vm.Cells()
	require.Len(t, cells, 20)
	assert.Equal(t, domain.Cell{RoomID: "0", Title: "title 0"}, cells[0])
	assert.Equal(t, domain.Cell{RoomID: "19", Title: "title 19"}, cells[19])
	require.NoError(t, merge.ValidateUnique(cells, domain.Cell.StableID))
}

func TestViewModel_Operations(t *testing.T) {
	vm := viewmodel.New()
	vm.MockData(3)

	t.Run("InsertOne", func(t *testing.T) {
		before := vm.Cells()
		vm.InsertOne()
		tr, err := merge.Reconcile(before, vm.Cells(), strategy, false)
		require.NoError(t, err)
		assert.Equal(t, domain.TransitionCounts{Inserted: 1}, tr.Counts())
		assert.Equal(t, 3, tr.Insertions[0].Index)
	})

	t.Run("UpdateLast", func(t *testing.T) {
		before := vm.Cells()
		vm.UpdateLast()
		tr, err := merge.Reconcile(before, vm.Cells(), strategy, false)
		require.NoError(t, err)
		require.Len(t, tr.Updates, 1)
		assert.Equal(t, "title update 0", tr.Updates[0].Item.Title)
		assert.Equal(t, before[3].RoomID, tr.Updates[0].Item.RoomID)
	})

	t.Run("DeleteLast", func(t *testing.T) {
		before := vm.Cells()
		vm.DeleteLast()
		tr, err := merge.Reconcile(before, vm.Cells(), strategy, false)
		require.NoError(t, err)
		assert.Equal(t, domain.TransitionCounts{Deleted: 1}, tr.Counts())
		assert.Equal(t, 3, tr.Deletions[0].Index)
	})

	t.Run("BatchUpdate", func(t *testing.T) {
		before := vm.Cells()
		vm.BatchUpdate()
		after := vm.Cells()
		tr, err := merge.Reconcile(before, after, strategy, false)
		require.NoError(t, err)
		assert.Equal(t, domain.TransitionCounts{Deleted: 1, Inserted: 1, Updated: 1}, tr.Counts())
		assert.Equal(t, len(before), len(after))
	})
}

func TestViewModel_EmptyOperationsAreNoops(t *testing.T) {
	vm := viewmodel.New()
	vm.DeleteLast()
	vm.UpdateLast()
	assert.Equal(t, 0, vm.Len())

	vm.BatchUpdate()
	assert.Equal(t, []domain.Cell{{RoomID: "0", Title: "title 0"}}, vm.Cells())
}
