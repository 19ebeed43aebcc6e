// Package viewmodel produces the chat list snapshots used by the demo.
package viewmodel

import (
	"fmt"
	"slices"
	"sync"

	"github.com/aretw0/chatlist/pkg/domain"
)

// DefaultMockCount is the number of rooms MockData creates by default.
const DefaultMockCount = 20

// ViewModel owns the demo's chat cells and mutates them the way the demo
// buttons do. Safe for concurrent use.
type ViewModel struct {
	mu          sync.Mutex
	cells       []domain.Cell
	nextRoom    int
	updateCount int
}

// New creates an empty view model.
func New() *ViewModel {
	return &ViewModel{cells: []domain.Cell{}}
}

func (vm *ViewModel) newCell() domain.Cell {
	c := domain.Cell{
		RoomID: fmt.Sprint(vm.nextRoom),
		Title:  fmt.Sprintf("title %d", vm.nextRoom),
	}
	vm.nextRoom++
	return c
}

// MockData appends n fresh rooms.
func (vm *ViewModel) MockData(n int) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	for range n {
		vm.cells = append(vm.cells, vm.newCell())
	}
}

// InsertOne appends one fresh room.
func (vm *ViewModel) InsertOne() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.cells = append(vm.cells, vm.newCell())
}

// DeleteLast removes the last room, if any.
func (vm *ViewModel) DeleteLast() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.deleteLast()
}

func (vm *ViewModel) deleteLast() {
	if len(vm.cells) > 0 {
		vm.cells = vm.cells[:len(vm.cells)-1]
	}
}

// UpdateLast retitles the last room, keeping its identity.
func (vm *ViewModel) UpdateLast() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.updateLast()
}

func (vm *ViewModel) updateLast() {
	if len(vm.cells) == 0 {
		return
	}
	last := len(vm.cells) - 1
	vm.cells[last] = domain.Cell{
		RoomID: vm.cells[last].RoomID,
		Title:  fmt.Sprintf("title update %d", vm.updateCount),
	}
	vm.updateCount++
}

// BatchUpdate deletes the last room, retitles the new last one and appends a
// fresh room, producing a delete, an update and an insert in one snapshot.
func (vm *ViewModel) BatchUpdate() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.deleteLast()
	vm.updateLast()
	vm.cells = append(vm.cells, vm.newCell())
}

// Cells returns a copy of the current snapshot.
func (vm *ViewModel) Cells() []domain.Cell {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return slices.Clone(vm.cells)
}

// Len returns the number of rooms.
func (vm *ViewModel) Len() int {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return len(vm.cells)
}
