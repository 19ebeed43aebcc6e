package merge

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/aretw0/chatlist/pkg/domain"
)

// Strategy tells the reconciler how to identify and compare items.
type Strategy[T any, K comparable] struct {
	// ID returns the stable identity of an item. Required.
	ID func(T) K
	// Equal reports whether two items with the same identity carry the same
	// content. If nil, reflect.DeepEqual is used.
	Equal func(a, b T) bool
}

// Reconciler computes transitions between snapshots. It holds no state
// besides its strategy and is safe for concurrent use.
type Reconciler[T any, K comparable] struct {
	strategy Strategy[T, K]
}

// New creates a Reconciler for the given strategy.
func New[T any, K comparable](strategy Strategy[T, K]) *Reconciler[T, K] {
	if strategy.Equal == nil {
		strategy.Equal = func(a, b T) bool {
			return reflect.DeepEqual(a, b)
		}
	}
	return &Reconciler[T, K]{strategy: strategy}
}

// Reconcile is a shorthand for New(strategy).Reconcile(previous, current, allUpdated).
func Reconcile[T any, K comparable](previous, current []T, strategy Strategy[T, K], allUpdated bool) (*domain.Transition[T], error) {
	return New(strategy).Reconcile(previous, current, allUpdated)
}

// survivor is an item present in both snapshots.
type survivor struct {
	cur  int
	prev int
}

// Reconcile computes the operations that turn previous into current.
//
// Items whose identity is missing from current are deleted; items whose
// identity is new are inserted. Items present in both either stay in place
// (emitting an update when their content differs, or always when allUpdated
// is set) or, when their relative order changed, are inserted at the new
// position with PreviousIndex set. The kept set is the longest run of
// survivors whose previous positions are already increasing, so the number
// of moves is minimal.
//
// Both snapshots must have unique identities; otherwise an error wrapping
// domain.ErrDuplicateID is returned and no transition is produced.
func (r *Reconciler[T, K]) Reconcile(previous, current []T, allUpdated bool) (*domain.Transition[T], error) {
	if r.strategy.ID == nil {
		return nil, fmt.Errorf("merge: strategy has no identity accessor")
	}

	prevIndex, err := indexByID(previous, r.strategy.ID)
	if err != nil {
		return nil, fmt.Errorf("previous snapshot: %w", err)
	}
	curIndex, err := indexByID(current, r.strategy.ID)
	if err != nil {
		return nil, fmt.Errorf("current snapshot: %w", err)
	}

	tr := domain.NewTransition[T]()

	// 1. Survivors in current order
	survivors := make([]survivor, 0, len(current))
	for i, item := range current {
		if p, ok := prevIndex[r.strategy.ID(item)]; ok {
			survivors = append(survivors, survivor{cur: i, prev: p})
		}
	}
	stable := longestIncreasing(survivors)

	// 2. Insertions, moves and updates, ascending by current position
	s := 0
	for i, item := range current {
		if s < len(survivors) && survivors[s].cur == i {
			sv := survivors[s]
			if stable[s] {
				if allUpdated || !r.strategy.Equal(previous[sv.prev], item) {
					tr.Updates = append(tr.Updates, domain.UpdateItem[T]{
						Index:         i,
						PreviousIndex: sv.prev,
						Item:          item,
					})
				}
			} else {
				prev := sv.prev
				tr.Insertions = append(tr.Insertions, domain.InsertItem[T]{
					Index:         i,
					PreviousIndex: &prev,
					Item:          item,
				})
			}
			s++
			continue
		}
		tr.Insertions = append(tr.Insertions, domain.InsertItem[T]{
			Index: i,
			Item:  item,
		})
	}

	// 3. Deletions, ascending by previous position
	for i, item := range previous {
		if _, ok := curIndex[r.strategy.ID(item)]; !ok {
			tr.Deletions = append(tr.Deletions, domain.DeleteItem{Index: i})
		}
	}

	return tr, nil
}

// longestIncreasing marks the survivors that belong to a longest subsequence
// with strictly increasing previous positions.
func longestIncreasing(seq []survivor) []bool {
	keep := make([]bool, len(seq))
	if len(seq) == 0 {
		return keep
	}

	// tails[k] is the index in seq of the smallest tail of an increasing run of length k+1.
	tails := make([]int, 0, len(seq))
	links := make([]int, len(seq))
	for j := range seq {
		k := sort.Search(len(tails), func(n int) bool {
			return seq[tails[n]].prev >= seq[j].prev
		})
		if k > 0 {
			links[j] = tails[k-1]
		} else {
			links[j] = -1
		}
		if k == len(tails) {
			tails = append(tails, j)
		} else {
			tails[k] = j
		}
	}

	for j := tails[len(tails)-1]; j >= 0; j = links[j] {
		keep[j] = true
	}
	return keep
}
