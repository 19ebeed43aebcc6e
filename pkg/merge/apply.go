package merge

import (
	"fmt"

	"github.com/aretw0/chatlist/pkg/domain"
)

// Apply replays a transition onto a copy of previous and returns the result.
//
// Deleted positions and the previous positions of moved insertions are
// removed first, in the previous index space. Insertions are then placed at
// their current positions in ascending order, and updates replace the items
// at their current positions. previous is not modified.
func Apply[T any](previous []T, tr *domain.Transition[T]) ([]T, error) {
	if tr == nil {
		return append([]T(nil), previous...), nil
	}

	removed := make([]bool, len(previous))
	remove := func(idx int) error {
		if idx < 0 || idx >= len(previous) {
			return fmt.Errorf("%w: index %d outside previous list of %d", domain.ErrInvalidTransition, idx, len(previous))
		}
		if removed[idx] {
			return fmt.Errorf("%w: index %d removed twice", domain.ErrInvalidTransition, idx)
		}
		removed[idx] = true
		return nil
	}

	last := -1
	for _, d := range tr.Deletions {
		if d.Index <= last {
			return nil, fmt.Errorf("%w: deletions not ascending at %d", domain.ErrInvalidTransition, d.Index)
		}
		last = d.Index
		if err := remove(d.Index); err != nil {
			return nil, err
		}
	}
	for _, ins := range tr.Insertions {
		if ins.PreviousIndex != nil {
			if err := remove(*ins.PreviousIndex); err != nil {
				return nil, err
			}
		}
	}

	kept := make([]T, 0, len(previous))
	for i, item := range previous {
		if !removed[i] {
			kept = append(kept, item)
		}
	}

	total := len(kept) + len(tr.Insertions)
	out := make([]T, 0, total)
	next := 0
	last = -1
	for _, ins := range tr.Insertions {
		if ins.Index <= last || ins.Index >= total {
			return nil, fmt.Errorf("%w: insertion index %d out of order or range", domain.ErrInvalidTransition, ins.Index)
		}
		last = ins.Index
		for len(out) < ins.Index {
			if next >= len(kept) {
				return nil, fmt.Errorf("%w: insertion index %d leaves a gap", domain.ErrInvalidTransition, ins.Index)
			}
			out = append(out, kept[next])
			next++
		}
		out = append(out, ins.Item)
	}
	out = append(out, kept[next:]...)

	last = -1
	for _, u := range tr.Updates {
		if u.Index <= last || u.Index >= len(out) {
			return nil, fmt.Errorf("%w: update index %d out of order or range", domain.ErrInvalidTransition, u.Index)
		}
		last = u.Index
		out[u.Index] = u.Item
	}

	return out, nil
}
