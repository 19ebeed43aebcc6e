package domain

import "time"

// DirectionHint tells the renderer which way an item enters or leaves.
type DirectionHint string

const (
	DirectionUp   DirectionHint = "up"
	DirectionDown DirectionHint = "down"
)

// ScrollPositionKind selects the edge of the viewport the anchor aligns to.
type ScrollPositionKind string

const (
	ScrollTop    ScrollPositionKind = "top"
	ScrollCenter ScrollPositionKind = "center"
	ScrollBottom ScrollPositionKind = "bottom"
)

// ScrollPosition is the alignment of the anchored item, with an offset in points.
type ScrollPosition struct {
	Kind   ScrollPositionKind `json:"kind"`
	Offset float64            `json:"offset,omitempty"`
}

// CurveKind is the animation curve family requested for a scroll.
type CurveKind string

const (
	CurveDefault CurveKind = "default"
	CurveSpring  CurveKind = "spring"
)

// Curve describes how the renderer should animate the scroll.
type Curve struct {
	Kind     CurveKind     `json:"kind"`
	Duration time.Duration `json:"duration"`
}

// ScrollToItem is the anchor the view should settle on after a transition.
type ScrollToItem struct {
	Index         int            `json:"index"`
	Position      ScrollPosition `json:"position"`
	Animated      bool           `json:"animated"`
	Curve         Curve          `json:"curve"`
	DirectionHint DirectionHint  `json:"direction_hint,omitempty"`
}

// NewScrollToItem anchors index to the bottom edge with a short animated
// scroll downwards. Callers check that index is inside the list.
func NewScrollToItem(index int) *ScrollToItem {
	return &ScrollToItem{
		Index:         index,
		Position:      ScrollPosition{Kind: ScrollBottom},
		Animated:      true,
		Curve:         Curve{Kind: CurveDefault, Duration: 100 * time.Millisecond},
		DirectionHint: DirectionDown,
	}
}

// StationaryRange is an inclusive span of positions that must not move visually.
type StationaryRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// DeleteItem removes the row at Index of the previous list.
type DeleteItem struct {
	Index         int            `json:"index"`
	DirectionHint *DirectionHint `json:"direction_hint,omitempty"`
}

// InsertItem places Item at Index of the current list.
// PreviousIndex is set when the item already existed and changed relative
// position; the renderer moves the existing row instead of creating one.
type InsertItem[T any] struct {
	Index         int            `json:"index"`
	PreviousIndex *int           `json:"previous_index,omitempty"`
	Item          T              `json:"item"`
	DirectionHint *DirectionHint `json:"direction_hint,omitempty"`
}

// IsMove reports whether the insertion relocates an existing row.
func (i InsertItem[T]) IsMove() bool {
	return i.PreviousIndex != nil
}

// UpdateItem refreshes the row at Index in place; it was at PreviousIndex.
type UpdateItem[T any] struct {
	Index         int            `json:"index"`
	PreviousIndex int            `json:"previous_index"`
	Item          T              `json:"item"`
	DirectionHint *DirectionHint `json:"direction_hint,omitempty"`
}

// Transition is the set of operations that moves a view from one snapshot to the next.
// Deletions are ascending in the previous index space; insertions and updates
// are ascending in the current index space.
// Version is the snapshot version the transition leads to; it stays zero for
// transitions computed outside a stored list.
type Transition[T any] struct {
	Version    uint64           `json:"version,omitempty"`
	Deletions  []DeleteItem     `json:"deletions"`
	Insertions []InsertItem[T]  `json:"insertions"`
	Updates    []UpdateItem[T]  `json:"updates"`
	ScrollTo   *ScrollToItem    `json:"scroll_to,omitempty"`
	Stationary *StationaryRange `json:"stationary,omitempty"`
}

// NewTransition returns an empty transition with non-nil slices.
func NewTransition[T any]() *Transition[T] {
	return &Transition[T]{
		Deletions:  []DeleteItem{},
		Insertions: []InsertItem[T]{},
		Updates:    []UpdateItem[T]{},
	}
}

// HasChanges reports whether the transition carries any list operation.
func (t *Transition[T]) HasChanges() bool {
	return len(t.Deletions) > 0 || len(t.Insertions) > 0 || len(t.Updates) > 0
}

// IsEmpty reports a transition with no operations and no hints.
func (t *Transition[T]) IsEmpty() bool {
	return !t.HasChanges() && t.ScrollTo == nil && t.Stationary == nil
}

// TransitionCounts summarizes a transition for logs and metrics.
type TransitionCounts struct {
	Deleted  int `json:"deleted"`
	Inserted int `json:"inserted"`
	Moved    int `json:"moved"`
	Updated  int `json:"updated"`
}

// Counts returns how many operations of each kind the transition holds.
// Moves are counted apart from plain insertions.
func (t *Transition[T]) Counts() TransitionCounts {
	c := TransitionCounts{
		Deleted: len(t.Deletions),
		Updated: len(t.Updates),
	}
	for _, ins := range t.Insertions {
		if ins.IsMove() {
			c.Moved++
		} else {
			c.Inserted++
		}
	}
	return c
}
