package domain

import (
	"slices"
	"time"
)

// Cell is the data behind one row of the chat list.
type Cell struct {
	RoomID string `json:"room_id" yaml:"room_id" mapstructure:"room_id"`
	Title  string `json:"title" yaml:"title" mapstructure:"title"`
}

// StableID returns the identity of the cell across snapshots.
func (c Cell) StableID() string {
	return c.RoomID
}

// Equal reports whether two cells carry the same content.
// Identity is not compared.
func (c Cell) Equal(other Cell) bool {
	return c.Title == other.Title
}

// Less orders cells by title.
func (c Cell) Less(other Cell) bool {
	return c.Title < other.Title
}

// Snapshot is the ordered content of a logical list at one point in time.
type Snapshot struct {
	ListID    string    `json:"list_id"`
	Version   uint64    `json:"version"`
	Cells     []Cell    `json:"cells"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSnapshot creates an empty snapshot for the given list.
func NewSnapshot(listID string) *Snapshot {
	return &Snapshot{
		ListID: listID,
		Cells:  []Cell{},
	}
}

// Clone returns a deep copy so callers can't mutate a stored snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	c := *s
	c.Cells = slices.Clone(s.Cells)
	if c.Cells == nil {
		c.Cells = []Cell{}
	}
	return &c
}

// IndexOf returns the position of the given room, or -1.
func (s *Snapshot) IndexOf(roomID string) int {
	return slices.IndexFunc(s.Cells, func(c Cell) bool {
		return c.RoomID == roomID
	})
}
