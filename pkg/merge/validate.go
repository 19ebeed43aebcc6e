package merge

import (
	"fmt"

	"github.com/aretw0/chatlist/pkg/domain"
)

// ValidateUnique checks that no identity appears twice in items.
// The error wraps domain.ErrDuplicateID and names both positions.
func ValidateUnique[T any, K comparable](items []T, id func(T) K) error {
	_, err := indexByID(items, id)
	return err
}

func indexByID[T any, K comparable](items []T, id func(T) K) (map[K]int, error) {
	index := make(map[K]int, len(items))
	for i, item := range items {
		k := id(item)
		if first, exists := index[k]; exists {
			return nil, fmt.Errorf("%w: %v at positions %d and %d", domain.ErrDuplicateID, k, first, i)
		}
		index[k] = i
	}
	return index, nil
}
