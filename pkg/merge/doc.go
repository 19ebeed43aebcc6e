/*
Package merge reconciles two ordered snapshots of identity-bearing items.

Reconcile produces a domain.Transition whose deletions address the previous
index space and whose insertions and updates address the current index space,
so a position-indexed view can apply them without re-deriving offsets.

Items are never inspected through runtime type assertions: the caller supplies
a Strategy with the identity accessor and the content comparator.

	r := merge.New(merge.Strategy[domain.Cell, string]{
		ID:    domain.Cell.StableID,
		Equal: domain.Cell.Equal,
	})
	tr, err := r.Reconcile(before, after, false)

Apply is the reference consumer: replaying a transition onto the previous
snapshot yields the current one.
*/
package merge
