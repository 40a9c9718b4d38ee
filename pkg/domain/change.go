package domain

// ChangeRecord is an immutable snapshot of one detected change, produced by a
// successful record check during a digest pass. Records are linked in
// registration order; the digest returns the head of the list.
//
// For field and identity watches, CurrentValue and PreviousValue hold the two
// compared values. For items and entries watches, CurrentValue holds the
// differ's change report (*diff.CollectionChange or *diff.MapChange) and
// PreviousValue is nil.
type ChangeRecord struct {
	// Object is the watched object the change was observed on.
	Object any

	// Selector identifies the binding that changed.
	Selector Selector

	// Handler is the opaque value supplied at registration time.
	Handler any

	CurrentValue  any
	PreviousValue any

	// Next links to the following change in registration order, or nil.
	Next *ChangeRecord
}

// Count returns the number of changes in the list headed by c.
func (c *ChangeRecord) Count() int {
	n := 0
	for ; c != nil; c = c.Next {
		n++
	}
	return n
}
