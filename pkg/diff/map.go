package diff

import (
	"fmt"
	"strings"
)

// KeyValue is one entry of a watched map, in the order the underlying
// collection yielded it.
type KeyValue struct {
	Key   any
	Value any
}

// MapEntry is one node of a map change report. Like CollectionItem, a node may
// sit in several lists at once, each through its own next pointer.
type MapEntry struct {
	Key any

	// PreviousValue is nil for additions; CurrentValue is nil for removals.
	PreviousValue any
	CurrentValue  any

	NextEntry   *MapEntry
	NextChanged *MapEntry
	NextAdded   *MapEntry
	NextRemoved *MapEntry
}

func (e *MapEntry) String() string {
	return fmt.Sprintf("%v(%v->%v)", e.Key, e.PreviousValue, e.CurrentValue)
}

// MapChange reports the difference between two passes over a watched map:
// current entries in iteration order, plus value changes, additions and
// removals. Keys are stable identifiers, so there is no move concept.
type MapChange struct {
	FirstEntry    *MapEntry
	FirstChange   *MapEntry
	FirstAddition *MapEntry
	FirstRemoval  *MapEntry
}

// IsEmpty reports whether the pass detected no change.
func (c *MapChange) IsEmpty() bool {
	return c.FirstChange == nil && c.FirstAddition == nil && c.FirstRemoval == nil
}

// Entries returns the current entries list as a slice.
func (c *MapChange) Entries() []*MapEntry { return collectEntries(c.FirstEntry, nextEntry) }

// Changes returns the value-change list as a slice.
func (c *MapChange) Changes() []*MapEntry { return collectEntries(c.FirstChange, nextChanged) }

// Additions returns the additions list as a slice.
func (c *MapChange) Additions() []*MapEntry { return collectEntries(c.FirstAddition, nextAddedEntry) }

// Removals returns the removals list as a slice.
func (c *MapChange) Removals() []*MapEntry { return collectEntries(c.FirstRemoval, nextRemovedEntry) }

func (c *MapChange) String() string {
	var b strings.Builder
	writeList := func(label string, entries []*MapEntry) {
		b.WriteString(label)
		b.WriteString(": ")
		for i, e := range entries {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(e.String())
		}
		b.WriteString("\n")
	}
	writeList("entries", c.Entries())
	writeList("changes", c.Changes())
	writeList("additions", c.Additions())
	writeList("removals", c.Removals())
	return b.String()
}

func nextEntry(e *MapEntry) *MapEntry        { return e.NextEntry }
func nextChanged(e *MapEntry) *MapEntry      { return e.NextChanged }
func nextAddedEntry(e *MapEntry) *MapEntry   { return e.NextAdded }
func nextRemovedEntry(e *MapEntry) *MapEntry { return e.NextRemoved }

func collectEntries(head *MapEntry, next func(*MapEntry) *MapEntry) []*MapEntry {
	var out []*MapEntry
	for e := head; e != nil; e = next(e) {
		out = append(out, e)
	}
	return out
}

// MapDiffer is a stateful differ for key/value collections. It retains the
// previous pass's entries across calls. Not safe for concurrent use.
type MapDiffer struct {
	prevOrder []KeyValue
	prev      map[any]any
}

// NewMapDiffer creates a differ with an empty previous snapshot.
func NewMapDiffer() *MapDiffer {
	return &MapDiffer{prev: make(map[any]any)}
}

// Check diffs current against the previous pass and replaces the stored
// snapshot. The entries list preserves the order in which current was given;
// removals are reported in the previous pass's order. Values compare by
// identity.
func (d *MapDiffer) Check(current []KeyValue) *MapChange {
	change := &MapChange{}
	seen := make(map[any]bool, len(current))
	next := make(map[any]any, len(current))

	var entriesTail, changesTail, addsTail *MapEntry
	for _, kv := range current {
		seen[kv.Key] = true
		next[kv.Key] = kv.Value

		node := &MapEntry{Key: kv.Key, CurrentValue: kv.Value}
		if entriesTail == nil {
			change.FirstEntry = node
		} else {
			entriesTail.NextEntry = node
		}
		entriesTail = node

		prevVal, existed := d.prev[kv.Key]
		if !existed {
			if addsTail == nil {
				change.FirstAddition = node
			} else {
				addsTail.NextAdded = node
			}
			addsTail = node
			continue
		}

		node.PreviousValue = prevVal
		if !Identical(prevVal, kv.Value) {
			if changesTail == nil {
				change.FirstChange = node
			} else {
				changesTail.NextChanged = node
			}
			changesTail = node
		}
	}

	var removalsTail *MapEntry
	for _, kv := range d.prevOrder {
		if seen[kv.Key] {
			continue
		}
		node := &MapEntry{Key: kv.Key, PreviousValue: kv.Value}
		if removalsTail == nil {
			change.FirstRemoval = node
		} else {
			removalsTail.NextRemoved = node
		}
		removalsTail = node
	}

	d.prevOrder = append(d.prevOrder[:0:0], current...)
	d.prev = next
	return change
}
