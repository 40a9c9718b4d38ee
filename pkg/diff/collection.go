package diff

import (
	"fmt"
	"sort"
	"strings"
)

// CollectionItem is one node of a collection change report. The same node may
// participate in several of the report's lists (e.g. the items list and the
// moves list), each through its own next pointer.
type CollectionItem struct {
	Item any

	// PreviousIndex is the item's position in the previous pass, or -1 when
	// the item was not present (an addition).
	PreviousIndex int

	// CurrentIndex is the item's position in the current pass, or -1 when the
	// item is no longer present (a removal).
	CurrentIndex int

	NextItem    *CollectionItem
	NextAdded   *CollectionItem
	NextMoved   *CollectionItem
	NextRemoved *CollectionItem
}

func (it *CollectionItem) String() string {
	return fmt.Sprintf("%v[%d->%d]", it.Item, it.PreviousIndex, it.CurrentIndex)
}

// CollectionChange reports the structural difference between two passes over a
// watched sequence: the current items in iteration order, plus additions,
// moves and removals. All four lists are rebuilt on every check.
type CollectionChange struct {
	FirstItem     *CollectionItem
	FirstAddition *CollectionItem
	FirstMove     *CollectionItem
	FirstRemoval  *CollectionItem
}

// IsEmpty reports whether the pass detected no structural change.
func (c *CollectionChange) IsEmpty() bool {
	return c.FirstAddition == nil && c.FirstMove == nil && c.FirstRemoval == nil
}

// Items returns the current items list as a slice.
func (c *CollectionChange) Items() []*CollectionItem { return collect(c.FirstItem, nextItem) }

// Additions returns the additions list as a slice.
func (c *CollectionChange) Additions() []*CollectionItem { return collect(c.FirstAddition, nextAdded) }

// Moves returns the moves list as a slice.
func (c *CollectionChange) Moves() []*CollectionItem { return collect(c.FirstMove, nextMoved) }

// Removals returns the removals list as a slice.
func (c *CollectionChange) Removals() []*CollectionItem { return collect(c.FirstRemoval, nextRemoved) }

func (c *CollectionChange) String() string {
	var b strings.Builder
	writeList := func(label string, items []*CollectionItem) {
		b.WriteString(label)
		b.WriteString(": ")
		for i, it := range items {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(it.String())
		}
		b.WriteString("\n")
	}
	writeList("items", c.Items())
	writeList("additions", c.Additions())
	writeList("moves", c.Moves())
	writeList("removals", c.Removals())
	return b.String()
}

func nextItem(it *CollectionItem) *CollectionItem    { return it.NextItem }
func nextAdded(it *CollectionItem) *CollectionItem   { return it.NextAdded }
func nextMoved(it *CollectionItem) *CollectionItem   { return it.NextMoved }
func nextRemoved(it *CollectionItem) *CollectionItem { return it.NextRemoved }

func collect(head *CollectionItem, next func(*CollectionItem) *CollectionItem) []*CollectionItem {
	var out []*CollectionItem
	for it := head; it != nil; it = next(it) {
		out = append(out, it)
	}
	return out
}

// CollectionDiffer is a stateful structural differ for order-sensitive
// sequences. It retains the previous pass's ordered snapshot across calls.
// Not safe for concurrent use; a differ belongs to exactly one watch record.
type CollectionDiffer struct {
	prev []any
}

// NewCollectionDiffer creates a differ with an empty previous snapshot, so the
// first Check reports every item as an addition. Callers that want a silent
// first pass should prime the differ by discarding one initial Check.
func NewCollectionDiffer() *CollectionDiffer {
	return &CollectionDiffer{}
}

// Check diffs current against the previous pass and replaces the stored
// snapshot. Duplicate values are paired first-seen-first-reused: each current
// item consumes the oldest unconsumed previous item of identical value, which
// keeps the pairing stable when repeated values are merely reordered.
func (d *CollectionDiffer) Check(current []any) *CollectionChange {
	// Bucket unconsumed previous positions by identity, FIFO per bucket.
	// Values without identity are unmatchable and surface as removal+addition.
	buckets := make(map[any][]int, len(d.prev))
	for i, item := range d.prev {
		if k, ok := identityKey(item); ok {
			buckets[k] = append(buckets[k], i)
		}
	}

	change := &CollectionChange{}
	items := make([]*CollectionItem, len(current))
	consumed := make([]bool, len(d.prev))
	var survivors []*CollectionItem

	var itemsTail *CollectionItem
	for i, item := range current {
		node := &CollectionItem{Item: item, PreviousIndex: -1, CurrentIndex: i}
		items[i] = node
		if itemsTail == nil {
			change.FirstItem = node
		} else {
			itemsTail.NextItem = node
		}
		itemsTail = node

		if k, ok := identityKey(item); ok {
			if q := buckets[k]; len(q) > 0 {
				p := q[0]
				buckets[k] = q[1:]
				consumed[p] = true
				node.PreviousIndex = p
				survivors = append(survivors, node)
			}
		}
	}

	// An item moved only if it falls outside the longest run of survivors
	// whose previous positions are already in increasing order.
	stable := longestOrderedRun(survivors)
	var movesTail *CollectionItem
	for i, node := range survivors {
		if stable[i] {
			continue
		}
		if movesTail == nil {
			change.FirstMove = node
		} else {
			movesTail.NextMoved = node
		}
		movesTail = node
	}

	var addsTail *CollectionItem
	for _, node := range items {
		if node.PreviousIndex != -1 {
			continue
		}
		if addsTail == nil {
			change.FirstAddition = node
		} else {
			addsTail.NextAdded = node
		}
		addsTail = node
	}

	var removalsTail *CollectionItem
	for i, item := range d.prev {
		if consumed[i] {
			continue
		}
		node := &CollectionItem{Item: item, PreviousIndex: i, CurrentIndex: -1}
		if removalsTail == nil {
			change.FirstRemoval = node
		} else {
			removalsTail.NextRemoved = node
		}
		removalsTail = node
	}

	d.prev = append(d.prev[:0:0], current...)
	return change
}

// longestOrderedRun marks the survivors forming the longest strictly
// increasing subsequence of previous positions (patience algorithm,
// O(n log n)). Survivors are given in current order; previous positions are
// distinct, so strict and non-decreasing orders coincide.
func longestOrderedRun(survivors []*CollectionItem) []bool {
	n := len(survivors)
	stable := make([]bool, n)
	if n == 0 {
		return stable
	}

	tails := make([]int, 0, n) // tails[k] = index of smallest tail of a run of length k+1
	link := make([]int, n)     // link[i] = predecessor of i in its run, or -1

	for i, node := range survivors {
		pos := node.PreviousIndex
		k := sort.Search(len(tails), func(j int) bool {
			return survivors[tails[j]].PreviousIndex >= pos
		})
		link[i] = -1
		if k > 0 {
			link[i] = tails[k-1]
		}
		if k == len(tails) {
			tails = append(tails, i)
		} else {
			tails[k] = i
		}
	}

	for i := tails[len(tails)-1]; i != -1; i = link[i] {
		stable[i] = true
	}
	return stable
}
