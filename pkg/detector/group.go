package detector

import (
	"time"

	"github.com/aretw0/vigil/pkg/domain"
)

// WatchGroup is one node of the watch tree. It owns an ordered run of watch
// records (registration order) and an ordered list of child groups (creation
// order).
//
// The whole tree shares a single doubly linked record sequence; every group's
// subtree occupies one contiguous run of it, headed by an internal marker
// record. The traversal order inside a run is the group's own records followed
// by each child subtree. Because runs are contiguous, Remove detaches an
// entire subtree by relinking the two boundary pointers, without touching the
// records in between.
type WatchGroup struct {
	det      *Detector
	parent   *WatchGroup
	children []*WatchGroup

	marker      *WatchRecord // sentinel heading this group's run
	ownTail     *WatchRecord // last direct record (the marker when none)
	subtreeTail *WatchRecord // last record of the entire subtree run

	removed bool
	own     int // direct live records
}

// Watch registers a new watch record on this group. The selector is validated
// against the object's runtime shape immediately; an incompatible pairing
// fails with domain.ErrInvalidSelector and is never deferred to digest time.
//
// The record is primed with the object's current value (or contents, for items
// and entries selectors), so a digest pass with no intervening mutation
// reports no change. The handler is opaque to the engine and is carried on
// every change record the watch produces.
func (g *WatchGroup) Watch(object any, selector domain.Selector, handler any) (*WatchRecord, error) {
	if g.det.digesting {
		return nil, domain.ErrDigestInProgress
	}
	if g.isDetached() {
		return nil, domain.ErrGroupRemoved
	}

	rec, err := newRecord(g, object, selector, handler)
	if err != nil {
		return nil, err
	}

	g.insertOwn(rec)
	g.own++
	g.det.records++

	if g.det.hooks.OnWatchAdded != nil {
		g.det.hooks.OnWatchAdded(&domain.WatchEvent{Timestamp: time.Now(), Selector: selector})
	}
	return rec, nil
}

// NewGroup creates a child group. Its records will be ordered after all of
// this group's direct records and after every earlier child's subtree.
func (g *WatchGroup) NewGroup() (*WatchGroup, error) {
	if g.det.digesting {
		return nil, domain.ErrDigestInProgress
	}
	if g.isDetached() {
		return nil, domain.ErrGroupRemoved
	}

	marker := &WatchRecord{marker: true}
	child := &WatchGroup{
		det:         g.det,
		parent:      g,
		marker:      marker,
		ownTail:     marker,
		subtreeTail: marker,
	}
	marker.group = child

	at := g.subtreeTail
	linkAfter(at, marker)
	for p := g; p != nil && p.subtreeTail == at; p = p.parent {
		p.subtreeTail = marker
	}

	g.children = append(g.children, child)
	return child, nil
}

// Remove detaches this group, every descendant group and all of their records
// from the traversal structure by unlinking the subtree's contiguous run.
// The cost is independent of the number of detached records. Removing an
// already-removed group is a no-op; removing the root is an error.
func (g *WatchGroup) Remove() error {
	if g.det.digesting {
		return domain.ErrDigestInProgress
	}
	if g.removed {
		return nil
	}
	if g.parent == nil {
		return domain.ErrRootGroup
	}
	if g.isDetached() {
		g.removed = true
		return nil
	}

	detached := g.subtreeSize()

	// Unlink the run [marker .. subtreeTail]. The root marker precedes every
	// run, so prev is always non-nil.
	prev := g.marker.prev
	next := g.subtreeTail.next
	prev.next = next
	if next != nil {
		next.prev = prev
	}
	for p := g.parent; p != nil && p.subtreeTail == g.subtreeTail; p = p.parent {
		p.subtreeTail = prev
	}

	for i, c := range g.parent.children {
		if c == g {
			g.parent.children = append(g.parent.children[:i], g.parent.children[i+1:]...)
			break
		}
	}

	g.removed = true
	g.det.records -= detached

	if g.det.hooks.OnWatchRemoved != nil {
		g.det.hooks.OnWatchRemoved(&domain.WatchEvent{Timestamp: time.Now(), Removed: detached})
	}
	return nil
}

// Size returns the number of live records in this group's subtree.
func (g *WatchGroup) Size() int {
	if g.removed {
		return 0
	}
	return g.subtreeSize()
}

func (g *WatchGroup) subtreeSize() int {
	n := g.own
	for _, c := range g.children {
		n += c.subtreeSize()
	}
	return n
}

func (g *WatchGroup) isDetached() bool {
	for p := g; p != nil; p = p.parent {
		if p.removed {
			return true
		}
	}
	return false
}

// insertOwn appends rec at the end of the group's own record run, which sits
// after previously registered records and before the first child's run.
func (g *WatchGroup) insertOwn(rec *WatchRecord) {
	at := g.ownTail
	linkAfter(at, rec)
	if at == g.subtreeTail {
		for p := g; p != nil && p.subtreeTail == at; p = p.parent {
			p.subtreeTail = rec
		}
	}
	g.ownTail = rec
}

func linkAfter(at, rec *WatchRecord) {
	rec.prev = at
	rec.next = at.next
	if at.next != nil {
		at.next.prev = rec
	}
	at.next = rec
}
