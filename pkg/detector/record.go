package detector

import (
	"fmt"
	"reflect"
	"time"

	"github.com/aretw0/vigil/pkg/diff"
	"github.com/aretw0/vigil/pkg/domain"
)

// WatchRecord is a single watched binding: a non-owning reference to the
// watched object, a selector, an opaque handler, and the cached previous and
// current values. Only the digest check mutates the cached values.
type WatchRecord struct {
	prev, next *WatchRecord
	group      *WatchGroup
	marker     bool
	removed    bool

	object   any
	selector domain.Selector
	handler  any

	previousValue any
	currentValue  any

	items   *diff.CollectionDiffer
	entries *diff.MapDiffer
}

// Object returns the watched object reference.
func (r *WatchRecord) Object() any { return r.object }

// Selector returns the record's selector.
func (r *WatchRecord) Selector() domain.Selector { return r.selector }

// Handler returns the opaque handler supplied at registration.
func (r *WatchRecord) Handler() any { return r.handler }

// CurrentValue returns the value cached by the most recent check.
func (r *WatchRecord) CurrentValue() any { return r.currentValue }

// PreviousValue returns the value the most recent change was compared against.
func (r *WatchRecord) PreviousValue() any { return r.previousValue }

// SetObject swaps the watched object reference, keeping the binding. The
// selector is re-validated against the new object's shape. The next digest
// pass compares against the previous object's cached value, so the swap
// itself surfaces as a change when the values differ by identity.
func (r *WatchRecord) SetObject(object any) error {
	if r.group.det.digesting {
		return domain.ErrDigestInProgress
	}
	if err := validate(object, r.selector); err != nil {
		return err
	}
	r.object = object
	return nil
}

// Remove unlinks this single record from the traversal structure without
// touching its siblings. Removing an already-removed record, or a record
// whose group was removed, is a no-op.
func (r *WatchRecord) Remove() error {
	if r.group.det.digesting {
		return domain.ErrDigestInProgress
	}
	if r.removed {
		return nil
	}
	if r.group.isDetached() {
		r.removed = true
		return nil
	}

	g := r.group
	r.prev.next = r.next
	if r.next != nil {
		r.next.prev = r.prev
	}
	if g.ownTail == r {
		g.ownTail = r.prev
	}
	for p := g; p != nil && p.subtreeTail == r; p = p.parent {
		p.subtreeTail = r.prev
	}

	r.removed = true
	g.own--
	g.det.records--

	if g.det.hooks.OnWatchRemoved != nil {
		g.det.hooks.OnWatchRemoved(&domain.WatchEvent{
			Timestamp: time.Now(),
			Selector:  r.selector,
			Removed:   1,
		})
	}
	return nil
}

// newRecord validates the selector against the object and primes the record
// with the current value so the first digest reports nothing.
func newRecord(g *WatchGroup, object any, selector domain.Selector, handler any) (*WatchRecord, error) {
	if err := validate(object, selector); err != nil {
		return nil, err
	}

	rec := &WatchRecord{
		group:    g,
		object:   object,
		selector: selector,
		handler:  handler,
	}

	switch selector.Kind {
	case domain.KindItems:
		rec.items = diff.NewCollectionDiffer()
		if cur, err := rec.readSequence(); err == nil {
			rec.items.Check(cur)
		}
	case domain.KindEntries:
		rec.entries = diff.NewMapDiffer()
		if cur, err := rec.readEntries(); err == nil {
			rec.entries.Check(cur)
		}
	default:
		if cur, err := rec.read(); err == nil {
			rec.currentValue = cur
			rec.previousValue = cur
		}
	}
	return rec, nil
}

// safeCheck runs check and converts reflection panics from dynamic shape
// divergence into per-record errors, so a digest pass can isolate them.
func (r *WatchRecord) safeCheck() (change *domain.ChangeRecord, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			change = nil
			err = fmt.Errorf("watched object no longer matches selector: %v", rec)
		}
	}()
	return r.check()
}

// check re-reads the watched binding and compares it against the cached value.
// Field and identity selectors compare by identity; items and entries
// selectors delegate to the record's differ and report a change whenever the
// differ's report is non-empty, exposing the report as the current value.
func (r *WatchRecord) check() (*domain.ChangeRecord, error) {
	switch r.selector.Kind {
	case domain.KindItems:
		cur, err := r.readSequence()
		if err != nil {
			return nil, err
		}
		change := r.items.Check(cur)
		if change.IsEmpty() {
			return nil, nil
		}
		r.currentValue = change
		return r.snapshot(change, nil), nil

	case domain.KindEntries:
		cur, err := r.readEntries()
		if err != nil {
			return nil, err
		}
		change := r.entries.Check(cur)
		if change.IsEmpty() {
			return nil, nil
		}
		r.currentValue = change
		return r.snapshot(change, nil), nil

	default:
		cur, err := r.read()
		if err != nil {
			return nil, err
		}
		if diff.Identical(cur, r.currentValue) {
			return nil, nil
		}
		r.previousValue = r.currentValue
		r.currentValue = cur
		return r.snapshot(cur, r.previousValue), nil
	}
}

func (r *WatchRecord) snapshot(current, previous any) *domain.ChangeRecord {
	return &domain.ChangeRecord{
		Object:        r.object,
		Selector:      r.selector,
		Handler:       r.handler,
		CurrentValue:  current,
		PreviousValue: previous,
	}
}

// read evaluates field and identity selectors.
func (r *WatchRecord) read() (any, error) {
	if r.selector.Kind == domain.KindIdentity {
		return r.object, nil
	}

	rv, err := indirect(r.object)
	if err != nil {
		return nil, err
	}
	switch rv.Kind() {
	case reflect.Struct:
		f := rv.FieldByName(r.selector.Name)
		if !f.IsValid() {
			return nil, fmt.Errorf("field %q not present on %s", r.selector.Name, rv.Type())
		}
		return f.Interface(), nil
	case reflect.Map:
		key := reflect.ValueOf(r.selector.Name).Convert(rv.Type().Key())
		v := rv.MapIndex(key)
		if !v.IsValid() {
			// Absent entries read as nil rather than failing the pass.
			return nil, nil
		}
		return v.Interface(), nil
	}
	return nil, fmt.Errorf("cannot read field %q from %T", r.selector.Name, r.object)
}

// readSequence snapshots the watched sequence's items in iteration order.
func (r *WatchRecord) readSequence() ([]any, error) {
	rv, err := indirect(r.object)
	if err != nil {
		return nil, err
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("watched value is %s, not a sequence", rv.Kind())
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

// readEntries snapshots the watched map's entries in its current iteration
// order. The order is whatever the underlying map yields; it is not stable
// across passes.
func (r *WatchRecord) readEntries() ([]diff.KeyValue, error) {
	rv, err := indirect(r.object)
	if err != nil {
		return nil, err
	}
	if rv.Kind() != reflect.Map {
		return nil, fmt.Errorf("watched value is %s, not a map", rv.Kind())
	}
	out := make([]diff.KeyValue, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out = append(out, diff.KeyValue{Key: iter.Key().Interface(), Value: iter.Value().Interface()})
	}
	return out, nil
}

// validate checks a selector against the object's runtime shape. It mirrors
// the read paths: whatever validates here is readable at digest time unless
// the shape diverges later through an interface indirection.
func validate(object any, selector domain.Selector) error {
	if selector.Kind == domain.KindIdentity {
		return nil
	}
	if object == nil {
		return fmt.Errorf("%w: %s selector on nil object", domain.ErrInvalidSelector, selector.Kind)
	}

	rv, err := indirect(object)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidSelector, err)
	}

	switch selector.Kind {
	case domain.KindField:
		if selector.Name == "" {
			return fmt.Errorf("%w: empty field name", domain.ErrInvalidSelector)
		}
		switch rv.Kind() {
		case reflect.Struct:
			f := rv.FieldByName(selector.Name)
			if !f.IsValid() {
				return fmt.Errorf("%w: %s has no field %q", domain.ErrInvalidSelector, rv.Type(), selector.Name)
			}
			if !f.CanInterface() {
				return fmt.Errorf("%w: field %q of %s is unexported", domain.ErrInvalidSelector, selector.Name, rv.Type())
			}
		case reflect.Map:
			if rv.Type().Key().Kind() != reflect.String {
				return fmt.Errorf("%w: field selector requires string-keyed map, got %s", domain.ErrInvalidSelector, rv.Type())
			}
		default:
			return fmt.Errorf("%w: field selector on %s", domain.ErrInvalidSelector, rv.Kind())
		}

	case domain.KindItems:
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return fmt.Errorf("%w: items selector on %s", domain.ErrInvalidSelector, rv.Kind())
		}

	case domain.KindEntries:
		if rv.Kind() != reflect.Map {
			return fmt.Errorf("%w: entries selector on %s", domain.ErrInvalidSelector, rv.Kind())
		}

	default:
		return fmt.Errorf("%w: unknown selector kind %d", domain.ErrInvalidSelector, selector.Kind)
	}
	return nil
}

// indirect dereferences pointers and interfaces down to the watched value.
// Watching through a pointer cell (e.g. *any or *[]T) is how callers make
// reassignment visible between passes.
func indirect(object any) (reflect.Value, error) {
	rv := reflect.ValueOf(object)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return reflect.Value{}, fmt.Errorf("nil %s in watched object", rv.Kind())
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return reflect.Value{}, fmt.Errorf("invalid watched object")
	}
	return rv, nil
}
