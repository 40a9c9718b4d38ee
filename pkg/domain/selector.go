package domain

import "fmt"

// SelectorKind enumerates the closed set of bindings a watch record can observe.
// The kind is fixed when the watch is registered and never changes afterwards.
type SelectorKind int

const (
	// KindField observes a single named field of a struct pointer, or a
	// string-keyed entry of a map.
	KindField SelectorKind = iota

	// KindIdentity observes the object reference itself.
	KindIdentity

	// KindItems observes the ordered items of a slice or array, producing
	// structural diffs (additions, removals, moves).
	KindItems

	// KindEntries observes the entries of a map, producing structural diffs
	// (additions, removals, value changes).
	KindEntries
)

func (k SelectorKind) String() string {
	switch k {
	case KindField:
		return "field"
	case KindIdentity:
		return "identity"
	case KindItems:
		return "items"
	case KindEntries:
		return "entries"
	}
	return fmt.Sprintf("unknown(%d)", int(k))
}

// Selector describes which part of a watched object a record observes.
// Selectors are validated against the object's runtime shape at registration
// time; an incompatible selector fails immediately with ErrInvalidSelector
// and is never deferred to digest time.
type Selector struct {
	Kind SelectorKind

	// Name is the field or entry name. Only meaningful for KindField.
	Name string
}

func (s Selector) String() string {
	if s.Kind == KindField {
		return fmt.Sprintf("field(%s)", s.Name)
	}
	return s.Kind.String()
}

// Field selects a named field of a struct pointer or a string-keyed map entry.
func Field(name string) Selector {
	return Selector{Kind: KindField, Name: name}
}

// Identity selects the watched object reference itself.
func Identity() Selector {
	return Selector{Kind: KindIdentity}
}

// Items selects the ordered items of a sequence (slice or array).
func Items() Selector {
	return Selector{Kind: KindItems}
}

// Entries selects the entries of a map.
func Entries() Selector {
	return Selector{Kind: KindEntries}
}
