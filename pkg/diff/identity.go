package diff

import "reflect"

// refKey identifies a reference value (pointer, map, slice, chan, func) by its
// dynamic type and data pointer. Slices additionally carry their length so two
// slices sharing a backing array but of different lengths are distinct.
type refKey struct {
	t reflect.Type
	p uintptr
	l int
}

// identityKey derives a comparable key for v that stands in for its identity.
// Reference kinds key on their data pointer; comparable values key on the
// value itself. The second return is false when v has no usable identity
// (an uncomparable, non-reference value such as a struct containing a slice):
// such values can never match anything, including themselves.
func identityKey(v any) (any, bool) {
	if v == nil {
		return nil, true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return refKey{t: rv.Type(), p: rv.Pointer()}, true
	case reflect.Slice:
		return refKey{t: rv.Type(), p: rv.Pointer(), l: rv.Len()}, true
	}
	if rv.Comparable() {
		return v, true
	}
	return nil, false
}

// Identical reports whether a and b are the same value by identity.
// Pointers, maps, slices, channels and functions compare by reference;
// comparable values compare with ==. Values without identity are never
// identical. This is deliberately not a deep equality check.
func Identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ka, oka := identityKey(a)
	kb, okb := identityKey(b)
	if !oka || !okb {
		return false
	}
	return ka == kb
}
