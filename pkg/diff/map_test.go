package diff

import (
	"testing"
)

func kvs(pairs ...KeyValue) []KeyValue { return pairs }

func keys(entries []*MapEntry) []any {
	out := make([]any, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Key)
	}
	return out
}

func TestMapDiffer(t *testing.T) {
	tests := []struct {
		name          string
		previous      []KeyValue
		current       []KeyValue
		wantAdditions []any
		wantChanges   []any
		wantRemovals  []any
	}{
		{
			name:          "Add Key",
			previous:      kvs(KeyValue{"a", 1}),
			current:       kvs(KeyValue{"a", 1}, KeyValue{"b", 2}),
			wantAdditions: []any{"b"},
		},
		{
			name:        "Change Value",
			previous:    kvs(KeyValue{"a", 1}, KeyValue{"b", 2}),
			current:     kvs(KeyValue{"a", 9}, KeyValue{"b", 2}),
			wantChanges: []any{"a"},
		},
		{
			name:         "Remove Key",
			previous:     kvs(KeyValue{"a", 1}, KeyValue{"b", 2}),
			current:      kvs(KeyValue{"b", 2}),
			wantRemovals: []any{"a"},
		},
		{
			name:     "No Change",
			previous: kvs(KeyValue{"a", 1}),
			current:  kvs(KeyValue{"a", 1}),
		},
		{
			name:          "Mixed",
			previous:      kvs(KeyValue{"a", 1}, KeyValue{"b", 2}, KeyValue{"c", 3}),
			current:       kvs(KeyValue{"a", 1}, KeyValue{"b", 9}, KeyValue{"d", 4}),
			wantAdditions: []any{"d"},
			wantChanges:   []any{"b"},
			wantRemovals:  []any{"c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewMapDiffer()
			d.Check(tt.previous)
			change := d.Check(tt.current)

			if got := keys(change.Entries()); !equalValues(got, keysOf(tt.current)) {
				t.Errorf("Entries() keys = %v, want %v", got, keysOf(tt.current))
			}
			if got := keys(change.Additions()); !equalValues(got, tt.wantAdditions) {
				t.Errorf("Additions() = %v, want %v", got, tt.wantAdditions)
			}
			if got := keys(change.Changes()); !equalValues(got, tt.wantChanges) {
				t.Errorf("Changes() = %v, want %v", got, tt.wantChanges)
			}
			if got := keys(change.Removals()); !equalValues(got, tt.wantRemovals) {
				t.Errorf("Removals() = %v, want %v", got, tt.wantRemovals)
			}

			wantEmpty := len(tt.wantAdditions) == 0 && len(tt.wantChanges) == 0 && len(tt.wantRemovals) == 0
			if change.IsEmpty() != wantEmpty {
				t.Errorf("IsEmpty() = %v, want %v", change.IsEmpty(), wantEmpty)
			}
		})
	}
}

func keysOf(pairs []KeyValue) []any {
	out := make([]any, 0, len(pairs))
	for _, kv := range pairs {
		out = append(out, kv.Key)
	}
	return out
}

func TestMapDiffer_ValueIdentityNotDeepEquality(t *testing.T) {
	v1 := &struct{ N int }{N: 1}
	v2 := &struct{ N int }{N: 1}

	d := NewMapDiffer()
	d.Check(kvs(KeyValue{"k", v1}))
	change := d.Check(kvs(KeyValue{"k", v2}))

	if len(change.Changes()) != 1 {
		t.Fatalf("replacing a pointer with a deeply-equal one must report a change, got %v", change)
	}
}

func TestMapDiffer_EntriesCarryValues(t *testing.T) {
	d := NewMapDiffer()
	d.Check(kvs(KeyValue{"a", 1}))
	change := d.Check(kvs(KeyValue{"a", 2}))

	changed := change.Changes()[0]
	if changed.PreviousValue != 1 || changed.CurrentValue != 2 {
		t.Errorf("changed entry = %v, want 1->2", changed)
	}

	change = d.Check(kvs())
	removed := change.Removals()[0]
	if removed.PreviousValue != 2 || removed.CurrentValue != nil {
		t.Errorf("removed entry = %v, want previous 2, current nil", removed)
	}
}
