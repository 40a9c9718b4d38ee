package ports

import (
	"context"
	"testing"
)

// RunRecordStoreContract runs a suite of tests to verify that a RecordStore
// implementation honors the port semantics. Adapters call this from their own
// tests against a fresh, empty store.
func RunRecordStoreContract(t *testing.T, store RecordStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("Empty", func(t *testing.T) {
		entries, err := store.Entries(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing empty store: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("expected empty store, got %d entries", len(entries))
		}
	})

	t.Run("FirstWriteWins", func(t *testing.T) {
		stored, err := store.Record(ctx, "alpha", "one")
		if err != nil {
			t.Fatalf("unexpected error recording: %v", err)
		}
		if !stored {
			t.Error("expected first write to store")
		}

		stored, err = store.Record(ctx, "alpha", "two")
		if err != nil {
			t.Fatalf("unexpected error re-recording: %v", err)
		}
		if stored {
			t.Error("expected duplicate key to be ignored")
		}

		entries, err := store.Entries(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing: %v", err)
		}
		if len(entries) != 1 || entries[0].Data != "one" {
			t.Errorf("expected single entry with first data, got %+v", entries)
		}
	})

	t.Run("FirstSeenOrder", func(t *testing.T) {
		for _, key := range []string{"bravo", "charlie", "delta"} {
			if _, err := store.Record(ctx, key, "v:"+key); err != nil {
				t.Fatalf("unexpected error recording %s: %v", key, err)
			}
		}
		// Re-record an early key; order must not change.
		if _, err := store.Record(ctx, "bravo", "late"); err != nil {
			t.Fatalf("unexpected error re-recording: %v", err)
		}

		entries, err := store.Entries(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing: %v", err)
		}
		want := []string{"alpha", "bravo", "charlie", "delta"}
		if len(entries) != len(want) {
			t.Fatalf("expected %d entries, got %d", len(want), len(entries))
		}
		for i, key := range want {
			if entries[i].Key != key {
				t.Errorf("entry %d: expected key %s, got %s", i, key, entries[i].Key)
			}
		}
	})
}
