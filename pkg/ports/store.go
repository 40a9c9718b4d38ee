package ports

import "context"

// RecordedEntry is one replay observation: an opaque key and its data payload.
type RecordedEntry struct {
	Key  string `json:"key"`
	Data string `json:"data"`
}

// RecordStore persists replay observations with first-write-wins semantics.
// The first Record call for a key stores its data; later calls with the same
// key are silently ignored, whatever their data.
type RecordStore interface {
	// Record stores (key, data) unless the key was seen before.
	// It returns true when the entry was stored.
	Record(ctx context.Context, key, data string) (bool, error)

	// Entries returns all recorded pairs in first-seen order.
	Entries(ctx context.Context) ([]RecordedEntry, error)
}
