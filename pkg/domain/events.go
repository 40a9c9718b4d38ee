package domain

import "time"

// DigestEvent describes one completed (or aborted) digest pass.
type DigestEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Changes   int           `json:"changes"`
	Records   int           `json:"records"`
	Duration  time.Duration `json:"duration"`
	Err       error         `json:"-"`
}

// WatchEvent describes a watch record being added to or removed from the tree.
// Removed is the number of records affected; group removal detaches a whole
// subtree at once.
type WatchEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Selector  Selector  `json:"selector"`
	Removed   int       `json:"removed,omitempty"`
}

// LifecycleHooks defines callbacks for detector observability.
// Nil callbacks are skipped. Hooks run synchronously on the digest goroutine
// and must not mutate the watch tree.
type LifecycleHooks struct {
	OnDigestStart  func(*DigestEvent)
	OnDigestEnd    func(*DigestEvent)
	OnWatchAdded   func(*WatchEvent)
	OnWatchRemoved func(*WatchEvent)
}
