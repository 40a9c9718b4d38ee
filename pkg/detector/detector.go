package detector

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/vigil/pkg/domain"
)

// ErrorHandler receives per-record evaluation failures during a digest pass.
// When supplied to CollectChanges, a failing record is reported and skipped
// and the pass continues with the next record.
type ErrorHandler func(err error, rec *WatchRecord)

// Detector owns a tree of watch groups and runs digest passes over it.
//
// Execution is single-threaded and cooperative: one CollectChanges pass runs
// to completion before another may start, and mutating the tree (Watch,
// NewGroup, Remove) while a pass is running fails with ErrDigestInProgress.
// A multi-threaded host must serialize all tree mutations and digest passes
// behind a single exclusive section; the detector itself takes no locks.
type Detector struct {
	root      *WatchGroup
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
	digesting bool
	records   int
}

// Option configures a Detector.
type Option func(*Detector)

// WithLogger sets a structured logger. Defaults to a discard logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) {
		d.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(d *Detector) {
		d.hooks = hooks
	}
}

// New creates a detector with an empty root group.
func New(opts ...Option) *Detector {
	d := &Detector{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}

	marker := &WatchRecord{marker: true}
	d.root = &WatchGroup{det: d, marker: marker, ownTail: marker, subtreeTail: marker}
	marker.group = d.root
	return d
}

// Root returns the root watch group. The root cannot be removed.
func (d *Detector) Root() *WatchGroup {
	return d.root
}

// Size returns the number of live watch records in the tree.
func (d *Detector) Size() int {
	return d.records
}

// CollectChanges performs one digest pass: a pre-order walk of the group tree
// (a group's own records in registration order before its child subtrees in
// creation order) invoking every record's check. All detected changes are
// linked, in traversal order, into a single list; the head is returned, or nil
// when nothing changed.
//
// When handler is nil, the first record evaluation failure aborts the pass:
// the partial change list is discarded and the error is returned. When a
// handler is supplied, failures are reported to it and the pass continues.
func (d *Detector) CollectChanges(handler ErrorHandler) (*domain.ChangeRecord, error) {
	if d.digesting {
		return nil, domain.ErrDigestInProgress
	}
	d.digesting = true
	defer func() { d.digesting = false }()

	start := time.Now()
	if d.hooks.OnDigestStart != nil {
		d.hooks.OnDigestStart(&domain.DigestEvent{Timestamp: start, Records: d.records})
	}

	var head, tail *domain.ChangeRecord
	changes := 0
	var fatal error

	for r := d.root.marker.next; r != nil; r = r.next {
		if r.marker {
			continue
		}
		change, err := r.safeCheck()
		if err != nil {
			err = fmt.Errorf("check %s: %w", r.selector, err)
			if handler == nil {
				fatal = err
				break
			}
			d.logger.Warn("watch check failed", "selector", r.selector.String(), "err", err)
			handler(err, r)
			continue
		}
		if change == nil {
			continue
		}
		if tail == nil {
			head = change
		} else {
			tail.Next = change
		}
		tail = change
		changes++
	}

	elapsed := time.Since(start)
	if d.hooks.OnDigestEnd != nil {
		d.hooks.OnDigestEnd(&domain.DigestEvent{
			Timestamp: time.Now(),
			Changes:   changes,
			Records:   d.records,
			Duration:  elapsed,
			Err:       fatal,
		})
	}

	if fatal != nil {
		d.logger.Error("digest aborted", "err", fatal)
		return nil, fatal
	}

	d.logger.Debug("digest complete", "changes", changes, "records", d.records, "duration", elapsed)
	return head, nil
}
