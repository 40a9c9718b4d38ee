package domain

import "errors"

// ErrInvalidSelector is returned when a selector is incompatible with the
// runtime shape of the watched object (e.g. an items selector on a non-sequence).
var ErrInvalidSelector = errors.New("selector incompatible with watched object")

// ErrDigestInProgress is returned when the watch tree is mutated while a
// digest pass is running. Mutations are never queued; the caller must retry
// after the pass returns.
var ErrDigestInProgress = errors.New("watch tree mutation during digest pass")

// ErrRootGroup is returned when attempting to remove the detector's root group.
var ErrRootGroup = errors.New("root group cannot be removed")

// ErrGroupRemoved is returned when registering a watch or child group on a
// group that has already been detached from the tree.
var ErrGroupRemoved = errors.New("group has been removed")
