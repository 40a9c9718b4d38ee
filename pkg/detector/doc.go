/*
Package detector implements the hierarchical change-detection engine: a tree
of watch groups holding ordered watch records, re-evaluated on demand by
digest passes.

The tree shares one doubly linked record sequence in registration order.
Each group's subtree occupies a contiguous run of that sequence, which is what
makes removing a whole subtree independent of its record count: only the run's
boundary pointers are relinked.

Comparison is always by identity. Sequence and map watches delegate to the
stateful differs in package diff and report the differ's change object as the
record's current value.
*/
package detector
