/*
Package diff implements the stateful structural differs backing vigil's
sequence and map watches.

Both differs retain the previous pass's snapshot and, on each Check, produce a
fully rebuilt change report as a set of singly linked, iteration-ordered lists.
Comparison is always by identity (see Identical), never by deep equality.

The CollectionDiffer pairs duplicate values first-seen-first-reused and reports
the minimal set of moves: an item is only flagged as moved when its order
relative to the other surviving items changed, not merely because insertions or
removals elsewhere shifted its absolute index.
*/
package diff
