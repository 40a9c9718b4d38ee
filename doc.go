/*
Package vigil is an identity-based change detection engine for watching
objects, ordered collections and maps, and reporting what changed between
explicit detection passes.

It implements hierarchical dirty checking: watches are registered on a tree of
watch groups, a detection pass visits every live watch in registration order,
and removing a group detaches its whole subtree in constant time. Comparison
is by identity (reference sameness or scalar equality), never deep equality.

# Concept

Vigil treats change detection as a pull model. Your application mutates its
objects freely, then asks the engine to collect changes. The engine reads each
watched aspect, compares it against the last observed value and hands back a
linked list of change records. Nothing is reported twice: observing a change
also acknowledges it.

# Key Features

  - Identity Comparison: References match only themselves; deeply equal
    clones are reported as changes.
  - Structural Diffs: Collection watches report additions, removals and a
    minimal set of moves; map watches report added, changed and removed keys.
  - Hierarchical Groups: Watches are organized in a tree, and discarding a
    group removes every watch underneath it at once.
  - Deterministic Order: Changes are always reported in registration order,
    parents before children.

# Usage

	package main

	import (
		"fmt"
		"log"

		"github.com/aretw0/vigil"
	)

	type User struct {
		Name string
	}

	func main() {
		engine := vigil.New()

		user := &User{Name: "alice"}
		if _, err := engine.Watch(user, vigil.Field("Name"), "user.name"); err != nil {
			log.Fatal(err)
		}

		user.Name = "bob"

		changes, err := engine.CollectChanges(nil)
		if err != nil {
			log.Fatal(err)
		}
		for c := changes; c != nil; c = c.Next {
			fmt.Printf("%v: %v -> %v\n", c.Handler, c.PreviousValue, c.CurrentValue)
		}
	}
*/
package vigil
