// Package domain holds the core value types of the vigil change-detection
// engine: selectors, change records, lifecycle events and sentinel errors.
// It has no dependencies on the engine itself so adapters can share these
// types without importing detection internals.
package domain
