// Package ports defines the driven-side interfaces of vigil, currently the
// RecordStore used by the replay recorder, together with a reusable contract
// test suite that every adapter must pass.
package ports
