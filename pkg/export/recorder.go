// Package export implements the replay recorder: a small text-generation
// helper that serializes previously recorded key/value observations into a
// fixed-template replay document. It consumes (key, data) pairs handed to it
// by the host and has no access to the detection engine's internals.
package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/vigil/pkg/adapters/memory"
	"github.com/aretw0/vigil/pkg/ports"
)

const (
	header = "# Code generated by vigil replay recorder. DO NOT EDIT.\nreplay:\n"
	footer = "# end of replay table\n"
)

// Recorder collects observations and emits them as a replay document.
// Storage is pluggable through ports.RecordStore; the default is in-memory.
type Recorder struct {
	store ports.RecordStore
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithStore injects a custom RecordStore (e.g. the Redis adapter).
func WithStore(store ports.RecordStore) Option {
	return func(r *Recorder) {
		r.store = store
	}
}

// NewRecorder creates a recorder backed by an in-memory store unless
// WithStore overrides it.
func NewRecorder(opts ...Option) *Recorder {
	r := &Recorder{}
	for _, opt := range opts {
		opt(r)
	}
	if r.store == nil {
		r.store = memory.NewStore()
	}
	return r
}

// Record stores (key, data) the first time key is seen. Later calls with the
// same key are silently ignored, whatever their data.
func (r *Recorder) Record(ctx context.Context, key, data string) error {
	_, err := r.store.Record(ctx, key, data)
	return err
}

// Generate emits the replay document: a fixed header, one line per recorded
// pair in first-seen order with key and data as escaped literals, and a fixed
// footer. Output is byte-deterministic for a given record sequence.
func (r *Recorder) Generate(ctx context.Context) (string, error) {
	entries, err := r.store.Entries(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load recorded entries: %w", err)
	}

	var b strings.Builder
	b.WriteString(header)
	for _, e := range entries {
		fmt.Fprintf(&b, "  %s: %s\n", literal(e.Key), literal(e.Data))
	}
	b.WriteString(footer)
	return b.String(), nil
}

// literal renders s as a quoted template literal. Escape characters are
// escaped first so the later replacements cannot be re-interpreted, then the
// {{ }} interpolation delimiters of the replay template are neutralized.
var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func literal(s string) string {
	s = literalEscaper.Replace(s)
	s = strings.ReplaceAll(s, "{{", `\{\{`)
	s = strings.ReplaceAll(s, "}}", `\}\}`)
	return `"` + s + `"`
}
