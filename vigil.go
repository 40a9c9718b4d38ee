package vigil

import (
	_ "embed"
	"log/slog"

	"github.com/aretw0/vigil/pkg/detector"
	"github.com/aretw0/vigil/pkg/domain"
)

// Version is the release version, embedded from the VERSION file.
//
//go:embed VERSION
var Version string

// Re-exported core types, so library consumers only need the root package
// for the common watch/mutate/collect loop.
type (
	// WatchGroup is a node in the watch hierarchy.
	WatchGroup = detector.WatchGroup
	// WatchRecord is a single registered watch.
	WatchRecord = detector.WatchRecord
	// ChangeRecord is one reported change in a detection pass.
	ChangeRecord = domain.ChangeRecord
	// Selector describes which aspect of an object a watch observes.
	Selector = domain.Selector
	// LifecycleHooks carries optional observability callbacks.
	LifecycleHooks = domain.LifecycleHooks
	// DigestEvent describes one completed detection pass.
	DigestEvent = domain.DigestEvent
	// WatchEvent describes a watch being added or removed.
	WatchEvent = domain.WatchEvent
	// ErrorHandler receives per-record failures during a detection pass.
	ErrorHandler = detector.ErrorHandler
)

// Sentinel errors surfaced by the engine.
var (
	ErrInvalidSelector  = domain.ErrInvalidSelector
	ErrDigestInProgress = domain.ErrDigestInProgress
	ErrRootGroup        = domain.ErrRootGroup
	ErrGroupRemoved     = domain.ErrGroupRemoved
)

// Selector constructors.
func Field(name string) Selector { return domain.Field(name) }
func Identity() Selector         { return domain.Identity() }
func Items() Selector            { return domain.Items() }
func Entries() Selector          { return domain.Entries() }

// Engine is the high-level entry point for the Vigil library.
// It wraps the detector and provides a simplified API for consumers.
type Engine struct {
	det *detector.Detector
}

// Option defines a functional option for configuring the Engine.
type Option func(*config)

type config struct {
	detOpts []detector.Option
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.detOpts = append(c.detOpts, detector.WithLogger(logger))
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks LifecycleHooks) Option {
	return func(c *config) {
		c.detOpts = append(c.detOpts, detector.WithLifecycleHooks(hooks))
	}
}

// New initializes a new Vigil Engine with an empty root watch group.
func New(opts ...Option) *Engine {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Engine{det: detector.New(cfg.detOpts...)}
}

// Root returns the root watch group. Child groups hang off it.
func (e *Engine) Root() *WatchGroup {
	return e.det.Root()
}

// Watch registers a watch on the root group.
func (e *Engine) Watch(object any, selector Selector, handler any) (*WatchRecord, error) {
	return e.det.Root().Watch(object, selector, handler)
}

// NewGroup creates a child group of the root group.
func (e *Engine) NewGroup() (*WatchGroup, error) {
	return e.det.Root().NewGroup()
}

// CollectChanges runs one detection pass over every registered watch and
// returns the head of the linked change list, or nil when nothing changed.
// A nil handler makes any per-record failure abort the pass.
func (e *Engine) CollectChanges(handler ErrorHandler) (*ChangeRecord, error) {
	return e.det.CollectChanges(handler)
}

// Size returns the number of live watch records.
func (e *Engine) Size() int {
	return e.det.Size()
}
