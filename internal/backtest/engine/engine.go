package engine

import (
	"context"
	"time"
)

// Lifecycle callback types for a run.
// Callbacks with an error return abort the run when they return an error.

// OnRunStartCallback is called once before the first tick. runID is generated
// before the feed is advanced.
type OnRunStartCallback func(runID string, symbols []string, live bool) error

// OnTickCallback is called after every tick has been fully drained.
type OnTickCallback func(tick int, at time.Time) error

// OnRunEndCallback is called when the run stops (always called via defer).
// resultPath is empty when no results were written.
type OnRunEndCallback func(runID string, resultPath string, err error)

// LifecycleCallbacks holds all lifecycle callback functions for the engine.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnRunStart *OnRunStartCallback
	OnTick     *OnTickCallback
	OnRunEnd   *OnRunEndCallback
}

// Engine drives a feed tick by tick and turns what it emits into orders.
type Engine interface {
	// RunID identifies the run in logs, audit rows and result folders.
	RunID() string
	// Step advances the feed once and drains every event the tick caused,
	// then hands pending limit orders to the executor.
	Step(ctx context.Context) error
	// Run steps until history is exhausted, or for live feeds until ctx is
	// cancelled.
	Run(ctx context.Context, callbacks LifecycleCallbacks) error
}
