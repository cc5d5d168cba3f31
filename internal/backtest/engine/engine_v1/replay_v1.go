package engine

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-replay/internal/audit"
	"github.com/rxtech-lab/argo-replay/internal/backtest/engine"
	"github.com/rxtech-lab/argo-replay/internal/events"
	"github.com/rxtech-lab/argo-replay/internal/execution"
	"github.com/rxtech-lab/argo-replay/internal/feed"
	"github.com/rxtech-lab/argo-replay/internal/logger"
	"github.com/rxtech-lab/argo-replay/internal/metrics"
	"github.com/rxtech-lab/argo-replay/internal/portfolio"
	"github.com/rxtech-lab/argo-replay/internal/rebalance"
	"github.com/rxtech-lab/argo-replay/internal/strategy"
	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
	"go.uber.org/zap"
)

// DefaultPollInterval paces live runs when Options.PollInterval is zero.
const DefaultPollInterval = time.Minute

// Options are the collaborators of an EngineV1. Feed, Trigger and Generator
// must already be wired to Events.
type Options struct {
	Feed      feed.Feed
	Strategy  strategy.Strategy
	Trigger   rebalance.Trigger
	Generator *portfolio.OrderGenerator
	Executor  execution.Executor
	Account   execution.Account
	// Events receives market, signal and market-order events.
	Events *events.Queue
	// Pending collects admitted limit orders until the end of the tick.
	Pending      *events.Queue
	Audit        audit.Recorder
	Metrics      *metrics.Metrics
	Logger       *logger.Logger
	PollInterval time.Duration
	// ResultsPath is where the audit trail is exported after a run. Empty
	// disables the export.
	ResultsPath string
}

type resultWriter interface {
	Write(dir string) (string, error)
}

// EngineV1 runs the single-threaded tick loop: advance the feed, drain the
// event queue, then hand pending limit orders to the executor.
type EngineV1 struct {
	feed         feed.Feed
	strategy     strategy.Strategy
	trigger      rebalance.Trigger
	generator    *portfolio.OrderGenerator
	admission    *portfolio.Admission
	executor     execution.Executor
	account      execution.Account
	events       *events.Queue
	pending      *events.Queue
	audit        audit.Recorder
	metrics      *metrics.Metrics
	log          *logger.Logger
	pollInterval time.Duration
	resultsPath  string
	runID        string
	ticks        int
	lastTick     time.Time
	closers      []func() error
}

var _ engine.Engine = (*EngineV1)(nil)

func New(options Options) (*EngineV1, error) {
	if options.Feed == nil {
		return nil, errors.New(errors.ErrCodeBacktestNoDatasource, "a market feed is required")
	}

	if options.Strategy == nil {
		return nil, errors.New(errors.ErrCodeBacktestNoStrategy, "a strategy is required")
	}

	if options.Generator == nil {
		return nil, errors.New(errors.ErrCodeBacktestConfigError, "an order generator is required")
	}

	if options.Executor == nil || options.Account == nil {
		return nil, errors.New(errors.ErrCodeBacktestConfigError, "an executor and an account are required")
	}

	if options.Events == nil || options.Pending == nil {
		return nil, errors.New(errors.ErrCodeBacktestInitFailed, "event and pending queues are required")
	}

	if options.Trigger == nil {
		options.Trigger = rebalance.NoRebalance{}
	}

	if options.Logger == nil {
		options.Logger = logger.NewNopLogger()
	}

	if options.PollInterval <= 0 {
		options.PollInterval = DefaultPollInterval
	}

	return &EngineV1{
		feed:         options.Feed,
		strategy:     options.Strategy,
		trigger:      options.Trigger,
		generator:    options.Generator,
		admission:    portfolio.NewAdmission(options.Pending, options.Events, options.Audit, options.Metrics, options.Logger),
		executor:     options.Executor,
		account:      options.Account,
		events:       options.Events,
		pending:      options.Pending,
		audit:        options.Audit,
		metrics:      options.Metrics,
		log:          options.Logger,
		pollInterval: options.PollInterval,
		resultsPath:  options.ResultsPath,
		runID:        uuid.New().String(),
	}, nil
}

func (e *EngineV1) RunID() string {
	return e.runID
}

// Ticks returns how many market events were processed in the current run.
func (e *EngineV1) Ticks() int {
	return e.ticks
}

func (e *EngineV1) Step(ctx context.Context) error {
	if err := e.feed.Advance(ctx); err != nil {
		return err
	}

	e.metrics.Tick()

	if err := e.events.Drain(ctx, func(event types.Event) error {
		return e.handle(ctx, event)
	}); err != nil {
		return err
	}

	return e.pending.Drain(ctx, func(event types.Event) error {
		orderEvent, ok := event.(types.OrderEvent)
		if !ok {
			return errors.Newf(errors.ErrCodeBacktestInitFailed, "unexpected %s event on the pending queue", event.Type())
		}

		if err := e.executor.SubmitLimit(ctx, orderEvent.Order); err != nil {
			return errors.Wrapf(errors.ErrCodeOrderFailed, err, "failed to submit limit order %s", orderEvent.Order.ID)
		}

		return nil
	})
}

func (e *EngineV1) handle(ctx context.Context, event types.Event) error {
	switch ev := event.(type) {
	case types.MarketEvent:
		return e.onMarket(ev)
	case types.SignalEvent:
		return e.onSignal(ev)
	case types.OrderEvent:
		if err := e.executor.ExecuteMarket(ctx, ev.Order); err != nil {
			return errors.Wrapf(errors.ErrCodeOrderFailed, err, "failed to execute market order %s", ev.Order.ID)
		}

		return nil
	default:
		e.log.Warn("Ignoring unknown event", zap.String("type", string(event.Type())))

		return nil
	}
}

func (e *EngineV1) onMarket(event types.MarketEvent) error {
	if !e.feed.Live() && !e.feed.ContinueBacktest() {
		e.log.Debug("History exhausted, skipping final market event")

		return nil
	}

	e.ticks++
	e.lastTick = event.Time

	snapshot, err := e.account.Snapshot(event.Time)
	if err != nil {
		return errors.Wrap(errors.ErrCodeAccountUnavailable, "failed to read account snapshot", err)
	}

	if e.trigger.NeedsRebalance(snapshot) {
		signals := e.trigger.Rebalance(e.feed.Symbols(), snapshot)
		e.metrics.Rebalance(e.trigger.Name())

		e.log.Info("Rebalancing",
			zap.String("policy", e.trigger.Name()),
			zap.Time("time", event.Time),
			zap.Int("signals", len(signals)),
		)

		for _, signal := range signals {
			e.recordSignal(audit.KindRebalance, signal)
		}
	}

	signals, err := e.strategy.CalculateSignals(event, e.feed)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeStrategyRuntimeError, err, "strategy %s failed", e.strategy.Name())
	}

	for _, signal := range signals {
		if signal.Source == "" {
			signal.Source = e.strategy.Name()
		}

		if signal.Time.IsZero() {
			signal.Time = event.Time
		}

		e.recordSignal(audit.KindSignal, signal)
		e.events.Put(signal)
	}

	return nil
}

func (e *EngineV1) onSignal(signal types.SignalEvent) error {
	snapshot, err := e.account.Snapshot(signal.Time)
	if err != nil {
		return errors.Wrap(errors.ErrCodeAccountUnavailable, "failed to read account snapshot", err)
	}

	order, err := e.generator.Generate(signal, snapshot.Positions)
	if err != nil {
		e.log.Warn("Dropping order",
			zap.String("symbol", signal.Symbol),
			zap.String("direction", string(signal.Direction)),
			zap.Error(err),
		)
		e.record(audit.Entry{
			Timestamp: signal.Time,
			Kind:      audit.KindOrderDropped,
			Symbol:    signal.Symbol,
			Direction: string(signal.Direction),
			Source:    signal.Source,
			Reason:    err.Error(),
		})

		return nil
	}

	e.admission.Admit(order, snapshot.Holdings)

	return nil
}

func (e *EngineV1) recordSignal(kind audit.Kind, signal types.SignalEvent) {
	e.metrics.Signal(signal.Source, string(signal.Direction))
	e.record(audit.Entry{
		Timestamp: signal.Time,
		Kind:      kind,
		Symbol:    signal.Symbol,
		Direction: string(signal.Direction),
		Source:    signal.Source,
	})
}

func (e *EngineV1) record(entry audit.Entry) {
	if e.audit == nil {
		return
	}

	if err := e.audit.Record(entry); err != nil {
		e.log.Warn("Failed to record audit entry", zap.Error(err))
	}
}

// Run starts a new run with a fresh run ID. Historical feeds are replayed to
// exhaustion. Live feeds are polled every PollInterval until ctx is
// cancelled; a failed poll is logged and retried on the next tick.
func (e *EngineV1) Run(ctx context.Context, callbacks engine.LifecycleCallbacks) (err error) {
	e.runID = uuid.New().String()
	e.ticks = 0

	var resultPath string

	defer func() {
		if callbacks.OnRunEnd != nil {
			(*callbacks.OnRunEnd)(e.runID, resultPath, err)
		}
	}()

	if callbacks.OnRunStart != nil {
		if err = (*callbacks.OnRunStart)(e.runID, e.feed.Symbols(), e.feed.Live()); err != nil {
			return errors.Wrap(errors.ErrCodeCallbackFailed, "run start callback failed", err)
		}
	}

	e.log.Info("Run started",
		zap.String("run_id", e.runID),
		zap.Strings("symbols", e.feed.Symbols()),
		zap.Bool("live", e.feed.Live()),
		zap.String("strategy", e.strategy.Name()),
		zap.String("rebalance", e.trigger.Name()),
	)

	if e.feed.Live() {
		err = e.runLive(ctx, callbacks)
	} else {
		err = e.runHistorical(ctx, callbacks)
	}

	if err != nil {
		e.log.Error("Run failed", zap.String("run_id", e.runID), zap.Error(err))

		return err
	}

	resultPath, err = e.writeResults()
	if err != nil {
		return err
	}

	e.log.Info("Run finished",
		zap.String("run_id", e.runID),
		zap.Int("ticks", e.ticks),
		zap.String("results", resultPath),
	)

	return nil
}

func (e *EngineV1) runHistorical(ctx context.Context, callbacks engine.LifecycleCallbacks) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := e.Step(ctx); err != nil {
			return err
		}

		if !e.feed.ContinueBacktest() {
			return nil
		}

		if err := e.afterTick(callbacks); err != nil {
			return err
		}
	}
}

func (e *EngineV1) runLive(ctx context.Context, callbacks engine.LifecycleCallbacks) error {
	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	for {
		err := e.Step(ctx)

		switch {
		case ctx.Err() != nil:
			return nil
		case errors.HasCode(err, errors.ErrCodeFeedAdvanceFailed):
			e.log.Error("Live poll failed, waiting for the next tick", zap.Error(err))
		case err != nil:
			return err
		default:
			if err := e.afterTick(callbacks); err != nil {
				return err
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (e *EngineV1) afterTick(callbacks engine.LifecycleCallbacks) error {
	if callbacks.OnTick == nil {
		return nil
	}

	if err := (*callbacks.OnTick)(e.ticks, e.lastTick); err != nil {
		return errors.Wrap(errors.ErrCodeCallbackFailed, "tick callback failed", err)
	}

	return nil
}

func (e *EngineV1) writeResults() (string, error) {
	if e.resultsPath == "" {
		return "", nil
	}

	writer, ok := e.audit.(resultWriter)
	if !ok {
		return "", nil
	}

	return writer.Write(filepath.Join(e.resultsPath, e.runID))
}

// Close releases the resources NewFromConfig opened.
func (e *EngineV1) Close() error {
	var firstErr error

	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	e.closers = nil

	return firstErr
}
