package engine

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-replay/internal/audit"
	"github.com/rxtech-lab/argo-replay/internal/config"
	"github.com/rxtech-lab/argo-replay/internal/datasource"
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
)

// Vendor serves bars for the polygon and binance sources, both for
// historical loading and live polling.
type Vendor interface {
	FetchBars(ctx context.Context, symbol string, timeframe types.Timeframe, from time.Time, to time.Time) ([]types.Bar, error)
}

// Dependencies are the collaborators a config file cannot describe.
type Dependencies struct {
	// Vendor is required for vendor sources and live runs.
	Vendor Vendor
	// Loader overrides the loader built from config.Data.
	Loader datasource.BarLoader
	// Executor and Account default to a record-only journal opened with the
	// configured cash and positions.
	Executor execution.Executor
	Account  execution.Account
	// Audit defaults to an in-memory DuckDB trail.
	Audit   audit.Recorder
	Metrics *metrics.Metrics
}

// NewFromConfig builds an EngineV1 and every collaborator cfg describes.
// Call Close on the result to release the loader and audit databases.
func NewFromConfig(ctx context.Context, cfg config.Config, deps Dependencies, log *logger.Logger) (_ *EngineV1, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var closers []func() error

	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				_ = closers[i]()
			}
		}
	}()

	queue := events.NewQueue()
	pending := events.NewQueue()

	recorder := deps.Audit
	if recorder == nil {
		trail, err := audit.NewDuckDBLog(log)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to open audit trail", err)
		}

		closers = append(closers, trail.Close)
		recorder = trail
	}

	var marketFeed feed.Feed

	if cfg.Live {
		if deps.Vendor == nil {
			return nil, errors.New(errors.ErrCodeBacktestNoDatasource, "live runs need a vendor")
		}

		marketFeed, err = feed.NewLiveFeed(deps.Vendor, feed.LiveConfig{
			Symbols:   cfg.Symbols,
			Timeframe: cfg.Timeframe,
			Window:    cfg.Window,
			Lookback:  cfg.Lookback,
		}, queue, log)
		if err != nil {
			return nil, err
		}
	} else {
		loader := deps.Loader

		if loader == nil {
			switch cfg.Data.Source {
			case config.SourceFile:
				duck, err := datasource.NewDuckDBLoader(cfg.Data.Path, log)
				if err != nil {
					return nil, err
				}

				closers = append(closers, duck.Close)
				loader = duck
			default:
				if deps.Vendor == nil {
					return nil, errors.Newf(errors.ErrCodeBacktestNoDatasource, "data source %s needs a vendor", cfg.Data.Source)
				}

				loader = datasource.NewProviderLoader(deps.Vendor, cfg.Timeframe, log)
			}
		}

		marketFeed, err = feed.NewHistoricalFeed(ctx, loader, feed.HistoricalConfig{
			Symbols: cfg.Symbols,
			Start:   cfg.StartDate,
			End:     cfg.EndDate,
		}, queue, log)
		if err != nil {
			return nil, err
		}
	}

	strat, err := strategy.New(strategy.Options{
		Name:        cfg.Strategy.Name,
		ShortWindow: cfg.Strategy.ShortWindow,
		LongWindow:  cfg.Strategy.LongWindow,
	})
	if err != nil {
		return nil, err
	}

	trigger, err := rebalance.NewTrigger(rebalance.Options{
		Policy:     rebalance.Policy(cfg.Rebalance.Policy),
		WindowDays: cfg.Rebalance.WindowDays,
	}, marketFeed, queue)
	if err != nil {
		return nil, err
	}

	generator, err := portfolio.NewOrderGenerator(cfg.Order.Type, cfg.Order.Size, marketFeed)
	if err != nil {
		return nil, err
	}

	executor, account := deps.Executor, deps.Account
	if executor == nil || account == nil {
		journal := execution.NewJournal(cfg.InitialCash, types.Positions(cfg.Positions), cfg.EntryPrices, marketFeed, log)

		if executor == nil {
			executor = journal
		}

		if account == nil {
			account = journal
		}
	}

	eng, err := New(Options{
		Feed:         marketFeed,
		Strategy:     strat,
		Trigger:      trigger,
		Generator:    generator,
		Executor:     executor,
		Account:      account,
		Events:       queue,
		Pending:      pending,
		Audit:        recorder,
		Metrics:      deps.Metrics,
		Logger:       log,
		PollInterval: cfg.PollInterval,
		ResultsPath:  cfg.ResultsPath,
	})
	if err != nil {
		return nil, err
	}

	eng.closers = closers

	return eng, nil
}
