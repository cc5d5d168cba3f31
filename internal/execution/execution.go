// Package execution defines the collaborators that receive admitted orders
// and report the account state the portfolio sizes against.
package execution

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-replay/internal/types"
)

// Executor receives admitted orders. Matching and fills happen behind it.
type Executor interface {
	// ExecuteMarket handles a MARKET order in the tick it was admitted.
	ExecuteMarket(ctx context.Context, order types.Order) error
	// SubmitLimit hands over a LIMIT order at the end of the tick it was
	// admitted, to be matched against later bars.
	SubmitLimit(ctx context.Context, order types.Order) error
}

// Account reports positions and holdings.
type Account interface {
	// Snapshot returns the account state valued at time at.
	Snapshot(at time.Time) (types.Snapshot, error)
}
