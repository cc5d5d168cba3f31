package mocks

//go:generate mockgen -destination=./mock_quote_provider.go -package=mocks github.com/rxtech-lab/argo-replay/internal/feed QuoteProvider
//go:generate mockgen -destination=./mock_executor.go -package=mocks github.com/rxtech-lab/argo-replay/internal/execution Executor
//go:generate mockgen -destination=./mock_account.go -package=mocks github.com/rxtech-lab/argo-replay/internal/execution Account
//go:generate mockgen -destination=./mock_strategy.go -package=mocks github.com/rxtech-lab/argo-replay/internal/strategy Strategy
//go:generate mockgen -destination=./mock_provider.go -package=mocks github.com/rxtech-lab/argo-replay/pkg/marketdata/provider Provider
