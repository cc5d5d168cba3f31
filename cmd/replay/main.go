package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	engine "github.com/rxtech-lab/argo-replay/internal/backtest/engine"
	enginev1 "github.com/rxtech-lab/argo-replay/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-replay/internal/config"
	"github.com/rxtech-lab/argo-replay/internal/logger"
	"github.com/rxtech-lab/argo-replay/internal/metrics"
	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/internal/version"
	"github.com/rxtech-lab/argo-replay/pkg/marketdata"
	"github.com/rxtech-lab/argo-replay/pkg/marketdata/provider"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

const polygonAPIKeyEnv = "POLYGON_API_KEY"

// runAction loads a config file and replays it to completion, or until
// interrupted for live runs.
func runAction(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	if configPath == "" {
		configPath = cmd.Args().First()
	}

	if configPath == "" {
		return fmt.Errorf("a config file is required")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	level := cfg.LogLevel
	if cmd.IsSet("log-level") {
		level = cmd.String("log-level")
	}

	log, err := logger.NewLoggerWithLevel(level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	defer func() { _ = log.Sync() }()

	deps := enginev1.Dependencies{Metrics: metrics.New()}

	if addr := cmd.String("metrics-addr"); addr != "" {
		deps.Metrics.Serve(ctx, addr)
		log.Info("Serving metrics", zap.String("addr", addr))
	}

	if cfg.Data.Source != config.SourceFile {
		vendor, err := provider.NewMarketDataProvider(provider.ProviderType(cfg.Data.Source), os.Getenv(polygonAPIKeyEnv), log)
		if err != nil {
			return err
		}

		deps.Vendor = vendor
	}

	replay, err := enginev1.NewFromConfig(ctx, cfg, deps, log)
	if err != nil {
		return err
	}

	defer replay.Close()

	onRunStart := engine.OnRunStartCallback(func(runID string, symbols []string, live bool) error {
		fmt.Fprintf(cmd.Root().Writer, "run %s started for %v (live=%t)\n", runID, symbols, live)

		return nil
	})
	onRunEnd := engine.OnRunEndCallback(func(runID string, resultPath string, err error) {
		if err != nil {
			fmt.Fprintf(cmd.Root().Writer, "run %s failed: %v\n", runID, err)

			return
		}

		fmt.Fprintf(cmd.Root().Writer, "run %s finished after %d ticks\n", runID, replay.Ticks())

		if resultPath != "" {
			fmt.Fprintf(cmd.Root().Writer, "audit trail written to %s\n", resultPath)
		}
	})

	return replay.Run(ctx, engine.LifecycleCallbacks{
		OnRunStart: &onRunStart,
		OnRunEnd:   &onRunEnd,
	})
}

// downloadAction fetches vendor bars into a parquet file for the file source.
func downloadAction(ctx context.Context, cmd *cli.Command) error {
	log, err := logger.NewLoggerWithLevel(cmd.String("log-level"))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	defer func() { _ = log.Sync() }()

	providerFlag := cmd.String("provider")
	client, err := marketdata.NewClient(marketdata.ClientConfig{
		ProviderType:  marketdata.ProviderType(providerFlag),
		WriterType:    marketdata.WriterType(cmd.String("writer")),
		DataPath:      cmd.String("data"),
		PolygonApiKey: os.Getenv(polygonAPIKeyEnv),
	}, nil, log)
	if err != nil {
		return fmt.Errorf("failed to create market data client: %w", err)
	}

	params := marketdata.DownloadParams{
		Ticker:    cmd.String("ticker"),
		StartDate: cmd.Timestamp("start"),
		EndDate:   cmd.Timestamp("end"),
		Timeframe: types.Timeframe(cmd.String("timeframe")),
	}

	log.Info("Starting download",
		zap.String("ticker", params.Ticker),
		zap.String("provider", providerFlag),
		zap.Time("start", params.StartDate),
		zap.Time("end", params.EndDate),
	)

	path, err := client.Download(ctx, params)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	fmt.Fprintf(cmd.Root().Writer, "downloaded %s to %s\n", params.Ticker, path)

	return nil
}

// schemaAction writes the config JSON schema, to stdout or --output.
func schemaAction(_ context.Context, cmd *cli.Command) error {
	cfg := config.Default()

	schemaJSON, err := cfg.GenerateSchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	output := cmd.String("output")
	if output == "" {
		_, err := io.WriteString(cmd.Root().Writer, schemaJSON+"\n")

		return err
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	return os.WriteFile(output, []byte(schemaJSON), 0o644)
}

func providersAction(_ context.Context, cmd *cli.Command) error {
	for _, name := range marketdata.GetSupportedProviders() {
		info, err := marketdata.GetProviderInfo(name)
		if err != nil {
			return err
		}

		line := fmt.Sprintf("%-8s %s - %s", info.Name, info.DisplayName, info.Description)
		if info.RequiresAuth {
			line += fmt.Sprintf(" (requires %s)", info.AuthEnv)
		}

		fmt.Fprintln(cmd.Root().Writer, line)
	}

	return nil
}

func logLevelFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "log-level",
		Usage: "Log level (debug, info, warn, error)",
		Value: "info",
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "replay",
		Usage:   "Replay historical or live bars through a strategy and record the orders it admits",
		Version: version.GetVersion(),
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "Run a replay from a config file",
				ArgsUsage: "[config.yaml]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to the run config `FILE`",
					},
					&cli.StringFlag{
						Name:  "metrics-addr",
						Usage: "Serve Prometheus metrics on this address (e.g. :9090)",
					},
					logLevelFlag(),
				},
				Action: runAction,
			},
			{
				Name:  "download",
				Usage: "Download historical market data into a parquet file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "ticker",
						Aliases:  []string{"t"},
						Usage:    "Ticker symbol",
						Required: true,
					},
					&cli.TimestampFlag{
						Name:     "start",
						Aliases:  []string{"s"},
						Usage:    "Start date in `YYYY-MM-DD` format",
						Required: true,
						Config:   cli.TimestampConfig{Layouts: []string{"2006-01-02"}},
					},
					&cli.TimestampFlag{
						Name:    "end",
						Aliases: []string{"e"},
						Usage:   "End date in `YYYY-MM-DD` format. Defaults to today.",
						Value:   time.Now(),
						Config:  cli.TimestampConfig{Layouts: []string{"2006-01-02"}},
					},
					&cli.StringFlag{
						Name:    "timeframe",
						Aliases: []string{"f"},
						Usage:   "Bar timeframe (1Min, 5Min, 15Min, day, 1D)",
						Value:   string(types.TimeframeDay),
					},
					&cli.StringFlag{
						Name:    "provider",
						Aliases: []string{"p"},
						Usage:   fmt.Sprintf("Data provider to use (e.g., %s, %s)", marketdata.ProviderPolygon, marketdata.ProviderBinance),
						Value:   string(marketdata.ProviderPolygon),
					},
					&cli.StringFlag{
						Name:    "writer",
						Aliases: []string{"w"},
						Usage:   fmt.Sprintf("Data writer format (e.g., %s)", marketdata.WriterDuckDB),
						Value:   string(marketdata.WriterDuckDB),
					},
					&cli.StringFlag{
						Name:    "data",
						Aliases: []string{"d"},
						Usage:   "Path to the data output directory",
						Value:   "data",
					},
					logLevelFlag(),
				},
				Action: downloadAction,
			},
			{
				Name:  "schema",
				Usage: "Print the JSON schema of the run config",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the schema to this file instead of stdout",
					},
				},
				Action: schemaAction,
			},
			{
				Name:   "providers",
				Usage:  "List the supported market data providers",
				Action: providersAction,
			},
		},
	}
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
