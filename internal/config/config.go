// Package config loads and validates run configuration files.
package config

import (
	"encoding/json"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/internal/version"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	SourceFile    = "file"
	SourcePolygon = "polygon"
	SourceBinance = "binance"
)

const (
	DefaultLookback     = 4
	DefaultWindow       = 1
	DefaultPollInterval = time.Minute
	DefaultOrderSize    = 100
	DefaultResultsPath  = "results"
)

var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

type DataConfig struct {
	Source string `yaml:"source" json:"source" validate:"required,oneof=file polygon binance" jsonschema:"title=Source,description=Where bars come from,enum=file,enum=polygon,enum=binance"`
	// Path is a parquet or CSV file (or glob) for the file source.
	Path string `yaml:"path,omitempty" json:"path,omitempty" validate:"required_if=Source file" jsonschema:"title=Path,description=Parquet or CSV file or glob for the file source"`
}

type OrderConfig struct {
	Type types.OrderType `yaml:"type" json:"type" validate:"required,oneof=MARKET LIMIT" jsonschema:"title=Order Type,enum=MARKET,enum=LIMIT"`
	Size float64         `yaml:"size" json:"size" validate:"gte=0" jsonschema:"title=Order Size,description=Target quantity for entry signals,minimum=0"`
}

type RebalanceConfig struct {
	Policy     string `yaml:"policy" json:"policy" validate:"omitempty,oneof=none periodic_full_exit quarterly_loss_exit" jsonschema:"title=Policy,enum=none,enum=periodic_full_exit,enum=quarterly_loss_exit"`
	WindowDays int    `yaml:"window_days,omitempty" json:"window_days,omitempty" validate:"gte=0" jsonschema:"title=Window Days,description=Days at the start of each year during which periodic_full_exit fires,minimum=0"`
}

type StrategyConfig struct {
	Name        string `yaml:"name" json:"name" validate:"required,oneof=buy_and_hold ma_crossover" jsonschema:"title=Strategy,enum=buy_and_hold,enum=ma_crossover"`
	ShortWindow int    `yaml:"short_window,omitempty" json:"short_window,omitempty" validate:"gte=0" jsonschema:"minimum=0"`
	LongWindow  int    `yaml:"long_window,omitempty" json:"long_window,omitempty" validate:"gte=0" jsonschema:"minimum=0"`
}

// Config describes one replay or live run.
type Config struct {
	Version   string                     `yaml:"version,omitempty" json:"version,omitempty" jsonschema:"title=Version,description=Engine version the file was written for"`
	Symbols   []string                   `yaml:"symbols" json:"symbols" validate:"required,min=1,dive,required" jsonschema:"title=Symbols,minItems=1"`
	StartDate optional.Option[time.Time] `yaml:"start_date" json:"start_date" jsonschema:"title=Start Date,description=Inclusive start of the replay. Required unless live"`
	EndDate   optional.Option[time.Time] `yaml:"end_date" json:"end_date" jsonschema:"title=End Date,description=Exclusive end of the replay"`
	Timeframe types.Timeframe            `yaml:"timeframe" json:"timeframe" validate:"required,oneof=1Min 5Min 15Min day 1D"`
	Live      bool                       `yaml:"live" json:"live" jsonschema:"title=Live,description=Poll the vendor instead of replaying history"`
	// Window is the number of bars a live feed exposes per symbol.
	Window int `yaml:"window" json:"window" validate:"gte=0" jsonschema:"minimum=0"`
	// Lookback pads each live fetch by this many extra intervals.
	Lookback     int                `yaml:"lookback" json:"lookback" validate:"gte=0" jsonschema:"minimum=0"`
	PollInterval time.Duration      `yaml:"poll_interval" json:"poll_interval" validate:"gte=0"`
	InitialCash  float64            `yaml:"initial_cash" json:"initial_cash" validate:"gte=0" jsonschema:"title=Initial Cash,minimum=0"`
	Positions    map[string]float64 `yaml:"positions,omitempty" json:"positions,omitempty" jsonschema:"title=Opening Positions"`
	EntryPrices  map[string]float64 `yaml:"entry_prices,omitempty" json:"entry_prices,omitempty" jsonschema:"title=Entry Prices,description=Last trade price per opening position"`
	Data         DataConfig         `yaml:"data" json:"data"`
	Order        OrderConfig        `yaml:"order" json:"order"`
	Rebalance    RebalanceConfig    `yaml:"rebalance" json:"rebalance"`
	Strategy     StrategyConfig     `yaml:"strategy" json:"strategy"`
	ResultsPath  string             `yaml:"results_path" json:"results_path"`
	LogLevel     string             `yaml:"log_level" json:"log_level" validate:"omitempty,oneof=debug info warn error" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
}

// UnmarshalYAML fills defaults for omitted fields and parses dates and durations.
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type rawOrder struct {
		Type string   `yaml:"type"`
		Size *float64 `yaml:"size"`
	}

	type rawConfig struct {
		Version      string             `yaml:"version"`
		Symbols      []string           `yaml:"symbols"`
		StartDate    *string            `yaml:"start_date"`
		EndDate      *string            `yaml:"end_date"`
		Timeframe    string             `yaml:"timeframe"`
		Live         bool               `yaml:"live"`
		Window       *int               `yaml:"window"`
		Lookback     *int               `yaml:"lookback"`
		PollInterval string             `yaml:"poll_interval"`
		InitialCash  float64            `yaml:"initial_cash"`
		Positions    map[string]float64 `yaml:"positions"`
		EntryPrices  map[string]float64 `yaml:"entry_prices"`
		Data         DataConfig         `yaml:"data"`
		Order        *rawOrder          `yaml:"order"`
		Rebalance    RebalanceConfig    `yaml:"rebalance"`
		Strategy     StrategyConfig     `yaml:"strategy"`
		ResultsPath  string             `yaml:"results_path"`
		LogLevel     string             `yaml:"log_level"`
	}

	var raw rawConfig
	if err := unmarshal(&raw); err != nil {
		return err
	}

	*c = Default()

	c.Version = raw.Version
	c.Symbols = raw.Symbols
	c.Live = raw.Live
	c.InitialCash = raw.InitialCash
	c.Positions = raw.Positions
	c.EntryPrices = raw.EntryPrices
	c.Data = raw.Data

	if raw.Timeframe != "" {
		c.Timeframe = types.Timeframe(raw.Timeframe)
	}

	if raw.Window != nil {
		c.Window = *raw.Window
	}

	if raw.Lookback != nil {
		c.Lookback = *raw.Lookback
	}

	if raw.Order != nil {
		if raw.Order.Type != "" {
			c.Order.Type = types.OrderType(strings.ToUpper(raw.Order.Type))
		}

		if raw.Order.Size != nil {
			c.Order.Size = *raw.Order.Size
		}
	}

	if raw.Rebalance.Policy != "" {
		c.Rebalance.Policy = raw.Rebalance.Policy
	}

	c.Rebalance.WindowDays = raw.Rebalance.WindowDays

	if raw.Strategy.Name != "" {
		c.Strategy.Name = raw.Strategy.Name
	}

	c.Strategy.ShortWindow = raw.Strategy.ShortWindow
	c.Strategy.LongWindow = raw.Strategy.LongWindow

	if raw.ResultsPath != "" {
		c.ResultsPath = raw.ResultsPath
	}

	if raw.LogLevel != "" {
		c.LogLevel = raw.LogLevel
	}

	if raw.PollInterval != "" {
		interval, err := time.ParseDuration(raw.PollInterval)
		if err != nil {
			return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid poll_interval %q", raw.PollInterval)
		}

		c.PollInterval = interval
	}

	if raw.StartDate != nil {
		start, err := parseDate(*raw.StartDate)
		if err != nil {
			return err
		}

		c.StartDate = optional.Some(start)
	}

	if raw.EndDate != nil {
		end, err := parseDate(*raw.EndDate)
		if err != nil {
			return err
		}

		c.EndDate = optional.Some(end)
	}

	return nil
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}

	return time.Time{}, errors.Newf(errors.ErrCodeInvalidConfiguration, "invalid date %q, expected YYYY-MM-DD or RFC 3339", value)
}

// Default returns a configuration with every optional field at its default.
func Default() Config {
	return Config{
		StartDate:    optional.None[time.Time](),
		EndDate:      optional.None[time.Time](),
		Timeframe:    types.Timeframe1D,
		Window:       DefaultWindow,
		Lookback:     DefaultLookback,
		PollInterval: DefaultPollInterval,
		Data:         DataConfig{Source: SourceFile},
		Order:        OrderConfig{Type: types.OrderTypeMarket, Size: DefaultOrderSize},
		Rebalance:    RebalanceConfig{Policy: "none"},
		Strategy:     StrategyConfig{Name: "buy_and_hold"},
		ResultsPath:  DefaultResultsPath,
		LogLevel:     "info",
	}
}

// Load reads, parses and validates the YAML file at path.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %s", path)
	}

	return Parse(raw)
}

// Parse parses and validates YAML content.
func Parse(raw []byte) (Config, error) {
	var config Config
	if err := yaml.Unmarshal(raw, &config); err != nil {
		if errors.GetCode(err) != errors.ErrCodeUnknown {
			return Config{}, err
		}

		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// Validate reports the first configuration problem as an
// ErrCodeInvalidConfiguration error.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	if _, err := types.ParseTimeframe(string(c.Timeframe)); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid timeframe", err)
	}

	if !c.Live && c.StartDate.IsNone() {
		return errors.New(errors.ErrCodeInvalidConfiguration, "start_date is required unless live is set")
	}

	if c.StartDate.IsSome() && c.EndDate.IsSome() && !c.EndDate.Unwrap().After(c.StartDate.Unwrap()) {
		return errors.New(errors.ErrCodeInvalidConfiguration, "end_date must be after start_date")
	}

	if c.Live && c.Data.Source == SourceFile {
		return errors.New(errors.ErrCodeInvalidConfiguration, "live runs need a vendor data source (polygon or binance)")
	}

	if c.Live && c.PollInterval <= 0 {
		return errors.New(errors.ErrCodeInvalidConfiguration, "poll_interval must be positive for live runs")
	}

	// a live feed never exposes more than Window bars per symbol
	if c.Live && c.Strategy.Name == "ma_crossover" && c.Window < c.Strategy.LongWindow+1 {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "live ma_crossover needs window >= long_window+1 (%d), got %d",
			c.Strategy.LongWindow+1, c.Window)
	}

	if err := version.CheckConfigCompatibility(version.GetVersion(), c.Version); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "incompatible config version", err)
	}

	return nil
}

// GenerateSchema generates a JSON schema for Config.
func (c *Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			switch t {
			case reflect.TypeOf(optional.Option[time.Time]{}):
				return &jsonschema.Schema{Type: "string", Format: "date"}
			case reflect.TypeOf(types.Timeframe("")):
				enum := make([]any, len(types.Timeframes))
				for i, tf := range types.Timeframes {
					enum[i] = string(tf)
				}

				return &jsonschema.Schema{Type: "string", Enum: enum}
			case reflect.TypeOf(time.Duration(0)):
				return &jsonschema.Schema{Type: "string", Description: "Go duration such as 30s or 5m"}
			default:
				return nil
			}
		},
	}

	schema := reflector.Reflect(c)
	schema.Title = "replay-config"
	schema.Description = "Configuration schema for a replay or live run"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON returns GenerateSchema as indented JSON.
func (c *Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}
