package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/argo-replay/internal/types"
)

// BarGenerator produces seeded random-walk bars for tests and benchmarks.
type BarGenerator struct {
	rng *rand.Rand
}

// NewBarGenerator uses seed so repeated runs yield identical series.
func NewBarGenerator(seed int64) *BarGenerator {
	return &BarGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// SeriesConfig shapes one generated series.
type SeriesConfig struct {
	Symbol   string
	Start    time.Time
	Interval time.Duration
	// Count is the number of slots walked. Skipped slots still count.
	Count        int
	InitialPrice float64
	// Volatility is the standard deviation of the per-bar return.
	Volatility float64
	// Drift is added to every per-bar return.
	Drift      float64
	VolumeBase float64
	// GapProbability is the chance that a slot has no bar, which leaves holes
	// for the calendar aligner to fill.
	GapProbability float64
	// WeekdaysOnly skips Saturdays and Sundays.
	WeekdaysOnly bool
}

// DailyConfig is a weekday daily series starting on 2024-01-02.
func DailyConfig(symbol string, count int) SeriesConfig {
	return SeriesConfig{
		Symbol:       symbol,
		Start:        time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Interval:     24 * time.Hour,
		Count:        count,
		InitialPrice: 100,
		Volatility:   0.01,
		VolumeBase:   1_000_000,
		WeekdaysOnly: true,
	}
}

// Generate walks the configured slots with geometric Brownian motion.
func (g *BarGenerator) Generate(config SeriesConfig) []types.Bar {
	bars := make([]types.Bar, 0, config.Count)
	price := config.InitialPrice
	slot := config.Start

	for i := 0; i < config.Count; i++ {
		for config.WeekdaysOnly && (slot.Weekday() == time.Saturday || slot.Weekday() == time.Sunday) {
			slot = slot.Add(config.Interval)
		}

		open := price

		// Box-Muller
		u1 := 1 - g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		closePrice := open * (1 + config.Volatility*z + config.Drift)
		if closePrice <= 0 {
			closePrice = open * 0.99
		}

		high := math.Max(open, closePrice) * (1 + g.rng.Float64()*config.Volatility*0.5)
		low := math.Min(open, closePrice) * (1 - g.rng.Float64()*config.Volatility*0.5)
		volume := config.VolumeBase * (0.5 + g.rng.Float64())

		price = closePrice
		current := slot
		slot = slot.Add(config.Interval)

		if config.GapProbability > 0 && i > 0 && g.rng.Float64() < config.GapProbability {
			continue
		}

		bars = append(bars, types.Bar{
			Symbol: config.Symbol,
			Time:   current,
			Open:   round(open, 4),
			High:   round(high, 4),
			Low:    round(low, 4),
			Close:  round(closePrice, 4),
			Volume: round(volume, 0),
		})
	}

	return bars
}

// GenerateSymbols generates one series per symbol from a shared base config.
func (g *BarGenerator) GenerateSymbols(symbols []string, base SeriesConfig) []types.Bar {
	var all []types.Bar

	for _, symbol := range symbols {
		config := base
		config.Symbol = symbol
		config.InitialPrice = base.InitialPrice * (0.8 + g.rng.Float64()*0.4)

		all = append(all, g.Generate(config)...)
	}

	return all
}

func round(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))

	return math.Round(val*pow) / pow
}
