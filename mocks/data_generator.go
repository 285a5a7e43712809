package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// DataGenerator generates random-walk price series for testing and demos.
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how price data is generated.
type GeneratorConfig struct {
	// Days is the number of daily points to generate
	Days int
	// EndDate is the day after the last generated point
	EndDate time.Time
	// InitialPrice is the price the walk starts from
	InitialPrice float64
	// MaxStep bounds the absolute price change between two days
	MaxStep float64
}

// DefaultConfig returns one year of data ending yesterday, starting from 100.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Days:         365,
		EndDate:      time.Now().UTC().Truncate(24 * time.Hour),
		InitialPrice: 100,
		MaxStep:      1,
	}
}

// Generate walks the price by a uniform step in [-MaxStep, MaxStep) per day. Stored prices are
// rounded to 2 decimals; the walk itself continues from the unrounded value.
func (g *DataGenerator) Generate(config GeneratorConfig) types.PriceSeries {
	if config.Days <= 0 {
		return types.PriceSeries{}
	}

	series := make(types.PriceSeries, config.Days)
	price := config.InitialPrice

	for i := 0; i < config.Days; i++ {
		date := config.EndDate.AddDate(0, 0, -(config.Days - i))

		price += (g.rng.Float64() - 0.5) * 2 * config.MaxStep

		series[i] = types.PricePoint{
			Date:  date.Format(types.DateLayout),
			Price: roundToDecimals(price, 2),
		}
	}

	return series
}

// GenerateDays is a convenience function returning `days` points with the default settings
// and a fixed seed.
func GenerateDays(days int) types.PriceSeries {
	config := DefaultConfig()
	config.Days = days

	return NewDataGenerator(42).Generate(config)
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
