package mocks

import (
	"math"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-backtest/internal/types"
)

func testConfig(days int) GeneratorConfig {
	config := DefaultConfig()
	config.Days = days
	config.EndDate = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	return config
}

func TestDataGenerator_Generate(t *testing.T) {
	gen := NewDataGenerator(42) // Fixed seed for reproducibility
	config := testConfig(100)

	data := gen.Generate(config)

	if len(data) != 100 {
		t.Errorf("expected 100 data points, got %d", len(data))
	}

	// the last point is the day before EndDate
	if data[len(data)-1].Date != "2024-02-29" {
		t.Errorf("expected last date 2024-02-29, got %s", data[len(data)-1].Date)
	}

	for i := 1; i < len(data); i++ {
		prev, _ := time.Parse(types.DateLayout, data[i-1].Date)
		curr, _ := time.Parse(types.DateLayout, data[i].Date)

		if curr.Sub(prev) != 24*time.Hour {
			t.Errorf("dates not consecutive at index %d: %s then %s", i, data[i-1].Date, data[i].Date)
		}
	}

	// prices are rounded to cents and every step is bounded by MaxStep (plus rounding)
	prev := config.InitialPrice
	for i, d := range data {
		if math.Abs(d.Price*100-math.Round(d.Price*100)) > 1e-6 {
			t.Errorf("price at index %d is not rounded to 2 decimals: %v", i, d.Price)
		}

		if math.Abs(d.Price-prev) > config.MaxStep+0.01 {
			t.Errorf("step at index %d too large: %v -> %v", i, prev, d.Price)
		}

		prev = d.Price
	}
}

func TestDataGenerator_Reproducibility(t *testing.T) {
	// Same seed should produce same results
	data1 := NewDataGenerator(42).Generate(testConfig(30))
	data2 := NewDataGenerator(42).Generate(testConfig(30))

	for i := range data1 {
		if data1[i] != data2[i] {
			t.Errorf("data not reproducible at index %d: got %v and %v", i, data1[i], data2[i])
		}
	}
}

func TestDataGenerator_Different_Seeds(t *testing.T) {
	data1 := NewDataGenerator(42).Generate(testConfig(10))
	data2 := NewDataGenerator(123).Generate(testConfig(10))

	// Different seeds should produce different results
	sameCount := 0
	for i := range data1 {
		if data1[i].Price == data2[i].Price {
			sameCount++
		}
	}

	if sameCount == len(data1) {
		t.Error("different seeds produced identical data")
	}
}

func TestDataGenerator_NoDays(t *testing.T) {
	data := NewDataGenerator(1).Generate(testConfig(0))
	if data == nil || len(data) != 0 {
		t.Errorf("expected an empty series, got %v", data)
	}
}

func TestGenerateDays(t *testing.T) {
	data := GenerateDays(50)

	if len(data) != 50 {
		t.Errorf("expected 50 data points, got %d", len(data))
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Days != 365 {
		t.Errorf("expected default days 365, got %d", config.Days)
	}

	if config.InitialPrice != 100.0 {
		t.Errorf("expected default initial price 100.0, got %f", config.InitialPrice)
	}

	if config.MaxStep != 1 {
		t.Errorf("expected default max step 1, got %f", config.MaxStep)
	}
}
