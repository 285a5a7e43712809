package types

import (
	"encoding/json"
	"fmt"
	"math"
)

// infinityLiteral is how an unbounded profit factor is written in JSON.
const infinityLiteral = "Infinity"

// ProfitFactor is gross profit over gross loss. It is +Inf when there are no losing trades.
type ProfitFactor float64

// IsInfinite reports whether there were no losses to divide by.
func (p ProfitFactor) IsInfinite() bool {
	return math.IsInf(float64(p), 1)
}

// MarshalJSON writes +Inf as the string "Infinity" since JSON has no infinity literal.
func (p ProfitFactor) MarshalJSON() ([]byte, error) {
	if p.IsInfinite() {
		return json.Marshal(infinityLiteral)
	}

	return json.Marshal(float64(p))
}

// UnmarshalJSON accepts both numbers and the "Infinity" string.
func (p *ProfitFactor) UnmarshalJSON(data []byte) error {
	var literal string
	if err := json.Unmarshal(data, &literal); err == nil {
		if literal != infinityLiteral {
			return fmt.Errorf("invalid profit factor %q", literal)
		}

		*p = ProfitFactor(math.Inf(1))

		return nil
	}

	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}

	*p = ProfitFactor(value)

	return nil
}

// BacktestResult holds the trades of a run and the statistics derived from them.
type BacktestResult struct {
	Trades []Trade `json:"trades" yaml:"trades"`
	// WinRate is the percentage (0-100) of trades with positive profit.
	WinRate     float64 `json:"winRate" yaml:"win_rate"`
	TotalProfit float64 `json:"totalProfit" yaml:"total_profit"`
	// MaxDrawdown is the largest peak-to-trough drop of cumulative profit, never negative.
	MaxDrawdown  float64      `json:"maxDrawdown" yaml:"max_drawdown"`
	ProfitFactor ProfitFactor `json:"profitFactor" yaml:"profit_factor"`
	TotalTrades  int          `json:"totalTrades" yaml:"total_trades"`
}
