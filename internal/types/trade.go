package types

// TradeDirection is the side of a closed round-trip position.
type TradeDirection string

const (
	TradeDirectionLong  TradeDirection = "LONG"
	TradeDirectionShort TradeDirection = "SHORT"
)

// Trade is one closed round-trip position produced by a strategy.
type Trade struct {
	EntryDate  string  `json:"entryDate" yaml:"entry_date"`
	ExitDate   string  `json:"exitDate" yaml:"exit_date"`
	EntryPrice float64 `json:"entryPrice" yaml:"entry_price"`
	ExitPrice  float64 `json:"exitPrice" yaml:"exit_price"`
	// Profit is exit - entry for LONG and entry - exit for SHORT.
	Profit    float64        `json:"profit" yaml:"profit"`
	Direction TradeDirection `json:"type" yaml:"type"`
}

// ProfitFor computes the profit of a round trip in the given direction.
func ProfitFor(direction TradeDirection, entryPrice, exitPrice float64) float64 {
	if direction == TradeDirectionShort {
		return entryPrice - exitPrice
	}

	return exitPrice - entryPrice
}
