package strategy

// Types of the built-in strategies.
const (
	TypeSMACrossover = "SMA_CROSSOVER"
	TypeRSI          = "RSI"
	TypeMACD         = "MACD"
)

// BuiltinStrategies returns the catalogue every registry starts with, in display order.
//
// Only SMA_CROSSOVER has a rule of its own. RSI and MACD declare their parameters but are
// evaluated with the crossover rule, which picks up "period" and "fastPeriod"/"slowPeriod".
func BuiltinStrategies() []StrategyDefinition {
	return []StrategyDefinition{
		{
			Type:        TypeSMACrossover,
			Name:        "Moving Average Crossover",
			Description: "Generates signals based on crossovers between short and long moving averages",
			Params: []Parameter{
				NewParameter("Short SMA Period", "shortPeriod", 10, 2, 50),
				NewParameter("Long SMA Period", "longPeriod", 20, 5, 200),
			},
		},
		{
			Type:        TypeRSI,
			Name:        "Relative Strength Index",
			Description: "Generates signals based on overbought and oversold conditions",
			Params: []Parameter{
				NewParameter("RSI Period", "period", 14, 2, 50),
				NewParameter("Overbought Level", "overbought", 70, 50, 90),
				NewParameter("Oversold Level", "oversold", 30, 10, 50),
			},
		},
		{
			Type:        TypeMACD,
			Name:        "MACD",
			Description: "Generates signals based on MACD line crossovers",
			Params: []Parameter{
				NewParameter("Fast Period", "fastPeriod", 12, 2, 50),
				NewParameter("Slow Period", "slowPeriod", 26, 5, 100),
				NewParameter("Signal Period", "signalPeriod", 9, 2, 50),
			},
		},
	}
}
