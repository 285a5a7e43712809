package engine

import (
	"math"

	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// Evaluate derives the aggregate statistics of trades, taken in order.
//
//   - WinRate is the percentage of trades with positive profit, 0 without trades.
//   - MaxDrawdown is the largest drop of cumulative profit below its running peak, 0 without trades.
//   - ProfitFactor is |gross profit / gross loss|, +Inf when no trade lost money.
func Evaluate(trades []types.Trade) types.BacktestResult {
	totalProfit := 0.0
	grossProfit := 0.0
	grossLoss := 0.0
	winningTrades := 0

	maxDrawdown := 0.0
	peak := math.Inf(-1)
	runningTotal := 0.0

	for _, trade := range trades {
		totalProfit += trade.Profit

		if trade.Profit > 0 {
			winningTrades++
			grossProfit += trade.Profit
		}

		if trade.Profit < 0 {
			grossLoss += trade.Profit
		}

		runningTotal += trade.Profit
		if runningTotal > peak {
			peak = runningTotal
		}

		if drawdown := peak - runningTotal; drawdown > maxDrawdown {
			maxDrawdown = drawdown
		}
	}

	winRate := 0.0
	if len(trades) > 0 {
		winRate = (float64(winningTrades) / float64(len(trades))) * 100
	}

	profitFactor := math.Inf(1)
	if grossLoss != 0 {
		profitFactor = math.Abs(grossProfit / grossLoss)
	}

	return types.BacktestResult{
		Trades:       append([]types.Trade{}, trades...),
		WinRate:      winRate,
		TotalProfit:  totalProfit,
		MaxDrawdown:  maxDrawdown,
		ProfitFactor: types.ProfitFactor(profitFactor),
		TotalTrades:  len(trades),
	}
}
