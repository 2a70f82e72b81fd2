package backtest

// metrics.go — performance metrics derived from the trade log and equity
// curve. Pure aggregations over the run's output, never a re-simulation.

import (
	"math"
	"time"

	"github.com/alejandrodnm/sigfuse/internal/domain"
)

// computeResult aggregates a finished run. Zero trades is a well-defined
// outcome: the run is still StatusCompleted with empty trade metrics.
func computeResult(
	runID string,
	initialCapital float64,
	symbols []string,
	timeframe string,
	trades []domain.Trade,
	equity []domain.EquityPoint,
) domain.BacktestResult {
	result := domain.BacktestResult{
		RunID:          runID,
		Status:         domain.StatusCompleted,
		Symbols:        symbols,
		Timeframe:      timeframe,
		InitialCapital: initialCapital,
		FinalEquity:    initialCapital,
		Trades:         trades,
		EquityCurve:    equity,
		TotalTrades:    len(trades),
	}
	if len(equity) == 0 {
		return result
	}

	result.StartDate = equity[0].Date
	result.EndDate = equity[len(equity)-1].Date
	result.FinalEquity = equity[len(equity)-1].Equity
	result.TotalReturn = result.FinalEquity/initialCapital - 1
	result.AnnualizedReturn = annualize(result.TotalReturn, result.StartDate, result.EndDate)
	result.MaxDrawdown, result.AvgDrawdown = drawdownStats(equity)
	result.SharpeRatio = sharpeRatio(equity)

	wins, losses := splitClosedTrades(trades)
	result.ClosedTrades = len(wins) + len(losses)
	result.WinningTrades = len(wins)
	result.LosingTrades = len(losses)
	if result.ClosedTrades > 0 {
		result.WinRate = float64(len(wins)) / float64(result.ClosedTrades)
		result.AvgWin = meanPL(wins)
		result.AvgLoss = meanPL(losses)
		result.ProfitFactor = profitFactor(wins, losses)
		result.AvgHoldingDays = avgHoldingDays(trades)
	}
	return result
}

// annualize converts a total return over the period into a yearly rate.
func annualize(totalReturn float64, start, end time.Time) float64 {
	days := end.Sub(start).Hours() / 24
	if days <= 0 {
		return totalReturn
	}
	return math.Pow(1+totalReturn, 365/days) - 1
}

func drawdownStats(equity []domain.EquityPoint) (maxDD, avgDD float64) {
	sum := 0.0
	for _, p := range equity {
		if p.Drawdown > maxDD {
			maxDD = p.Drawdown
		}
		sum += p.Drawdown
	}
	return maxDD, sum / float64(len(equity))
}

// sharpeRatio annualizes the mean/stdev of end-of-day returns, assuming a
// zero risk-free rate. Zero when the denominator is zero.
func sharpeRatio(equity []domain.EquityPoint) float64 {
	var returns []float64
	for _, p := range equity {
		if p.Phase == domain.PhaseEndOfDay {
			returns = append(returns, p.PeriodReturn)
		}
	}
	if len(returns) < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	varSum := 0.0
	for _, r := range returns {
		d := r - mean
		varSum += d * d
	}
	sd := math.Sqrt(varSum / float64(len(returns)-1))
	if sd == 0 {
		return 0
	}
	return mean * 252 / (sd * math.Sqrt(252))
}

// splitClosedTrades partitions sells into winners and losers. A sell with
// zero P&L counts as a loss, matching the win-rate definition.
func splitClosedTrades(trades []domain.Trade) (wins, losses []domain.Trade) {
	for _, t := range trades {
		if t.Action != domain.Sell {
			continue
		}
		if t.RealizedPL > 0 {
			wins = append(wins, t)
		} else {
			losses = append(losses, t)
		}
	}
	return wins, losses
}

func meanPL(trades []domain.Trade) float64 {
	if len(trades) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range trades {
		sum += t.RealizedPL
	}
	return sum / float64(len(trades))
}

// profitFactor is gross profit over gross loss, +Inf when nothing was lost.
func profitFactor(wins, losses []domain.Trade) float64 {
	grossProfit := 0.0
	for _, t := range wins {
		grossProfit += t.RealizedPL
	}
	grossLoss := 0.0
	for _, t := range losses {
		grossLoss += math.Abs(t.RealizedPL)
	}
	if grossLoss == 0 {
		return math.Inf(1)
	}
	return grossProfit / grossLoss
}

// avgHoldingDays pairs each sell with its opening buy via EntryTradeID.
func avgHoldingDays(trades []domain.Trade) float64 {
	byID := make(map[int]domain.Trade, len(trades))
	for _, t := range trades {
		byID[t.ID] = t
	}

	sum, n := 0.0, 0
	for _, t := range trades {
		if t.Action != domain.Sell {
			continue
		}
		entry, ok := byID[t.EntryTradeID]
		if !ok {
			continue
		}
		sum += t.Date.Sub(entry.Date).Hours() / 24
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
