package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/alejandrodnm/sigfuse/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sellTrade(id, entryID int, pl float64, d int) domain.Trade {
	return domain.Trade{
		ID:           id,
		Symbol:       "AAPL",
		Action:       domain.Sell,
		RealizedPL:   pl,
		EntryTradeID: entryID,
		Date:         time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC),
	}
}

func buyTrade(id, d int) domain.Trade {
	return domain.Trade{
		ID:     id,
		Symbol: "AAPL",
		Action: domain.Buy,
		Date:   time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC),
	}
}

func eodPoint(d int, equity, ret float64) domain.EquityPoint {
	return domain.EquityPoint{
		Date:         time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC),
		Phase:        domain.PhaseEndOfDay,
		Equity:       equity,
		PeriodReturn: ret,
	}
}

func TestComputeResult_NoTrades(t *testing.T) {
	// Cero trades es un resultado válido, no un fallo
	result := computeResult("run-1", 10000, []string{"AAPL"}, "1d", nil, nil)

	assert.Equal(t, domain.StatusCompleted, result.Status)
	assert.Equal(t, 0, result.TotalTrades)
	assert.Equal(t, 10000.0, result.FinalEquity)
	assert.Equal(t, 0.0, result.WinRate)
	assert.Equal(t, 0.0, result.ProfitFactor)
}

func TestComputeResult_WinLossSplit(t *testing.T) {
	trades := []domain.Trade{
		buyTrade(1, 1), sellTrade(2, 1, 100, 3),
		buyTrade(3, 4), sellTrade(4, 3, -40, 6),
		buyTrade(5, 7), sellTrade(6, 5, 0, 8), // P&L cero cuenta como pérdida
	}
	result := computeResult("run-1", 10000, []string{"AAPL"}, "1d", trades,
		[]domain.EquityPoint{eodPoint(1, 10000, 0), eodPoint(8, 10060, 0.006)})

	assert.Equal(t, 6, result.TotalTrades)
	assert.Equal(t, 3, result.ClosedTrades)
	assert.Equal(t, 1, result.WinningTrades)
	assert.Equal(t, 2, result.LosingTrades)
	assert.InDelta(t, 1.0/3.0, result.WinRate, 0.0001)
	assert.InDelta(t, 100.0, result.AvgWin, 0.0001)
	assert.InDelta(t, -20.0, result.AvgLoss, 0.0001)
	// grossProfit=100, grossLoss=40 → 2.5
	assert.InDelta(t, 2.5, result.ProfitFactor, 0.0001)
	// holding: 2 + 2 + 1 días / 3 ventas
	assert.InDelta(t, 5.0/3.0, result.AvgHoldingDays, 0.0001)
}

func TestProfitFactor_InfiniteWithoutLosses(t *testing.T) {
	trades := []domain.Trade{buyTrade(1, 1), sellTrade(2, 1, 50, 2)}
	result := computeResult("run-1", 10000, []string{"AAPL"}, "1d", trades,
		[]domain.EquityPoint{eodPoint(1, 10000, 0), eodPoint(2, 10050, 0.005)})

	assert.True(t, math.IsInf(result.ProfitFactor, 1))
	assert.Equal(t, 1.0, result.WinRate)
}

func TestSharpeRatio_ZeroStdevIsZero(t *testing.T) {
	// Retornos idénticos → desviación cero → Sharpe 0, no NaN
	equity := []domain.EquityPoint{
		eodPoint(1, 10100, 0.01),
		eodPoint(2, 10201, 0.01),
		eodPoint(3, 10303, 0.01),
	}
	assert.Equal(t, 0.0, sharpeRatio(equity))
}

func TestSharpeRatio_NeedsTwoReturns(t *testing.T) {
	assert.Equal(t, 0.0, sharpeRatio([]domain.EquityPoint{eodPoint(1, 10000, 0)}))
	assert.Equal(t, 0.0, sharpeRatio(nil))
}

func TestSharpeRatio_IgnoresStartOfDayPoints(t *testing.T) {
	equity := []domain.EquityPoint{
		{Phase: domain.PhaseStartOfDay, PeriodReturn: 99}, // no debe contar
		eodPoint(1, 10000, 0.01),
		eodPoint(2, 10000, -0.01),
		eodPoint(3, 10000, 0.02),
	}
	sharpe := sharpeRatio(equity)
	assert.False(t, math.IsNaN(sharpe))
	assert.NotEqual(t, 0.0, sharpe)
}

func TestAnnualize_OneYear(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	got := annualize(0.10, start, end)
	// 366 días (2024 bisiesto): (1.1)^(365/366)-1 ≈ 0.0997
	assert.InDelta(t, 0.0997, got, 0.001)
}

func TestAnnualize_ZeroDays(t *testing.T) {
	now := time.Now()
	assert.Equal(t, 0.10, annualize(0.10, now, now))
}

func TestDrawdownStats(t *testing.T) {
	equity := []domain.EquityPoint{
		{Drawdown: 0},
		{Drawdown: 0.10},
		{Drawdown: 0.05},
		{Drawdown: 0.25},
	}
	maxDD, avgDD := drawdownStats(equity)
	assert.InDelta(t, 0.25, maxDD, 0.0001)
	assert.InDelta(t, 0.10, avgDD, 0.0001)
}

func TestAvgHoldingDays_UnpairedSellIgnored(t *testing.T) {
	trades := []domain.Trade{
		buyTrade(1, 1),
		sellTrade(2, 1, 10, 4),  // 3 días
		sellTrade(3, 99, 10, 5), // entry desconocido, se ignora
	}
	assert.InDelta(t, 3.0, avgHoldingDays(trades), 0.0001)
}

func TestComputeResult_DatesFromEquityCurve(t *testing.T) {
	equity := []domain.EquityPoint{eodPoint(3, 10000, 0), eodPoint(7, 10500, 0.05)}
	result := computeResult("run-1", 10000, []string{"AAPL"}, "1d", nil, equity)

	require.False(t, result.StartDate.IsZero())
	assert.Equal(t, equity[0].Date, result.StartDate)
	assert.Equal(t, equity[1].Date, result.EndDate)
	assert.InDelta(t, 0.05, result.TotalReturn, 0.0001)
}
