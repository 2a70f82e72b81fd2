package strategy

import (
	"math"
	"testing"
	"time"

	"github.com/alejandrodnm/sigfuse/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// barsFrom construye una ventana cronológica a partir de cierres y volúmenes.
func barsFrom(closes, volumes []float64) []domain.PriceBar {
	bars := make([]domain.PriceBar, len(closes))
	for i, c := range closes {
		vol := 1000.0
		if volumes != nil {
			vol = volumes[i]
		}
		bars[i] = domain.PriceBar{
			Symbol:    "TEST",
			Close:     c,
			Volume:    vol,
			Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
		}
	}
	return bars
}

// --- PriceChangeAnalyzer ---

func TestPriceChange_BuyAboveThreshold(t *testing.T) {
	a := PriceChangeAnalyzer{Threshold: 2.0}
	sub := a.Evaluate(barsFrom([]float64{100, 103}, nil))

	assert.Equal(t, domain.Buy, sub.Decision)
	// conf = 0.5 + 3/(2×10) = 0.65
	assert.InDelta(t, 0.65, sub.Confidence, 0.0001)
	assert.InDelta(t, 3.0, sub.Metric, 0.0001)
}

func TestPriceChange_SellBelowThreshold(t *testing.T) {
	a := PriceChangeAnalyzer{Threshold: 2.0}
	sub := a.Evaluate(barsFrom([]float64{100, 97}, nil))

	assert.Equal(t, domain.Sell, sub.Decision)
	assert.InDelta(t, 0.65, sub.Confidence, 0.0001)
}

func TestPriceChange_WithinThresholdHolds(t *testing.T) {
	a := PriceChangeAnalyzer{Threshold: 2.0}
	sub := a.Evaluate(barsFrom([]float64{100, 101.5}, nil))

	assert.Equal(t, domain.Hold, sub.Decision)
	assert.Equal(t, 0.5, sub.Confidence)
}

func TestPriceChange_InsufficientData(t *testing.T) {
	a := PriceChangeAnalyzer{Threshold: 2.0}
	sub := a.Evaluate(barsFrom([]float64{100}, nil))
	assert.Equal(t, domain.Hold, sub.Decision)
}

// --- VolumeAnalyzer ---

func TestVolume_SpikeWithPriceUp(t *testing.T) {
	// factor 4.0 ≥ umbral 3.0, precio +3% → buy
	a := VolumeAnalyzer{SpikeThreshold: 3.0}
	window := barsFrom(
		[]float64{100, 100, 100, 100, 103},
		[]float64{1000, 1000, 1000, 1000, 4000},
	)
	sub := a.Evaluate(window)

	assert.Equal(t, domain.Buy, sub.Decision)
	assert.InDelta(t, 4.0, sub.Metric, 0.0001)
	// conf = min(0.9, 0.5 + 4/(3×2)) → techo 0.9
	assert.InDelta(t, 0.9, sub.Confidence, 0.0001)
}

func TestVolume_SpikeWithPriceDown(t *testing.T) {
	a := VolumeAnalyzer{SpikeThreshold: 3.0}
	window := barsFrom(
		[]float64{100, 100, 100, 100, 98},
		[]float64{1000, 1000, 1000, 1000, 3500},
	)
	sub := a.Evaluate(window)
	assert.Equal(t, domain.Sell, sub.Decision)
}

func TestVolume_BelowThresholdHolds(t *testing.T) {
	a := VolumeAnalyzer{SpikeThreshold: 3.0}
	window := barsFrom(
		[]float64{100, 100, 100, 100, 103},
		[]float64{1000, 1000, 1000, 1000, 2000},
	)
	sub := a.Evaluate(window)
	assert.Equal(t, domain.Hold, sub.Decision)
	assert.InDelta(t, 2.0, sub.Metric, 0.0001)
}

func TestVolumeFactor_IgnoresZeroVolumes(t *testing.T) {
	// Dos de las 4 barras previas con volumen 0: media sobre las 2 restantes
	window := barsFrom(
		[]float64{100, 100, 100, 100, 100},
		[]float64{0, 1000, 0, 1000, 3000},
	)
	factor, ok := VolumeFactor(window)
	require.True(t, ok)
	assert.InDelta(t, 3.0, factor, 0.0001)
}

func TestVolumeFactor_InsufficientData(t *testing.T) {
	_, ok := VolumeFactor(barsFrom([]float64{100, 100}, nil))
	assert.False(t, ok)
}

// --- TrendAnalyzer ---

func TestTrend_GoldenCross(t *testing.T) {
	a := TrendAnalyzer{ShortPeriod: 2, LongPeriod: 3, TrendStrengthMin: 5.0}
	// Antes: short=long=10. Ahora: short=20 > long=16.67 → golden cross
	sub := a.Evaluate(barsFrom([]float64{10, 10, 10, 10, 30}, nil))

	assert.Equal(t, domain.Buy, sub.Decision)
	assert.Equal(t, "golden", sub.Tag)
	assert.InDelta(t, 0.9, sub.Confidence, 0.0001) // strength 20% → techo
}

func TestTrend_DeathCross(t *testing.T) {
	a := TrendAnalyzer{ShortPeriod: 2, LongPeriod: 3, TrendStrengthMin: 5.0}
	sub := a.Evaluate(barsFrom([]float64{10, 10, 10, 10, 3}, nil))

	assert.Equal(t, domain.Sell, sub.Decision)
	assert.Equal(t, "death", sub.Tag)
}

func TestTrend_UptrendContinuation(t *testing.T) {
	a := TrendAnalyzer{ShortPeriod: 2, LongPeriod: 4, TrendStrengthMin: 5.0}
	// short>long antes y ahora, fuerza 13.3% > 5% → continuación
	sub := a.Evaluate(barsFrom([]float64{10, 12, 14, 16, 18}, nil))

	assert.Equal(t, domain.Buy, sub.Decision)
	assert.Equal(t, "uptrend", sub.Tag)
	assert.LessOrEqual(t, sub.Confidence, 0.7)
}

func TestTrend_WeakTrendHolds(t *testing.T) {
	a := TrendAnalyzer{ShortPeriod: 2, LongPeriod: 4, TrendStrengthMin: 5.0}
	// Tendencia establecida pero floja (< 5%) → hold con tag informativo
	sub := a.Evaluate(barsFrom([]float64{100, 100.5, 101, 101.5, 102}, nil))

	assert.Equal(t, domain.Hold, sub.Decision)
	assert.Equal(t, "uptrend", sub.Tag)
}

func TestTrend_InsufficientData(t *testing.T) {
	a := TrendAnalyzer{ShortPeriod: 20, LongPeriod: 50, TrendStrengthMin: 5.0}
	sub := a.Evaluate(barsFrom([]float64{100, 101, 102}, nil))
	assert.Equal(t, domain.Hold, sub.Decision)
	assert.Equal(t, 0.5, sub.Confidence)
}

// --- MomentumAnalyzer ---

func TestMomentum_Oversold(t *testing.T) {
	a := MomentumAnalyzer{Period: 5, Overbought: 70, Oversold: 30}
	// Caída monótona: RSI=0 → buy a máxima confianza
	sub := a.Evaluate(barsFrom([]float64{100, 98, 96, 94, 92, 90}, nil))

	assert.Equal(t, domain.Buy, sub.Decision)
	assert.Equal(t, "oversold", sub.Tag)
	assert.InDelta(t, 0.9, sub.Confidence, 0.0001)
	assert.InDelta(t, 0.0, sub.Metric, 0.0001)
}

func TestMomentum_Overbought(t *testing.T) {
	a := MomentumAnalyzer{Period: 5, Overbought: 70, Oversold: 30}
	sub := a.Evaluate(barsFrom([]float64{90, 92, 94, 96, 98, 100}, nil))

	assert.Equal(t, domain.Sell, sub.Decision)
	assert.Equal(t, "overbought", sub.Tag)
	assert.InDelta(t, 100.0, sub.Metric, 0.0001)
}

func TestMomentum_NeutralZoneHolds(t *testing.T) {
	a := MomentumAnalyzer{Period: 5, Overbought: 70, Oversold: 30}
	sub := a.Evaluate(barsFrom([]float64{100, 101, 100, 101, 100, 101}, nil))
	assert.Equal(t, domain.Hold, sub.Decision)
}

func TestMomentum_InsufficientDataMarksNaN(t *testing.T) {
	a := MomentumAnalyzer{Period: 14, Overbought: 70, Oversold: 30}
	sub := a.Evaluate(barsFrom([]float64{100, 101}, nil))

	assert.Equal(t, domain.Hold, sub.Decision)
	assert.True(t, math.IsNaN(sub.Metric))
}
