package strategy

// analyzers.go — los cuatro analizadores de sub-señal.
//
// Cada uno consume las N barras más recientes (cronológicas, newest-last)
// y emite una SubSignal independiente. Con datos insuficientes devuelven
// hold con confianza neutral 0.5: un voto ausente, nunca un error.

import (
	"math"

	"github.com/alejandrodnm/sigfuse/internal/domain"
)

const (
	neutralConfidence = 0.5
	subSignalCap      = 0.9 // techo de confianza de cualquier sub-señal
	volumeLookback    = 4   // barras previas para el volumen medio
)

// holdSignal es el voto ausente de un analizador.
func holdSignal(kind domain.SignalKind, metric float64) domain.SubSignal {
	return domain.SubSignal{
		Kind:       kind,
		Decision:   domain.Hold,
		Confidence: neutralConfidence,
		Metric:     metric,
	}
}

// priceChangePct calcula el % de cambio entre los dos últimos cierres.
func priceChangePct(window []domain.PriceBar) (float64, bool) {
	if len(window) < 2 {
		return 0, false
	}
	prev := window[len(window)-2].Close
	if prev == 0 {
		return 0, false
	}
	return (window[len(window)-1].Close - prev) / prev * 100, true
}

// --- price_change ---

// PriceChangeAnalyzer dispara buy/sell cuando el último cierre se mueve más
// allá del umbral configurado respecto al cierre anterior.
type PriceChangeAnalyzer struct {
	Threshold float64 // % (positivo; el umbral de venta es el simétrico)
}

func (a PriceChangeAnalyzer) Kind() domain.SignalKind { return domain.KindPriceChange }

func (a PriceChangeAnalyzer) Evaluate(window []domain.PriceBar) domain.SubSignal {
	change, ok := priceChangePct(window)
	if !ok {
		return holdSignal(domain.KindPriceChange, 0)
	}

	sub := holdSignal(domain.KindPriceChange, change)
	switch {
	case change > a.Threshold:
		sub.Decision = domain.Buy
		sub.Confidence = math.Min(subSignalCap, 0.5+change/(a.Threshold*10))
	case change < -a.Threshold:
		sub.Decision = domain.Sell
		sub.Confidence = math.Min(subSignalCap, 0.5+math.Abs(change)/(a.Threshold*10))
	}
	return sub
}

// --- volume ---

// VolumeAnalyzer detecta picos de volumen: el volumen de la última barra
// contra la media de las 4 anteriores. Un pico por encima del umbral sigue
// la dirección del cambio de precio concurrente; la confianza escala con lo
// que el factor excede el umbral.
type VolumeAnalyzer struct {
	SpikeThreshold float64
}

func (a VolumeAnalyzer) Kind() domain.SignalKind { return domain.KindVolume }

func (a VolumeAnalyzer) Evaluate(window []domain.PriceBar) domain.SubSignal {
	factor, ok := VolumeFactor(window)
	if !ok {
		return holdSignal(domain.KindVolume, 1.0)
	}

	sub := holdSignal(domain.KindVolume, factor)
	if factor < a.SpikeThreshold {
		return sub
	}

	change, ok := priceChangePct(window)
	if !ok || change == 0 {
		return sub
	}

	if change > 0 {
		sub.Decision = domain.Buy
	} else {
		sub.Decision = domain.Sell
	}
	sub.Confidence = math.Min(subSignalCap, 0.5+factor/(a.SpikeThreshold*2))
	return sub
}

// VolumeFactor devuelve latestVolume / avg(4 volúmenes previos), ignorando
// barras con volumen cero. ok=false si no hay datos suficientes.
func VolumeFactor(window []domain.PriceBar) (float64, bool) {
	if len(window) < volumeLookback+1 {
		return 0, false
	}
	latest := window[len(window)-1].Volume
	if latest == 0 {
		return 0, false
	}

	sum, n := 0.0, 0
	for _, b := range window[len(window)-1-volumeLookback : len(window)-1] {
		if b.Volume > 0 {
			sum += b.Volume
			n++
		}
	}
	if n == 0 || sum == 0 {
		return 0, false
	}
	return latest / (sum / float64(n)), true
}

// --- trend ---

// TrendAnalyzer compara las medias móviles corta/larga del cierre actual y
// del anterior. Un golden cross dispara buy, un death cross sell; sin cruce,
// una tendencia ya establecida con fuerza > TrendStrengthMin sigue emitiendo
// señal en la dirección del trend a confianza reducida (≤ 0.7).
type TrendAnalyzer struct {
	ShortPeriod      int
	LongPeriod       int
	TrendStrengthMin float64 // %
}

func (a TrendAnalyzer) Kind() domain.SignalKind { return domain.KindTrend }

const trendContinuationCap = 0.7

func (a TrendAnalyzer) Evaluate(window []domain.PriceBar) domain.SubSignal {
	maShort, maLong, ok := MovingAverages(window, a.ShortPeriod, a.LongPeriod)
	if !ok || maLong == 0 {
		return holdSignal(domain.KindTrend, 0)
	}

	// MAs del punto de evaluación anterior para detectar el cruce. Si no
	// alcanzan las barras, se reutilizan las actuales (sin cruce posible).
	prevShort, prevLong := maShort, maLong
	if ps, pl, ok := MovingAverages(window[:len(window)-1], a.ShortPeriod, a.LongPeriod); ok {
		prevShort, prevLong = ps, pl
	}

	sub := holdSignal(domain.KindTrend, 0)
	switch {
	case maShort > maLong && prevShort <= prevLong:
		// Golden cross: la corta cruza por encima de la larga.
		strength := (maShort - maLong) / maLong * 100
		sub.Decision = domain.Buy
		sub.Confidence = math.Min(subSignalCap, 0.5+strength/5)
		sub.Metric = strength
		sub.Tag = "golden"

	case maShort < maLong && prevShort >= prevLong:
		strength := (maLong - maShort) / maLong * 100
		sub.Decision = domain.Sell
		sub.Confidence = math.Min(subSignalCap, 0.5+strength/5)
		sub.Metric = strength
		sub.Tag = "death"

	case maShort > maLong:
		strength := (maShort - maLong) / maLong * 100
		sub.Metric = strength
		sub.Tag = "uptrend"
		if strength > a.TrendStrengthMin {
			sub.Decision = domain.Buy
			sub.Confidence = math.Min(trendContinuationCap, 0.5+strength/20)
		}

	case maShort < maLong:
		strength := (maLong - maShort) / maLong * 100
		sub.Metric = strength
		sub.Tag = "downtrend"
		if strength > a.TrendStrengthMin {
			sub.Decision = domain.Sell
			sub.Confidence = math.Min(trendContinuationCap, 0.5+strength/20)
		}
	}
	return sub
}

// MovingAverages calcula la SMA corta y larga sobre los últimos cierres.
// Requiere al menos LongPeriod barras.
func MovingAverages(window []domain.PriceBar, shortPeriod, longPeriod int) (maShort, maLong float64, ok bool) {
	closes := domain.Closes(window)
	maLong, okLong := domain.SMA(closes, longPeriod)
	maShort, okShort := domain.SMA(closes, shortPeriod)
	if !okLong || !okShort {
		return 0, 0, false
	}
	return maShort, maLong, true
}

// --- momentum ---

// MomentumAnalyzer genera señales por condición de sobreventa/sobrecompra
// del RSI. La confianza escala linealmente con la distancia más allá del
// umbral, con techo 0.9.
type MomentumAnalyzer struct {
	Period     int
	Overbought float64
	Oversold   float64
}

func (a MomentumAnalyzer) Kind() domain.SignalKind { return domain.KindMomentum }

func (a MomentumAnalyzer) Evaluate(window []domain.PriceBar) domain.SubSignal {
	value, ok := domain.RSI(domain.Closes(window), a.Period)
	if !ok {
		// Voto ausente; NaN marca que el RSI no se pudo calcular.
		return holdSignal(domain.KindMomentum, math.NaN())
	}

	sub := holdSignal(domain.KindMomentum, value)
	switch {
	case value <= a.Oversold:
		strength := (a.Oversold - value) / a.Oversold
		sub.Decision = domain.Buy
		sub.Confidence = math.Min(subSignalCap, 0.5+strength)
		sub.Tag = "oversold"
	case value >= a.Overbought:
		strength := (value - a.Overbought) / (100 - a.Overbought)
		sub.Decision = domain.Sell
		sub.Confidence = math.Min(subSignalCap, 0.5+strength)
		sub.Tag = "overbought"
	}
	return sub
}
