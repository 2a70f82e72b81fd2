package domain

// indicators.go — funciones puras de análisis técnico.
//
// Mismo input → mismo output, sin estado ni reloj. Cuando no hay datos
// suficientes devuelven ok=false (voto ausente), nunca un error: la
// insuficiencia de datos es un resultado válido, no un fallo.

import "math"

// tradingDaysPerYear anualiza la volatilidad de retornos diarios.
const tradingDaysPerYear = 252

// RSI calcula el Relative Strength Index estilo Wilder sobre los cierres
// dados (orden cronológico). El primer valor usa la media simple de
// ganancias/pérdidas sobre `period` barras; los siguientes aplican el
// suavizado exponencial de Wilder:
//
//	avgGain = (avgGain×(period-1) + gain) / period
//
// Si avgLoss == 0 el RSI es 100 (fuerza relativa sin techo, no un
// división-por-cero). Requiere al menos period+1 cierres.
func RSI(closes []float64, period int) (float64, bool) {
	if period <= 0 || len(closes) < period+1 {
		return 0, false
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss += -change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	// Suavizado de Wilder para el resto de la serie.
	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100, true
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs)), true
}

// SMA calcula la media móvil simple de los últimos `period` valores.
func SMA(values []float64, period int) (float64, bool) {
	if period <= 0 || len(values) < period {
		return 0, false
	}
	sum := 0.0
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period), true
}

// EMA calcula la serie de medias móviles exponenciales. Se inicializa con
// la SMA de los primeros `period` valores y usa multiplicador 2/(period+1).
func EMA(values []float64, period int) ([]float64, bool) {
	if period <= 0 || len(values) < period {
		return nil, false
	}

	multiplier := 2.0 / (float64(period) + 1)

	seed := 0.0
	for _, v := range values[:period] {
		seed += v
	}
	seed /= float64(period)

	emas := make([]float64, 0, len(values)-period+1)
	emas = append(emas, seed)
	for i := period; i < len(values); i++ {
		prev := emas[len(emas)-1]
		emas = append(emas, (values[i]-prev)*multiplier+prev)
	}
	return emas, true
}

// Volatility es la desviación estándar muestral de los retornos simples
// sobre la ventana dada, anualizada por sqrt(252). Devuelve 0 si no hay
// retornos suficientes para una desviación muestral.
func Volatility(closes []float64, window int) float64 {
	if window <= 0 || len(closes) < 3 {
		return 0
	}

	n := len(closes) - 1 // retornos disponibles
	if n > window {
		n = window
	}
	start := len(closes) - n - 1

	returns := make([]float64, 0, n)
	for i := start + 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		returns = append(returns, closes[i]/closes[i-1]-1)
	}
	if len(returns) < 2 {
		return 0
	}
	return stdev(returns) * math.Sqrt(tradingDaysPerYear)
}

// BollingerBands es el resultado de Bollinger: banda media (SMA) y
// bandas superior/inferior a ±k desviaciones.
type BollingerBands struct {
	Upper  float64
	Middle float64
	Lower  float64
}

// Bollinger calcula las bandas sobre los últimos `period` cierres.
func Bollinger(closes []float64, period int, k float64) (BollingerBands, bool) {
	middle, ok := SMA(closes, period)
	if !ok {
		return BollingerBands{}, false
	}
	sd := stdev(closes[len(closes)-period:])
	return BollingerBands{
		Upper:  middle + k*sd,
		Middle: middle,
		Lower:  middle - k*sd,
	}, true
}

// stdev es la desviación estándar muestral (divisor n-1).
func stdev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	varSum := 0.0
	for _, v := range values {
		d := v - mean
		varSum += d * d
	}
	return math.Sqrt(varSum / float64(len(values)-1))
}
