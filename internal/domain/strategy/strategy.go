package strategy

import "github.com/alejandrodnm/sigfuse/internal/domain"

// Evaluator define el contrato que consume el simulador: una función pura
// de (símbolo, ventana de barras, precio actual) a señal fusionada o nada.
// Devolver nil significa "sin señal en esta evaluación", no un error.
type Evaluator interface {
	Evaluate(symbol string, window []domain.PriceBar, currentPrice float64) *domain.FusedSignal
}

// Analyzer es la capacidad común de los analizadores de sub-señal: evaluar
// una ventana cronológica (newest-last) y emitir una opinión individual.
// El conjunto de implementaciones es cerrado (volume | trend | momentum |
// price_change) y se selecciona por configuración, no por herencia.
type Analyzer interface {
	Kind() domain.SignalKind
	Evaluate(window []domain.PriceBar) domain.SubSignal
}
