package domain

// Decision es la acción que propone una señal.
type Decision string

const (
	Buy  Decision = "buy"
	Sell Decision = "sell"
	Hold Decision = "hold"
)

// SignalKind identifica la familia de indicador detrás de una sub-señal.
// El conjunto es cerrado: no hay subclases, cada analizador es una variante.
type SignalKind string

const (
	KindVolume      SignalKind = "volume"
	KindTrend       SignalKind = "trend"
	KindMomentum    SignalKind = "momentum"
	KindPriceChange SignalKind = "price_change"
)

// SubSignal es la opinión de un analizador individual: decisión + confianza
// basadas en una sola familia de indicadores. Se produce fresca en cada
// evaluación y nunca se persiste.
type SubSignal struct {
	Kind       SignalKind
	Decision   Decision
	Confidence float64 // [0, 1]
	Metric     float64 // valor de soporte: factor de volumen, fuerza del cruce, RSI, % de cambio
	Tag        string  // marcador opcional: golden|death|uptrend|downtrend|oversold|overbought
}

// SignalMetadata lleva cada valor crudo de indicador usado en la fusión,
// para que el consumidor pueda auditar la decisión sin recalcular nada.
type SignalMetadata struct {
	CurrentPrice   float64
	PreviousClose  float64
	PriceChangePct float64
	Volume         float64
	VolumeFactor   float64
	MAShort        float64
	MALong         float64
	RSI            float64
	RSIValid       bool
	Volatility     float64
	Bollinger      BollingerBands
	BollingerValid bool
}

// FusedSignal es la decisión única resultante de combinar todas las
// sub-señales de un símbolo en un instante de evaluación.
type FusedSignal struct {
	Symbol     string
	Decision   Decision
	Confidence float64  // [0, 0.95]
	Reasons    []string // en el orden en que los analizadores dispararon
	Metadata   SignalMetadata
}
