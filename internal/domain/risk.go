package domain

// Sizer convierte una señal fusionada + capital + volatilidad medida en un
// tamaño de posición concreto. Es un value object puro: se construye por
// run y no guarda estado entre llamadas.
//
// Fórmula:
//
//	riskAmount = capital × riskPerTrade
//	rawSize    = riskAmount / (price × volatility × volDampening)
//	size       = min(rawSize, capital × maxPositionFrac) × confidence
//
// El multiplicador volDampening (10×) convierte la volatilidad en una
// escala de posición tipo apalancamiento. Si el coste resultante supera el
// capital disponible, el tamaño se recorta a capital/price en vez de fallar.
type Sizer struct {
	RiskPerTrade    float64 // fracción del capital arriesgada por trade
	MaxPositionFrac float64 // cap duro de una posición individual
	VolatilityFloor float64 // suelo cuando la volatilidad medida es exactamente 0
	VolDampening    float64
}

// Defaults de gestión de riesgo.
const (
	DefaultRiskPerTrade    = 0.02 // 2% del capital
	DefaultMaxPositionFrac = 0.25 // máximo 25% del capital en una posición
	DefaultVolatilityFloor = 0.01 // evita división por cero
	DefaultVolDampening    = 10.0
)

// NewSizer crea un Sizer con el riesgo por trade dado y el resto de
// parámetros con sus defaults.
func NewSizer(riskPerTrade float64) Sizer {
	if riskPerTrade <= 0 {
		riskPerTrade = DefaultRiskPerTrade
	}
	return Sizer{
		RiskPerTrade:    riskPerTrade,
		MaxPositionFrac: DefaultMaxPositionFrac,
		VolatilityFloor: DefaultVolatilityFloor,
		VolDampening:    DefaultVolDampening,
	}
}

// Size calcula el tamaño de posición para una compra. Devuelve 0 si los
// inputs no permiten dimensionar (capital o precio no positivos).
func (s Sizer) Size(capital, price, volatility, confidence float64) float64 {
	if capital <= 0 || price <= 0 {
		return 0
	}
	if volatility == 0 {
		volatility = s.VolatilityFloor
	}

	riskAmount := capital * s.RiskPerTrade
	size := riskAmount / (price * volatility * s.VolDampening)

	if maxSize := capital * s.MaxPositionFrac; size > maxSize {
		size = maxSize
	}

	// Señales de baja confianza reciben proporcionalmente menos tamaño.
	size *= confidence

	if size*price > capital {
		size = capital / price
	}
	return size
}
