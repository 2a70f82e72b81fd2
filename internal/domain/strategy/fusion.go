package strategy

// fusion.go — el motor de fusión de señales.
//
// Orden de precedencia (política deliberada):
//  1. price_change se evalúa primero; si da buy/sell se adopta.
//  2. El resto de analizadores (volume, trend, momentum) por turno:
//     coinciden → razón de confirmación; la decisión sigue en hold →
//     se adopta su voto; contradicen una decisión no-hold → veto suave
//     (la confianza final se multiplica por el factor de contradicción,
//     0.7 por defecto) sin llegar a sobreescribir la decisión.
//  3. hold final → no hay señal (nil), no un error.
//  4. Confianza final = mezcla ponderada de las confianzas individuales,
//     con pesos distintos según si el momentum votó; techo en 0.95.

import (
	"fmt"
	"math"

	"github.com/alejandrodnm/sigfuse/internal/domain"
)

// Engine fusiona las sub-señales de un símbolo en una decisión única.
// Es puro y sin estado: idéntica ventana + idéntica configuración producen
// una señal idéntica byte a byte.
type Engine struct {
	cfg       Config
	price     PriceChangeAnalyzer
	analyzers []Analyzer // en orden de precedencia tras price_change
}

var _ Evaluator = (*Engine)(nil)

// New construye el motor con la configuración dada. Los campos a cero se
// rellenan con los defaults.
func New(cfg Config) *Engine {
	cfg.normalize()

	e := &Engine{
		cfg:   cfg,
		price: PriceChangeAnalyzer{Threshold: cfg.PriceChangeThreshold},
	}
	for _, kind := range cfg.Analyzers {
		switch kind {
		case domain.KindVolume:
			e.analyzers = append(e.analyzers, VolumeAnalyzer{SpikeThreshold: cfg.VolumeSpikeThreshold})
		case domain.KindTrend:
			e.analyzers = append(e.analyzers, TrendAnalyzer{
				ShortPeriod:      cfg.MAShortPeriod,
				LongPeriod:       cfg.MALongPeriod,
				TrendStrengthMin: cfg.TrendStrengthMin,
			})
		case domain.KindMomentum:
			if cfg.UseRSISignals {
				e.analyzers = append(e.analyzers, MomentumAnalyzer{
					Period:     cfg.RSIPeriod,
					Overbought: cfg.RSIOverbought,
					Oversold:   cfg.RSIOversold,
				})
			}
		}
	}
	return e
}

// Config devuelve la configuración efectiva (tras normalizar).
func (e *Engine) Config() Config { return e.cfg }

// Evaluate es la superficie pública del motor: evalúa la ventana de barras
// y devuelve la señal fusionada, o nil si la evaluación no produce nada.
// Tolera ventanas en orden ascendente o descendente.
func (e *Engine) Evaluate(symbol string, window []domain.PriceBar, currentPrice float64) *domain.FusedSignal {
	if len(window) < 2 {
		return nil
	}
	window = domain.SortChronological(window)

	if currentPrice <= 0 {
		currentPrice = window[len(window)-1].Close
	}

	decision := domain.Hold
	reasons := make([]string, 0, 4)
	contradictions := 0

	// 1. Cambio de precio primero.
	priceSub := e.price.Evaluate(window)
	if priceSub.Decision != domain.Hold {
		decision = priceSub.Decision
		reasons = append(reasons, priceReason(priceSub))
	}

	// 2. Resto de analizadores por turno.
	subs := make(map[domain.SignalKind]domain.SubSignal, len(e.analyzers))
	for _, a := range e.analyzers {
		sub := a.Evaluate(window)
		subs[a.Kind()] = sub

		if sub.Decision == domain.Hold {
			continue // voto ausente
		}
		switch {
		case sub.Decision == decision:
			reasons = append(reasons, confirmReason(sub))
		case decision == domain.Hold:
			decision = sub.Decision
			reasons = append(reasons, adoptReason(sub))
		default:
			// Veto suave: no sobreescribe, amortigua la confianza.
			contradictions++
			reasons = append(reasons, contradictReason(sub))
		}
	}

	// 3. hold final → esta evaluación no produce nada.
	if decision == domain.Hold {
		return nil
	}

	// 4. Mezcla ponderada de confianzas.
	confidence := e.blend(priceSub, subs)
	for i := 0; i < contradictions; i++ {
		confidence *= e.cfg.ContradictionDampening
	}
	confidence = math.Min(e.cfg.MaxConfidence, confidence)

	return &domain.FusedSignal{
		Symbol:     symbol,
		Decision:   decision,
		Confidence: confidence,
		Reasons:    reasons,
		Metadata:   e.metadata(window, currentPrice),
	}
}

// blend calcula la confianza ponderada. Los analizadores que no votaron
// contribuyen con la confianza neutral 0.5.
func (e *Engine) blend(priceSub domain.SubSignal, subs map[domain.SignalKind]domain.SubSignal) float64 {
	conf := func(kind domain.SignalKind) float64 {
		if sub, ok := subs[kind]; ok {
			return sub.Confidence
		}
		return neutralConfidence
	}

	w := e.cfg.Weights
	momentum, momentumVoted := subs[domain.KindMomentum]
	if momentumVoted && momentum.Decision != domain.Hold {
		return priceSub.Confidence*w.PriceWithMomentum +
			conf(domain.KindVolume)*w.VolumeWithMomentum +
			conf(domain.KindTrend)*w.TrendWithMomentum +
			momentum.Confidence*w.Momentum
	}
	return priceSub.Confidence*w.Price +
		conf(domain.KindVolume)*w.Volume +
		conf(domain.KindTrend)*w.Trend
}

// metadata recolecta cada valor crudo de indicador usado en la evaluación.
func (e *Engine) metadata(window []domain.PriceBar, currentPrice float64) domain.SignalMetadata {
	latest := window[len(window)-1]
	closes := domain.Closes(window)

	md := domain.SignalMetadata{
		CurrentPrice:  currentPrice,
		PreviousClose: window[len(window)-2].Close,
		Volume:        latest.Volume,
		VolumeFactor:  1.0,
		Volatility:    domain.Volatility(closes, e.cfg.VolatilityWindow),
	}
	if change, ok := priceChangePct(window); ok {
		md.PriceChangePct = change
	}
	if factor, ok := VolumeFactor(window); ok {
		md.VolumeFactor = factor
	}
	if maShort, maLong, ok := MovingAverages(window, e.cfg.MAShortPeriod, e.cfg.MALongPeriod); ok {
		md.MAShort = maShort
		md.MALong = maLong
	}
	if rsi, ok := domain.RSI(closes, e.cfg.RSIPeriod); ok {
		md.RSI = rsi
		md.RSIValid = true
	}
	if bands, ok := domain.Bollinger(closes, e.cfg.BollingerPeriod, e.cfg.BollingerK); ok {
		md.Bollinger = bands
		md.BollingerValid = true
	}
	return md
}

// --- razones legibles, en el orden en que disparan los analizadores ---

func priceReason(sub domain.SubSignal) string {
	if sub.Decision == domain.Buy {
		return fmt.Sprintf("Price up %.2f%%", sub.Metric)
	}
	return fmt.Sprintf("Price down %.2f%%", math.Abs(sub.Metric))
}

func confirmReason(sub domain.SubSignal) string {
	switch sub.Kind {
	case domain.KindVolume:
		return fmt.Sprintf("Volume spike factor: %.2fx", sub.Metric)
	case domain.KindTrend:
		return "MA crossover confirms"
	default:
		return fmt.Sprintf("RSI (%.1f) confirms", sub.Metric)
	}
}

func adoptReason(sub domain.SubSignal) string {
	switch sub.Kind {
	case domain.KindVolume:
		return fmt.Sprintf("Volume-based signal: %s", sub.Decision)
	case domain.KindTrend:
		return fmt.Sprintf("MA crossover: %s", sub.Tag)
	default:
		return fmt.Sprintf("RSI-based signal: %.1f", sub.Metric)
	}
}

func contradictReason(sub domain.SubSignal) string {
	switch sub.Kind {
	case domain.KindVolume:
		return fmt.Sprintf("Volume spike (%.2fx) contradicts", sub.Metric)
	case domain.KindTrend:
		return "MA trend contradicts"
	default:
		return fmt.Sprintf("RSI (%.1f) contradicts", sub.Metric)
	}
}
