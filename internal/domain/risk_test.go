package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSizer_Formula(t *testing.T) {
	s := NewSizer(0.02)
	// riskAmount=200, raw=200/(100×0.2×10)=1.0, cap 2500 no aplica
	size := s.Size(10000, 100, 0.2, 1.0)
	assert.InDelta(t, 1.0, size, 0.0001)
}

func TestSizer_VolatilityFloor(t *testing.T) {
	s := NewSizer(0.02)
	// vol=0 → suelo 0.01: raw=200/(100×0.01×10)=20
	size := s.Size(10000, 100, 0, 1.0)
	assert.InDelta(t, 20.0, size, 0.0001)
}

func TestSizer_MaxPositionCap(t *testing.T) {
	s := NewSizer(0.02)
	// raw=200/(1×0.005×10)=4000 > 10000×0.25=2500 → cap
	size := s.Size(10000, 1, 0.005, 1.0)
	assert.InDelta(t, 2500.0, size, 0.0001)
}

func TestSizer_ConfidenceScaling(t *testing.T) {
	s := NewSizer(0.02)
	full := s.Size(10000, 100, 0.2, 1.0)
	half := s.Size(10000, 100, 0.2, 0.5)
	assert.InDelta(t, full/2, half, 0.0001)
}

func TestSizer_ClampedToCapital(t *testing.T) {
	s := NewSizer(0.02)
	// vol minúscula → raw enorme → cap 25, pero 25×100=2500 > capital 100
	size := s.Size(100, 100, 0.000001, 1.0)
	assert.InDelta(t, 1.0, size, 0.0001) // capital/price
}

func TestSizer_InvalidInputs(t *testing.T) {
	s := NewSizer(0.02)
	assert.Equal(t, 0.0, s.Size(0, 100, 0.2, 1.0))
	assert.Equal(t, 0.0, s.Size(10000, 0, 0.2, 1.0))
	assert.Equal(t, 0.0, s.Size(-500, 100, 0.2, 1.0))
}

func TestNewSizer_DefaultRisk(t *testing.T) {
	s := NewSizer(0)
	assert.Equal(t, DefaultRiskPerTrade, s.RiskPerTrade)
	assert.Equal(t, DefaultMaxPositionFrac, s.MaxPositionFrac)
}
