package fixture_test

import (
	"context"
	"testing"
	"time"

	"github.com/alejandrodnm/sigfuse/internal/adapters/fixture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchBars_Deterministic(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	p := fixture.NewProvider(0)
	first, err := p.FetchBars(context.Background(), "AAPL", start, end, "1d")
	require.NoError(t, err)
	second, err := p.FetchBars(context.Background(), "AAPL", start, end, "1d")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestFetchBars_DiffersPerSymbol(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	p := fixture.NewProvider(0)
	aapl, err := p.FetchBars(context.Background(), "AAPL", start, end, "1d")
	require.NoError(t, err)
	msft, err := p.FetchBars(context.Background(), "MSFT", start, end, "1d")
	require.NoError(t, err)

	require.Equal(t, len(aapl), len(msft)) // mismos días laborables
	assert.NotEqual(t, aapl[0].Close, msft[0].Close)
}

func TestFetchBars_WeekdaysOnly(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) // lunes
	end := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)   // domingo

	p := fixture.NewProvider(0)
	bars, err := p.FetchBars(context.Background(), "AAPL", start, end, "1d")
	require.NoError(t, err)
	require.Len(t, bars, 5)

	for _, b := range bars {
		wd := b.Timestamp.Weekday()
		assert.NotEqual(t, time.Saturday, wd)
		assert.NotEqual(t, time.Sunday, wd)
	}
}

func TestFetchBars_SaneOHLC(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	p := fixture.NewProvider(7)
	bars, err := p.FetchBars(context.Background(), "AAPL", start, end, "1d")
	require.NoError(t, err)
	require.NotEmpty(t, bars)

	for _, b := range bars {
		assert.Greater(t, b.Close, 0.0)
		assert.Greater(t, b.Volume, 0.0)
		assert.GreaterOrEqual(t, b.High, b.Open)
		assert.LessOrEqual(t, b.Low, b.Open)
	}
}
