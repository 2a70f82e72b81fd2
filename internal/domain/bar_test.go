package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestSortChronological_DescendingInput(t *testing.T) {
	bars := []PriceBar{
		{Close: 3, Timestamp: day(3)},
		{Close: 2, Timestamp: day(2)},
		{Close: 1, Timestamp: day(1)},
	}
	sorted := SortChronological(bars)

	require.Len(t, sorted, 3)
	assert.Equal(t, 1.0, sorted[0].Close)
	assert.Equal(t, 3.0, sorted[2].Close)
	// El input no se muta
	assert.Equal(t, 3.0, bars[0].Close)
}

func TestSortChronological_AlreadySorted(t *testing.T) {
	bars := []PriceBar{
		{Close: 1, Timestamp: day(1)},
		{Close: 2, Timestamp: day(2)},
	}
	sorted := SortChronological(bars)
	assert.Equal(t, []float64{1, 2}, Closes(sorted))
}

func TestPriceBar_Day(t *testing.T) {
	b := PriceBar{Timestamp: time.Date(2024, 3, 5, 15, 30, 45, 0, time.UTC)}
	assert.Equal(t, day(5), b.Day())
}

func TestPriceBar_Day_NonUTC(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	b := PriceBar{Timestamp: time.Date(2024, 3, 5, 20, 0, 0, 0, loc)} // 01:00 UTC del día 6
	assert.Equal(t, day(6), b.Day())
}

func TestClosesAndVolumes(t *testing.T) {
	bars := []PriceBar{
		{Close: 10, Volume: 100},
		{Close: 20, Volume: 200},
	}
	assert.Equal(t, []float64{10, 20}, Closes(bars))
	assert.Equal(t, []float64{100, 200}, Volumes(bars))
}
