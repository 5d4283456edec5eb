package coalition

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSDivergence(t *testing.T) {
	cases := []struct {
		name   string
		p, q   []float64
		want   float64
		wantOK bool
	}{
		{"identical", []float64{0.2, 0.3, 0.5}, []float64{0.2, 0.3, 0.5}, 0, true},
		{"disjoint support", []float64{1, 0}, []float64{0, 1}, 1, true},
		{"half overlap", []float64{1, 0}, []float64{0.5, 0.5}, 0.3112781244591328, true},
		{"unnormalised input", []float64{2, 0}, []float64{3, 3}, 0.3112781244591328, true},
		{"length mismatch", []float64{1, 0}, []float64{1}, 0, false},
		{"empty", nil, nil, 0, false},
		{"zero vector", []float64{0, 0}, []float64{1, 0}, 0, false},
		{"negative entry", []float64{-1, 2}, []float64{1, 0}, 0, false},
		{"nan entry", []float64{math.NaN(), 1}, []float64{1, 0}, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := JSDivergence(tc.p, tc.q)
			assert.Equal(t, tc.wantOK, ok)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestJSDivergence_Symmetric(t *testing.T) {
	p := []float64{0.1, 0.6, 0.3}
	q := []float64{0.5, 0.25, 0.25}
	a, _ := JSDivergence(p, q)
	b, _ := JSDivergence(q, p)
	assert.InDelta(t, a, b, 1e-15)
	assert.True(t, a > 0 && a <= 1)
}

func TestJSDistance(t *testing.T) {
	d, ok := JSDistance([]float64{1, 0}, []float64{0.5, 0.5})
	require.True(t, ok)
	assert.InDelta(t, math.Sqrt(0.3112781244591328), d, 1e-9)

	_, ok = JSDistance([]float64{1}, []float64{1, 2})
	assert.False(t, ok)
}

func TestMeanDivergence(t *testing.T) {
	vectors := TopicVectors{
		"A": {1, 0},
		"B": {0, 1},
		"C": {1, 0},
		"X": {1, 0, 0},
	}

	assert.Zero(t, MeanDivergence([]PartyID{"A"}, vectors, MeasureDivergence), "single party")
	assert.Zero(t, MeanDivergence([]PartyID{"A", "B"}, nil, MeasureDivergence), "no vectors")
	assert.Zero(t, MeanDivergence([]PartyID{"Q", "R"}, vectors, MeasureDivergence), "no pair has vectors")

	// pairs: A-B 1, A-C 0, B-C 1
	assert.InDelta(t, 2.0/3.0, MeanDivergence([]PartyID{"A", "B", "C"}, vectors, MeasureDivergence), 1e-12)
	// Missing Q is skipped rather than counted as zero.
	assert.InDelta(t, 1.0, MeanDivergence([]PartyID{"A", "B", "Q"}, vectors, MeasureDivergence), 1e-12)
	// Mismatched length is treated as a missing pair.
	assert.InDelta(t, 1.0, MeanDivergence([]PartyID{"A", "B", "X"}, vectors, MeasureDivergence), 1e-12)
}

func TestMeanDivergence_DistanceMeasure(t *testing.T) {
	vectors := TopicVectors{"A": {1, 0}, "B": {0.5, 0.5}}
	got := MeanDivergence([]PartyID{"A", "B"}, vectors, MeasureDistance)
	assert.InDelta(t, math.Sqrt(0.3112781244591328), got, 1e-9)
}

func TestParseDivergenceMeasure(t *testing.T) {
	m, err := ParseDivergenceMeasure("distance")
	require.NoError(t, err)
	assert.Equal(t, MeasureDistance, m)

	m, err = ParseDivergenceMeasure("")
	require.NoError(t, err)
	assert.Equal(t, MeasureDivergence, m)

	_, err = ParseDivergenceMeasure("kl")
	assert.Error(t, err)
}
