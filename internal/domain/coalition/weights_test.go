package coalition

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/coalition-intelligence/pkg/errors"
)

func TestWeights_Penalties(t *testing.T) {
	w := DefaultWeights()

	assert.Zero(t, w.PartyPenalty(2))
	assert.Zero(t, w.PartyPenalty(4))
	assert.Equal(t, 2.0, w.PartyPenalty(5))
	assert.Equal(t, 4.0, w.PartyPenalty(6))

	assert.Zero(t, w.SurplusPenalty(76))
	assert.Zero(t, w.SurplusPenalty(90))
	assert.Equal(t, 0.5, w.SurplusPenalty(91))
	assert.Equal(t, 5.0, w.SurplusPenalty(100))
}

func TestWeights_Raw(t *testing.T) {
	w := DefaultWeights()
	// 2·1 − 2·0.5 + 0.25·1 − 10·0.1 − 2·2 − 5
	assert.InDelta(t, -8.75, w.Raw(1, 0.5, 1, 0.1, 2, 5), 1e-12)
	assert.Zero(t, w.Raw(0, 0, 0, 0, 0, 0))
}

func TestWeights_Normalize(t *testing.T) {
	w := DefaultWeights()
	cases := []struct {
		raw  float64
		want float64
	}{
		{-100, 0},
		{-2, 0},
		{-1, 25},
		{0, 50},
		{2, 100},
		{100, 100},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, w.Normalize(tc.raw), 1e-12, "raw %v", tc.raw)
	}
}

func TestWeights_Validate(t *testing.T) {
	assert.NoError(t, DefaultWeights().Validate())
	assert.NoError(t, Weights{RawMin: -1, RawMax: 1}.Validate(), "all-zero multipliers are allowed")

	bad := []Weights{
		func() Weights { w := DefaultWeights(); w.Historical = -1; return w }(),
		func() Weights { w := DefaultWeights(); w.Divergence = math.NaN(); return w }(),
		func() Weights { w := DefaultWeights(); w.SurplusRate = math.Inf(1); return w }(),
		func() Weights { w := DefaultWeights(); w.FreeParties = -1; return w }(),
		func() Weights { w := DefaultWeights(); w.RawMax = w.RawMin; return w }(),
	}
	for i, w := range bad {
		err := w.Validate()
		assert.Error(t, err, "case %d", i)
		assert.True(t, errors.IsCode(err, errors.CodeWeightsInvalid), "case %d", i)
	}
}

func TestRound(t *testing.T) {
	assert.Equal(t, 0.12, round(0.125, 2))
	assert.Equal(t, -0.12, round(-0.125, 2))
	assert.Equal(t, 0.38, round(0.375, 2))
	assert.Equal(t, 62.2, round(62.25, 1))
	assert.Equal(t, 62.8, round(62.75, 1))
	assert.Equal(t, 52.4, round(52.44, 1))
	assert.Equal(t, 3.0, round(3, 2))
}
