package coalition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/coalition-intelligence/pkg/errors"
)

func lineSpace(weight float64, coords map[PartyID]float64) IdeologySpace {
	s := IdeologySpace{Name: "line", Weight: weight, Dimensions: 1, Coordinates: map[PartyID][]float64{}}
	for p, x := range coords {
		s.Coordinates[p] = []float64{x}
	}
	return s
}

func TestIdeologySpace_MeanPairwiseDistance(t *testing.T) {
	s := lineSpace(1, map[PartyID]float64{"A": 0, "B": 3, "C": 4})

	assert.InDelta(t, 8.0/3.0, s.MeanPairwiseDistance([]PartyID{"A", "B", "C"}), 1e-12)
	assert.InDelta(t, 3.0, s.MeanPairwiseDistance([]PartyID{"A", "B"}), 1e-12)
	assert.Zero(t, s.MeanPairwiseDistance([]PartyID{"A"}))
	assert.Zero(t, s.MeanPairwiseDistance(nil))
}

func TestIdeologySpace_UnmappedPartyAtOrigin(t *testing.T) {
	s := IdeologySpace{Name: "plane", Weight: 1, Dimensions: 2, Coordinates: map[PartyID][]float64{"A": {3, 4}}}
	assert.InDelta(t, 5.0, s.MeanPairwiseDistance([]PartyID{"A", "Unknown"}), 1e-12)
	assert.Equal(t, []float64{0, 0}, s.Position("Unknown"))
}

func TestIdeologyModel_WeightedSpaces(t *testing.T) {
	model, err := NewIdeologyModel(
		lineSpace(0.5, map[PartyID]float64{"A": 0, "B": 2}),
		IdeologySpace{Name: "plane", Weight: 0.5, Dimensions: 2, Coordinates: map[PartyID][]float64{
			"A": {0, 0}, "B": {6, 8},
		}},
	)
	require.NoError(t, err)

	assert.InDelta(t, 0.5*2+0.5*10, model.Distance([]PartyID{"A", "B"}), 1e-12)
	assert.Zero(t, model.Distance([]PartyID{"A"}))
	assert.Zero(t, model.Distance(nil))
}

func TestNewIdeologyModel_Validation(t *testing.T) {
	cases := []struct {
		name   string
		spaces []IdeologySpace
	}{
		{"none", nil},
		{"weights do not sum to one", []IdeologySpace{lineSpace(0.5, nil), lineSpace(0.4, nil)}},
		{"negative weight", []IdeologySpace{lineSpace(-1, nil), lineSpace(2, nil)}},
		{"wrong dimensions", []IdeologySpace{{Name: "x", Weight: 1, Dimensions: 2, Coordinates: map[PartyID][]float64{"A": {1}}}}},
		{"zero dimensions", []IdeologySpace{{Name: "x", Weight: 1}}},
		{"unnamed", []IdeologySpace{{Weight: 1, Dimensions: 1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewIdeologyModel(tc.spaces...)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.CodeReferenceInvalid))
		})
	}
}

func TestNewIdeologyModel_ToleratesRounding(t *testing.T) {
	_, err := NewIdeologyModel(lineSpace(0.3333, nil), lineSpace(0.3333, nil), lineSpace(0.3333, nil))
	assert.NoError(t, err)
}
