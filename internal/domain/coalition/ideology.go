package coalition

import (
	"math"

	"github.com/turtacn/coalition-intelligence/pkg/errors"
)

// IdeologySpace is one coordinate system positioning parties, e.g. a 2D
// left/right by progressive/conservative compass.
type IdeologySpace struct {
	Name        string                `json:"name" yaml:"name"`
	Weight      float64               `json:"weight" yaml:"weight"`
	Dimensions  int                   `json:"dimensions" yaml:"dimensions"`
	Coordinates map[PartyID][]float64 `json:"coordinates" yaml:"coordinates"`
}

// Position returns the coordinates of p. Unmapped parties sit at the origin.
func (s IdeologySpace) Position(p PartyID) []float64 {
	if v, ok := s.Coordinates[p]; ok {
		return v
	}
	return make([]float64, s.Dimensions)
}

// MeanPairwiseDistance returns the mean Euclidean distance over all unordered
// pairs of parties, or 0 for fewer than two parties.
func (s IdeologySpace) MeanPairwiseDistance(parties []PartyID) float64 {
	n := len(parties)
	if n < 2 {
		return 0
	}
	points := make([][]float64, n)
	for i, p := range parties {
		points[i] = s.Position(p)
	}
	var sum float64
	pairs := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sum += euclidean(points[i], points[j])
			pairs++
		}
	}
	return sum / float64(pairs)
}

func (s IdeologySpace) validate() error {
	if s.Name == "" {
		return errors.New(errors.CodeReferenceInvalid, "ideology space needs a name")
	}
	if s.Dimensions < 1 {
		return errors.Newf(errors.CodeReferenceInvalid, "ideology space %s: dimensions must be ≥ 1", s.Name)
	}
	if s.Weight < 0 || math.IsNaN(s.Weight) {
		return errors.Newf(errors.CodeReferenceInvalid, "ideology space %s: weight must be ≥ 0", s.Name)
	}
	for p, v := range s.Coordinates {
		if len(v) != s.Dimensions {
			return errors.Newf(errors.CodeReferenceInvalid,
				"ideology space %s: party %s has %d coordinates, want %d", s.Name, p, len(v), s.Dimensions)
		}
	}
	return nil
}

// weightTolerance bounds how far the space weights may sum away from 1.
const weightTolerance = 1e-3

// IdeologyModel combines one or more weighted spaces into a single
// dissimilarity. Lower is more compatible.
type IdeologyModel struct {
	spaces []IdeologySpace
}

// NewIdeologyModel validates the spaces and their weights, which must sum
// to 1.
func NewIdeologyModel(spaces ...IdeologySpace) (*IdeologyModel, error) {
	if len(spaces) == 0 {
		return nil, errors.New(errors.CodeReferenceInvalid, "at least one ideology space is required")
	}
	var sum float64
	for _, s := range spaces {
		if err := s.validate(); err != nil {
			return nil, err
		}
		sum += s.Weight
	}
	if math.Abs(sum-1) > weightTolerance {
		return nil, errors.Newf(errors.CodeReferenceInvalid, "ideology space weights sum to %.4f, want 1", sum)
	}
	return &IdeologyModel{spaces: append([]IdeologySpace(nil), spaces...)}, nil
}

// Spaces returns the configured spaces.
func (m *IdeologyModel) Spaces() []IdeologySpace {
	return append([]IdeologySpace(nil), m.spaces...)
}

// Distance returns Σ weight · mean pairwise distance over all spaces. It is 0
// for zero or one party.
func (m *IdeologyModel) Distance(parties []PartyID) float64 {
	if len(parties) < 2 {
		return 0
	}
	var d float64
	for _, s := range m.spaces {
		d += s.Weight * s.MeanPairwiseDistance(parties)
	}
	return d
}

func euclidean(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	for _, v := range a[n:] {
		sum += v * v
	}
	for _, v := range b[n:] {
		sum += v * v
	}
	return math.Sqrt(sum)
}
