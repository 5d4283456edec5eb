package coalition

import (
	"math"

	"github.com/turtacn/coalition-intelligence/pkg/errors"
)

// TopicVectors maps a party to its distribution over policy topics.
type TopicVectors map[PartyID][]float64

// DivergenceMeasure selects how a pair of topic distributions is compared.
type DivergenceMeasure string

const (
	// MeasureDivergence is the base-2 Jensen–Shannon divergence, in [0, 1].
	MeasureDivergence DivergenceMeasure = "divergence"
	// MeasureDistance is its square root, the Jensen–Shannon distance.
	MeasureDistance DivergenceMeasure = "distance"
)

// ParseDivergenceMeasure parses a configured measure name.
func ParseDivergenceMeasure(s string) (DivergenceMeasure, error) {
	switch m := DivergenceMeasure(s); m {
	case MeasureDivergence, MeasureDistance:
		return m, nil
	case "":
		return MeasureDivergence, nil
	default:
		return "", errors.New(errors.CodeInvalidConfig, "unsupported divergence measure: "+s)
	}
}

// JSDivergence returns the base-2 Jensen–Shannon divergence between p and q
// after normalising each to sum 1. ok is false when the vectors cannot be
// compared: different lengths, negative or non-finite entries, or a zero sum.
func JSDivergence(p, q []float64) (d float64, ok bool) {
	if len(p) == 0 || len(p) != len(q) {
		return 0, false
	}
	ps, okP := vectorSum(p)
	qs, okQ := vectorSum(q)
	if !okP || !okQ || ps == 0 || qs == 0 {
		return 0, false
	}

	for i := range p {
		pi := p[i] / ps
		qi := q[i] / qs
		mi := (pi + qi) / 2
		if pi > 0 {
			d += pi * math.Log2(pi/mi)
		}
		if qi > 0 {
			d += qi * math.Log2(qi/mi)
		}
	}
	d /= 2
	return math.Max(0, math.Min(1, d)), true
}

// JSDistance returns sqrt(JSDivergence(p, q)).
func JSDistance(p, q []float64) (float64, bool) {
	d, ok := JSDivergence(p, q)
	if !ok {
		return 0, false
	}
	return math.Sqrt(d), true
}

// MeanDivergence averages the pairwise measure over every pair of parties
// that both have a comparable topic vector. It is 0 for fewer than two
// parties or when no pair qualifies.
func MeanDivergence(parties []PartyID, vectors TopicVectors, measure DivergenceMeasure) float64 {
	if len(parties) < 2 || len(vectors) == 0 {
		return 0
	}
	compare := JSDivergence
	if measure == MeasureDistance {
		compare = JSDistance
	}

	var sum float64
	n := 0
	for i := 0; i < len(parties); i++ {
		v1, ok := vectors[parties[i]]
		if !ok {
			continue
		}
		for j := i + 1; j < len(parties); j++ {
			v2, ok := vectors[parties[j]]
			if !ok {
				continue
			}
			if d, ok := compare(v1, v2); ok {
				sum += d
				n++
			}
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func vectorSum(v []float64) (float64, bool) {
	var s float64
	for _, x := range v {
		if x < 0 || math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		s += x
	}
	return s, true
}
