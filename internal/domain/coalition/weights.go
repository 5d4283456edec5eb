package coalition

import (
	"math"

	"github.com/turtacn/coalition-intelligence/pkg/errors"
)

// Weights holds the composite-score multipliers and offsets.
//
//	raw   = Historical·hist − Ideology·ideo + UpperChamber·ek − Divergence·jsd
//	        − PartyCount·partyPenalty − surplusPenalty
//	partyPenalty   = max(0, n − FreeParties) · PartyStep
//	surplusPenalty = max(0, seats − SurplusCap) · SurplusRate
//	final = clamp((raw − RawMin) / (RawMax − RawMin) · 100, 0, 100)
type Weights struct {
	Historical   float64
	Ideology     float64
	UpperChamber float64
	Divergence   float64
	PartyCount   float64
	FreeParties  int
	PartyStep    float64
	SurplusCap   int
	SurplusRate  float64
	RawMin       float64
	RawMax       float64
}

// DefaultWeights returns the calibrated reference weights.
func DefaultWeights() Weights {
	return Weights{
		Historical:   2,
		Ideology:     2,
		UpperChamber: 0.25,
		Divergence:   10,
		PartyCount:   2,
		FreeParties:  4,
		PartyStep:    2,
		SurplusCap:   90,
		SurplusRate:  0.5,
		RawMin:       -2,
		RawMax:       2,
	}
}

// Validate rejects negative or non-finite multipliers and an empty raw range.
func (w Weights) Validate() error {
	for _, v := range []float64{w.Historical, w.Ideology, w.UpperChamber, w.Divergence, w.PartyCount, w.PartyStep, w.SurplusRate} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New(errors.CodeWeightsInvalid, "weights must be finite and non-negative")
		}
	}
	if w.FreeParties < 0 || w.SurplusCap < 0 {
		return errors.New(errors.CodeWeightsInvalid, "free parties and surplus cap must be non-negative")
	}
	if !(w.RawMax > w.RawMin) {
		return errors.New(errors.CodeWeightsInvalid, "raw score range is empty")
	}
	return nil
}

// PartyPenalty penalises coalitions with more than FreeParties members.
func (w Weights) PartyPenalty(n int) float64 {
	if n <= w.FreeParties {
		return 0
	}
	return float64(n-w.FreeParties) * w.PartyStep
}

// SurplusPenalty penalises seats above SurplusCap.
func (w Weights) SurplusPenalty(seats int) float64 {
	if seats <= w.SurplusCap {
		return 0
	}
	return float64(seats-w.SurplusCap) * w.SurplusRate
}

// Raw combines the component scores into the unnormalised composite.
func (w Weights) Raw(hist, ideo, ek, jsd, partyPenalty, surplusPenalty float64) float64 {
	return hist*w.Historical -
		ideo*w.Ideology +
		ek*w.UpperChamber -
		jsd*w.Divergence -
		partyPenalty*w.PartyCount -
		surplusPenalty
}

// Normalize maps raw onto 0..100 using the fixed raw range, clamping values
// outside it.
func (w Weights) Normalize(raw float64) float64 {
	final := (raw - w.RawMin) / (w.RawMax - w.RawMin) * 100
	return math.Max(0, math.Min(100, final))
}

// round rounds to the given number of decimals, ties to even.
func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.RoundToEven(x*p) / p
}
