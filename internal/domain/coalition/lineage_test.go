package coalition

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineage_Expand(t *testing.T) {
	l := Lineage{"GL/PvdA": {"GL", "PvdA"}, "NSC": {"CDA"}}

	assert.Equal(t, []PartyID{"GL", "PvdA"}, l.Expand("GL/PvdA"))
	assert.Equal(t, []PartyID{"VVD"}, l.Expand("VVD"))
	assert.True(t, l.Has("NSC"))
	assert.False(t, l.Has("VVD"))

	expanded := l.ExpandCoalition([]PartyID{"GL/PvdA", "NSC", "VVD"})
	assert.Len(t, expanded, 4)
	for _, p := range []PartyID{"GL", "PvdA", "CDA", "VVD"} {
		assert.Contains(t, expanded, p)
	}
}

func TestSeatWeight(t *testing.T) {
	assert.Equal(t, 0.0, SeatWeight(0))
	assert.InDelta(t, math.Log(38), SeatWeight(37), 1e-12)
	assert.Equal(t, 0.0, SeatWeight(-4))
}

func TestHistoricalScore_LineageHalvesOverlap(t *testing.T) {
	lineage := Lineage{"X": {"Y", "Z"}}
	freq := BuildFrequency([][]PartyID{{"W", "Y", "Z"}})
	seats := SeatDistribution{{"X", 10}, {"W", 5}}

	score := HistoricalScore([]PartyID{"X", "W"}, freq, seats, lineage)
	// X expands to Y,Z so every key of the (W,Y,Z) cabinet overlaps fully:
	// overlap 1, halved to 0.5, count 1.
	assert.InDelta(t, 0.5, score, 1e-12)
}

func TestHistoricalScore_DirectMatchWeightedByCount(t *testing.T) {
	freq := BuildFrequency([][]PartyID{
		{"KVP", "ARP", "CHU"},
		{"KVP", "ARP"},
	})
	seats := SeatDistribution{{"KVP", 30}, {"ARP", 15}}

	// Matching keys: (ARP,KVP) count 2 overlap 1, (ARP,CHU,KVP) count 1
	// overlap 2/3. Both matches add the same total weight, so the score is
	// the plain mean of count·overlap.
	want := (2*1.0 + 1*(2.0/3.0)) / 2
	assert.InDelta(t, want, HistoricalScore([]PartyID{"KVP", "ARP"}, freq, seats, nil), 1e-12)
}

func TestHistoricalScore_ZeroCases(t *testing.T) {
	seats := SeatDistribution{{"A", 10}, {"B", 10}}

	assert.Zero(t, HistoricalScore([]PartyID{"A", "B"}, NewFrequencyTable(), seats, nil), "empty table")
	assert.Zero(t, HistoricalScore([]PartyID{"A", "B"}, nil, seats, nil), "nil table")

	freq := BuildFrequency([][]PartyID{{"C", "D"}})
	assert.Zero(t, HistoricalScore([]PartyID{"A", "B"}, freq, seats, nil), "no overlap")

	zeroSeats := SeatDistribution{{"C", 0}, {"D", 0}}
	assert.Zero(t, HistoricalScore([]PartyID{"C", "D"}, freq, zeroSeats, nil), "zero total weight")
}

func TestHistoricalScore_NonNegative(t *testing.T) {
	freq := BuildFrequency([][]PartyID{{"A", "B", "C"}, {"B", "C"}, {"A", "D"}})
	seats := SeatDistribution{{"A", 3}, {"B", 40}, {"C", 1}, {"D", 0}}
	for _, combo := range [][]PartyID{{"A", "B"}, {"B", "C", "D"}, {"A", "D"}, {"D", "C"}} {
		assert.GreaterOrEqual(t, HistoricalScore(combo, freq, seats, nil), 0.0)
	}
}
