package coalition

import "math"

// Lineage maps a modern party to the historical identifiers it descends from,
// e.g. a merger ("GL/PvdA" → GL, PvdA) or a split ("NSC" → CDA).
type Lineage map[PartyID][]PartyID

// Expand returns the historical identifiers of p, or p itself when it has no
// lineage entry.
func (l Lineage) Expand(p PartyID) []PartyID {
	if preds, ok := l[p]; ok && len(preds) > 0 {
		return preds
	}
	return []PartyID{p}
}

// Has reports whether p has a lineage entry.
func (l Lineage) Has(p PartyID) bool {
	preds, ok := l[p]
	return ok && len(preds) > 0
}

// ExpandCoalition returns the union of the expansions of every member.
func (l Lineage) ExpandCoalition(parties []PartyID) map[PartyID]struct{} {
	out := make(map[PartyID]struct{}, len(parties))
	for _, p := range parties {
		for _, h := range l.Expand(p) {
			out[h] = struct{}{}
		}
	}
	return out
}

// anyHas reports whether any member has a lineage entry.
func (l Lineage) anyHas(parties []PartyID) bool {
	for _, p := range parties {
		if l.Has(p) {
			return true
		}
	}
	return false
}

// lineageCredit is the overlap factor applied when a coalition relies on
// predecessor identities for its historical match.
const lineageCredit = 0.5

// SeatWeight dampens the influence of small parties: ln(seats + 1).
func SeatWeight(seats int) float64 {
	if seats < 0 {
		seats = 0
	}
	return math.Log(float64(seats) + 1)
}

// HistoricalScore measures how closely combo resembles coalitions that have
// actually governed.
//
// For every table entry K, in table order, whose overlap with the lineage
// expansion E of combo has at least two parties:
//
//	overlap = |E ∩ K| / |K|            (halved if any member of combo has a lineage entry)
//	for each member p:  w = ln(seats[p] + 1)
//	                    total += w
//	                    score += count(K) · overlap · w
//
// The result is score / total, or 0 when nothing matched. total grows with
// every match, so the score is a weighted mean of count · overlap.
func HistoricalScore(combo []PartyID, freq *FrequencyTable, seats SeatDistribution, lineage Lineage) float64 {
	if freq.Len() == 0 || len(combo) == 0 {
		return 0
	}

	marks := freq.internedSet(lineage.ExpandCoalition(combo))
	partial := lineage.anyHas(combo)

	weights := make([]float64, len(combo))
	for i, p := range combo {
		weights[i] = SeatWeight(seats.Seats(p))
	}

	var score, total float64
	for _, entry := range freq.entries {
		shared := 0
		for _, id := range entry.ids {
			if marks[id] {
				shared++
			}
		}
		if shared < 2 {
			continue
		}
		overlap := float64(shared) / float64(len(entry.ids))
		if partial {
			overlap *= lineageCredit
		}
		count := float64(entry.Count)
		for _, w := range weights {
			total += w
			score += count * overlap * w
		}
	}

	if total > 0 {
		return score / total
	}
	return 0
}
