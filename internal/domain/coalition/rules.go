package coalition

// PartyPair is two parties that will not govern together.
type PartyPair [2]PartyID

// UnrealisticPairs is the explicit exclusion list. It is the only hard
// constraint besides the seat threshold.
type UnrealisticPairs []PartyPair

// Violation returns the first pair fully contained in parties.
func (u UnrealisticPairs) Violation(parties []PartyID) (PartyPair, bool) {
	set := make(map[PartyID]struct{}, len(parties))
	for _, p := range parties {
		set[p] = struct{}{}
	}
	for _, pair := range u {
		_, a := set[pair[0]]
		_, b := set[pair[1]]
		if a && b {
			return pair, true
		}
	}
	return PartyPair{}, false
}

// Excludes reports whether parties contain both members of any pair.
func (u UnrealisticPairs) Excludes(parties []PartyID) bool {
	_, bad := u.Violation(parties)
	return bad
}

// masks converts the pairs into bitmasks over the indices of d. Pairs naming
// a party outside d can never match and are skipped.
func (u UnrealisticPairs) masks(d SeatDistribution) []uint64 {
	index := make(map[PartyID]int, len(d))
	for i, ps := range d {
		index[ps.Party] = i
	}
	var out []uint64
	for _, pair := range u {
		a, okA := index[pair[0]]
		b, okB := index[pair[1]]
		if okA && okB {
			out = append(out, 1<<uint(a)|1<<uint(b))
		}
	}
	return out
}
