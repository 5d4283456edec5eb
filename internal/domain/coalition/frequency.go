package coalition

import (
	"sort"
	"strings"
)

// FrequencyEntry is one observed sub-coalition and how many cabinets
// contained it.
type FrequencyEntry struct {
	Parties []PartyID `json:"parties"`
	Count   int       `json:"count"`

	ids []int
}

// FrequencyTable counts every sub-coalition of size ≥ 2 found in historical
// cabinets. Entries are kept in first-insertion order so that every pass
// over the table accumulates floating-point sums in the same order.
type FrequencyTable struct {
	entries []*FrequencyEntry
	index   map[string]int
	intern  map[PartyID]int
}

// NewFrequencyTable returns an empty table.
func NewFrequencyTable() *FrequencyTable {
	return &FrequencyTable{
		index:  make(map[string]int),
		intern: make(map[PartyID]int),
	}
}

// BuildFrequency builds a table from cabinet party lists. For each cabinet the
// distinct parties are sorted and every r-combination with r in 2..n is
// counted once. Empty and single-party cabinets contribute nothing.
func BuildFrequency(cabinets [][]PartyID) *FrequencyTable {
	t := NewFrequencyTable()
	for _, cabinet := range cabinets {
		t.AddCabinet(cabinet)
	}
	return t
}

// AddCabinet counts the sub-coalitions of one cabinet.
func (t *FrequencyTable) AddCabinet(parties []PartyID) {
	members := distinctSorted(parties)
	n := len(members)
	for r := 2; r <= n; r++ {
		forEachCombination(n, r, func(idx []int) bool {
			combo := make([]PartyID, r)
			for i, j := range idx {
				combo[i] = members[j]
			}
			t.add(combo)
			return true
		})
	}
}

func (t *FrequencyTable) add(sorted []PartyID) {
	key := strings.Join(sorted, keySep)
	if i, ok := t.index[key]; ok {
		t.entries[i].Count++
		return
	}
	ids := make([]int, len(sorted))
	for i, p := range sorted {
		id, ok := t.intern[p]
		if !ok {
			id = len(t.intern)
			t.intern[p] = id
		}
		ids[i] = id
	}
	t.index[key] = len(t.entries)
	t.entries = append(t.entries, &FrequencyEntry{Parties: sorted, Count: 1, ids: ids})
}

// Len returns the number of distinct sub-coalitions.
func (t *FrequencyTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Count returns how often the given set of parties governed together.
func (t *FrequencyTable) Count(parties ...PartyID) int {
	if t == nil {
		return 0
	}
	if i, ok := t.index[strings.Join(distinctSorted(parties), keySep)]; ok {
		return t.entries[i].Count
	}
	return 0
}

// Entries returns a copy of the entries in insertion order.
func (t *FrequencyTable) Entries() []FrequencyEntry {
	if t == nil {
		return nil
	}
	out := make([]FrequencyEntry, len(t.entries))
	for i, e := range t.entries {
		out[i] = FrequencyEntry{Parties: append([]PartyID(nil), e.Parties...), Count: e.Count}
	}
	return out
}

// Top returns the most frequent entries with at least minSize parties,
// ordered by count descending and then by insertion order. limit ≤ 0 means
// no limit.
func (t *FrequencyTable) Top(limit, minSize int) []FrequencyEntry {
	var out []FrequencyEntry
	for _, e := range t.Entries() {
		if len(e.Parties) >= minSize {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// internedSet marks the parties of set that occur anywhere in the table.
// Parties the table has never seen cannot overlap with any entry and are
// dropped.
func (t *FrequencyTable) internedSet(set map[PartyID]struct{}) []bool {
	marks := make([]bool, len(t.intern))
	for p := range set {
		if id, ok := t.intern[p]; ok {
			marks[id] = true
		}
	}
	return marks
}

func distinctSorted(parties []PartyID) []PartyID {
	seen := make(map[PartyID]struct{}, len(parties))
	out := make([]PartyID, 0, len(parties))
	for _, p := range parties {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// forEachCombination calls fn with every r-combination of 0..n-1 in
// lexicographic order. The slice passed to fn is reused between calls.
// Iteration stops early when fn returns false.
func forEachCombination(n, r int, fn func(idx []int) bool) {
	if r <= 0 || r > n {
		return
	}
	idx := make([]int, r)
	for i := range idx {
		idx[i] = i
	}
	for {
		if !fn(idx) {
			return
		}
		i := r - 1
		for i >= 0 && idx[i] == n-r+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < r; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}
