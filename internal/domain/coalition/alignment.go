package coalition

import "sort"

// ChamberSeatTable holds upper-chamber (Eerste Kamer) seats per year.
type ChamberSeatTable map[int]map[PartyID]int

// Year returns the seats for year and whether the year is present.
func (t ChamberSeatTable) Year(year int) (map[PartyID]int, bool) {
	seats, ok := t[year]
	return seats, ok
}

// Years returns the years in ascending order.
func (t ChamberSeatTable) Years() []int {
	years := make([]int, 0, len(t))
	for y := range t {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Set records the seats of party in year, replacing any earlier value.
func (t ChamberSeatTable) Set(year int, party PartyID, seats int) {
	row, ok := t[year]
	if !ok {
		row = make(map[PartyID]int)
		t[year] = row
	}
	row[party] = seats
}

// Alignment scores how well a coalition is represented in the upper chamber.
// Members are expanded through lineage before lookup. A coalition holding at
// least majority seats scores 1; otherwise it scores its share of the
// chamber. The second result is the coalition's seat total.
func Alignment(parties []PartyID, yearSeats map[PartyID]int, lineage Lineage, majority int) (float64, int) {
	held := 0
	for p := range lineage.ExpandCoalition(parties) {
		held += yearSeats[p]
	}
	if held >= majority {
		return 1.0, held
	}

	total := 0
	for _, s := range yearSeats {
		total += s
	}
	if total == 0 {
		total = 1
	}
	return float64(held) / float64(total), held
}
