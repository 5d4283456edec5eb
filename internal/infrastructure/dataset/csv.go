package dataset

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/turtacn/coalition-intelligence/internal/domain/coalition"
	"github.com/turtacn/coalition-intelligence/pkg/errors"
)

// Column names used by the published datasets.
const (
	colParties = "Partijen"
	colYear    = "Jaar"
	colParty   = "Partij"
	colSeats   = "Zetels"
)

// cabinetSep separates party names in the Partijen column.
const cabinetSep = ", "

func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr
}

func readHeader(cr *csv.Reader, name string) ([]string, error) {
	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New(errors.CodeDatasetParse, "empty csv").WithDetail(name)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatasetParse, "read csv header").WithDetail(name)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}
	return header, nil
}

func columnIndex(header []string, names ...string) int {
	for i, h := range header {
		for _, n := range names {
			if strings.EqualFold(h, n) {
				return i
			}
		}
	}
	return -1
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// ParseCabinets reads a cabinet table with a Partijen column holding the
// comma-separated parties of each cabinet. Rows with an empty Partijen value
// are skipped.
func ParseCabinets(r io.Reader, name string) ([][]coalition.PartyID, error) {
	cr := newCSVReader(r)
	header, err := readHeader(cr, name)
	if err != nil {
		return nil, err
	}
	col := columnIndex(header, colParties, "parties")
	if col < 0 {
		return nil, errors.Newf(errors.CodeDatasetUnsupported, "missing %s column", colParties).WithDetail(name)
	}

	var cabinets [][]coalition.PartyID
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeDatasetParse, "read cabinet row").WithDetail(name)
		}
		value := field(record, col)
		if value == "" {
			continue
		}
		var parties []coalition.PartyID
		for _, p := range strings.Split(value, cabinetSep) {
			if p = strings.TrimSpace(p); p != "" {
				parties = append(parties, p)
			}
		}
		if len(parties) > 0 {
			cabinets = append(cabinets, parties)
		}
	}
	return cabinets, nil
}

// yearRow is one parsed record of a chamber table: the seats observed for a
// year, in column order. Long-format records carry a single entry.
type yearRow struct {
	year  int
	seats []coalition.PartySeats
}

// seatTable is a parsed chamber file.
type seatTable struct {
	rows []yearRow
	// wide is set for the Jaar,<party>,<party>,... layout.
	wide bool
}

// parseSeatTable reads a chamber table in either layout:
//
//	long:  Jaar,Partij,Zetels
//	wide:  Jaar,<party>,<party>,...
//
// Empty and NaN cells are skipped.
func parseSeatTable(r io.Reader, name string) (*seatTable, error) {
	cr := newCSVReader(r)
	header, err := readHeader(cr, name)
	if err != nil {
		return nil, err
	}
	yearCol := columnIndex(header, colYear, "year")
	if yearCol < 0 {
		return nil, errors.Newf(errors.CodeDatasetUnsupported, "missing %s column", colYear).WithDetail(name)
	}
	partyCol := columnIndex(header, colParty, "party")
	seatsCol := columnIndex(header, colSeats, "seats")
	table := &seatTable{wide: partyCol < 0 || seatsCol < 0}

	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeDatasetParse, "read seat row").WithDetail(name)
		}
		yearCell := field(record, yearCol)
		if yearCell == "" {
			continue
		}
		year, ok, err := parseNumber(yearCell)
		if err != nil || !ok {
			return nil, errors.Newf(errors.CodeDatasetParse, "line %d: invalid year %q", line, yearCell).WithDetail(name)
		}

		row := yearRow{year: year}
		if table.wide {
			for i, party := range header {
				if i == yearCol || party == "" {
					continue
				}
				seats, ok, err := parseNumber(field(record, i))
				if err != nil {
					return nil, errors.Wrap(err, errors.CodeDatasetParse, "line "+strconv.Itoa(line)+": invalid seats for "+party).WithDetail(name)
				}
				if ok {
					row.seats = append(row.seats, coalition.PartySeats{Party: party, Seats: seats})
				}
			}
		} else {
			party := field(record, partyCol)
			seats, ok, err := parseNumber(field(record, seatsCol))
			if err != nil {
				return nil, errors.Wrap(err, errors.CodeDatasetParse, "line "+strconv.Itoa(line)+": invalid seats").WithDetail(name)
			}
			if party == "" || !ok {
				continue
			}
			row.seats = append(row.seats, coalition.PartySeats{Party: party, Seats: seats})
		}
		table.rows = append(table.rows, row)
	}
	return table, nil
}

// parseNumber parses an integral cell that may be written as a float ("12.0").
// ok is false for empty and NaN cells.
func parseNumber(s string) (n int, ok bool, err error) {
	if s == "" || strings.EqualFold(s, "nan") {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, err
	}
	if math.IsNaN(f) {
		return 0, false, nil
	}
	return int(math.Round(f)), true, nil
}

// mergeTables walks the rows of several chamber files in order and calls
// emit for every observation that survives the ownership rules: the first
// file that mentions a year owns it, a wide file contributes only its first
// row for a year, and a long file contributes every row.
func mergeTables(tables []*seatTable, emit func(year int, ps coalition.PartySeats)) {
	owner := make(map[int]int)
	for f, table := range tables {
		consumed := make(map[int]bool)
		for _, row := range table.rows {
			if o, ok := owner[row.year]; ok && o != f {
				continue
			}
			owner[row.year] = f
			if table.wide && consumed[row.year] {
				continue
			}
			consumed[row.year] = true
			for _, ps := range row.seats {
				emit(row.year, ps)
			}
		}
	}
}

// buildLowerChamber assembles per-year seat distributions. Parties keep the
// order in which they first appear for a year; parties without seats are
// left out.
func buildLowerChamber(tables []*seatTable) map[int]coalition.SeatDistribution {
	years := make(map[int]coalition.SeatDistribution)
	mergeTables(tables, func(year int, ps coalition.PartySeats) {
		d := years[year]
		for j := range d {
			if d[j].Party == ps.Party {
				if ps.Seats <= 0 {
					d = append(d[:j], d[j+1:]...)
				} else {
					d[j].Seats = ps.Seats
				}
				years[year] = d
				return
			}
		}
		if ps.Seats > 0 {
			years[year] = append(d, ps)
		}
	})
	return years
}

// buildUpperChamber assembles the upper-chamber table.
func buildUpperChamber(tables []*seatTable) coalition.ChamberSeatTable {
	table := make(coalition.ChamberSeatTable)
	mergeTables(tables, func(year int, ps coalition.PartySeats) {
		table.Set(year, ps.Party, ps.Seats)
	})
	return table
}

// ParseTopicVectors decodes a JSON object mapping party to topic weights.
func ParseTopicVectors(r io.Reader, name string) (coalition.TopicVectors, error) {
	var raw map[string][]float64
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatasetParse, "decode topic vectors").WithDetail(name)
	}
	out := make(coalition.TopicVectors, len(raw))
	for p, v := range raw {
		out[p] = v
	}
	return out, nil
}
