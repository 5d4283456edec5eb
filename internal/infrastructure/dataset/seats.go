package dataset

import (
	"io"
	"strconv"
	"strings"

	"github.com/turtacn/coalition-intelligence/internal/domain/coalition"
	"github.com/turtacn/coalition-intelligence/pkg/errors"
)

// ParseSeatList parses an inline distribution such as "PVV=37,GL/PvdA=25".
// Entries keep their written order.
func ParseSeatList(s string) (coalition.SeatDistribution, error) {
	var out coalition.SeatDistribution
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		eq := strings.LastIndex(item, "=")
		if eq <= 0 {
			return nil, errors.Newf(errors.CodeSeatsInvalid, "seat entry %q is not PARTY=SEATS", item)
		}
		party := strings.TrimSpace(item[:eq])
		seats, err := strconv.Atoi(strings.TrimSpace(item[eq+1:]))
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeSeatsInvalid, "invalid seat count").WithDetail(item)
		}
		out = append(out, coalition.PartySeats{Party: party, Seats: seats})
	}
	if len(out) == 0 {
		return nil, errors.New(errors.CodeSeatsInvalid, "no seats given")
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseSeatFile reads a distribution from CSV with Partij and Zetels
// columns (Party and Seats are accepted too). Rows keep file order.
func ParseSeatFile(r io.Reader, name string) (coalition.SeatDistribution, error) {
	cr := newCSVReader(r)
	header, err := readHeader(cr, name)
	if err != nil {
		return nil, err
	}
	partyCol := columnIndex(header, colParty, "party")
	seatsCol := columnIndex(header, colSeats, "seats")
	if partyCol < 0 || seatsCol < 0 {
		return nil, errors.Newf(errors.CodeDatasetUnsupported, "seat file needs %s and %s columns", colParty, colSeats).WithDetail(name)
	}

	var out coalition.SeatDistribution
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeDatasetParse, "read seat row").WithDetail(name)
		}
		party := field(record, partyCol)
		if party == "" {
			continue
		}
		seats, ok, err := parseNumber(field(record, seatsCol))
		if err != nil || !ok {
			return nil, errors.Newf(errors.CodeSeatsInvalid, "party %s has no valid seat count", party).WithDetail(name)
		}
		out = append(out, coalition.PartySeats{Party: party, Seats: seats})
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
