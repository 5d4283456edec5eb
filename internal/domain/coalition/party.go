package coalition

import (
	"sort"
	"strings"

	"github.com/turtacn/coalition-intelligence/pkg/errors"
)

// PartyID names a party at a point in time, e.g. "GL/PvdA" or "VVD".
type PartyID = string

// PartySeats is one entry of a seat distribution.
type PartySeats struct {
	Party PartyID `json:"party" yaml:"party"`
	Seats int     `json:"seats" yaml:"seats"`
}

// SeatDistribution is an ordered list of parties and their lower-chamber
// seats. The order is significant: it is the enumeration order and decides
// ties for the largest party.
type SeatDistribution []PartySeats

// Parties returns the party identifiers in distribution order.
func (d SeatDistribution) Parties() []PartyID {
	out := make([]PartyID, len(d))
	for i, ps := range d {
		out[i] = ps.Party
	}
	return out
}

// Seats returns the seats held by p, or 0 when p is absent.
func (d SeatDistribution) Seats(p PartyID) int {
	for _, ps := range d {
		if ps.Party == p {
			return ps.Seats
		}
	}
	return 0
}

// Has reports whether p is part of the distribution.
func (d SeatDistribution) Has(p PartyID) bool {
	for _, ps := range d {
		if ps.Party == p {
			return true
		}
	}
	return false
}

// Total returns the sum of all seats.
func (d SeatDistribution) Total() int {
	total := 0
	for _, ps := range d {
		total += ps.Seats
	}
	return total
}

// Largest returns the index of the party with the most seats. The first party
// in distribution order wins a tie. It returns -1 for an empty distribution.
func (d SeatDistribution) Largest() int {
	best := -1
	for i, ps := range d {
		if best < 0 || ps.Seats > d[best].Seats {
			best = i
		}
	}
	return best
}

// Validate rejects empty identifiers, duplicates and negative seat counts.
func (d SeatDistribution) Validate() error {
	seen := make(map[PartyID]struct{}, len(d))
	for _, ps := range d {
		if strings.TrimSpace(ps.Party) == "" {
			return errors.New(errors.CodeSeatsInvalid, "party identifier must not be empty")
		}
		if ps.Seats < 0 {
			return errors.Newf(errors.CodeSeatsInvalid, "party %s has negative seats (%d)", ps.Party, ps.Seats)
		}
		if _, dup := seen[ps.Party]; dup {
			return errors.Newf(errors.CodeSeatsInvalid, "party %s listed twice", ps.Party)
		}
		seen[ps.Party] = struct{}{}
	}
	return nil
}

// Coalition is a set of at least two distinct parties. Members keep the order
// in which they were enumerated; Key gives the order-independent identity.
type Coalition []PartyID

// keySep joins sorted members into a Key. Party names never contain it.
const keySep = "\x1f"

// Key returns the canonical, order-independent identity of c.
func (c Coalition) Key() string {
	return strings.Join(c.Sorted(), keySep)
}

// Sorted returns the members in lexicographic order.
func (c Coalition) Sorted() []PartyID {
	out := append([]PartyID(nil), c...)
	sort.Strings(out)
	return out
}

// Contains reports whether p is a member.
func (c Coalition) Contains(p PartyID) bool {
	for _, m := range c {
		if m == p {
			return true
		}
	}
	return false
}

// Equal reports set equality.
func (c Coalition) Equal(other Coalition) bool {
	return len(c) == len(other) && c.Key() == other.Key()
}

// String renders the members joined by " + ".
func (c Coalition) String() string {
	return strings.Join(c, " + ")
}

// NewCoalition validates members and returns them as a Coalition.
func NewCoalition(members ...PartyID) (Coalition, error) {
	if len(members) < 2 {
		return nil, errors.New(errors.CodeCoalitionInvalid, "a coalition needs at least two parties")
	}
	seen := make(map[PartyID]struct{}, len(members))
	for _, m := range members {
		if strings.TrimSpace(m) == "" {
			return nil, errors.New(errors.CodeCoalitionInvalid, "party identifier must not be empty")
		}
		if _, dup := seen[m]; dup {
			return nil, errors.Newf(errors.CodeCoalitionInvalid, "party %s listed twice", m)
		}
		seen[m] = struct{}{}
	}
	return append(Coalition(nil), members...), nil
}
