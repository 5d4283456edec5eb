package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/coalition-intelligence/internal/domain/coalition"
	"github.com/turtacn/coalition-intelligence/pkg/errors"
)

func TestParseSeatList(t *testing.T) {
	got, err := ParseSeatList("PVV=37, GL/PvdA=25 ,VVD=24,")

	require.NoError(t, err)
	assert.Equal(t, coalition.SeatDistribution{
		{Party: "PVV", Seats: 37},
		{Party: "GL/PvdA", Seats: 25},
		{Party: "VVD", Seats: 24},
	}, got)
}

func TestParseSeatList_Invalid(t *testing.T) {
	for _, in := range []string{"", "PVV", "=3", "PVV=x", "PVV=-1", "PVV=1,PVV=2"} {
		_, err := ParseSeatList(in)
		assert.True(t, errors.IsCode(err, errors.CodeSeatsInvalid), "input %q: %v", in, err)
	}
}

func TestParseSeatFile(t *testing.T) {
	in := "Partij,Zetels\nPVV,37\nNSC,20.0\n,\n"

	got, err := ParseSeatFile(strings.NewReader(in), "seats.csv")

	require.NoError(t, err)
	assert.Equal(t, coalition.SeatDistribution{{Party: "PVV", Seats: 37}, {Party: "NSC", Seats: 20}}, got)
}

func TestParseSeatFile_EnglishHeaders(t *testing.T) {
	got, err := ParseSeatFile(strings.NewReader("party,seats\nD66,9\n"), "seats.csv")
	require.NoError(t, err)
	assert.Equal(t, 9, got.Seats("D66"))
}

func TestParseSeatFile_Errors(t *testing.T) {
	_, err := ParseSeatFile(strings.NewReader("Naam,Aantal\nPVV,37\n"), "seats.csv")
	assert.True(t, errors.IsCode(err, errors.CodeDatasetUnsupported))

	_, err = ParseSeatFile(strings.NewReader("Partij,Zetels\nPVV,\n"), "seats.csv")
	assert.True(t, errors.IsCode(err, errors.CodeSeatsInvalid))
}
