// Package dataset loads the historical inputs of a coalition forecast: the
// cabinet history, lower- and upper-chamber seat tables and party topic
// vectors. Sources read them from local files, object storage or
// PostgreSQL; CachedSource keeps parsed copies in Redis.
package dataset

import (
	"context"
	"strings"
	"time"

	"github.com/turtacn/coalition-intelligence/internal/domain/coalition"
	"github.com/turtacn/coalition-intelligence/internal/infrastructure/monitoring/logging"
)

// Locator identifies a dataset backend.
type Locator interface {
	// Name identifies the backend kind in logs, metrics and cache keys.
	Name() string
	// Location names where the datasets are read from, such as a directory
	// or bucket plus the configured files. It never carries credentials.
	Location() string
}

// Source provides the parsed historical datasets.
type Source interface {
	Locator
	// Cabinets returns the party list of every historical cabinet in
	// chronological order. Cabinets without parties are omitted.
	Cabinets(ctx context.Context) ([][]coalition.PartyID, error)
	// LowerChamber returns the lower-chamber seat distribution per year.
	LowerChamber(ctx context.Context) (map[int]coalition.SeatDistribution, error)
	// UpperChamber returns the upper-chamber seats per year.
	UpperChamber(ctx context.Context) (coalition.ChamberSeatTable, error)
	// TopicVectors returns the party topic distributions, or nil when none
	// are configured.
	TopicVectors(ctx context.Context) (coalition.TopicVectors, error)
}

// Snapshot is every dataset read from one Source.
type Snapshot struct {
	Cabinets     [][]coalition.PartyID              `json:"cabinets"`
	LowerChamber map[int]coalition.SeatDistribution `json:"lower_chamber"`
	UpperChamber coalition.ChamberSeatTable         `json:"upper_chamber"`
	Topics       coalition.TopicVectors             `json:"topics,omitempty"`
}

// Load reads all four datasets from src. Topic vectors are optional: a
// failure to read them is logged and leaves Topics nil.
func Load(ctx context.Context, src Source, log logging.Logger) (*Snapshot, error) {
	start := time.Now()
	snap := &Snapshot{}

	var err error
	if snap.Cabinets, err = src.Cabinets(ctx); err != nil {
		return nil, err
	}
	if snap.LowerChamber, err = src.LowerChamber(ctx); err != nil {
		return nil, err
	}
	if snap.UpperChamber, err = src.UpperChamber(ctx); err != nil {
		return nil, err
	}
	if snap.Topics, err = src.TopicVectors(ctx); err != nil {
		log.Warn("topic vectors unavailable, divergence term disabled",
			logging.String("source", src.Name()), logging.Err(err))
		snap.Topics = nil
	}

	logging.LogOperationDuration(log, "load_datasets", start,
		logging.String("source", src.Name()),
		logging.Int("cabinets", len(snap.Cabinets)),
		logging.Int("lower_chamber_years", len(snap.LowerChamber)),
		logging.Int("upper_chamber_years", len(snap.UpperChamber)),
		logging.Int("topic_vectors", len(snap.Topics)),
	)
	return snap, nil
}

// Files names the dataset files relative to a directory or bucket. Chamber
// tables may span several files, e.g. one per chamber size.
type Files struct {
	Cabinets     []string
	LowerChamber []string
	UpperChamber []string
	TopicVectors string
}

// String lists the files in a fixed order, so equal configurations render
// equally.
func (f Files) String() string {
	return "cabinets=" + strings.Join(f.Cabinets, ",") +
		";lower=" + strings.Join(f.LowerChamber, ",") +
		";upper=" + strings.Join(f.UpperChamber, ",") +
		";topics=" + f.TopicVectors
}
