package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	stdliberrors "errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/coalition-intelligence/internal/domain/coalition"
	"github.com/turtacn/coalition-intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/coalition-intelligence/internal/infrastructure/dataset"
	"github.com/turtacn/coalition-intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/coalition-intelligence/pkg/errors"
)

// SourceName identifies PostgreSQL-backed datasets in logs and cache keys.
const SourceName = "postgres"

// ImportRecord describes one completed dataset import.
type ImportRecord struct {
	ID         uuid.UUID `json:"id"`
	Source     string    `json:"source"`
	Cabinets   int       `json:"cabinets"`
	LowerYears int       `json:"lower_years"`
	UpperYears int       `json:"upper_years"`
	Topics     int       `json:"topics"`
	ImportedAt time.Time `json:"imported_at"`
}

// DatasetRepository reads and replaces the imported datasets. It implements
// dataset.Source.
type DatasetRepository struct {
	conn     *postgres.Connection
	log      logging.Logger
	executor queryExecutor
}

var _ dataset.Source = (*DatasetRepository)(nil)

func NewDatasetRepository(conn *postgres.Connection, log logging.Logger) *DatasetRepository {
	return &DatasetRepository{
		conn:     conn,
		log:      log,
		executor: conn.DB(),
	}
}

func (r *DatasetRepository) Name() string { return SourceName }

// Location implements dataset.Source.
func (r *DatasetRepository) Location() string { return r.conn.Location() }

// WithTx runs fn against a repository bound to a single transaction.
func (r *DatasetRepository) WithTx(ctx context.Context, fn func(*DatasetRepository) error) error {
	tx, err := r.conn.DB().BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "failed to begin transaction")
	}

	txRepo := &DatasetRepository{
		conn:     r.conn,
		log:      r.log,
		executor: tx,
	}

	if err := fn(txRepo); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.CodeDatabaseError, "failed to commit transaction")
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Reads
// ─────────────────────────────────────────────────────────────────────────────

func (r *DatasetRepository) Cabinets(ctx context.Context) ([][]coalition.PartyID, error) {
	query := `SELECT cabinet, party FROM cabinets ORDER BY cabinet, position`
	rows, err := r.executor.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to query cabinets")
	}
	defer rows.Close()

	var out [][]coalition.PartyID
	current := -1
	for rows.Next() {
		var cabinet int
		var party string
		if err := rows.Scan(&cabinet, &party); err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to scan cabinet")
		}
		if cabinet != current || len(out) == 0 {
			out = append(out, nil)
			current = cabinet
		}
		out[len(out)-1] = append(out[len(out)-1], party)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to iterate cabinets")
	}
	return out, nil
}

func (r *DatasetRepository) LowerChamber(ctx context.Context) (map[int]coalition.SeatDistribution, error) {
	query := `SELECT year, party, seats FROM lower_chamber_seats ORDER BY year, position`
	rows, err := r.executor.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to query lower chamber seats")
	}
	defer rows.Close()

	out := make(map[int]coalition.SeatDistribution)
	for rows.Next() {
		var year, seats int
		var party string
		if err := rows.Scan(&year, &party, &seats); err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to scan lower chamber seats")
		}
		out[year] = append(out[year], coalition.PartySeats{Party: party, Seats: seats})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to iterate lower chamber seats")
	}
	return out, nil
}

func (r *DatasetRepository) UpperChamber(ctx context.Context) (coalition.ChamberSeatTable, error) {
	query := `SELECT year, party, seats FROM upper_chamber_seats ORDER BY year, party`
	rows, err := r.executor.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to query upper chamber seats")
	}
	defer rows.Close()

	out := coalition.ChamberSeatTable{}
	for rows.Next() {
		var year, seats int
		var party string
		if err := rows.Scan(&year, &party, &seats); err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to scan upper chamber seats")
		}
		out.Set(year, party, seats)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to iterate upper chamber seats")
	}
	return out, nil
}

// TopicVectors returns nil when the table is empty.
func (r *DatasetRepository) TopicVectors(ctx context.Context) (coalition.TopicVectors, error) {
	query := `SELECT party, vector FROM topic_vectors ORDER BY party`
	rows, err := r.executor.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to query topic vectors")
	}
	defer rows.Close()

	var out coalition.TopicVectors
	for rows.Next() {
		var party string
		var raw []byte
		if err := rows.Scan(&party, &raw); err != nil {
			return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to scan topic vector")
		}
		var vec []float64
		if err := json.Unmarshal(raw, &vec); err != nil {
			return nil, errors.Wrap(err, errors.CodeDatasetParse, "invalid topic vector").WithDetail(party)
		}
		if out == nil {
			out = coalition.TopicVectors{}
		}
		out[party] = vec
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to iterate topic vectors")
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Import
// ─────────────────────────────────────────────────────────────────────────────

// Import replaces every stored dataset with snap in one transaction and
// records the import. source names where snap was read from.
func (r *DatasetRepository) Import(ctx context.Context, source string, snap *dataset.Snapshot) (*ImportRecord, error) {
	if snap == nil {
		return nil, errors.InvalidParam("snapshot is nil")
	}

	rec := &ImportRecord{
		ID:         uuid.New(),
		Source:     source,
		Cabinets:   len(snap.Cabinets),
		LowerYears: len(snap.LowerChamber),
		UpperYears: len(snap.UpperChamber),
		Topics:     len(snap.Topics),
	}

	err := r.WithTx(ctx, func(tx *DatasetRepository) error {
		for _, table := range []string{"cabinets", "lower_chamber_seats", "upper_chamber_seats", "topic_vectors"} {
			if _, err := tx.executor.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return errors.Wrap(err, errors.CodeDatabaseError, "failed to clear "+table)
			}
		}
		if err := tx.insertCabinets(ctx, snap.Cabinets); err != nil {
			return err
		}
		if err := tx.insertLowerChamber(ctx, snap.LowerChamber); err != nil {
			return err
		}
		if err := tx.insertUpperChamber(ctx, snap.UpperChamber); err != nil {
			return err
		}
		if err := tx.insertTopics(ctx, snap.Topics); err != nil {
			return err
		}

		query := `
			INSERT INTO dataset_imports (id, source, cabinets, lower_years, upper_years, topics)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING imported_at
		`
		err := tx.executor.QueryRowContext(ctx, query,
			rec.ID, rec.Source, rec.Cabinets, rec.LowerYears, rec.UpperYears, rec.Topics,
		).Scan(&rec.ImportedAt)
		if err != nil {
			return errors.Wrap(err, errors.CodeDatabaseError, "failed to record import")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Info("datasets imported",
		logging.String("import_id", rec.ID.String()),
		logging.String("source", source),
		logging.Int("cabinets", rec.Cabinets),
		logging.Int("lower_years", rec.LowerYears),
		logging.Int("upper_years", rec.UpperYears),
		logging.Int("topics", rec.Topics),
	)
	return rec, nil
}

func (r *DatasetRepository) insertCabinets(ctx context.Context, cabinets [][]coalition.PartyID) error {
	query := `INSERT INTO cabinets (cabinet, position, party) VALUES ($1, $2, $3)`
	for i, parties := range cabinets {
		for pos, party := range parties {
			if _, err := r.executor.ExecContext(ctx, query, i, pos, party); err != nil {
				return errors.Wrap(err, errors.CodeDatabaseError, "failed to insert cabinet")
			}
		}
	}
	return nil
}

func (r *DatasetRepository) insertLowerChamber(ctx context.Context, table map[int]coalition.SeatDistribution) error {
	query := `INSERT INTO lower_chamber_seats (year, position, party, seats) VALUES ($1, $2, $3, $4)`
	for _, year := range sortedYears(table) {
		for pos, ps := range table[year] {
			if _, err := r.executor.ExecContext(ctx, query, year, pos, ps.Party, ps.Seats); err != nil {
				return errors.Wrap(err, errors.CodeDatabaseError, "failed to insert lower chamber seats")
			}
		}
	}
	return nil
}

func (r *DatasetRepository) insertUpperChamber(ctx context.Context, table coalition.ChamberSeatTable) error {
	query := `INSERT INTO upper_chamber_seats (year, party, seats) VALUES ($1, $2, $3)`
	for _, year := range table.Years() {
		seats := table[year]
		parties := make([]string, 0, len(seats))
		for p := range seats {
			parties = append(parties, p)
		}
		sort.Strings(parties)
		for _, p := range parties {
			if _, err := r.executor.ExecContext(ctx, query, year, p, seats[p]); err != nil {
				return errors.Wrap(err, errors.CodeDatabaseError, "failed to insert upper chamber seats")
			}
		}
	}
	return nil
}

func (r *DatasetRepository) insertTopics(ctx context.Context, topics coalition.TopicVectors) error {
	query := `INSERT INTO topic_vectors (party, vector) VALUES ($1, $2)`
	parties := make([]string, 0, len(topics))
	for p := range topics {
		parties = append(parties, p)
	}
	sort.Strings(parties)
	for _, p := range parties {
		raw, err := json.Marshal(topics[p])
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode topic vector").WithDetail(p)
		}
		if _, err := r.executor.ExecContext(ctx, query, p, raw); err != nil {
			return errors.Wrap(err, errors.CodeDatabaseError, "failed to insert topic vector")
		}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Import history
// ─────────────────────────────────────────────────────────────────────────────

// ListImports returns the most recent imports, newest first.
func (r *DatasetRepository) ListImports(ctx context.Context, limit int) ([]*ImportRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `
		SELECT id, source, cabinets, lower_years, upper_years, topics, imported_at
		FROM dataset_imports
		ORDER BY imported_at DESC
		LIMIT $1
	`
	rows, err := r.executor.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to query imports")
	}
	defer rows.Close()

	var out []*ImportRecord
	for rows.Next() {
		rec, err := scanImport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to iterate imports")
	}
	return out, nil
}

// LatestImport returns the newest import or a NotFound error.
func (r *DatasetRepository) LatestImport(ctx context.Context) (*ImportRecord, error) {
	query := `
		SELECT id, source, cabinets, lower_years, upper_years, topics, imported_at
		FROM dataset_imports
		ORDER BY imported_at DESC
		LIMIT 1
	`
	return scanImport(r.executor.QueryRowContext(ctx, query))
}

func scanImport(row scanner) (*ImportRecord, error) {
	rec := &ImportRecord{}
	err := row.Scan(&rec.ID, &rec.Source, &rec.Cabinets, &rec.LowerYears, &rec.UpperYears, &rec.Topics, &rec.ImportedAt)
	if err != nil {
		if stdliberrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFound("no dataset import recorded")
		}
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "failed to scan import")
	}
	return rec, nil
}

func sortedYears(table map[int]coalition.SeatDistribution) []int {
	years := make([]int, 0, len(table))
	for y := range table {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

//Personal.AI order the ending
