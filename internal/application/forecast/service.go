// Package forecast is the application service behind the coalition CLI. It
// loads the historical datasets once, builds the cabinet frequency table and
// runs the predictor for a requested election year.
package forecast

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/coalition-intelligence/internal/domain/coalition"
	"github.com/turtacn/coalition-intelligence/internal/infrastructure/dataset"
	"github.com/turtacn/coalition-intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/coalition-intelligence/pkg/errors"
)

// Operation labels used for metrics.
const (
	OperationPredict = "predict"
	OperationScore   = "score"
)

// Seat distribution origins reported in Report.SeatsSource.
const (
	SeatsFromInput   = "input"
	SeatsFromHistory = "history"
)

// Service defines the forecast application operations.
type Service interface {
	Predict(ctx context.Context, req *Request) (*Report, error)
	ScoreCoalition(ctx context.Context, req *Request, parties []coalition.PartyID) (*ScoreResult, error)
	History(ctx context.Context, limit, minSize int) ([]coalition.FrequencyEntry, error)
}

// Request describes one election to forecast.
type Request struct {
	Year int
	// Seats is the lower-chamber result. When empty the distribution
	// recorded for Year in the lower-chamber history is used.
	Seats     coalition.SeatDistribution
	Threshold int
	TopK      int
	UseTopics bool
}

// Report is the outcome of Predict.
type Report struct {
	RunID       string                      `json:"run_id"`
	Year        int                         `json:"year"`
	GeneratedAt time.Time                   `json:"generated_at"`
	Profile     string                      `json:"profile"`
	Source      string                      `json:"source"`
	SeatsSource string                      `json:"seats_source"`
	Threshold   int                         `json:"threshold"`
	TopK        int                         `json:"top_k"`
	Topics      bool                        `json:"topics"`
	Largest     coalition.PartyID           `json:"largest_party,omitempty"`
	Candidates  []coalition.ScoredCoalition `json:"candidates"`
	Evaluated   int                         `json:"evaluated"`
	Feasible    int                         `json:"feasible"`
	Stats       coalition.Stats             `json:"stats"`
	Elapsed     time.Duration               `json:"elapsed_ns"`
}

// ScoreResult is the breakdown of one named coalition.
type ScoreResult struct {
	RunID     string                    `json:"run_id"`
	Year      int                       `json:"year"`
	Profile   string                    `json:"profile"`
	Threshold int                       `json:"threshold"`
	Coalition coalition.ScoredCoalition `json:"coalition"`
	Checks    coalition.Checks          `json:"checks"`
	Feasible  bool                      `json:"feasible"`
}

// Metrics receives forecast measurements. *prometheus.ForecastMetrics
// satisfies it.
type Metrics interface {
	RecordForecast(operation string, duration time.Duration, err error)
	RecordCandidates(year string, evaluated, feasible, returned int)
	RecordDatasetLoad(source string, duration time.Duration, err error)
}

type noopMetrics struct{}

func (noopMetrics) RecordForecast(string, time.Duration, error)    {}
func (noopMetrics) RecordCandidates(string, int, int, int)         {}
func (noopMetrics) RecordDatasetLoad(string, time.Duration, error) {}

// Option configures the service.
type Option func(*serviceImpl)

// WithMetrics records forecasts and dataset loads on m.
func WithMetrics(m Metrics) Option {
	return func(s *serviceImpl) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTimeout bounds every Predict and ScoreCoalition call.
func WithTimeout(d time.Duration) Option {
	return func(s *serviceImpl) { s.timeout = d }
}

// WithClock overrides the time source used for GeneratedAt.
func WithClock(now func() time.Time) Option {
	return func(s *serviceImpl) { s.now = now }
}

// serviceImpl implements the Service interface.
type serviceImpl struct {
	predictor *coalition.Predictor
	source    dataset.Source
	logger    logging.Logger
	metrics   Metrics
	timeout   time.Duration
	now       func() time.Time

	mu        sync.Mutex
	snapshot  *dataset.Snapshot
	frequency *coalition.FrequencyTable
}

// NewService creates a new forecast application service.
func NewService(predictor *coalition.Predictor, source dataset.Source, logger logging.Logger, opts ...Option) Service {
	s := &serviceImpl{
		predictor: predictor,
		source:    source,
		logger:    logger.Named("forecast"),
		metrics:   noopMetrics{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// datasets loads the snapshot on first use. A failed load is not cached.
func (s *serviceImpl) datasets(ctx context.Context) (*dataset.Snapshot, *coalition.FrequencyTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot != nil {
		return s.snapshot, s.frequency, nil
	}

	start := time.Now()
	snap, err := dataset.Load(ctx, s.source, s.logger)
	s.metrics.RecordDatasetLoad(s.source.Name(), time.Since(start), err)
	if err != nil {
		return nil, nil, err
	}
	s.snapshot = snap
	s.frequency = coalition.BuildFrequency(snap.Cabinets)
	s.logger.Debug("frequency table built",
		logging.Int("cabinets", len(snap.Cabinets)),
		logging.Int("entries", s.frequency.Len()),
	)
	return s.snapshot, s.frequency, nil
}

func (s *serviceImpl) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return context.WithCancel(ctx)
}

// input resolves the predictor input for req.
func (s *serviceImpl) input(ctx context.Context, req *Request) (coalition.Input, string, error) {
	if req == nil {
		return coalition.Input{}, "", errors.InvalidParam("request is nil")
	}
	snap, freq, err := s.datasets(ctx)
	if err != nil {
		return coalition.Input{}, "", err
	}

	seats, origin := req.Seats, SeatsFromInput
	if len(seats) == 0 {
		hist, ok := snap.LowerChamber[req.Year]
		if !ok {
			return coalition.Input{}, "", errors.Newf(errors.CodeUnknownYear,
				"no lower-chamber seats recorded for %d; pass a seat distribution", req.Year)
		}
		seats, origin = hist, SeatsFromHistory
	}

	in := coalition.Input{
		Seats:        seats,
		Frequency:    freq,
		UpperChamber: snap.UpperChamber,
		Year:         req.Year,
		Threshold:    req.Threshold,
		TopK:         req.TopK,
	}
	if req.UseTopics {
		if len(snap.Topics) == 0 {
			s.logger.Warn("topic divergence requested but no topic vectors loaded", logging.Int("year", req.Year))
		}
		in.Topics = snap.Topics
	}
	if _, ok := snap.UpperChamber.Year(req.Year); !ok {
		s.logger.Warn("no upper-chamber seats for year, no coalition can be scored",
			logging.Int("year", req.Year),
			logging.Any("known_years", snap.UpperChamber.Years()),
		)
	}
	return in, origin, nil
}

func effectiveThreshold(n int) int {
	if n > 0 {
		return n
	}
	return coalition.DefaultThreshold
}

func effectiveTopK(n int) int {
	if n > 0 {
		return n
	}
	return coalition.DefaultTopK
}

// Predict returns the top-ranked coalitions for req.
func (s *serviceImpl) Predict(ctx context.Context, req *Request) (report *Report, err error) {
	start := time.Now()
	defer func() { s.metrics.RecordForecast(OperationPredict, time.Since(start), err) }()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	in, origin, err := s.input(ctx, req)
	if err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	log := s.logger.With(logging.String("run_id", runID), logging.Int("year", req.Year))

	res, err := s.predictor.Run(ctx, in)
	if err != nil {
		log.Error("forecast failed", logging.Err(err))
		return nil, err
	}

	report = &Report{
		RunID:       runID,
		Year:        req.Year,
		GeneratedAt: s.now().UTC(),
		Profile:     s.predictor.Reference().Name,
		Source:      s.source.Name(),
		SeatsSource: origin,
		Threshold:   effectiveThreshold(req.Threshold),
		TopK:        effectiveTopK(req.TopK),
		Topics:      len(in.Topics) > 0,
		Largest:     res.Stats.Largest,
		Candidates:  res.Coalitions,
		Evaluated:   res.Stats.Enumerated,
		Feasible:    res.Stats.Feasible,
		Stats:       res.Stats,
		Elapsed:     time.Since(start),
	}
	s.metrics.RecordCandidates(strconv.Itoa(req.Year), report.Evaluated, report.Feasible, len(report.Candidates))

	log.Info("forecast complete",
		logging.String("profile", report.Profile),
		logging.String("seats", origin),
		logging.Int("evaluated", report.Evaluated),
		logging.Int("feasible", report.Feasible),
		logging.Int("returned", len(report.Candidates)),
		logging.Duration("elapsed", report.Elapsed),
	)
	return report, nil
}

// ScoreCoalition scores parties as a single coalition, reporting which
// enumeration filters it would fail instead of applying them.
func (s *serviceImpl) ScoreCoalition(ctx context.Context, req *Request, parties []coalition.PartyID) (result *ScoreResult, err error) {
	start := time.Now()
	defer func() { s.metrics.RecordForecast(OperationScore, time.Since(start), err) }()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if len(parties) == 0 {
		return nil, errors.New(errors.CodeCoalitionInvalid, "no parties given")
	}
	in, _, err := s.input(ctx, req)
	if err != nil {
		return nil, err
	}

	scored, checks, err := s.predictor.Evaluate(in, parties...)
	if err != nil {
		return nil, err
	}

	result = &ScoreResult{
		RunID:     uuid.New().String(),
		Year:      req.Year,
		Profile:   s.predictor.Reference().Name,
		Threshold: effectiveThreshold(req.Threshold),
		Coalition: scored,
		Checks:    checks,
		Feasible:  checks.Feasible(),
	}
	s.logger.Debug("coalition scored",
		logging.Strings("parties", scored.Coalition),
		logging.Float64("final_score", scored.FinalScore),
		logging.Bool("feasible", result.Feasible),
	)
	return result, nil
}

// History returns the most frequent historical sub-coalitions with at least
// minSize parties. minSize below 2 is treated as 2.
func (s *serviceImpl) History(ctx context.Context, limit, minSize int) ([]coalition.FrequencyEntry, error) {
	if minSize < 2 {
		minSize = 2
	}
	_, freq, err := s.datasets(ctx)
	if err != nil {
		return nil, err
	}
	return freq.Top(limit, minSize), nil
}

//Personal.AI order the ending
