// Package coalition scores hypothetical governing coalitions for a
// parliamentary chamber. It enumerates every subset of parties that contains
// the largest party and reaches the seat threshold, drops subsets containing
// an unrealistic pair, and ranks the survivors on a composite of historical
// precedent, ideological distance, upper-chamber alignment and policy-topic
// divergence.
//
// The package performs no I/O. Its inputs (seat distribution, frequency
// table, upper-chamber seats, topic vectors) come from dataset loaders, and
// its reference data (ideology maps, lineage, exclusions) is injected.
package coalition

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/coalition-intelligence/pkg/errors"
)

const (
	// DefaultThreshold is a lower-chamber majority of 150 seats.
	DefaultThreshold = 76
	// DefaultTopK is the number of coalitions returned.
	DefaultTopK = 5
	// DefaultMajority is an upper-chamber majority of 75 seats.
	DefaultMajority = 38

	// MaxParties bounds the seat distribution; enumeration is 2^N.
	MaxParties = 30

	// cancelCheckEvery is how many subsets are enumerated between
	// context checks.
	cancelCheckEvery = 1 << 12
)

// ScoredCoalition is one ranked result. Component scores are rounded to two
// decimals and the final score to one, matching the published reports.
type ScoredCoalition struct {
	Coalition       Coalition `json:"coalition"`
	Seats           int       `json:"seats"`
	HistoricalScore float64   `json:"historical_score"`
	IdeologyScore   float64   `json:"ideology_score"`
	EKScore         float64   `json:"ek_score"`
	EKTotalSeats    int       `json:"ek_total_seats"`
	JSDPenalty      float64   `json:"jsd_penalty"`
	PartyPenalty    float64   `json:"party_penalty"`
	SurplusPenalty  float64   `json:"surplus_penalty"`
	RawScore        float64   `json:"raw_score"`
	FinalScore      float64   `json:"final_score"`
}

// Input is everything a single prediction needs besides reference data.
type Input struct {
	Seats        SeatDistribution
	Frequency    *FrequencyTable
	UpperChamber ChamberSeatTable
	Year         int

	// Threshold is the minimum lower-chamber seat total. 0 means DefaultThreshold.
	Threshold int
	// TopK is the number of results. 0 means DefaultTopK.
	TopK int
	// Topics enables the divergence term when non-empty.
	Topics TopicVectors
}

func (in Input) threshold() int {
	if in.Threshold > 0 {
		return in.Threshold
	}
	return DefaultThreshold
}

func (in Input) topK() int {
	if in.TopK > 0 {
		return in.TopK
	}
	return DefaultTopK
}

// Stats describes how many subsets each stage of the pipeline kept.
type Stats struct {
	Enumerated     int     `json:"enumerated"`
	WithLargest    int     `json:"with_largest"`
	AboveThreshold int     `json:"above_threshold"`
	Feasible       int     `json:"feasible"`
	Largest        PartyID `json:"largest_party"`
}

// Prediction is the ranked result plus pipeline statistics.
type Prediction struct {
	Coalitions []ScoredCoalition `json:"coalitions"`
	Stats      Stats             `json:"stats"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Predictor
// ─────────────────────────────────────────────────────────────────────────────

// Predictor enumerates and scores coalitions. It is immutable after
// construction and safe for concurrent use.
type Predictor struct {
	ref         ReferenceData
	ideology    *IdeologyModel
	weights     Weights
	majority    int
	concurrency int
	measure     DivergenceMeasure
}

// Option configures a Predictor.
type Option func(*Predictor)

// WithWeights overrides the composite-score weights.
func WithWeights(w Weights) Option {
	return func(p *Predictor) { p.weights = w }
}

// WithMajority sets the upper-chamber majority threshold.
func WithMajority(seats int) Option {
	return func(p *Predictor) { p.majority = seats }
}

// WithConcurrency sets the number of scoring workers.
func WithConcurrency(n int) Option {
	return func(p *Predictor) { p.concurrency = n }
}

// WithDivergenceMeasure selects divergence or distance for topic vectors.
func WithDivergenceMeasure(m DivergenceMeasure) Option {
	return func(p *Predictor) { p.measure = m }
}

// NewPredictor validates ref and the options.
func NewPredictor(ref ReferenceData, opts ...Option) (*Predictor, error) {
	model, err := NewIdeologyModel(ref.Spaces...)
	if err != nil {
		return nil, err
	}
	p := &Predictor{
		ref:         ref,
		ideology:    model,
		weights:     DefaultWeights(),
		majority:    DefaultMajority,
		concurrency: runtime.GOMAXPROCS(0),
		measure:     MeasureDivergence,
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.weights.Validate(); err != nil {
		return nil, err
	}
	if p.majority < 1 {
		return nil, errors.New(errors.CodeInvalidConfig, "upper-chamber majority must be ≥ 1")
	}
	if p.concurrency < 1 {
		p.concurrency = 1
	}
	if _, err := ParseDivergenceMeasure(string(p.measure)); err != nil {
		return nil, err
	}
	return p, nil
}

// Reference returns the reference data the predictor was built with.
func (p *Predictor) Reference() ReferenceData { return p.ref }

// Weights returns the active weights.
func (p *Predictor) Weights() Weights { return p.weights }

// Predict returns the top-K coalitions, best first.
func (p *Predictor) Predict(ctx context.Context, in Input) ([]ScoredCoalition, error) {
	res, err := p.Run(ctx, in)
	if err != nil {
		return nil, err
	}
	return res.Coalitions, nil
}

// Run enumerates, filters, scores and ranks coalitions.
//
//  1. Find the largest party (first in distribution order on a tie).
//  2. Enumerate subsets of size 2..N in combination order, keeping those
//     that contain the largest party.
//  3. Keep subsets reaching the seat threshold.
//  4. Drop subsets containing an unrealistic pair.
//  5. Score survivors concurrently.
//  6. Stable-sort by final score descending, then seats ascending, and
//     truncate to TopK.
//
// An empty distribution, a year missing from the upper-chamber table or no
// surviving subset yields an empty result without error.
func (p *Predictor) Run(ctx context.Context, in Input) (*Prediction, error) {
	res := &Prediction{Coalitions: []ScoredCoalition{}}
	if err := in.Seats.Validate(); err != nil {
		return nil, err
	}
	n := len(in.Seats)
	if n > MaxParties {
		return nil, errors.Newf(errors.CodeSeatsInvalid, "%d parties exceed the supported maximum of %d", n, MaxParties)
	}
	largest := in.Seats.Largest()
	if largest < 0 {
		return res, nil
	}
	res.Stats.Largest = in.Seats[largest].Party

	yearSeats, ok := in.UpperChamber.Year(in.Year)
	if !ok {
		return res, nil
	}

	candidates, err := p.enumerate(ctx, in, largest, &res.Stats)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return res, nil
	}

	scored, err := p.scoreAll(ctx, in, yearSeats, candidates)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].FinalScore != scored[j].FinalScore {
			return scored[i].FinalScore > scored[j].FinalScore
		}
		return scored[i].Seats < scored[j].Seats
	})
	if k := in.topK(); len(scored) > k {
		scored = scored[:k]
	}
	res.Coalitions = scored
	return res, nil
}

// candidate is a feasible subset: its member indices packed in a bitmask and
// its seat total.
type candidate struct {
	mask  uint64
	seats int
}

func (p *Predictor) enumerate(ctx context.Context, in Input, largest int, stats *Stats) ([]candidate, error) {
	n := len(in.Seats)
	threshold := in.threshold()
	pairMasks := p.ref.UnrealisticPairs.masks(in.Seats)
	largestBit := uint64(1) << uint(largest)

	var (
		out    []candidate
		ctxErr error
		tick   int
	)
	for r := 2; r <= n && ctxErr == nil; r++ {
		forEachCombination(n, r, func(idx []int) bool {
			stats.Enumerated++
			if tick++; tick%cancelCheckEvery == 0 {
				if ctxErr = ctx.Err(); ctxErr != nil {
					return false
				}
			}

			var mask uint64
			seats := 0
			for _, i := range idx {
				mask |= 1 << uint(i)
				seats += in.Seats[i].Seats
			}
			if mask&largestBit == 0 {
				return true
			}
			stats.WithLargest++
			if seats < threshold {
				return true
			}
			stats.AboveThreshold++
			for _, pm := range pairMasks {
				if mask&pm == pm {
					return true
				}
			}
			stats.Feasible++
			out = append(out, candidate{mask: mask, seats: seats})
			return true
		})
	}
	if ctxErr != nil {
		return nil, errors.Wrap(ctxErr, errors.CodeCanceled, "coalition enumeration interrupted")
	}
	return out, nil
}

func (p *Predictor) scoreAll(ctx context.Context, in Input, yearSeats map[PartyID]int, candidates []candidate) ([]ScoredCoalition, error) {
	results := make([]ScoredCoalition, len(candidates))

	workers := p.concurrency
	if workers > len(candidates) {
		workers = len(candidates)
	}
	chunk := (len(candidates) + workers - 1) / workers

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < len(candidates); start += chunk {
		start, end := start, start+chunk
		if end > len(candidates) {
			end = len(candidates)
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				if (i-start)%256 == 0 {
					if err := gCtx.Err(); err != nil {
						return err
					}
				}
				members := membersOf(in.Seats, candidates[i].mask)
				results[i] = p.score(in, yearSeats, members, candidates[i].seats)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, errors.CodeCanceled, "coalition scoring interrupted")
	}
	return results, nil
}

// score computes every component for one coalition.
func (p *Predictor) score(in Input, yearSeats map[PartyID]int, members Coalition, seats int) ScoredCoalition {
	w := p.weights

	hist := HistoricalScore(members, in.Frequency, in.Seats, p.ref.Lineage)
	ideo := p.ideology.Distance(members)
	ek, ekSeats := Alignment(members, yearSeats, p.ref.Lineage, p.majority)
	jsd := MeanDivergence(members, in.Topics, p.measure)
	partyPenalty := w.PartyPenalty(len(members))
	surplus := w.SurplusPenalty(seats)

	raw := w.Raw(hist, ideo, ek, jsd, partyPenalty, surplus)

	return ScoredCoalition{
		Coalition:       members,
		Seats:           seats,
		HistoricalScore: round(hist, 2),
		IdeologyScore:   round(ideo, 2),
		EKScore:         round(ek, 2),
		EKTotalSeats:    ekSeats,
		JSDPenalty:      round(jsd, 2),
		PartyPenalty:    round(partyPenalty, 2),
		SurplusPenalty:  round(surplus, 2),
		RawScore:        round(raw, 2),
		FinalScore:      round(w.Normalize(raw), 1),
	}
}

func membersOf(d SeatDistribution, mask uint64) Coalition {
	out := make(Coalition, 0, 4)
	for i, ps := range d {
		if mask&(1<<uint(i)) != 0 {
			out = append(out, ps.Party)
		}
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Single-coalition evaluation
// ─────────────────────────────────────────────────────────────────────────────

// Checks reports which enumeration filters a coalition would pass.
type Checks struct {
	IncludesLargest bool       `json:"includes_largest"`
	MeetsThreshold  bool       `json:"meets_threshold"`
	Realistic       bool       `json:"realistic"`
	Violation       *PartyPair `json:"violation,omitempty"`
	YearKnown       bool       `json:"year_known"`
}

// Feasible reports whether the coalition would appear in Run's candidates.
func (c Checks) Feasible() bool {
	return c.IncludesLargest && c.MeetsThreshold && c.Realistic && c.YearKnown
}

// Evaluate scores one coalition regardless of the enumeration filters and
// reports which of them it passes. Members must all be in the distribution.
func (p *Predictor) Evaluate(in Input, members ...PartyID) (ScoredCoalition, Checks, error) {
	if err := in.Seats.Validate(); err != nil {
		return ScoredCoalition{}, Checks{}, err
	}
	c, err := NewCoalition(members...)
	if err != nil {
		return ScoredCoalition{}, Checks{}, err
	}
	seats := 0
	for _, m := range c {
		if !in.Seats.Has(m) {
			return ScoredCoalition{}, Checks{}, errors.Newf(errors.CodeCoalitionInvalid, "party %s is not in the seat distribution", m)
		}
		seats += in.Seats.Seats(m)
	}

	var checks Checks
	if l := in.Seats.Largest(); l >= 0 {
		checks.IncludesLargest = c.Contains(in.Seats[l].Party)
	}
	checks.MeetsThreshold = seats >= in.threshold()
	if pair, bad := p.ref.UnrealisticPairs.Violation(c); bad {
		checks.Violation = &pair
	} else {
		checks.Realistic = true
	}
	yearSeats, ok := in.UpperChamber.Year(in.Year)
	checks.YearKnown = ok

	return p.score(in, yearSeats, c, seats), checks, nil
}
