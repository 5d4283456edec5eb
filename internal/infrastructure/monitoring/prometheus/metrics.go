package prometheus

import (
	"time"

	"github.com/turtacn/coalition-intelligence/pkg/errors"
)

// ForecastMetrics holds the metrics of one CLI run.
type ForecastMetrics struct {
	// Forecast
	ForecastsTotal      CounterVec
	ForecastDuration    HistogramVec
	CandidatesEvaluated GaugeVec
	CandidatesFeasible  GaugeVec
	ResultsReturned     GaugeVec

	// Datasets
	DatasetLoadDuration HistogramVec
	CacheHitsTotal      CounterVec
	CacheMissesTotal    CounterVec
	DBQueryDuration     HistogramVec
	ImportRowsTotal     CounterVec

	ErrorsTotal CounterVec
}

// Default Buckets
var (
	DefaultForecastDurationBuckets = []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10, 30}
	DefaultLoadDurationBuckets     = []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultDBDurationBuckets       = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
)

// NewForecastMetrics registers all metrics on collector.
func NewForecastMetrics(collector MetricsCollector) *ForecastMetrics {
	m := &ForecastMetrics{}

	m.ForecastsTotal = collector.RegisterCounter("forecasts_total", "Forecast runs by outcome", "operation", "status")
	m.ForecastDuration = collector.RegisterHistogram("forecast_duration_seconds", "Enumeration and scoring time", DefaultForecastDurationBuckets, "operation")
	m.CandidatesEvaluated = collector.RegisterGauge("forecast_candidates_evaluated", "Subsets enumerated in the last forecast", "year")
	m.CandidatesFeasible = collector.RegisterGauge("forecast_candidates_feasible", "Subsets that passed every filter in the last forecast", "year")
	m.ResultsReturned = collector.RegisterGauge("forecast_results_returned", "Coalitions returned by the last forecast", "year")

	m.DatasetLoadDuration = collector.RegisterHistogram("dataset_load_duration_seconds", "Dataset load time", DefaultLoadDurationBuckets, "source")
	m.CacheHitsTotal = collector.RegisterCounter("dataset_cache_hits_total", "Dataset cache hits", "dataset")
	m.CacheMissesTotal = collector.RegisterCounter("dataset_cache_misses_total", "Dataset cache misses", "dataset")
	m.DBQueryDuration = collector.RegisterHistogram("db_query_duration_seconds", "Database query duration", DefaultDBDurationBuckets, "operation")
	m.ImportRowsTotal = collector.RegisterCounter("import_rows_total", "Rows written by dataset imports", "target", "dataset")

	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Failures by component and error code", "component", "code")

	return m
}

// Helpers

// RecordForecast records the outcome of one forecast or score operation.
func (m *ForecastMetrics) RecordForecast(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
		if errors.IsCode(err, errors.CodeCanceled) {
			status = "canceled"
		}
		m.RecordError("forecast", err)
	}
	m.ForecastsTotal.WithLabelValues(operation, status).Inc()
	m.ForecastDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCandidates records enumeration statistics for year.
func (m *ForecastMetrics) RecordCandidates(year string, evaluated, feasible, returned int) {
	m.CandidatesEvaluated.WithLabelValues(year).Set(float64(evaluated))
	m.CandidatesFeasible.WithLabelValues(year).Set(float64(feasible))
	m.ResultsReturned.WithLabelValues(year).Set(float64(returned))
}

func (m *ForecastMetrics) RecordDatasetLoad(source string, duration time.Duration, err error) {
	m.DatasetLoadDuration.WithLabelValues(source).Observe(duration.Seconds())
	if err != nil {
		m.RecordError("dataset", err)
	}
}

func (m *ForecastMetrics) RecordDBQuery(operation string, duration time.Duration, err error) {
	m.DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		m.RecordError("postgres", err)
	}
}

func (m *ForecastMetrics) RecordImport(target, dataset string, rows int) {
	m.ImportRowsTotal.WithLabelValues(target, dataset).Add(float64(rows))
}

// CacheHit satisfies the dataset cache recorder.
func (m *ForecastMetrics) CacheHit(dataset string) {
	m.CacheHitsTotal.WithLabelValues(dataset).Inc()
}

// CacheMiss satisfies the dataset cache recorder.
func (m *ForecastMetrics) CacheMiss(dataset string) {
	m.CacheMissesTotal.WithLabelValues(dataset).Inc()
}

func (m *ForecastMetrics) RecordError(component string, err error) {
	m.ErrorsTotal.WithLabelValues(component, string(errors.GetCode(err))).Inc()
}

//Personal.AI order the ending
