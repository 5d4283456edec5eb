// Package prometheus collects forecast metrics in a private registry. The
// CLI is short-lived, so the registry is written to a node-exporter textfile
// at exit instead of being scraped.
package prometheus

import (
	stderrors "errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/turtacn/coalition-intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/coalition-intelligence/pkg/errors"
)

// MetricsCollector registers metric vectors on one registry.
type MetricsCollector interface {
	RegisterCounter(name, help string, labels ...string) CounterVec
	RegisterGauge(name, help string, labels ...string) GaugeVec
	RegisterHistogram(name, help string, buckets []float64, labels ...string) HistogramVec
	Gatherer() prometheus.Gatherer
	// WriteTextfile writes the registry in text exposition format to path,
	// replacing the file atomically.
	WriteTextfile(path string) error
}

// CounterVec is satisfied by *prometheus.CounterVec.
type CounterVec interface {
	WithLabelValues(lvs ...string) prometheus.Counter
}

// GaugeVec is satisfied by *prometheus.GaugeVec.
type GaugeVec interface {
	WithLabelValues(lvs ...string) prometheus.Gauge
}

// HistogramVec is satisfied by *prometheus.HistogramVec.
type HistogramVec interface {
	WithLabelValues(lvs ...string) prometheus.Observer
}

// CollectorConfig configures the registry. Labels are attached to every
// metric, which lets several textfiles from one host be told apart.
type CollectorConfig struct {
	Namespace      string
	ProcessMetrics bool
	GoMetrics      bool
	Labels         map[string]string
	Buckets        []float64
}

var defaultBuckets = []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10, 30}

type prometheusCollector struct {
	registry *prometheus.Registry
	config   CollectorConfig
	logger   logging.Logger
}

// NewMetricsCollector creates a collector with its own registry.
func NewMetricsCollector(cfg CollectorConfig, logger logging.Logger) (MetricsCollector, error) {
	if cfg.Namespace == "" {
		return nil, errors.InvalidConfig("metrics namespace is required")
	}
	if cfg.Buckets == nil {
		cfg.Buckets = defaultBuckets
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	registry := prometheus.NewRegistry()
	if cfg.ProcessMetrics {
		registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{Namespace: cfg.Namespace}))
	}
	if cfg.GoMetrics {
		registry.MustRegister(prometheus.NewGoCollector())
	}
	return &prometheusCollector{registry: registry, config: cfg, logger: logger}, nil
}

func (c *prometheusCollector) Gatherer() prometheus.Gatherer {
	return c.registry
}

func (c *prometheusCollector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "failed to write metrics textfile").WithDetail(path)
	}
	c.logger.Debug("metrics written", logging.String("path", path))
	return nil
}

// register adds vec to the registry. A vector already registered under the
// same descriptor is returned instead. On any other failure vec is returned
// unregistered, so its values are dropped.
func (c *prometheusCollector) register(name, kind string, vec prometheus.Collector) prometheus.Collector {
	err := c.registry.Register(vec)
	if err == nil {
		return vec
	}
	var are prometheus.AlreadyRegisteredError
	if stderrors.As(err, &are) {
		return are.ExistingCollector
	}
	c.logger.Error("failed to register metric",
		logging.String("name", name), logging.String("type", kind), logging.Err(err))
	return vec
}

func (c *prometheusCollector) RegisterCounter(name, help string, labels ...string) CounterVec {
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   c.config.Namespace,
		Name:        name,
		Help:        help,
		ConstLabels: c.config.Labels,
	}, labels)
	if v, ok := c.register(name, "counter", vec).(*prometheus.CounterVec); ok {
		return v
	}
	c.logger.Warn("metric type mismatch", logging.String("name", name), logging.String("type", "counter"))
	return vec
}

func (c *prometheusCollector) RegisterGauge(name, help string, labels ...string) GaugeVec {
	vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   c.config.Namespace,
		Name:        name,
		Help:        help,
		ConstLabels: c.config.Labels,
	}, labels)
	if v, ok := c.register(name, "gauge", vec).(*prometheus.GaugeVec); ok {
		return v
	}
	c.logger.Warn("metric type mismatch", logging.String("name", name), logging.String("type", "gauge"))
	return vec
}

// RegisterHistogram uses the collector's buckets when buckets is nil.
func (c *prometheusCollector) RegisterHistogram(name, help string, buckets []float64, labels ...string) HistogramVec {
	if buckets == nil {
		buckets = c.config.Buckets
	}
	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   c.config.Namespace,
		Name:        name,
		Help:        help,
		ConstLabels: c.config.Labels,
		Buckets:     buckets,
	}, labels)
	if v, ok := c.register(name, "histogram", vec).(*prometheus.HistogramVec); ok {
		return v
	}
	c.logger.Warn("metric type mismatch", logging.String("name", name), logging.String("type", "histogram"))
	return vec
}

//Personal.AI order the ending
