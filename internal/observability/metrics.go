package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ScoutCollector bundles Prometheus metrics for the candidate scanner and
// provides a ready-to-serve /metrics handler.
type ScoutCollector struct {
	gatherer prometheus.Gatherer

	ScansTotal          *prometheus.CounterVec
	ScanDurations       *prometheus.HistogramVec
	CandidatesProcessed prometheus.Counter
	ActiveLines         prometheus.Gauge
}

// NewScoutCollector registers scanner Prometheus metrics against the
// provided registerer, defaulting to the global registry when nil.
func NewScoutCollector(reg prometheus.Registerer) (*ScoutCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	scans := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scout_scans_total",
		Help: "Total number of scan invocations, labeled by execution strategy and outcome.",
	}, []string{"strategy", "outcome"})
	scans, err := registerCounterVec(reg, scans, "scout_scans_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scout_scan_duration_seconds",
		Help:    "Wall-clock scan duration in seconds, labeled by execution strategy.",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"strategy"})
	durations, err = registerHistogramVec(reg, durations, "scout_scan_duration_seconds")
	if err != nil {
		return nil, err
	}

	processed, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scout_candidates_processed_total",
		Help: "Total number of candidate locations scored across all scans.",
	}), "scout_candidates_processed_total")
	if err != nil {
		return nil, err
	}

	activeLines, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "scout_active_lines",
		Help: "Number of influence lines in the most recent scan's line set.",
	}), "scout_active_lines")
	if err != nil {
		return nil, err
	}

	return &ScoutCollector{
		gatherer:            gatherer,
		ScansTotal:          scans,
		ScanDurations:       durations,
		CandidatesProcessed: processed,
		ActiveLines:         activeLines,
	}, nil
}

// ObserveScan records one finished scan invocation.
func (c *ScoutCollector) ObserveScan(strategy, outcome string, candidates int, duration time.Duration) {
	if c == nil {
		return
	}
	if c.ScansTotal != nil {
		c.ScansTotal.WithLabelValues(strategy, outcome).Inc()
	}
	if c.ScanDurations != nil {
		c.ScanDurations.WithLabelValues(strategy).Observe(duration.Seconds())
	}
	if c.CandidatesProcessed != nil && candidates > 0 {
		c.CandidatesProcessed.Add(float64(candidates))
	}
}

// SetActiveLines records the size of the line set a scan ran against.
func (c *ScoutCollector) SetActiveLines(n int) {
	if c == nil || c.ActiveLines == nil {
		return
	}
	c.ActiveLines.Set(float64(n))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *ScoutCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
