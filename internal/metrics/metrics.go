// Package metrics records run counters in a private Prometheus registry and
// writes them in the node-exporter textfile format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/input-output-hk/s3-checksum/errors"
	"github.com/input-output-hk/s3-checksum/s3types"
)

const namespace = "s3checksum"

// Outcome labels for processed items.
const (
	OutcomeOK       = "ok"
	OutcomeMismatch = "mismatch"
	OutcomeFailed   = "failed"
)

// Recorder holds the counters of a single run. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	registry *prometheus.Registry
	items    *prometheus.CounterVec
	failures *prometheus.CounterVec
	bytes    prometheus.Counter
	duration prometheus.Gauge
	success  prometheus.Gauge
}

// New creates a recorder labelled with the bucket and algorithm.
func New(bucket string, alg s3types.Algorithm) *Recorder {
	labels := prometheus.Labels{"bucket": bucket, "algorithm": alg.String()}
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "items_total",
			Help:        "Objects processed, by outcome.",
			ConstLabels: labels,
		}, []string{"outcome"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "failures_total",
			Help:        "Failed objects, by error class.",
			ConstLabels: labels,
		}, []string{"code"}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "bytes_hashed_total",
			Help:        "Bytes of successfully hashed objects.",
			ConstLabels: labels,
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "run_duration_seconds",
			Help:        "Wall time of the run.",
			ConstLabels: labels,
		}),
		success: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "run_success",
			Help:        "1 if the run finished with an empty error ledger.",
			ConstLabels: labels,
		}),
	}
	r.registry.MustRegister(r.items, r.failures, r.bytes, r.duration, r.success)
	return r
}

// Observe records one result record.
func (r *Recorder) Observe(rec s3types.ResultRecord) {
	if r == nil {
		return
	}
	switch {
	case rec.Failed():
		r.items.WithLabelValues(OutcomeFailed).Inc()
		r.failures.WithLabelValues(string(errors.CodeOf(rec.Err))).Inc()
	case rec.Mismatched():
		r.items.WithLabelValues(OutcomeMismatch).Inc()
		r.failures.WithLabelValues(string(errors.CodeIntegrity)).Inc()
		r.bytes.Add(float64(rec.Size))
	default:
		r.items.WithLabelValues(OutcomeOK).Inc()
		r.bytes.Add(float64(rec.Size))
	}
}

// Finish records the run duration and verdict.
func (r *Recorder) Finish(d time.Duration, ok bool) {
	if r == nil {
		return
	}
	r.duration.Set(d.Seconds())
	if ok {
		r.success.Set(1)
	} else {
		r.success.Set(0)
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes the current values to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
