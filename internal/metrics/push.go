package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"schema-mend/internal/engine"
)

const Job = "schema_mend"

// RunMetrics holds the gauges describing one reconciliation run. A run is a
// batch job, so the values are pushed to a Pushgateway rather than scraped.
type RunMetrics struct {
	registry *prometheus.Registry

	Columns      *prometheus.GaugeVec
	Success      prometheus.Gauge
	Duration     prometheus.Gauge
	LastFinished prometheus.Gauge
}

func NewRunMetrics() *RunMetrics {
	m := &RunMetrics{
		registry: prometheus.NewRegistry(),
		Columns: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "schema_mend_outcomes",
				Help: "Outcomes of the last reconciliation run by status",
			},
			[]string{"status"},
		),
		Success: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "schema_mend_success",
			Help: "1 if the live schema matched the definition after the last run",
		}),
		Duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "schema_mend_duration_seconds",
			Help: "Wall time of the last reconciliation run",
		}),
		LastFinished: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "schema_mend_last_finished_timestamp_seconds",
			Help: "Unix time the last reconciliation run finished",
		}),
	}
	m.registry.MustRegister(m.Columns, m.Success, m.Duration, m.LastFinished)
	return m
}

// Observe copies the report counters into the gauges.
func (m *RunMetrics) Observe(r *engine.Report) {
	s := r.Summary
	for status, n := range map[engine.Status]int{
		engine.StatusAdded:             s.Added,
		engine.StatusAddFailed:         s.Failed,
		engine.StatusAlreadyPresent:    s.AlreadyPresent,
		engine.StatusTableMissing:      s.TablesMissing,
		engine.StatusCatalogUnreadable: s.Unreadable,
		engine.StatusSkipped:           s.Skipped,
		engine.StatusPlanned:           s.Planned,
	} {
		m.Columns.WithLabelValues(string(status)).Set(float64(n))
	}

	if r.Success {
		m.Success.Set(1)
	} else {
		m.Success.Set(0)
	}
	if !r.FinishedAt.IsZero() {
		m.Duration.Set(r.FinishedAt.Sub(r.StartedAt).Seconds())
		m.LastFinished.Set(float64(r.FinishedAt.Unix()))
	}
}

// Push sends the gauges to the Pushgateway at url, grouped by dialect and
// catalog so runs against different databases do not overwrite each other.
func (m *RunMetrics) Push(ctx context.Context, url string, r *engine.Report) error {
	pusher := push.New(url, Job).
		Gatherer(m.registry).
		Grouping("dialect", r.Dialect)
	if r.Catalog != "" {
		pusher = pusher.Grouping("catalog", r.Catalog)
	}
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", url, err)
	}
	return nil
}
