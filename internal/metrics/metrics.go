package metrics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/mkoziy/hdxinfo/internal/models"
)

// JobName groups pushed metrics on the Pushgateway.
const JobName = "datasets_info"

// Metrics holds the run metrics. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	APIRequestsTotal   *prometheus.CounterVec
	DatasetsTotal      prometheus.Counter
	ScriptUpdatedTotal prometheus.Counter
	RowsWrittenTotal   *prometheus.CounterVec
	RunDuration        prometheus.Gauge
	LastSuccess        prometheus.Gauge
}

// New creates and registers all metrics on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		APIRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "datasets_info_api_requests_total",
				Help: "Total number of upstream API requests",
			},
			[]string{"source", "status"},
		),
		DatasetsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "datasets_info_datasets_total",
			Help: "Datasets examined",
		}),
		ScriptUpdatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "datasets_info_script_updated_datasets_total",
			Help: "Datasets excluded from monthly aggregation because a script updated them",
		}),
		RowsWrittenTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "datasets_info_rows_written_total",
				Help: "CSV data rows written",
			},
			[]string{"file"},
		),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "datasets_info_run_duration_seconds",
			Help: "Duration of the last run",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "datasets_info_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run",
		}),
	}

	m.registry.MustRegister(
		m.APIRequestsTotal,
		m.DatasetsTotal,
		m.ScriptUpdatedTotal,
		m.RowsWrittenTotal,
		m.RunDuration,
		m.LastSuccess,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveRequest counts an upstream request. status 0 means transport error.
func (m *Metrics) ObserveRequest(source models.DataSource, status int) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.APIRequestsTotal.WithLabelValues(string(source), label).Inc()
}

// ObserveDataset counts a dataset and whether it was script updated.
func (m *Metrics) ObserveDataset(scriptUpdated bool) {
	if m == nil {
		return
	}
	m.DatasetsTotal.Inc()
	if scriptUpdated {
		m.ScriptUpdatedTotal.Inc()
	}
}

// ObserveRows counts data rows written to file.
func (m *Metrics) ObserveRows(file string, n int) {
	if m == nil {
		return
	}
	m.RowsWrittenTotal.WithLabelValues(file).Add(float64(n))
}

// ObserveRun records the run duration and, on success, its end time.
func (m *Metrics) ObserveRun(start, end time.Time, err error) {
	if m == nil {
		return
	}
	m.RunDuration.Set(end.Sub(start).Seconds())
	if err == nil {
		m.LastSuccess.Set(float64(end.Unix()))
	}
}

// Push sends the registry to a Pushgateway at url.
func (m *Metrics) Push(ctx context.Context, url string) error {
	if m == nil || url == "" {
		return nil
	}
	if err := push.New(url, JobName).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
