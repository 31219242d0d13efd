package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Status label values shared by the fetch and send counters.
const (
	StatusOK             = "ok"
	StatusHTTPError      = "http_error"
	StatusTransportError = "transport_error"
	StatusError          = "error"
)

// Metrics holds the per-run collectors on a private registry. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	reg *prometheus.Registry

	fetchTotal     *prometheus.CounterVec
	fetchedRecords prometheus.Gauge
	sendTotal      *prometheus.CounterVec
	runsTotal      *prometheus.CounterVec
	runDuration    prometheus.Gauge
	lastSuccessTS  prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{reg: prometheus.NewRegistry()}
	m.fetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ms_teams_push",
		Name:      "fetch_requests_total",
		Help:      "GTA data API requests by status",
	}, []string{"status"})
	m.fetchedRecords = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ms_teams_push",
		Name:      "fetched_interventions",
		Help:      "Interventions returned by the last GTA request",
	})
	m.sendTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ms_teams_push",
		Name:      "webhook_requests_total",
		Help:      "Teams webhook posts by status",
	}, []string{"status"})
	m.runsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ms_teams_push",
		Name:      "runs_total",
		Help:      "Completed runs by outcome",
	}, []string{"outcome"})
	m.runDuration = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ms_teams_push",
		Name:      "run_duration_seconds",
		Help:      "Wall time of the last run",
	})
	m.lastSuccessTS = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ms_teams_push",
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix timestamp of the last run that delivered a card",
	})
	m.reg.MustRegister(
		m.fetchTotal, m.fetchedRecords, m.sendTotal,
		m.runsTotal, m.runDuration, m.lastSuccessTS,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

func (m *Metrics) ObserveFetch(status string, records int) {
	if m == nil {
		return
	}
	m.fetchTotal.WithLabelValues(status).Inc()
	m.fetchedRecords.Set(float64(records))
}

func (m *Metrics) ObserveSend(status string) {
	if m == nil {
		return
	}
	m.sendTotal.WithLabelValues(status).Inc()
}

// ObserveRun records the outcome of a finished run. delivered marks the run
// as a success for the last-success timestamp.
func (m *Metrics) ObserveRun(outcome string, d time.Duration, delivered bool) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(outcome).Inc()
	m.runDuration.Set(d.Seconds())
	if delivered {
		m.lastSuccessTS.Set(float64(time.Now().Unix()))
	}
}

// Push sends the registry to a Prometheus Pushgateway under job. client may be
// nil to use http.DefaultClient.
func (m *Metrics) Push(ctx context.Context, url, job string, client *http.Client) error {
	if m == nil || url == "" {
		return nil
	}
	p := push.New(url, job).Gatherer(m.reg)
	if client != nil {
		p = p.Client(client)
	}
	return p.PushContext(ctx)
}
