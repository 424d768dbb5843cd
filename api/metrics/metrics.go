package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	scanDuration   *prometheus.SummaryVec
	fetchTotal     *prometheus.CounterVec
	lastSuccessTS  *prometheus.GaugeVec
	skippedTotal   *prometheus.CounterVec
	walletsScanned *prometheus.GaugeVec
}

func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.scanDuration = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace: "legend",
		Name:      "scan_duration_seconds",
		Help:      "Time spent scanning one wallet group",
	}, []string{"group"})
	m.fetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "legend",
		Name:      "fetch_requests_total",
		Help:      "Balance fetches by kind and status",
	}, []string{"kind", "status"})
	m.lastSuccessTS = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "legend",
		Name:      "scan_last_success_timestamp_seconds",
		Help:      "Unix timestamp of the last scan without failed addresses",
	}, []string{"group"})
	m.skippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "legend",
		Name:      "scan_skipped_total",
		Help:      "Scheduled scans skipped because another scan was running",
	}, []string{"group"})
	m.walletsScanned = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "legend",
		Name:      "wallets_scanned",
		Help:      "Wallets written by the last scan of a group",
	}, []string{"group"})

	m.registry.MustRegister(
		m.scanDuration, m.fetchTotal, m.lastSuccessTS,
		m.skippedTotal, m.walletsScanned,
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) ObserveFetch(kind string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.fetchTotal.WithLabelValues(kind, status).Inc()
}

func (m *Metrics) ObserveScan(group string, scanned, failed int, took time.Duration) {
	m.scanDuration.WithLabelValues(group).Observe(took.Seconds())
	m.walletsScanned.WithLabelValues(group).Set(float64(scanned))
	if failed == 0 {
		m.lastSuccessTS.WithLabelValues(group).Set(float64(time.Now().Unix()))
	}
}

func (m *Metrics) ScanSkipped(group string) {
	m.skippedTotal.WithLabelValues(group).Inc()
}

// Server exposes the registry on its own listener, away from the report page.
type Server struct {
	server *http.Server
}

func NewServer(addr string, m *Metrics) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &Server{
		server: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

func (s *Server) Serve() error                       { return s.server.ListenAndServe() }
func (s *Server) Shutdown(ctx context.Context) error { return s.server.Shutdown(ctx) }

func (m *Metrics) SkippedCounter(group string) prometheus.Counter {
	return m.skippedTotal.WithLabelValues(group)
}
