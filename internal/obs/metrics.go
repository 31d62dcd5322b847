package obs

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts outbound API traffic of the console.
type Metrics struct {
	Requests   *prometheus.CounterVec
	Retries    prometheus.Counter
	Exhausted  prometheus.Counter
	Teardowns  prometheus.Counter
	ReportJobs *prometheus.CounterVec
}

// NewMetrics builds the collectors and registers them on reg when reg is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "losadmin_api_requests_total",
				Help: "Outbound API requests by method and status code.",
			},
			[]string{"method", "status"},
		),
		Retries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "losadmin_api_retries_total",
			Help: "Failed attempts that were retried after a backoff delay.",
		}),
		Exhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "losadmin_api_retries_exhausted_total",
			Help: "Operations that failed on every attempt.",
		}),
		Teardowns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "losadmin_session_teardowns_total",
			Help: "Sessions cleared because the API answered 401.",
		}),
		ReportJobs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "losadmin_report_jobs_total",
				Help: "Report jobs by lifecycle transition.",
			},
			[]string{"status"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Requests, m.Retries, m.Exhausted, m.Teardowns, m.ReportJobs)
	}
	return m
}

// ObserveRequest records one completed HTTP exchange; code 0 means a transport error.
func (m *Metrics) ObserveRequest(method string, code int) {
	if m == nil {
		return
	}
	status := "error"
	if code > 0 {
		status = strconv.Itoa(code)
	}
	m.Requests.WithLabelValues(method, status).Inc()
}

func (m *Metrics) ObserveRetry() {
	if m == nil {
		return
	}
	m.Retries.Inc()
}

func (m *Metrics) ObserveExhausted() {
	if m == nil {
		return
	}
	m.Exhausted.Inc()
}

func (m *Metrics) ObserveTeardown() {
	if m == nil {
		return
	}
	m.Teardowns.Inc()
}

func (m *Metrics) ObserveReport(status string) {
	if m == nil {
		return
	}
	m.ReportJobs.WithLabelValues(status).Inc()
}
