package kit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	labelService = "service"
	labelMethod  = "method"
	labelPath    = "path"
	labelStatus  = "status"
	labelCommand = "command"
	labelResult  = "result"
	labelOutcome = "outcome"
	labelSink    = "sink"

	defaultStatusCode = http.StatusOK
)

type Metrics struct {
	SessionsActive prometheus.Gauge
	Commands       *prometheus.CounterVec
	Checkouts      *prometheus.CounterVec
	Payments       *prometheus.CounterVec
	PaymentSeconds prometheus.Histogram
	Flushes        *prometheus.CounterVec

	Requests *prometheus.CounterVec
	Latency  *prometheus.HistogramVec
}

func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "store_sessions_active",
			Help: "Currently connected client sessions",
		}),
		Commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "store_commands_total",
				Help: "Protocol commands processed",
			},
			[]string{labelCommand, labelResult},
		),
		Checkouts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "store_checkouts_total",
				Help: "Checkout attempts by phase-1 result",
			},
			[]string{labelResult},
		),
		Payments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "store_payments_total",
				Help: "Payment attempts by outcome",
			},
			[]string{labelOutcome},
		),
		PaymentSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "store_payment_duration_seconds",
			Help: "Payment attempt latency",
		}),
		Flushes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "store_catalog_flushes_total",
				Help: "Catalog persistence flushes",
			},
			[]string{labelSink, labelResult},
		),
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{labelService, labelMethod, labelPath, labelStatus},
		),
		Latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "http_request_duration_seconds",
				Help: "HTTP latency",
			},
			[]string{labelService, labelMethod, labelPath},
		),
	}

	reg.MustRegister(
		m.SessionsActive,
		m.Commands,
		m.Checkouts,
		m.Payments,
		m.PaymentSeconds,
		m.Flushes,
		m.Requests,
		m.Latency,
	)
	return m
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (m *Metrics) Middleware(service string, pathLabel func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &statusWriter{
				ResponseWriter: w,
				status:         defaultStatusCode,
			}

			start := time.Now()
			next.ServeHTTP(sw, r)

			path := pathLabel(r)
			m.Latency.WithLabelValues(service, r.Method, path).
				Observe(time.Since(start).Seconds())

			m.Requests.WithLabelValues(service, r.Method, path, strconv.Itoa(sw.status)).
				Inc()
		})
	}
}
