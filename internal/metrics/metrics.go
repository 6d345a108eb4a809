package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pharmgate_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status_code"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pharmgate_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status_code"},
	)
)

var (
	CheckoutAttemptsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pharmgate_checkout_attempts_total",
			Help: "Total number of POS checkout attempts",
		},
	)

	CheckoutSuccessTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pharmgate_checkout_success_total",
			Help: "Total number of successful POS checkouts",
		},
	)

	CheckoutFailureTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pharmgate_checkout_failure_total",
			Help: "Total number of failed POS checkouts",
		},
		[]string{"reason"},
	)

	SaleLinesCommittedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pharmgate_sale_lines_committed_total",
			Help: "Total number of sale lines durably recorded",
		},
	)
)

// Checkout satisfies pos.Observer by feeding the checkout counters.
type Checkout struct{}

func (Checkout) CheckoutAttempted() {
	CheckoutAttemptsTotal.Inc()
}

func (Checkout) CheckoutSucceeded(lines int) {
	CheckoutSuccessTotal.Inc()
	SaleLinesCommittedTotal.Add(float64(lines))
}

func (Checkout) CheckoutFailed(reason string, committedLines int) {
	CheckoutFailureTotal.WithLabelValues(reason).Inc()
	if committedLines > 0 {
		SaleLinesCommittedTotal.Add(float64(committedLines))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records duration and count per chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		code := strconv.Itoa(rec.status)
		HTTPRequestDuration.WithLabelValues(route, r.Method, code).Observe(time.Since(start).Seconds())
		HTTPRequestsTotal.WithLabelValues(route, r.Method, code).Inc()
	})
}
