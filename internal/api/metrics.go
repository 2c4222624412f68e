package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"icu-workouts/internal/service"
)

var (
	workoutsGenerated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "icu_workouts",
		Subsystem: "generator",
		Name:      "workouts_generated_total",
		Help:      "Number of workouts generated, by sport.",
	}, []string{"sport"})

	estimatedTSS = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "icu_workouts",
		Subsystem: "generator",
		Name:      "estimated_tss",
		Help:      "Estimated training stress score of generated workouts.",
		Buckets:   []float64{10, 25, 50, 75, 100, 150, 200, 300},
	})

	intervalsRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "icu_workouts",
		Subsystem: "intervals",
		Name:      "requests_total",
		Help:      "Requests made to intervals.icu, by operation and status code.",
	}, []string{"op", "code"})

	intervalsLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "icu_workouts",
		Subsystem: "intervals",
		Name:      "request_duration_seconds",
		Help:      "Latency of intervals.icu requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "icu_workouts",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP API requests, by route, method and status code.",
	}, []string{"route", "method", "code"})
)

func init() {
	prometheus.MustRegister(workoutsGenerated, estimatedTSS, intervalsRequests, intervalsLatency, httpRequests)
}

// ObserveIntervalsRequest records one intervals.icu call. Status 0 means the
// request failed before a response arrived.
func ObserveIntervalsRequest(op string, status int, elapsed time.Duration) {
	intervalsRequests.WithLabelValues(op, strconv.Itoa(status)).Inc()
	intervalsLatency.WithLabelValues(op).Observe(elapsed.Seconds())
}

func recordGenerated(w *service.Workout) {
	workoutsGenerated.WithLabelValues(string(w.Sport)).Inc()
	if w.EstimatedTSS != nil {
		estimatedTSS.Observe(float64(*w.EstimatedTSS))
	}
}

// instrument counts requests per route pattern
func instrument(route string, next http.Handler) http.Handler {
	return promhttp.InstrumentHandlerCounter(
		httpRequests.MustCurryWith(prometheus.Labels{"route": route}),
		next,
	)
}
