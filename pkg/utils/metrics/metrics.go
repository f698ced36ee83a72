package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ticketcal"

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests processed.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Histogram of latencies for HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	tasksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_total",
		Help:      "Background tasks processed, by type and outcome.",
	}, []string{"type", "outcome"})

	taskDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "task_duration_seconds",
		Help:      "Histogram of background task latencies.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"type"})

	eventsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "calendar_events_written_total",
		Help:      "Calendar events written from tickets, by operation.",
	}, []string{"operation"})

	ticketsUpdated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tickets_updated_total",
		Help:      "Tickets updated from calendar changes.",
	})

	channelsRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "channels_registered_total",
		Help:      "Push-notification channels registered.",
	})

	fullSyncs = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "full_syncs_total",
		Help:      "Full calendar syncs started after a sync token was invalidated.",
	})
)

// Task outcomes
const (
	OutcomeDone    = "done"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
	OutcomeRetry   = "retry"
)

// Middleware records request count and latency per chi route pattern
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := routePattern(r)
			httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()
			httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

// Handler exposes the Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveTask records one task execution
func ObserveTask(taskType, outcome string, start time.Time) {
	tasksTotal.WithLabelValues(taskType, outcome).Inc()
	taskDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
}

// EventWritten counts an insert, patch or delete of a calendar event
func EventWritten(operation string) {
	eventsWritten.WithLabelValues(operation).Inc()
}

// TicketsUpdated counts tickets written back from calendar changes
func TicketsUpdated(n int) {
	ticketsUpdated.Add(float64(n))
}

// ChannelRegistered counts a successful watch call
func ChannelRegistered() {
	channelsRegistered.Inc()
}

// FullSyncStarted counts a sync restarted from scratch
func FullSyncStarted() {
	fullSyncs.Inc()
}

func routePattern(r *http.Request) string {
	// The pattern is only complete after routing, so this runs after next.ServeHTTP
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := strings.TrimSpace(rctx.RoutePattern()); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
