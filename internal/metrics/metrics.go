package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors on a private registry.
// It satisfies app.Observer.
type Metrics struct {
	registry *prometheus.Registry

	RequestCounter   *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	SessionsStarted  prometheus.Counter
	QuizzesCompleted prometheus.Counter
	QuizScore        prometheus.Histogram
	QuestionTimeouts prometheus.Counter
	StatsSaveErrors  prometheus.Counter
	ActiveSessions   prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		SessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "quiz_sessions_started_total",
			Help: "Quiz sessions opened",
		}),
		QuizzesCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "quiz_completed_total",
			Help: "Quizzes that reached the result screen",
		}),
		QuizScore: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "quiz_score",
			Help:    "Distribution of completed quiz scores",
			Buckets: prometheus.LinearBuckets(0, 20, 6),
		}),
		QuestionTimeouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "quiz_question_timeouts_total",
			Help: "Questions skipped because the countdown ran out",
		}),
		StatsSaveErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "quiz_stats_save_failures_total",
			Help: "Completed quizzes whose result could not be saved",
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "quiz_active_sessions",
			Help: "Quiz sessions currently open",
		}),
	}
}

func (m *Metrics) SessionOpened() {
	m.SessionsStarted.Inc()
	m.ActiveSessions.Inc()
}

func (m *Metrics) SessionClosed() { m.ActiveSessions.Dec() }

func (m *Metrics) QuizCompleted(score int) {
	m.QuizzesCompleted.Inc()
	m.QuizScore.Observe(float64(score))
}

func (m *Metrics) QuestionTimedOut() { m.QuestionTimeouts.Inc() }

func (m *Metrics) StatsSaveFailed() { m.StatsSaveErrors.Inc() }

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware counts and times requests. path should be the route pattern, not the raw URL.
func (m *Metrics) Middleware(path string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		m.RequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		m.RequestCounter.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
	})
}
