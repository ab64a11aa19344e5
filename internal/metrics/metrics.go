package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Счетчики движка синхронизации для операционных дашбордов.
var (
	ChangesRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crmsync",
		Name:      "changes_recorded_total",
		Help:      "Accepted change records appended to the change log",
	}, []string{"operation"})

	ConflictsDetected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "crmsync",
		Name:      "conflicts_detected_total",
		Help:      "Sync conflicts detected during push",
	})

	ConflictsResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crmsync",
		Name:      "conflicts_resolved_total",
		Help:      "Sync conflicts resolved, by strategy",
	}, []string{"resolution"})

	PushSessions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crmsync",
		Name:      "push_sessions_total",
		Help:      "Completed push sessions, by status",
	}, []string{"status"})

	PullSessions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "crmsync",
		Name:      "pull_sessions_total",
		Help:      "Completed pull sessions",
	})

	PushErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "crmsync",
		Name:      "push_errors_total",
		Help:      "Per-item validation errors captured during push",
	})
)

// Handler возвращает HTTP handler для эндпоинта /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
