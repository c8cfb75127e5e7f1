package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	resolveTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rosterd",
			Name:      "schedule_resolve_total",
			Help:      "Count of day-schedule resolutions by winning layer.",
		},
		[]string{"source"},
	)

	bookabilityChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rosterd",
			Name:      "bookability_checks_total",
			Help:      "Count of slot bookability verdicts by reason.",
		},
		[]string{"reason"},
	)

	conflictsFound = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rosterd",
			Name:      "conflicts_found_total",
			Help:      "Count of conflict reasons reported during edits.",
		},
	)

	templateSaves = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rosterd",
			Name:      "template_saves_total",
			Help:      "Count of weekly template save attempts by outcome.",
		},
		[]string{"status"},
	)

	eventsMaterialized = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rosterd",
			Name:      "events_materialized_total",
			Help:      "Count of holiday/break blocks materialized from templates.",
		},
	)

	cacheOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rosterd",
			Name:      "schedule_cache_ops_total",
			Help:      "Count of day-schedule cache operations by result.",
		},
		[]string{"op"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			resolveTotal,
			bookabilityChecks,
			conflictsFound,
			templateSaves,
			eventsMaterialized,
			cacheOps,
		)
	})
}

func IncResolve(source string) {
	resolveTotal.WithLabelValues(source).Inc()
}

func IncBookabilityCheck(reason string) {
	if reason == "" {
		reason = "ok"
	}
	bookabilityChecks.WithLabelValues(reason).Inc()
}

func IncConflictsFound(n int) {
	conflictsFound.Add(float64(n))
}

func IncTemplateSave(status string) {
	templateSaves.WithLabelValues(status).Inc()
}

func IncEventsMaterialized(n int) {
	eventsMaterialized.Add(float64(n))
}

func IncCacheOp(op string) {
	cacheOps.WithLabelValues(op).Inc()
}
