// Package metrics provides Prometheus metrics for the funding scanner.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fundingscanner"

// Article outcomes.
const (
	OutcomeStale    = "stale"
	OutcomeSeen     = "seen"
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
)

var (
	// RunsTotal counts pipeline runs by status.
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of pipeline runs",
		},
		[]string{"status"},
	)

	// RunDuration measures full pipeline runs.
	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of pipeline runs in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	// ArticlesTotal counts processed articles by outcome.
	ArticlesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_total",
			Help:      "Total number of articles by processing outcome",
		},
		[]string{"outcome"},
	)

	// DuplicateAnnouncementsTotal counts announcements rejected by the store as duplicates.
	DuplicateAnnouncementsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_announcements_total",
			Help:      "Total number of duplicate announcements skipped",
		},
	)

	// SourceFailuresTotal counts failed feed fetches.
	SourceFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_failures_total",
			Help:      "Total number of failed feed fetches",
		},
		[]string{"source"},
	)

	// DigestsTotal counts digest deliveries by status.
	DigestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "digests_total",
			Help:      "Total number of digests by delivery status",
		},
		[]string{"status"},
	)

	// PurgedTotal counts seen rows removed by retention.
	PurgedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "purged_seen_articles_total",
			Help:      "Total number of seen-article rows removed by retention",
		},
	)

	// LastSuccess is the unix time of the last successful run.
	LastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix timestamp of the last successful run",
		},
	)
)

// RecordRun records one finished run.
func RecordRun(err error, seconds float64, finishedUnix float64) {
	RunDuration.Observe(seconds)
	if err != nil {
		RunsTotal.WithLabelValues("failure").Inc()
		return
	}
	RunsTotal.WithLabelValues("success").Inc()
	LastSuccess.Set(finishedUnix)
}

// RecordArticle records the outcome for one article.
func RecordArticle(outcome string) {
	ArticlesTotal.WithLabelValues(outcome).Inc()
}

// RecordDuplicate records a duplicate announcement skip.
func RecordDuplicate() {
	DuplicateAnnouncementsTotal.Inc()
}

// RecordSourceFailure records a failed feed.
func RecordSourceFailure(source string) {
	SourceFailuresTotal.WithLabelValues(source).Inc()
}

// RecordDigest records a digest delivery attempt: sent, failed or skipped.
func RecordDigest(status string) {
	DigestsTotal.WithLabelValues(status).Inc()
}

// RecordPurge adds purged rows.
func RecordPurge(n int64) {
	PurgedTotal.Add(float64(n))
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
