package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sosusa_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sosusa_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	// Moderation metrics
	ReportsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sosusa_reports_created_total",
			Help: "Reports filed, by target type",
		},
		[]string{"target_type"},
	)
	ModerationActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sosusa_moderation_actions_total",
			Help: "Admin moderation actions, by action and target type",
		},
		[]string{"action", "target_type"},
	)
	ReportsAffected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sosusa_reports_affected_total",
			Help: "Reports whose status changed through a moderation action",
		},
		[]string{"action"},
	)

	// Social engagement
	PostsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sosusa_posts_created_total",
			Help: "Posts published",
		},
	)
	AccessRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sosusa_access_requests_total",
			Help: "Category access request outcomes",
		},
		[]string{"outcome"},
	)
	MediaUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sosusa_media_uploads_total",
			Help: "Media uploads, by media type and driver",
		},
		[]string{"media_type", "driver"},
	)
)

// RecordModeration counts one moderation action and the reports it touched.
func RecordModeration(action, targetType string, affected int64) {
	ModerationActions.WithLabelValues(action, targetType).Inc()
	if affected > 0 {
		ReportsAffected.WithLabelValues(action).Add(float64(affected))
	}
}
