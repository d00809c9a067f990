// Package metrics owns the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "blogmodapk"

var (
	once sync.Once

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	postViewsTotal      prometheus.Counter
	postDownloadsTotal  prometheus.Counter
	downloadAuditErrors prometheus.Counter
	commentsSubmitted   *prometheus.CounterVec
	publishedPosts      prometheus.Gauge
	pendingComments     prometheus.Gauge

	jobRunsTotal       *prometheus.CounterVec
	jobDurationSeconds *prometheus.HistogramVec
	jobLastSuccess     *prometheus.GaugeVec
)

func initMetrics() {
	once.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by route and status",
		}, []string{"method", "route", "status"})

		httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"})

		postViewsTotal = promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "posts",
			Name:      "views_total",
			Help:      "Post views recorded",
		})

		postDownloadsTotal = promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "posts",
			Name:      "downloads_total",
			Help:      "Post downloads recorded",
		})

		downloadAuditErrors = promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "posts",
			Name:      "download_audit_failures_total",
			Help:      "Download audit rows that could not be written",
		})

		commentsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "comments",
			Name:      "submissions_total",
			Help:      "Comment submissions by outcome",
		}, []string{"outcome"})

		publishedPosts = promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "posts",
			Name:      "published",
			Help:      "Posts currently published",
		})

		pendingComments = promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "comments",
			Name:      "pending",
			Help:      "Comments waiting for moderation",
		})

		jobRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "background",
			Name:      "job_runs_total",
			Help:      "Total background job executions",
		}, []string{"job", "status"})

		jobDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "background",
			Name:      "job_duration_seconds",
			Help:      "Duration of background job executions",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"})

		jobLastSuccess = promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "background",
			Name:      "job_last_success_timestamp",
			Help:      "Unix timestamp of the last successful background job execution",
		}, []string{"job"})
	})
}

func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	initMetrics()
	if route == "" {
		route = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func PostViewed() {
	initMetrics()
	postViewsTotal.Inc()
}

func PostDownloaded() {
	initMetrics()
	postDownloadsTotal.Inc()
}

func DownloadAuditFailed() {
	initMetrics()
	downloadAuditErrors.Inc()
}

// CommentSubmitted counts a submission; outcome is "accepted", "rejected" or "throttled".
func CommentSubmitted(outcome string) {
	initMetrics()
	commentsSubmitted.WithLabelValues(outcome).Inc()
}

func SetContentGauges(published, pending int64) {
	initMetrics()
	publishedPosts.Set(float64(published))
	pendingComments.Set(float64(pending))
}

// ObserveJob records one background job execution; status is "success",
// "failure" or "canceled".
func ObserveJob(name, status string, elapsed time.Duration) {
	initMetrics()
	jobRunsTotal.WithLabelValues(name, status).Inc()
	jobDurationSeconds.WithLabelValues(name).Observe(elapsed.Seconds())
	if status == "success" {
		jobLastSuccess.WithLabelValues(name).Set(float64(time.Now().Unix()))
	}
}
