package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const service = "edu-news"

var (
	// HTTP request metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code", "service"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "service"},
	)

	// Ingestion
	CrawlRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_crawl_runs_total",
			Help: "Total number of aggregation runs",
		},
		[]string{"status"},
	)

	CrawlRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "news_crawl_run_duration_seconds",
			Help:    "Aggregation run duration in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
		},
	)

	SourceFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_source_fetches_total",
			Help: "Total number of feed fetches",
		},
		[]string{"country", "source", "status"},
	)

	ArticlesCollected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_articles_collected_total",
			Help: "Articles collected after dedup",
		},
		[]string{"country"},
	)

	ArticlesInserted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "news_articles_inserted_total",
			Help: "Articles newly written to the store",
		},
	)

	// Generation
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feynman_generations_total",
			Help: "Generation attempts per provider",
		},
		[]string{"provider", "status"},
	)

	QueueJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feynman_queue_jobs_total",
			Help: "Transformation jobs taken from the queue",
		},
		[]string{"status"},
	)

	NatsMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nats_messages_published_total",
			Help: "Total number of NATS messages published",
		},
		[]string{"subject", "status"},
	)
)

// Status maps an error to a metric label.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// GinMiddleware records request count and latency by route template.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		HttpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), service).Inc()
		HttpRequestDuration.WithLabelValues(c.Request.Method, path, service).Observe(time.Since(start).Seconds())
	}
}
