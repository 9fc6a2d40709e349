package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultOK     = "ok"
	ResultFailed = "failed"

	// ResultRejected marks client-side refusals such as a non-image upload.
	ResultRejected = "rejected"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "supportdesk_http_requests_total",
		Help: "HTTP requests by method, route and status",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "supportdesk_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	registrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "supportdesk_registrations_total",
		Help: "Registration attempts by result",
	}, []string{"result"})

	verificationEmailsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "supportdesk_verification_emails_total",
		Help: "Verification email deliveries by result",
	}, []string{"result"})

	profileUploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "supportdesk_profile_uploads_total",
		Help: "Profile photo uploads by result",
	}, []string{"result"})
)

// RequestMetricsMiddleware records request counts and latency per route.
// Unmatched routes are grouped under "unmatched".
func RequestMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

func RecordRegistration(result string) {
	registrationsTotal.WithLabelValues(result).Inc()
}

func RecordVerificationEmail(err error) {
	if err != nil {
		verificationEmailsTotal.WithLabelValues(ResultFailed).Inc()
		return
	}
	verificationEmailsTotal.WithLabelValues(ResultOK).Inc()
}

func RecordProfileUpload(result string) {
	profileUploadsTotal.WithLabelValues(result).Inc()
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
