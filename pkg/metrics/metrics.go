package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// outcome: success, validation_failed, upload_failed, persistence_failed, refresh_failed
	SignupSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alumni_signup_submissions_total",
			Help: "Signup submissions by final outcome",
		},
		[]string{"outcome"},
	)

	PictureUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alumni_picture_uploads_total",
			Help: "Profile picture uploads to the object store",
		},
		[]string{"result"},
	)

	DirectorySize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "alumni_directory_size",
			Help: "Number of profiles in the last fetched directory",
		},
	)

	PracticeListRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "practice_list_requests_total",
			Help: "Requests to the recommendation service",
		},
		[]string{"result"},
	)

	PracticeListDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "practice_list_request_duration_seconds",
			Help:    "Latency of recommendation service calls",
			Buckets: prometheus.DefBuckets,
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "workflow_sessions_active",
			Help: "Sessions currently held in memory",
		},
	)
)
