package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DownloadsTotal counts finished download requests by kind and result code.
	DownloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytgrab_downloads_total",
		Help: "Total download requests by kind and result",
	}, []string{"kind", "result"})

	// CacheProbes counts output presence checks.
	CacheProbes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytgrab_cache_probes_total",
		Help: "Total output cache probes",
	}, []string{"result"})

	// JobsInFlight tracks transcode jobs currently running.
	JobsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ytgrab_jobs_in_flight",
		Help: "Transcode jobs currently running",
	})

	// JobsJoined counts requests that attached to an identical running job.
	JobsJoined = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ytgrab_jobs_joined_total",
		Help: "Requests served by an identical in-flight job",
	})

	// JobDuration tracks wall time of transcode jobs.
	JobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ytgrab_job_duration_seconds",
		Help:    "Duration of transcode jobs",
		Buckets: prometheus.ExponentialBuckets(0.5, 2.0, 12), // 0.5s to ~17m
	}, []string{"kind", "result"})

	// LateSignals counts signals that arrived after a job's outcome was committed.
	LateSignals = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytgrab_late_signals_total",
		Help: "Signals discarded because the outcome was already committed",
	}, []string{"origin"})

	// TranscoderExits counts transcoder process exits.
	TranscoderExits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ytgrab_ffmpeg_exit_total",
		Help: "Total number of ffmpeg process exits",
	}, []string{"reason"})
)
