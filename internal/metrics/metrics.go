package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	NDBCAPICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buoycams_ndbc_api_calls_total",
			Help: "Total NDBC fetches by station, endpoint and outcome",
		},
		[]string{"station", "endpoint", "status"},
	)

	SnapshotsCollected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buoycams_snapshots_collected_total",
			Help: "Total buoycam snapshots stored",
		},
		[]string{"station"},
	)

	DuplicateImages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buoycams_duplicate_images_total",
			Help: "Total downloads skipped because the image was unchanged",
		},
		[]string{"station"},
	)

	RecognitionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buoycams_recognition_failures_total",
			Help: "Total images where the banner timestamp could not be read",
		},
		[]string{"station"},
	)

	MeteoRecordsStored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buoycams_meteo_records_stored_total",
			Help: "Total meteorological records parsed and stored",
		},
		[]string{"station", "source"},
	)

	FeedRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buoycams_feed_refreshes_total",
			Help: "Total feed refresh attempts by outcome",
		},
		[]string{"status"},
	)
)
