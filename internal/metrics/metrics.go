package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SnapshotsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crossparty_snapshots_published_total",
		Help: "Playback state snapshots pushed to the shared room state.",
	})
	SnapshotsSuppressed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crossparty_snapshots_suppressed_total",
		Help: "Snapshots dropped because they carried the local writer id.",
	})
	SnapshotsStale = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crossparty_snapshots_stale_total",
		Help: "Snapshots dropped because their revision was not newer than the last applied one.",
	})
	Reseeks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crossparty_reseeks_total",
		Help: "Hard seeks issued by drift correction.",
	})
	QueueDrains = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crossparty_queue_drains_total",
		Help: "Queue entries drained by hosts on track completion.",
	})
)
