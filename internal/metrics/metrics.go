package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prometheus metrics for monitoring the auction engine
var (
	BidsAcceptedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bids_accepted_total",
			Help: "Total number of bids accepted and committed",
		},
	)

	BidsRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bids_rejected_total",
			Help: "Total number of bids rejected, by reason",
		},
		[]string{"reason"},
	)

	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auction_events_published_total",
			Help: "Total number of auction events published to the bus, by type",
		},
		[]string{"type"},
	)

	BroadcastsDeliveredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ws_broadcasts_delivered_total",
			Help: "Total number of frames delivered to live websocket connections",
		},
	)

	NotificationsQueuedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_queued_total",
			Help: "Total number of notifications queued for offline or failed delivery",
		},
	)

	NotificationsReplayedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_replayed_total",
			Help: "Total number of queued notifications replayed on reconnect",
		},
	)

	AuctionsResolvedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auctions_resolved_total",
			Help: "Total number of auctions resolved by the completion sweep, by outcome",
		},
		[]string{"outcome"},
	)

	SweepDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "completion_sweep_duration_seconds",
			Help:    "Duration of auction completion sweeps",
			Buckets: prometheus.DefBuckets,
		},
	)

	ConnectedClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_connected_clients",
			Help: "Current number of connected websocket clients",
		},
	)
)

// Register registers all Prometheus metrics
func Register() {
	prometheus.MustRegister(BidsAcceptedTotal)
	prometheus.MustRegister(BidsRejectedTotal)
	prometheus.MustRegister(EventsPublished)
	prometheus.MustRegister(BroadcastsDeliveredTotal)
	prometheus.MustRegister(NotificationsQueuedTotal)
	prometheus.MustRegister(NotificationsReplayedTotal)
	prometheus.MustRegister(AuctionsResolvedTotal)
	prometheus.MustRegister(SweepDuration)
	prometheus.MustRegister(ConnectedClients)
}
