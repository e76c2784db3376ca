package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ItinerariesGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "starstrip",
			Name:      "itineraries_generated_total",
			Help:      "Itineraries produced by the day scheduler.",
		},
		[]string{"scheme"},
	)

	FallbackDays = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "starstrip",
			Name:      "fallback_days_total",
			Help:      "Days that used round-robin fallback because the de-dup pool was exhausted.",
		},
		[]string{"kind"}, // attraction | meal
	)

	GuestMerges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "starstrip",
			Name:      "guest_merges_total",
			Help:      "Guest-to-user profile merges.",
		},
		[]string{"result"}, // merged | noop
	)

	PersistDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "starstrip",
			Name:      "persist_jobs_dropped_total",
			Help:      "Snapshot writes dropped because the persistence queue was full.",
		},
	)

	TripsRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "starstrip",
			Name:      "trips_recorded_total",
			Help:      "Trips appended to the carbon ledger.",
		},
	)

	DependencyUp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "starstrip",
			Name:      "dependency_up",
			Help:      "1 while the last health probe of a dependency succeeded.",
		},
		[]string{"dependency"},
	)

	HTTPPanics = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "starstrip",
			Name:      "http_panics_total",
			Help:      "Handler panics recovered by the HTTP middleware.",
		},
		[]string{"method"},
	)
)
