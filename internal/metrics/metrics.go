package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all PetMap metrics
const namespace = "petmap"

// Registry is the global Prometheus registry for all metrics
var Registry = prometheus.NewRegistry()

// AppInfo is a gauge that exposes application version information as labels
var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Application version information (always set to 1, version info in labels)",
	},
	[]string{"version", "commit", "build_date"},
)

// Overpass metrics

// OverpassRequestsTotal counts requests to the Overpass interpreter by outcome
var OverpassRequestsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "overpass_requests_total",
		Help:      "Total number of Overpass API requests",
	},
	[]string{"outcome"}, // outcome: success|http_error|network_error|parse_error
)

// OverpassLatency tracks Overpass API request latency
var OverpassLatency = promauto.With(Registry).NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "overpass_latency_seconds",
		Help:      "Overpass API request latency in seconds",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
	},
)

// OverpassRecords tracks how many records each successful query returned
var OverpassRecords = promauto.With(Registry).NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "overpass_records",
		Help:      "Number of records returned per Overpass query",
		Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
	},
)

// Search metrics

// SearchesTotal counts completed search cycles by category and render state
var SearchesTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "searches_total",
		Help:      "Total number of search cycles by category and resulting render state",
	},
	[]string{"category", "state"}, // state: empty|populated|error|superseded
)

// GeolocationTotal counts geolocation attempts at session start
var GeolocationTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "geolocation_total",
		Help:      "Total number of geolocation attempts by result",
	},
	[]string{"result"}, // result: success|failure
)

var initOnce sync.Once

// Init registers the runtime collectors and sets version information.
// Safe to call more than once.
func Init(version, commit, buildDate string) {
	initOnce.Do(func() {
		// Register default Go metrics (memory, goroutines, GC, etc.)
		Registry.MustRegister(collectors.NewGoCollector())

		// Register process metrics (CPU, memory, file descriptors)
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})

	AppInfo.WithLabelValues(version, commit, buildDate).Set(1)
}
