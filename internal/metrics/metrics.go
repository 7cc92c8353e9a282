package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photogrid_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photogrid_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photogrid_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Load pipeline metrics
var (
	PipelineLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photogrid_pipeline_loads_total",
			Help: "Total number of completed load requests",
		},
		[]string{"kind", "outcome"}, // outcome: "worker", "store", "fetch", "native", "failed"
	)

	PipelineLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photogrid_pipeline_load_duration_seconds",
			Help:    "End-to-end load duration per request in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		},
		[]string{"kind"},
	)

	PipelineInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photogrid_pipeline_loads_in_flight",
			Help: "Number of load requests currently pending",
		},
	)

	PipelineDedupedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photogrid_pipeline_deduped_total",
			Help: "Total number of requests attached to an already in-flight load",
		},
	)

	PipelineTimeoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photogrid_pipeline_timeouts_total",
			Help: "Total number of worker requests that timed out",
		},
	)

	PipelineLateRepliesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photogrid_pipeline_late_replies_total",
			Help: "Total number of worker replies discarded after timeout",
		},
	)
)

// Decode worker metrics
var (
	DecodeWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photogrid_decode_workers",
			Help: "Number of decode workers in the pool",
		},
	)

	DecodeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photogrid_decode_requests_total",
			Help: "Total number of decode requests processed by the worker pool",
		},
		[]string{"status"},
	)

	DecodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photogrid_decode_duration_seconds",
			Help:    "Decode duration per request in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method"}, // "vips", "imaging", "ffmpeg"
	)
)

// Persistent cache store metrics
var (
	StoreOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photogrid_store_operations_total",
			Help: "Total number of cache store operations",
		},
		[]string{"operation", "status"},
	)

	StoreOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photogrid_store_operation_duration_seconds",
			Help:    "Cache store operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation"},
	)

	StoreBlobBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photogrid_store_blob_bytes_written_total",
			Help: "Total bytes written to the cache store",
		},
	)

	StoreHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photogrid_store_hits_total",
			Help: "Total number of cache store lookups that found a blob",
		},
	)

	StoreMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photogrid_store_misses_total",
			Help: "Total number of cache store lookups that found nothing",
		},
	)
)

// Layout and render metrics
var (
	LayoutComputeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "photogrid_layout_compute_duration_seconds",
			Help:    "Layout computation duration in seconds",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025},
		},
		[]string{"mode"},
	)

	LayoutVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photogrid_layout_version",
			Help: "Current layout version counter",
		},
	)

	RenderFrameDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "photogrid_render_frame_duration_seconds",
			Help:    "Frame step duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.016, 0.033, 0.066, 0.1},
		},
	)

	RenderVisibleItems = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "photogrid_render_visible_items",
			Help:    "Number of items drawn per frame",
			Buckets: []float64{0, 5, 10, 25, 50, 100, 250, 500},
		},
	)
)

// Source metrics
var (
	SourceScansTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photogrid_source_scans_total",
			Help: "Total number of collection scans",
		},
	)

	SourceItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photogrid_source_items",
			Help: "Number of media items found by the last scan",
		},
	)

	SourceScanDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photogrid_source_scan_duration_seconds",
			Help: "Duration of the last collection scan in seconds",
		},
	)

	SourceWatcherEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "photogrid_source_watcher_events_total",
			Help: "Total number of filesystem watcher events",
		},
		[]string{"event_type"},
	)
)

// Memory management metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photogrid_memory_usage_ratio",
			Help: "Current heap usage as a fraction of the configured limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "photogrid_memory_paused",
			Help: "Whether decode work is paused for memory pressure (1 = paused)",
		},
	)

	MemoryGCPausesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "photogrid_memory_gc_pauses_total",
			Help: "Total number of forced garbage collections under memory pressure",
		},
	)
)

// Application info
var AppInfo = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "photogrid_app_info",
		Help: "Application build information",
	},
	[]string{"version", "commit", "go_version"},
)

// SetAppInfo sets the application info metric.
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
