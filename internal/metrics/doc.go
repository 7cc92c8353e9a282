// Package metrics defines the Prometheus instrumentation for the photogrid
// engine.
//
// All metrics are registered at package load time via promauto and grouped by
// subsystem: HTTP surface, load pipeline, decode worker pool, persistent cache
// store, layout/render, and the item source. Metric names share the
// "photogrid_" prefix.
//
// The package holds no state beyond the registered collectors; callers record
// observations directly on the exported vars, e.g.
//
//	metrics.PipelineLoadsTotal.WithLabelValues("image", "worker").Inc()
//	metrics.StoreOpDuration.WithLabelValues("get").Observe(time.Since(start).Seconds())
//
// Expose the registry with promhttp.Handler() on the metrics endpoint.
package metrics
