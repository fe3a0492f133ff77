// Package prometheus exposes sceneauth Engine metrics through client_golang.
//
// [Collector] implements prometheus.Collector over [sceneauth.Engine.MetricsSnapshot].
// [Exporter] wraps it in a private registry and serves it with promhttp. Counter
// names are prefixed sceneauth_*_total; the single histogram is
// sceneauth_verify_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in the global default registry; callers mount the Handler
//     or register the Collector themselves.
//   - Mutate engine state.
package prometheus
