// Package metrics records compilation metrics for the stylesheet task.
//
// Components receive a Recorder by injection and default to NoopRecorder,
// so the build pipeline never checks for nil. When metrics.addr is set the
// CLI swaps in a PrometheusRecorder and serves HTTPHandler on /metrics.
package metrics
