// Package metric provides Prometheus metrics for journaled maps.
//
//   - prometheus.go: Registry, which implements jmap.Metrics
//   - collector.go: FileCollector, which reports snapshot and journal sizes
//     on every scrape
//
// The registry is written with WriteToTextfile for the node exporter's
// textfile collector; there is no HTTP endpoint.
package metric
