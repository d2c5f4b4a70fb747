// Package prometheus renders engine counters in Prometheus text exposition
// format without importing the Prometheus client library.
package prometheus
