// Package otel bridges engine counters to OpenTelemetry observable
// instruments. Counters are read from a snapshot inside a single registered
// callback, so export adds no cost to the engine's hot paths.
package otel
