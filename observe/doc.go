// Package observe provides observability primitives for token validation.
//
// It wraps OpenTelemetry tracing and metrics and a zap-backed structured
// logger behind small interfaces. Instrumenter runs an operation inside a
// span and records its count, failures and duration. The package performs
// no I/O beyond exporter setup.
package observe
