// Package audit contains durable audit writes for crown operations.
//
// Rejected commands are recorded here so operators can see who tried what
// and why it was refused. For distributed tracing, see package
// internal/platform/otel.
package audit
