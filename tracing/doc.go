// Package tracing wraps OpenTelemetry so that gateway code starts and ends
// spans without importing the SDK directly.
package tracing
