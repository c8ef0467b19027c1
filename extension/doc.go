// Package extension provides the run-time registry of action services. The
// dispatcher routes every known action kind to the single service that
// declares it.
package extension
