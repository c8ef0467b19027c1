// Package idgen produces opaque identifiers for approval requests and
// dispatched messages. Tests replace NewFunc to get deterministic ids.
package idgen
