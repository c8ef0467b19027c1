// Package approval implements the human-in-the-loop gate. A pipeline that
// needs consent registers a Request and suspends until a surface (console,
// HTTP admin API, auto decider) records exactly one Decision for it.
package approval
