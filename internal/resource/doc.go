// Package resource implements the typed mirror of the bridge's
// resource graph: the registry, the per-kind capability system, and
// command encoding.
//
// The registry owns every mirrored node and is fed from exactly one
// goroutine (bootstrap fetches and stream deltas share a single
// timeline). Property changes fan out synchronously to per-node
// subscribers and then to a registry-wide change sink.
//
// Relationships between resources are weak id references resolved
// through the registry at use time; a stale reference resolves to an
// inert stand-in instead of faulting. Full resyncs use mark and sweep,
// so the mirror converges on the bridge's listing regardless of what
// incremental events were missed in between.
package resource
