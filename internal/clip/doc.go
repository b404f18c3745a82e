// Package clip is the HTTP transport to the lighting bridge's CLIP v2
// API: the version probe, the full resource listing, the long-lived
// event stream, and fire-and-forget command dispatch.
//
// It decodes payloads but interprets nothing; the resource and stream
// packages own the semantics.
package clip
