// Package stream consumes the bridge's long-lived event feed.
//
// Two wire framings exist in the field: plain JSON arrays per read, and
// server-sent events with keep-alive comment lines. The framing is
// chosen per connection from the response content type. Decoded batches
// are dispatched into the resource registry in arrival order on the
// single registry-writer goroutine.
package stream
