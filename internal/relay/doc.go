// Package relay mirrors resource state onto MQTT and accepts commands
// back over it.
//
// State topics are retained, one per (kind, id), carrying the last
// published value of each property change. Command topics accept small
// JSON messages that map onto the registry's command encoders. The
// relay is strictly best-effort: broker outages drop messages and are
// logged, the mirror itself is unaffected.
package relay
