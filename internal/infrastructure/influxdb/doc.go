// Package influxdb provides time-series telemetry for mirrored
// resources.
//
// Numeric property changes (brightness, temperature, light level,
// battery) and boolean transitions (on/off, motion, contact) are
// written as points through the non-blocking batched write API. A
// telemetry outage never stalls the mirror: writes are dropped when
// disconnected and errors surface through an async callback.
//
// The integration is optional; when disabled in configuration, Connect
// returns ErrDisabled and the caller runs without telemetry.
package influxdb
