// Package bootstrap drives the startup protocol: probe the bridge
// version, fetch and resync the full resource listing, then hand off
// to the event stream. The whole sequence runs on one goroutine, which
// remains the registry's single writer for the life of the process.
package bootstrap
