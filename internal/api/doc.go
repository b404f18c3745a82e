// Package api provides the HTTP REST API and WebSocket server for
// Huelink Core.
//
// It exposes the mirrored resource graph upward: lookup by id and
// kind, command dispatch, change history, and a WebSocket feed of
// property changes. The mirror itself is read-only from here; commands
// travel the same fire-and-forget path as every other command source.
//
// The server follows the same lifecycle pattern as other components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api
