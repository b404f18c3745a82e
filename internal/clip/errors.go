package clip

import "errors"

// Sentinel errors for bridge communication.
// Callers should use errors.Is for comparison.
var (
	// ErrUnexpectedStatus indicates a non-2xx HTTP response.
	ErrUnexpectedStatus = errors.New("unexpected response status")

	// ErrBridgeError indicates the bridge returned errors inside a
	// response envelope.
	ErrBridgeError = errors.New("bridge reported error")
)
