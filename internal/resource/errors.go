package resource

import "errors"

// Sentinel errors for resource operations.
// Callers should use errors.Is for comparison.
var (
	// ErrNotFound indicates the requested resource id is not in the registry.
	ErrNotFound = errors.New("resource not found")

	// ErrUnknownKind indicates a resource kind with no capability table.
	ErrUnknownKind = errors.New("unknown resource kind")

	// ErrUnknownProperty indicates a subscription key not declared by the
	// resource's capability table or any of its services.
	ErrUnknownProperty = errors.New("unknown property key")

	// ErrUnknownCommand indicates a command neither the resource nor any
	// of its services implements.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrUnknownColor indicates a color name with no palette entry.
	ErrUnknownColor = errors.New("unknown color name")

	// ErrMissingID indicates a resource payload without an id field.
	ErrMissingID = errors.New("resource payload missing id")
)
