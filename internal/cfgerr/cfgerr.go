// Package cfgerr defines the error taxonomy shared by the configuration
// adapters and the public layercfg API. Keeping the types in a leaf package
// lets both the adapters and the root package reference them without cycles.
package cfgerr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks a missing-but-optional resource (a config file or
	// directory that simply is not there). Callers treat it as non-fatal.
	ErrNotFound = errors.New("configuration resource not found")

	// ErrInvalidFormat marks content that exists but cannot be parsed into
	// structured data (bad TOML/JSON/YAML, malformed dotenv lines).
	ErrInvalidFormat = errors.New("invalid configuration format")
)

// CollisionError reports a structural conflict while assigning a nested key:
// an intermediate path segment already holds a scalar or sequence value, so
// nesting under it would silently destroy data.
type CollisionError struct {
	// Key is the dotted path of the conflicting segment.
	Key string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("cannot nest under non-mapping value at %q", e.Key)
}

// MalformedPayloadError reports a payload handed to the merge engine that is
// not a finite tree of string-keyed mappings.
type MalformedPayloadError struct {
	Layer  string
	Reason string
}

func (e *MalformedPayloadError) Error() string {
	if e.Layer == "" {
		return fmt.Sprintf("malformed payload: %s", e.Reason)
	}
	return fmt.Sprintf("malformed payload in layer %q: %s", e.Layer, e.Reason)
}
