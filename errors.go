package layercfg

import "github.com/layercfg/layercfg/internal/cfgerr"

// The error taxonomy lives in internal/cfgerr so the adapters can share it;
// the aliases below are the public surface callers match against with
// errors.Is / errors.As.

// CollisionError is returned when a flat key (dotenv or environment) tries to
// nest under a path segment that already holds a scalar or sequence value.
type CollisionError = cfgerr.CollisionError

// MalformedPayloadError is returned by the merge engine when a payload is not
// a finite tree of string-keyed mappings.
type MalformedPayloadError = cfgerr.MalformedPayloadError

var (
	// ErrNotFound marks a missing-but-optional configuration resource.
	ErrNotFound = cfgerr.ErrNotFound

	// ErrInvalidFormat marks configuration content that cannot be parsed.
	ErrInvalidFormat = cfgerr.ErrInvalidFormat
)
