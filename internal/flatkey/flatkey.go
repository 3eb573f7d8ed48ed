// Package flatkey turns flat, delimiter-separated keys (SERVICE__TIMEOUT)
// into nested mappings. It is the single implementation of the nesting and
// value-coercion rules shared by the dotenv and environment adapters, so both
// sources always synthesize identical shapes.
package flatkey

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/layercfg/layercfg/internal/cfgerr"
)

// Delimiter is the structural separator used by both flat-key adapters.
const Delimiter = "__"

// Assign splits key on delim, walks root creating intermediate mappings, and
// stores value at the terminal segment, overwriting any prior value there.
// Precedence across sources is the caller's job; within one source the last
// write wins.
//
// Segments are normalized to lowercase; when a level already holds a key that
// matches case-insensitively, that key is reused instead of adding a
// duplicate. An empty segment (leading, trailing, or doubled delimiter) is a
// caller error. When an intermediate segment already holds a non-mapping
// value the walk stops with a *cfgerr.CollisionError naming the conflicting
// dotted path; nothing is silently overwritten.
func Assign(root map[string]any, key string, value any, delim string) error {
	if delim == "" {
		return fmt.Errorf("flatkey: delimiter must not be empty")
	}
	segments := strings.Split(key, delim)
	for _, segment := range segments {
		if segment == "" {
			return fmt.Errorf("flatkey: key %q contains an empty segment", key)
		}
	}

	cursor := root
	walked := make([]string, 0, len(segments))
	for _, segment := range segments[:len(segments)-1] {
		resolved := resolveKey(cursor, segment)
		walked = append(walked, resolved)
		child, present := cursor[resolved]
		if !present {
			next := map[string]any{}
			cursor[resolved] = next
			cursor = next
			continue
		}
		next, ok := child.(map[string]any)
		if !ok {
			return &cfgerr.CollisionError{Key: strings.Join(walked, ".")}
		}
		cursor = next
	}
	cursor[resolveKey(cursor, segments[len(segments)-1])] = value
	return nil
}

// resolveKey returns an existing key matching segment case-insensitively, or
// the lowercase form for a new entry. Keeps original casing stable while
// preventing duplicates that differ only by case.
func resolveKey(mapping map[string]any, segment string) string {
	lower := strings.ToLower(segment)
	for existing := range mapping {
		if strings.ToLower(existing) == lower {
			return existing
		}
	}
	return lower
}

// Coerce converts a flat string value into a typed scalar before assignment:
// boolean literals become bool, null/none/empty become nil, integer-looking
// strings become int64, float-looking strings become float64, and anything
// else stays a string. Both flat-key adapters apply it exactly once, before
// calling Assign.
func Coerce(value string) any {
	trimmed := strings.TrimSpace(value)
	lowered := strings.ToLower(trimmed)
	switch lowered {
	case "true":
		return true
	case "false":
		return false
	case "null", "none", "":
		return nil
	}
	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return f
	}
	return value
}
