// Package envload translates a snapshot of process environment variables into
// a nested configuration tree. The snapshot is always passed in explicitly —
// nothing here reads the ambient environment — so two concurrent reads can
// never observe each other's mutations.
package envload

import (
	"sort"
	"strings"

	"github.com/layercfg/layercfg/internal/flatkey"
	"github.com/layercfg/layercfg/internal/observe"
)

// DefaultPrefix returns the canonical environment prefix for a slug:
// upper-cased with dashes turned into underscores ("config-kit" → "CONFIG_KIT").
func DefaultPrefix(slug string) string {
	return strings.ToUpper(strings.ReplaceAll(slug, "-", "_"))
}

// Snapshot converts the KEY=VALUE slice form of os.Environ into a map. The
// last occurrence of a duplicated key wins, matching process semantics.
func Snapshot(environ []string) map[string]string {
	snap := make(map[string]string, len(environ))
	for _, entry := range environ {
		key, value, found := strings.Cut(entry, "=")
		if !found || key == "" {
			continue
		}
		snap[key] = value
	}
	return snap
}

// Loader builds nested payloads from an environment snapshot.
type Loader struct {
	Environ map[string]string
}

// Load returns the nested mapping built from variables carrying prefix. The
// prefix match and strip are case-insensitive; a trailing underscore is
// appended when missing so FOO matches FOO_SERVICE__TIMEOUT but not FOOBAR.
// Values are coerced and nested with the same rules as dotenv files.
// Variables are processed in sorted key order so the result, including which
// key a collision error names, never depends on map iteration order.
func (l *Loader) Load(prefix string) (map[string]any, error) {
	normalized := normalizePrefix(prefix)
	keys := make([]string, 0, len(l.Environ))
	for key := range l.Environ {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	collected := map[string]any{}
	for _, key := range keys {
		stripped, ok := stripPrefix(key, normalized)
		if !ok {
			continue
		}
		if err := flatkey.Assign(collected, stripped, flatkey.Coerce(l.Environ[key]), flatkey.Delimiter); err != nil {
			return nil, err
		}
	}
	observe.Layer("env", "").Int("keys", len(collected)).Msg("env_variables_loaded")
	return collected, nil
}

func normalizePrefix(prefix string) string {
	if prefix != "" && !strings.HasSuffix(prefix, "_") {
		return prefix + "_"
	}
	return prefix
}

func stripPrefix(key, prefix string) (string, bool) {
	if prefix == "" {
		return key, key != ""
	}
	if len(key) <= len(prefix) {
		return "", false
	}
	if !strings.EqualFold(key[:len(prefix)], prefix) {
		return "", false
	}
	return key[len(prefix):], true
}
