package layercfg

import (
	"bytes"
	"encoding/json"
	"reflect"
	"sort"
	"strings"
)

// SourceInfo describes the origin of one resolved configuration key: the
// logical layer that last set it, the file path that produced it (empty for
// in-memory sources such as environment variables), and the dotted key
// itself. When serialized it always carries exactly the three fields
// {"layer", "path", "key"}, with path rendered as null when no file was
// involved.
type SourceInfo struct {
	Layer string `json:"layer"`
	Path  string `json:"path"`
	Key   string `json:"key"`
}

// MarshalJSON renders the record with a null path for in-memory sources.
func (s SourceInfo) MarshalJSON() ([]byte, error) {
	var path *string
	if s.Path != "" {
		path = &s.Path
	}
	return json.Marshal(struct {
		Layer string  `json:"layer"`
		Path  *string `json:"path"`
		Key   string  `json:"key"`
	}{s.Layer, path, s.Key})
}

// UnmarshalJSON accepts the wire shape produced by MarshalJSON.
func (s *SourceInfo) UnmarshalJSON(data []byte) error {
	var wire struct {
		Layer string  `json:"layer"`
		Path  *string `json:"path"`
		Key   string  `json:"key"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	s.Layer = wire.Layer
	s.Key = wire.Key
	if wire.Path != nil {
		s.Path = *wire.Path
	} else {
		s.Path = ""
	}
	return nil
}

// Config is the immutable snapshot returned to library consumers: a merged
// configuration tree paired with per-key provenance. The internal maps never
// escape — constructors copy in, accessors copy out — so a Config is safe to
// share across goroutines without locking. Methods that look like mutation
// (WithOverrides) return a new instance.
type Config struct {
	data map[string]any
	meta map[string]SourceInfo
}

// emptyConfig backs Empty; safe to share because Config is immutable.
var emptyConfig = &Config{data: map[string]any{}, meta: map[string]SourceInfo{}}

// New builds a Config from a merged mapping and its provenance, deep-copying
// both so later mutation of the arguments cannot reach the instance.
func New(data map[string]any, meta map[string]SourceInfo) *Config {
	cfg := &Config{
		data: deepCopyMapping(data),
		meta: make(map[string]SourceInfo, len(meta)),
	}
	for key, info := range meta {
		cfg.meta[key] = info
	}
	return cfg
}

// Empty returns the canonical empty configuration.
func Empty() *Config {
	return emptyConfig
}

// Get resolves a dotted key path ("service.timeout") and returns the stored
// value, or nil when any segment is absent or an intermediate value is not a
// mapping. A missing key is normal control flow, never an error.
func (c *Config) Get(key string) any {
	value, _ := c.lookup(key)
	return value
}

// GetDefault is Get with a fallback for missing paths. A stored null is a
// present value and is returned as nil rather than the default.
func (c *Config) GetDefault(key string, def any) any {
	if value, ok := c.lookup(key); ok {
		return value
	}
	return def
}

// Has reports whether the dotted key path resolves to a stored value.
func (c *Config) Has(key string) bool {
	_, ok := c.lookup(key)
	return ok
}

// Origin returns the provenance record for the exact dotted key used at
// write time. The second return is false when no layer produced the key.
func (c *Config) Origin(key string) (SourceInfo, bool) {
	info, ok := c.meta[key]
	return info, ok
}

// Provenance returns a copy of the full provenance map.
func (c *Config) Provenance() map[string]SourceInfo {
	out := make(map[string]SourceInfo, len(c.meta))
	for key, info := range c.meta {
		out[key] = info
	}
	return out
}

// AsMap returns a deep, independent copy of the merged tree; mutating it
// never affects the Config.
func (c *Config) AsMap() map[string]any {
	return deepCopyMapping(c.data)
}

// Keys returns the sorted top-level keys.
func (c *Config) Keys() []string {
	keys := make([]string, 0, len(c.data))
	for key := range c.data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of top-level keys.
func (c *Config) Len() int {
	return len(c.data)
}

// ToJSON serializes the merged tree deterministically (encoding/json emits
// map keys in sorted order). indent <= 0 produces compact output, indent > 0
// pretty-prints with that many spaces per level.
func (c *Config) ToJSON(indent int) (string, error) {
	var (
		raw []byte
		err error
	)
	if indent > 0 {
		raw, err = json.MarshalIndent(c.data, "", strings.Repeat(" ", indent))
	} else {
		raw, err = json.Marshal(c.data)
	}
	if err != nil {
		return "", err
	}
	return string(bytes.TrimSpace(raw)), nil
}

// WithOverrides returns a new Config whose top-level keys are shallow-replaced
// by the entries of overrides. Provenance is carried over unchanged: the
// synthetic override is not recorded as a layer, so Origin for an overridden
// key still reports the layer that set it before the override. Callers that
// need traceable changes should merge a real layer instead.
func (c *Config) WithOverrides(overrides map[string]any) *Config {
	updated := deepCopyMapping(c.data)
	for key, value := range overrides {
		updated[key] = deepCopyValue(value)
	}
	next := &Config{data: updated, meta: make(map[string]SourceInfo, len(c.meta))}
	for key, info := range c.meta {
		next.meta[key] = info
	}
	return next
}

// Equal reports content equality of both the merged tree and the provenance.
func (c *Config) Equal(other *Config) bool {
	if other == nil {
		return false
	}
	return reflect.DeepEqual(c.data, other.data) && reflect.DeepEqual(c.meta, other.meta)
}

func (c *Config) lookup(key string) (any, bool) {
	var current any = c.data
	for _, part := range strings.Split(key, ".") {
		mapping, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		value, present := mapping[part]
		if !present {
			return nil, false
		}
		current = value
	}
	return deepCopyValue(current), true
}

// deepCopyMapping clones nested mappings and sequences; scalars pass through.
// Unlike the merge engine's clone it does not validate tree shape: data here
// already went through MergeLayers or New.
func deepCopyMapping(m map[string]any) map[string]any {
	clone := make(map[string]any, len(m))
	for key, value := range m {
		clone[key] = deepCopyValue(value)
	}
	return clone
}

func deepCopyValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return deepCopyMapping(v)
	case []any:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = deepCopyValue(item)
		}
		return items
	default:
		return value
	}
}
