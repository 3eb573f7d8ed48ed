// Package fileload parses structured configuration files (TOML, JSON with
// comments, YAML) into the string-keyed trees the merge engine consumes.
// Every loader enforces the same contract: a missing file is cfgerr.ErrNotFound,
// unparseable content wraps cfgerr.ErrInvalidFormat, and a document whose root
// is not a mapping is rejected.
package fileload

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/layercfg/layercfg/internal/cfgerr"
	"github.com/layercfg/layercfg/internal/observe"
)

// Supported reports whether path has an extension one of the loaders handles.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// Load reads and parses path, dispatching on its extension.
func Load(path string) (map[string]any, error) {
	raw, err := read(path)
	if err != nil {
		return nil, err
	}

	var (
		doc    map[string]any
		format string
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		format = "toml"
		err = toml.Unmarshal(raw, &doc)
	case ".json":
		format = "json"
		err = json.Unmarshal(jsonc.ToJSON(raw), &doc)
	case ".yaml", ".yml":
		format = "yaml"
		doc, err = loadYAML(raw)
	default:
		return nil, fmt.Errorf("%w: unsupported extension %q", cfgerr.ErrInvalidFormat, filepath.Ext(path))
	}
	if err != nil {
		observe.Error().Str("path", path).Str("format", format).Err(err).Msg("config_file_invalid")
		return nil, fmt.Errorf("%w: %s file %s: %v", cfgerr.ErrInvalidFormat, format, path, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	observe.Layer("file", path).Str("format", format).Msg("config_file_loaded")
	return doc, nil
}

func read(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", cfgerr.ErrNotFound, path)
		}
		return nil, err
	}
	observe.Layer("file", path).Int("size", len(raw)).Msg("config_file_read")
	return raw, nil
}

// loadYAML decodes into any first because yaml.v3 produces
// map[string]interface{} only for string-keyed mappings; anything else (a
// sequence root, a mapping with non-string keys) must be rejected rather than
// handed to the merge engine.
func loadYAML(raw []byte) (map[string]any, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return map[string]any{}, nil
	}
	mapping, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("document root is not a string-keyed mapping")
	}
	return normalizeMapping(mapping)
}

// normalizeMapping verifies nested YAML mappings are string-keyed all the way
// down, converting the map[any]any nodes yaml.v3 emits for exotic keys.
func normalizeMapping(m map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(m))
	for key, value := range m {
		normalized, err := normalizeValue(value)
		if err != nil {
			return nil, fmt.Errorf("under key %q: %w", key, err)
		}
		out[key] = normalized
	}
	return out, nil
}

func normalizeValue(value any) (any, error) {
	switch v := value.(type) {
	case map[string]any:
		return normalizeMapping(v)
	case map[any]any:
		converted := make(map[string]any, len(v))
		for key, item := range v {
			s, ok := key.(string)
			if !ok {
				return nil, fmt.Errorf("mapping key %v is not a string", key)
			}
			converted[s] = item
		}
		return normalizeMapping(converted)
	case []any:
		items := make([]any, len(v))
		for i, item := range v {
			normalized, err := normalizeValue(item)
			if err != nil {
				return nil, err
			}
			items[i] = normalized
		}
		return items, nil
	default:
		return value, nil
	}
}
