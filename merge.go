package layercfg

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/layercfg/layercfg/internal/cfgerr"
)

// Layer is one named configuration source queued for merging. Layers are
// processed in slice order; later layers win every conflict, so callers
// supply them from lowest to highest precedence (app, host, user, dotenv,
// env). Path is the originating file, or empty for in-memory sources such as
// process environment variables.
type Layer struct {
	Name    string
	Payload map[string]any
	Path    string
}

// MergeLayers folds layers in order into a single nested mapping and a
// provenance map from dotted key path to the layer that last set it.
//
// The merge is deep and key-wise: when both sides hold mappings the children
// are merged key by key, otherwise the incoming value replaces the existing
// one wholesale (sequences and scalars are never element-merged). Payloads
// are deep-copied before use, so the result never aliases caller-owned data.
// Payload keys are visited in sorted order, which makes the outcome fully
// deterministic for identical inputs.
func MergeLayers(layers []Layer) (map[string]any, map[string]SourceInfo, error) {
	merged := make(map[string]any)
	meta := make(map[string]SourceInfo)
	if err := MergeLayersInto(merged, meta, layers); err != nil {
		return nil, nil, err
	}
	return merged, meta, nil
}

// MergeLayersInto merges layers on top of an existing merged/provenance pair,
// mutating both in place. Chaining MergeLayers and MergeLayersInto over a
// split of the same ordered layer list yields the same final result as a
// single MergeLayers call over the full list, because the intermediate
// provenance keeps its original layer and path tags.
func MergeLayersInto(merged map[string]any, meta map[string]SourceInfo, layers []Layer) error {
	for _, layer := range layers {
		payload, err := clonePayload(layer.Name, layer.Payload)
		if err != nil {
			return err
		}
		mergeMapping(merged, meta, payload, layer.Name, layer.Path, "")
	}
	return nil
}

// mergeMapping merges incoming into target, recording provenance for every
// leaf written under the given dotted prefix.
func mergeMapping(target map[string]any, meta map[string]SourceInfo, incoming map[string]any, layer, path, prefix string) {
	for _, key := range sortedKeys(incoming) {
		value := incoming[key]
		dotted := dottedKey(prefix, key)
		if child, ok := value.(map[string]any); ok {
			mergeBranch(target, meta, key, child, dotted, layer, path, prefix)
		} else {
			setLeaf(target, meta, key, value, dotted, layer, path)
		}
	}
}

// mergeBranch merges the mapping child into target[key] and recurses.
func mergeBranch(target map[string]any, meta map[string]SourceInfo, key string, child map[string]any, dotted, layer, path, prefix string) {
	existing := target[key]
	existingMap, existingIsMap := existing.(map[string]any)

	if len(child) == 0 {
		// An empty incoming mapping at the top level leaves an existing
		// mapping alone; anywhere else it replaces the subtree.
		if existingIsMap && prefix == "" {
			return
		}
		clearBranch(meta, dotted)
		target[key] = map[string]any{}
		return
	}

	var container map[string]any
	if existingIsMap {
		container = make(map[string]any, len(existingMap))
		for k, v := range existingMap {
			container[k] = v
		}
	} else {
		// A mapping is replacing a scalar: every provenance entry under the
		// old value is stale and must go before the children are recorded.
		clearBranch(meta, dotted)
		container = map[string]any{}
	}
	target[key] = container
	mergeMapping(container, meta, child, layer, path, dotted)
}

// setLeaf assigns a non-mapping value and updates provenance for dotted. Any
// provenance recorded for keys nested under a previously-mapping value is
// cleared first so no entry points at a key that no longer exists.
func setLeaf(target map[string]any, meta map[string]SourceInfo, key string, value any, dotted, layer, path string) {
	clearBranch(meta, dotted)
	target[key] = value
	meta[dotted] = SourceInfo{Layer: layer, Path: path, Key: dotted}
}

// clearBranch removes provenance entries for prefix and all its descendants.
func clearBranch(meta map[string]SourceInfo, prefix string) {
	nested := prefix + "."
	for key := range meta {
		if key == prefix || strings.HasPrefix(key, nested) {
			delete(meta, key)
		}
	}
}

func dottedKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// clonePayload deep-copies payload, validating on the way that it is a finite
// tree: string-keyed mappings all the way down, no aliasing back into an
// ancestor. Sequences are copied element-wise. Unknown scalar types pass
// through untouched; mapping types other than map[string]any are rejected
// because the engine could not merge or serialize them coherently.
func clonePayload(layer string, payload map[string]any) (map[string]any, error) {
	seen := make(map[uintptr]bool)
	clone, err := cloneMapping(payload, seen)
	if err != nil {
		return nil, &cfgerr.MalformedPayloadError{Layer: layer, Reason: err.Error()}
	}
	return clone, nil
}

func cloneMapping(m map[string]any, seen map[uintptr]bool) (map[string]any, error) {
	ptr := reflect.ValueOf(m).Pointer()
	if seen[ptr] {
		return nil, fmt.Errorf("payload contains a cycle")
	}
	seen[ptr] = true
	defer delete(seen, ptr)

	clone := make(map[string]any, len(m))
	for key, value := range m {
		copied, err := cloneValue(value, seen)
		if err != nil {
			return nil, err
		}
		clone[key] = copied
	}
	return clone, nil
}

func cloneValue(value any, seen map[uintptr]bool) (any, error) {
	switch v := value.(type) {
	case map[string]any:
		return cloneMapping(v, seen)
	case []any:
		items := make([]any, len(v))
		for i, item := range v {
			copied, err := cloneValue(item, seen)
			if err != nil {
				return nil, err
			}
			items[i] = copied
		}
		return items, nil
	default:
		if value != nil && reflect.TypeOf(value).Kind() == reflect.Map {
			return nil, fmt.Errorf("mapping value of type %T is not string-keyed", value)
		}
		return value, nil
	}
}
