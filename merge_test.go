package layercfg

import (
	"encoding/json"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestMergeLayers_Precedence_LaterLayerWins tests that the later layer wins
// every conflict regardless of value type.
func TestMergeLayers_Precedence_LaterLayerWins(t *testing.T) {
	tests := []struct {
		name          string
		layers        []Layer
		key           string
		expectedValue any
		expectedLayer string
	}{
		{
			name: "ScalarOverScalar",
			layers: []Layer{
				{Name: "app", Payload: map[string]any{"timeout": int64(30)}},
				{Name: "env", Payload: map[string]any{"timeout": int64(45)}},
			},
			key:           "timeout",
			expectedValue: int64(45),
			expectedLayer: "env",
		},
		{
			name: "NestedScalar",
			layers: []Layer{
				{Name: "app", Payload: map[string]any{"service": map[string]any{"timeout": int64(30)}}, Path: "/etc/demo/config.toml"},
				{Name: "user", Payload: map[string]any{"service": map[string]any{"timeout": int64(45)}}, Path: "/home/u/.config/demo/config.toml"},
			},
			key:           "service.timeout",
			expectedValue: int64(45),
			expectedLayer: "user",
		},
		{
			name: "SequenceReplacedWholesale",
			layers: []Layer{
				{Name: "app", Payload: map[string]any{"hosts": []any{"a", "b"}}},
				{Name: "env", Payload: map[string]any{"hosts": []any{"c"}}},
			},
			key:           "hosts",
			expectedValue: []any{"c"},
			expectedLayer: "env",
		},
		{
			name: "MappingReplacesScalar",
			layers: []Layer{
				{Name: "app", Payload: map[string]any{"service": "legacy"}},
				{Name: "user", Payload: map[string]any{"service": map[string]any{"timeout": int64(5)}}},
			},
			key:           "service.timeout",
			expectedValue: int64(5),
			expectedLayer: "user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged, meta, err := MergeLayers(tt.layers)
			require.NoError(t, err)

			cfg := New(merged, meta)
			assert.Equal(t, tt.expectedValue, cfg.Get(tt.key))

			origin, ok := meta[tt.key]
			require.True(t, ok, "provenance entry for %s should exist", tt.key)
			assert.Equal(t, tt.expectedLayer, origin.Layer)
			assert.Equal(t, tt.key, origin.Key)
		})
	}
}

// TestMergeLayers_DeepMerge_PreservesSiblings tests that keys present on only
// one side of a mapping conflict survive the merge.
func TestMergeLayers_DeepMerge_PreservesSiblings(t *testing.T) {
	merged, meta, err := MergeLayers([]Layer{
		{Name: "app", Payload: map[string]any{"service": map[string]any{"timeout": int64(30), "retries": int64(3)}}, Path: "app.toml"},
		{Name: "user", Payload: map[string]any{"service": map[string]any{"timeout": int64(45)}}, Path: "user.toml"},
		{Name: "env", Payload: map[string]any{"service": map[string]any{"retries": int64(5)}}},
	})
	require.NoError(t, err)

	expected := map[string]any{"service": map[string]any{"timeout": int64(45), "retries": int64(5)}}
	assert.Equal(t, expected, merged)

	assert.Equal(t, "user", meta["service.timeout"].Layer)
	assert.Equal(t, "user.toml", meta["service.timeout"].Path)
	assert.Equal(t, "env", meta["service.retries"].Layer)
	assert.Equal(t, "", meta["service.retries"].Path)
}

// TestMergeLayers_TypeReplace_ClearsStaleProvenance tests that replacing a
// mapping subtree with a scalar invalidates provenance for the old children.
func TestMergeLayers_TypeReplace_ClearsStaleProvenance(t *testing.T) {
	merged, meta, err := MergeLayers([]Layer{
		{Name: "app", Payload: map[string]any{"a": map[string]any{"b": int64(1)}}},
		{Name: "env", Payload: map[string]any{"a": "scalar"}},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"a": "scalar"}, merged)
	assert.Equal(t, "env", meta["a"].Layer)
	_, stale := meta["a.b"]
	assert.False(t, stale, "provenance for a.b must be cleared when a becomes a scalar")
}

// TestMergeLayers_ScalarReplacedByMapping_ClearsOldEntry is the reverse
// direction: a mapping overwriting a scalar drops the scalar's entry before
// recording the children.
func TestMergeLayers_ScalarReplacedByMapping_ClearsOldEntry(t *testing.T) {
	_, meta, err := MergeLayers([]Layer{
		{Name: "app", Payload: map[string]any{"a": "scalar"}},
		{Name: "env", Payload: map[string]any{"a": map[string]any{"b": int64(2)}}},
	})
	require.NoError(t, err)

	_, stale := meta["a"]
	assert.False(t, stale, "scalar entry for a must be cleared when a becomes a mapping")
	assert.Equal(t, "env", meta["a.b"].Layer)
}

// TestMergeLayers_NonDestructiveInput tests that mutating original payloads
// after the merge cannot corrupt the returned result.
func TestMergeLayers_NonDestructiveInput(t *testing.T) {
	payload := map[string]any{"service": map[string]any{"timeout": int64(30), "tags": []any{"x"}}}
	merged, _, err := MergeLayers([]Layer{{Name: "app", Payload: payload}})
	require.NoError(t, err)

	payload["service"].(map[string]any)["timeout"] = int64(99)
	payload["service"].(map[string]any)["tags"].([]any)[0] = "mutated"
	payload["extra"] = true

	assert.Equal(t, int64(30), merged["service"].(map[string]any)["timeout"])
	assert.Equal(t, []any{"x"}, merged["service"].(map[string]any)["tags"])
	_, leaked := merged["extra"]
	assert.False(t, leaked)
}

// TestMergeLayers_Idempotence tests that re-merging the merged result as one
// extra layer leaves the mapping unchanged.
func TestMergeLayers_Idempotence(t *testing.T) {
	layers := []Layer{
		{Name: "app", Payload: map[string]any{"service": map[string]any{"timeout": int64(30), "retries": int64(3)}}},
		{Name: "env", Payload: map[string]any{"service": map[string]any{"retries": int64(5)}, "flag": true}},
	}
	merged, _, err := MergeLayers(layers)
	require.NoError(t, err)

	again, _, err := MergeLayers(append(append([]Layer(nil), layers...), Layer{Name: "result", Payload: merged}))
	require.NoError(t, err)
	assert.Equal(t, merged, again)
}

// TestMergeLayers_Associativity tests that merging [A, B] and then continuing
// with [C] produces the same result as one call over [A, B, C], because
// MergeLayersInto preserves the intermediate provenance tags.
func TestMergeLayers_Associativity(t *testing.T) {
	a := Layer{Name: "app", Payload: map[string]any{"s": map[string]any{"x": int64(1), "y": int64(2)}}, Path: "a.toml"}
	b := Layer{Name: "user", Payload: map[string]any{"s": map[string]any{"y": int64(3)}}, Path: "b.toml"}
	c := Layer{Name: "env", Payload: map[string]any{"s": map[string]any{"z": int64(4)}, "top": "v"}}

	fullMerged, fullMeta, err := MergeLayers([]Layer{a, b, c})
	require.NoError(t, err)

	stepMerged, stepMeta, err := MergeLayers([]Layer{a, b})
	require.NoError(t, err)
	require.NoError(t, MergeLayersInto(stepMerged, stepMeta, []Layer{c}))

	assert.Equal(t, fullMerged, stepMerged)
	assert.Equal(t, fullMeta, stepMeta)
}

// TestMergeLayers_EmptyIncomingMapping covers the asymmetric empty-mapping
// rule: at the top level an empty mapping leaves an existing mapping alone,
// while a brand-new empty key materializes as an empty mapping.
func TestMergeLayers_EmptyIncomingMapping(t *testing.T) {
	merged, _, err := MergeLayers([]Layer{
		{Name: "app", Payload: map[string]any{"service": map[string]any{"timeout": int64(30)}}},
		{Name: "env", Payload: map[string]any{"service": map[string]any{}, "fresh": map[string]any{}}},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"timeout": int64(30)}, merged["service"])
	assert.Equal(t, map[string]any{}, merged["fresh"])
}

// TestMergeLayers_MalformedPayload tests eager rejection of payloads that are
// not finite string-keyed trees.
func TestMergeLayers_MalformedPayload(t *testing.T) {
	t.Run("NonStringKeyedMapping", func(t *testing.T) {
		payload := map[string]any{"bad": map[int]any{1: "x"}}
		_, _, err := MergeLayers([]Layer{{Name: "app", Payload: payload}})
		var malformed *MalformedPayloadError
		require.ErrorAs(t, err, &malformed)
		assert.Equal(t, "app", malformed.Layer)
	})

	t.Run("Cycle", func(t *testing.T) {
		payload := map[string]any{}
		payload["self"] = payload
		_, _, err := MergeLayers([]Layer{{Name: "app", Payload: payload}})
		var malformed *MalformedPayloadError
		require.ErrorAs(t, err, &malformed)
	})
}

// drawPayload generates a random bounded configuration tree.
func drawPayload(t *rapid.T, label string, depth int) map[string]any {
	keys := rapid.SliceOfNDistinct(
		rapid.SampledFrom([]string{"a", "b", "c", "d", "e"}),
		0, 4,
		func(s string) string { return s },
	).Draw(t, label+"_keys")

	out := map[string]any{}
	for i, key := range keys {
		nested := depth > 0 && rapid.Bool().Draw(t, fmt.Sprintf("%s_nest_%d", label, i))
		if nested {
			out[key] = drawPayload(t, fmt.Sprintf("%s_%s", label, key), depth-1)
		} else {
			out[key] = int64(rapid.IntRange(0, 99).Draw(t, fmt.Sprintf("%s_val_%d", label, i)))
		}
	}
	return out
}

func drawLayers(t *rapid.T) []Layer {
	names := []string{"app", "host", "user", "dotenv", "env"}
	count := rapid.IntRange(1, 5).Draw(t, "layer_count")
	layers := make([]Layer, 0, count)
	for i := 0; i < count; i++ {
		layers = append(layers, Layer{
			Name:    names[i],
			Payload: drawPayload(t, fmt.Sprintf("layer_%d", i), 3),
		})
	}
	return layers
}

// TestMergeLayers_Properties drives the core guarantees over random layer
// stacks: determinism, input independence, idempotence, associativity, and
// provenance naming an actual input layer for every merged leaf.
func TestMergeLayers_Properties(t *testing.T) {
	t.Run("Deterministic", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			layers := drawLayers(t)
			merged1, meta1, err := MergeLayers(layers)
			require.NoError(t, err)
			merged2, meta2, err := MergeLayers(layers)
			require.NoError(t, err)

			require.True(t, reflect.DeepEqual(merged1, merged2))
			require.True(t, reflect.DeepEqual(meta1, meta2))

			json1, err := json.Marshal(merged1)
			require.NoError(t, err)
			json2, err := json.Marshal(merged2)
			require.NoError(t, err)
			require.Equal(t, string(json1), string(json2))
		})
	})

	t.Run("InputIndependence", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			layers := drawLayers(t)
			merged, _, err := MergeLayers(layers)
			require.NoError(t, err)

			before, err := json.Marshal(merged)
			require.NoError(t, err)
			for _, layer := range layers {
				scribble(layer.Payload)
			}
			after, err := json.Marshal(merged)
			require.NoError(t, err)
			require.Equal(t, string(before), string(after))
		})
	})

	t.Run("Idempotent", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			layers := drawLayers(t)
			merged, _, err := MergeLayers(layers)
			require.NoError(t, err)

			again, _, err := MergeLayers(append(append([]Layer(nil), layers...), Layer{Name: "result", Payload: merged}))
			require.NoError(t, err)
			require.True(t, reflect.DeepEqual(merged, again))
		})
	})

	t.Run("Associative", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			layers := drawLayers(t)
			split := rapid.IntRange(0, len(layers)).Draw(t, "split")

			fullMerged, fullMeta, err := MergeLayers(layers)
			require.NoError(t, err)

			stepMerged, stepMeta, err := MergeLayers(layers[:split])
			require.NoError(t, err)
			require.NoError(t, MergeLayersInto(stepMerged, stepMeta, layers[split:]))

			require.True(t, reflect.DeepEqual(fullMerged, stepMerged))
			require.True(t, reflect.DeepEqual(fullMeta, stepMeta))
		})
	})

	t.Run("ProvenanceCoversLeaves", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			layers := drawLayers(t)
			merged, meta, err := MergeLayers(layers)
			require.NoError(t, err)

			valid := map[string]bool{}
			for _, layer := range layers {
				valid[layer.Name] = true
			}
			leaves := map[string]bool{}
			collectLeaves("", merged, leaves)
			for key := range leaves {
				info, ok := meta[key]
				require.True(t, ok, "leaf %s must have provenance", key)
				require.True(t, valid[info.Layer], "layer %s must be one of the inputs", info.Layer)
				require.Equal(t, key, info.Key)
			}
			for key := range meta {
				require.True(t, leaves[key], "provenance entry %s must point at a live leaf", key)
			}
		})
	})
}

// scribble mutates every reachable value in place.
func scribble(m map[string]any) {
	for key, value := range m {
		if child, ok := value.(map[string]any); ok {
			scribble(child)
			continue
		}
		m[key] = "scribbled"
	}
}

func collectLeaves(prefix string, m map[string]any, out map[string]bool) {
	for key, value := range m {
		dotted := key
		if prefix != "" {
			dotted = prefix + "." + key
		}
		if child, ok := value.(map[string]any); ok {
			collectLeaves(dotted, child, out)
			continue
		}
		out[dotted] = true
	}
}
