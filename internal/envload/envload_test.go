package envload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layercfg/layercfg/internal/cfgerr"
)

func TestDefaultPrefix(t *testing.T) {
	tests := []struct {
		slug     string
		expected string
	}{
		{"config-kit", "CONFIG_KIT"},
		{"demo", "DEMO"},
		{"multi-part-slug", "MULTI_PART_SLUG"},
		{"already_underscored", "ALREADY_UNDERSCORED"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, DefaultPrefix(tt.slug))
	}
}

func TestSnapshot(t *testing.T) {
	snap := Snapshot([]string{
		"PATH=/usr/bin",
		"DEMO_DEBUG=true",
		"DEMO_DEBUG=false",
		"EMPTY=",
		"=no-key",
		"garbage",
	})

	assert.Equal(t, "/usr/bin", snap["PATH"])
	assert.Equal(t, "false", snap["DEMO_DEBUG"], "last duplicate wins")
	assert.Equal(t, "", snap["EMPTY"])
	_, ok := snap[""]
	assert.False(t, ok)
	assert.Len(t, snap, 3)
}

func TestLoader_Load(t *testing.T) {
	loader := &Loader{Environ: map[string]string{
		"DEMO_SERVICE__TIMEOUT": "30",
		"DEMO_SERVICE__NAME":    "api",
		"DEMO_DEBUG":            "true",
		"DEMO_RATIO":            "0.25",
		"DEMO_EMPTY":            "",
		"DEMOBAR":               "no underscore boundary",
		"OTHER_KEY":             "ignored",
		"PATH":                  "/usr/bin",
	}}

	payload, err := loader.Load("DEMO")
	require.NoError(t, err)

	expected := map[string]any{
		"service": map[string]any{"timeout": int64(30), "name": "api"},
		"debug":   true,
		"ratio":   float64(0.25),
		"empty":   nil,
	}
	assert.Equal(t, expected, payload)
}

func TestLoader_Load_PrefixNormalization(t *testing.T) {
	loader := &Loader{Environ: map[string]string{"DEMO_KEY": "v"}}

	// "DEMO" and "DEMO_" are the same prefix.
	withBare, err := loader.Load("DEMO")
	require.NoError(t, err)
	withUnderscore, err := loader.Load("DEMO_")
	require.NoError(t, err)
	assert.Equal(t, withBare, withUnderscore)
	assert.Equal(t, "v", withBare["key"])
}

func TestLoader_Load_CaseInsensitivePrefix(t *testing.T) {
	loader := &Loader{Environ: map[string]string{"demo_key": "v"}}
	payload, err := loader.Load("DEMO")
	require.NoError(t, err)
	assert.Equal(t, "v", payload["key"])
}

func TestLoader_Load_PrefixOnlyKeyIgnored(t *testing.T) {
	loader := &Loader{Environ: map[string]string{"DEMO_": "v", "DEMO": "v"}}
	payload, err := loader.Load("DEMO")
	require.NoError(t, err)
	assert.Empty(t, payload)
}

func TestLoader_Load_Collision(t *testing.T) {
	loader := &Loader{Environ: map[string]string{
		"DEMO_A__B":    "1",
		"DEMO_A__B__C": "2",
	}}
	_, err := loader.Load("DEMO")
	var collision *cfgerr.CollisionError
	require.ErrorAs(t, err, &collision)
	assert.Equal(t, "a.b", collision.Key)
}

func TestLoader_Load_EmptySnapshot(t *testing.T) {
	loader := &Loader{Environ: nil}
	payload, err := loader.Load("DEMO")
	require.NoError(t, err)
	assert.Empty(t, payload)
}
