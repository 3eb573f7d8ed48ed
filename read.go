package layercfg

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/layercfg/layercfg/internal/dotenv"
	"github.com/layercfg/layercfg/internal/envload"
	"github.com/layercfg/layercfg/internal/fileload"
	"github.com/layercfg/layercfg/internal/observe"
	"github.com/layercfg/layercfg/internal/paths"
)

// Options name the configuration set to load and pin down every external
// input so reads stay reproducible. Vendor, App, and Slug feed the platform
// path conventions; the rest default to the running system when left zero.
type Options struct {
	Vendor string
	App    string
	Slug   string

	// Prefer orders file suffixes within a layer (e.g. "toml" before
	// "json") without renaming anything on disk.
	Prefer []string

	// StartDir seeds the upward .env search; defaults to the working
	// directory.
	StartDir string

	// Environ is the environment snapshot consulted for both the env layer
	// and the LAYERCFG_* path overrides. When nil, the process environment
	// is captured once at the start of the read.
	Environ map[string]string

	// Platform, Hostname, and Home override system detection for tests.
	Platform string
	Hostname string
	Home     string
}

// ReadConfig loads all configuration layers in precedence order
// (app → host → user → dotenv → env), merges them, and returns the result as
// an immutable Config. When no layer produced data the shared empty Config is
// returned.
func ReadConfig(opts Options) (*Config, error) {
	data, meta, err := ReadConfigRaw(opts)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return Empty(), nil
	}
	return New(data, meta), nil
}

// ReadConfigRaw is ReadConfig without the value-object wrapper: it returns
// the plain merged mapping and provenance map for tooling that serializes or
// renders them directly.
func ReadConfigRaw(opts Options) (map[string]any, map[string]SourceInfo, error) {
	environ := opts.Environ
	if environ == nil {
		environ = envload.Snapshot(os.Environ())
	}

	resolver := &paths.Resolver{
		Vendor:   opts.Vendor,
		App:      opts.App,
		Slug:     opts.Slug,
		Platform: opts.Platform,
		Hostname: opts.Hostname,
		Home:     opts.Home,
		Env:      environ,
	}
	resolver.Normalize()

	layers, err := gatherLayers(resolver, opts, environ)
	if err != nil {
		return nil, nil, err
	}
	if len(layers) == 0 {
		observe.Info().Str("layer", "none").Msg("configuration_empty")
		return map[string]any{}, map[string]SourceInfo{}, nil
	}

	merged, meta, err := MergeLayers(layers)
	if err != nil {
		return nil, nil, err
	}
	observe.Info().Str("layer", "final").Int("total_layers", len(layers)).Msg("configuration_merged")
	return merged, meta, nil
}

// DefaultEnvPrefix returns the canonical environment variable prefix for a
// slug ("config-kit" → "CONFIG_KIT").
func DefaultEnvPrefix(slug string) string {
	return envload.DefaultPrefix(slug)
}

func gatherLayers(resolver *paths.Resolver, opts Options, environ map[string]string) ([]Layer, error) {
	var layers []Layer

	fileLayers := []struct {
		name  string
		paths []string
	}{
		{"app", resolver.AppPaths()},
		{"host", resolver.HostPaths()},
		{"user", resolver.UserPaths()},
	}
	for _, fl := range fileLayers {
		entries, err := loadFileLayer(fl.name, fl.paths, opts.Prefer)
		if err != nil {
			return nil, err
		}
		if len(entries) > 0 {
			observe.Layer(fl.name, "").Int("files", len(entries)).Msg("layer_loaded")
		}
		layers = append(layers, entries...)
	}

	dotenvLoader := &dotenv.Loader{Extras: resolver.DotenvExtras()}
	payload, path, err := dotenvLoader.Load(opts.StartDir)
	if err != nil {
		return nil, fmt.Errorf("dotenv layer: %w", err)
	}
	if len(payload) > 0 {
		layers = append(layers, Layer{Name: "dotenv", Payload: payload, Path: path})
	}

	envLoader := &envload.Loader{Environ: environ}
	envPayload, err := envLoader.Load(envload.DefaultPrefix(opts.Slug))
	if err != nil {
		return nil, fmt.Errorf("env layer: %w", err)
	}
	if len(envPayload) > 0 {
		layers = append(layers, Layer{Name: "env", Payload: envPayload})
	}

	return layers, nil
}

// loadFileLayer parses every discovered file of one layer, skipping files
// that vanished between discovery and read. A file that exists but cannot be
// parsed fails the whole read: silently dropping a half-written config file
// is worse than a loud error.
func loadFileLayer(layer string, candidates []string, prefer []string) ([]Layer, error) {
	var entries []Layer
	for _, path := range orderPaths(candidates, prefer) {
		if !fileload.Supported(path) {
			continue
		}
		data, err := fileload.Load(path)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("%s layer file %s: %w", layer, path, err)
		}
		if len(data) == 0 {
			continue
		}
		entries = append(entries, Layer{Name: layer, Payload: data, Path: path})
	}
	return entries, nil
}

// orderPaths sorts paths so preferred suffixes come first, keeping the
// original order within the same rank (stable sort).
func orderPaths(candidates []string, prefer []string) []string {
	ordered := append([]string(nil), candidates...)
	if len(prefer) == 0 {
		return ordered
	}
	ranking := make(map[string]int, len(prefer))
	for i, suffix := range prefer {
		ranking[strings.TrimPrefix(strings.ToLower(suffix), ".")] = i
	}
	rank := func(path string) int {
		suffix := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
		if r, ok := ranking[suffix]; ok {
			return r
		}
		return len(ranking)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return rank(ordered[i]) < rank(ordered[j])
	})
	return ordered
}
