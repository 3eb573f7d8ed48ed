// Package scaffold creates and deploys configuration artifacts: copying a
// config file into the canonical layer directories, and generating annotated
// example trees for documentation and onboarding. It mirrors the same path
// conventions the reader resolves at runtime.
package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/layercfg/layercfg/internal/observe"
	"github.com/layercfg/layercfg/internal/paths"
)

// validTargets are the file-backed layers a config artifact can deploy to.
var validTargets = map[string]bool{"app": true, "host": true, "user": true}

// DeployOptions direct where a configuration artifact is copied.
type DeployOptions struct {
	Vendor string
	App    string
	Slug   string

	// Targets is the ordered list of layer names (app, host, user) to
	// deploy to.
	Targets []string

	// Platform overrides OS detection (linux, darwin, windows).
	Platform string

	// Force overwrites existing destination files.
	Force bool

	// Hostname, Home, and Env override system detection, mirroring the
	// reader's resolver knobs.
	Hostname string
	Home     string
	Env      map[string]string
}

// Deploy copies source into the canonical location of each requested layer,
// creating parent directories as needed. Existing files are left untouched
// unless Force is set, and a destination that resolves to the source itself
// is always skipped. The returned slice lists the files actually written.
func Deploy(source string, opts DeployOptions) ([]string, error) {
	info, err := os.Stat(source)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("configuration source not found: %s", source)
	}
	payload, err := os.ReadFile(source)
	if err != nil {
		return nil, err
	}

	slug := opts.Slug
	if slug == "" {
		slug = opts.App
	}
	resolver := &paths.Resolver{
		Vendor:   opts.Vendor,
		App:      opts.App,
		Slug:     slug,
		Platform: opts.Platform,
		Hostname: opts.Hostname,
		Home:     opts.Home,
		Env:      opts.Env,
	}
	resolver.Normalize()

	var written []string
	for _, rawTarget := range opts.Targets {
		target := strings.ToLower(rawTarget)
		if !validTargets[target] {
			return nil, fmt.Errorf("unsupported deployment target: %s", rawTarget)
		}
		destination, err := resolver.Destination(target)
		if err != nil {
			return nil, err
		}
		ok, err := shouldCopy(source, destination, opts.Force)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(destination, payload, 0o644); err != nil {
			return nil, err
		}
		observe.Layer(target, destination).Msg("config_deployed")
		written = append(written, destination)
	}
	return written, nil
}

func shouldCopy(source, destination string, force bool) (bool, error) {
	absSource, err := filepath.Abs(source)
	if err != nil {
		return false, err
	}
	absDest, err := filepath.Abs(destination)
	if err != nil {
		return false, err
	}
	if absSource == absDest {
		return false, nil
	}
	if _, err := os.Stat(destination); err == nil && !force {
		return false, nil
	}
	return true, nil
}
