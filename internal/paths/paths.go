// Package paths resolves the filesystem locations of each configuration
// layer for Linux (XDG plus /etc), macOS (Application Support), and Windows
// (ProgramData/AppData). All roots can be redirected through LAYERCFG_*
// environment overrides so tests and portable installs stay deterministic.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// Environment override keys honored by the resolver.
const (
	EnvEtcRoot       = "LAYERCFG_ETC"
	EnvMacAppRoot    = "LAYERCFG_MAC_APP_ROOT"
	EnvMacHomeRoot   = "LAYERCFG_MAC_HOME_ROOT"
	EnvProgramData   = "LAYERCFG_PROGRAMDATA"
	EnvAppData       = "LAYERCFG_APPDATA"
	EnvLocalAppData  = "LAYERCFG_LOCALAPPDATA"
	EnvXDGConfigHome = "XDG_CONFIG_HOME"
)

// allowedExtensions are the formats expanded from config.d directories.
var allowedExtensions = map[string]bool{
	".toml": true,
	".yaml": true,
	".yml":  true,
	".json": true,
}

// Resolver produces candidate paths for each layer. Zero-value fields are
// filled from the running system by Normalize; tests inject their own.
type Resolver struct {
	Vendor   string
	App      string
	Slug     string
	Platform string // runtime.GOOS style: linux, darwin, windows
	Hostname string
	Home     string
	Env      map[string]string
}

// Normalize fills unset fields from the running system.
func (r *Resolver) Normalize() {
	if r.Platform == "" {
		r.Platform = runtime.GOOS
	}
	if r.Hostname == "" {
		if hostname, err := os.Hostname(); err == nil {
			r.Hostname = hostname
		}
	}
	if r.Home == "" {
		if home, err := os.UserHomeDir(); err == nil {
			r.Home = home
		}
	}
	if r.Env == nil {
		r.Env = map[string]string{}
		for _, entry := range os.Environ() {
			if key, value, found := strings.Cut(entry, "="); found {
				r.Env[key] = value
			}
		}
	}
}

// AppPaths returns system-wide defaults for the app layer, lowest precedence.
func (r *Resolver) AppPaths() []string {
	return collectLayer(r.appBase())
}

// HostPaths returns the host layer candidate: hosts/<hostname>.toml under the
// app base, included only when the file exists.
func (r *Resolver) HostPaths() []string {
	if r.Hostname == "" {
		return nil
	}
	candidate := filepath.Join(r.appBase(), "hosts", r.Hostname+".toml")
	if isFile(candidate) {
		return []string{candidate}
	}
	return nil
}

// UserPaths returns per-user configuration locations.
func (r *Resolver) UserPaths() []string {
	return collectLayer(r.userBase())
}

// DotenvExtras returns the OS-specific .env candidate appended after the
// project-directory upward search.
func (r *Resolver) DotenvExtras() []string {
	var candidate string
	switch {
	case r.isWindows():
		candidate = filepath.Join(r.appDataRoot(), r.Vendor, r.App, ".env")
	case r.isMac():
		candidate = filepath.Join(r.macHomeRoot(), r.Vendor, r.App, ".env")
	default:
		candidate = filepath.Join(r.xdgConfigHome(), r.Slug, ".env")
	}
	return []string{candidate}
}

// Destination returns the canonical file path a deployed artifact should
// occupy for the given layer target (app, host, or user). Unlike the *Paths
// methods it does not require the path to exist yet.
func (r *Resolver) Destination(target string) (string, error) {
	switch strings.ToLower(target) {
	case "app":
		return filepath.Join(r.appBase(), "config.toml"), nil
	case "host":
		return filepath.Join(r.appBase(), "hosts", r.Hostname+".toml"), nil
	case "user":
		return filepath.Join(r.userBase(), "config.toml"), nil
	default:
		return "", fmt.Errorf("unsupported deployment target: %s", target)
	}
}

func (r *Resolver) appBase() string {
	switch {
	case r.isWindows():
		return filepath.Join(r.programDataRoot(), r.Vendor, r.App)
	case r.isMac():
		return filepath.Join(r.macAppRoot(), r.Vendor, r.App)
	default:
		return filepath.Join(r.etcRoot(), r.Slug)
	}
}

func (r *Resolver) userBase() string {
	switch {
	case r.isWindows():
		base := filepath.Join(r.appDataRoot(), r.Vendor, r.App)
		if _, err := os.Stat(base); err != nil {
			return filepath.Join(r.localAppDataRoot(), r.Vendor, r.App)
		}
		return base
	case r.isMac():
		return filepath.Join(r.macHomeRoot(), r.Vendor, r.App)
	default:
		return filepath.Join(r.xdgConfigHome(), r.Slug)
	}
}

func (r *Resolver) isMac() bool     { return r.Platform == "darwin" }
func (r *Resolver) isWindows() bool { return strings.HasPrefix(r.Platform, "win") }

func (r *Resolver) etcRoot() string {
	return r.envOr(EnvEtcRoot, "/etc")
}

func (r *Resolver) xdgConfigHome() string {
	return r.envOr(EnvXDGConfigHome, filepath.Join(r.Home, ".config"))
}

func (r *Resolver) macAppRoot() string {
	return r.envOr(EnvMacAppRoot, "/Library/Application Support")
}

func (r *Resolver) macHomeRoot() string {
	return r.envOr(EnvMacHomeRoot, filepath.Join(r.Home, "Library", "Application Support"))
}

func (r *Resolver) programDataRoot() string {
	if v := r.Env[EnvProgramData]; v != "" {
		return v
	}
	return r.envOr("ProgramData", `C:\ProgramData`)
}

func (r *Resolver) appDataRoot() string {
	if v := r.Env[EnvAppData]; v != "" {
		return v
	}
	return r.envOr("APPDATA", filepath.Join(r.Home, "AppData", "Roaming"))
}

func (r *Resolver) localAppDataRoot() string {
	if v := r.Env[EnvLocalAppData]; v != "" {
		return v
	}
	return r.envOr("LOCALAPPDATA", filepath.Join(r.Home, "AppData", "Local"))
}

func (r *Resolver) envOr(key, fallback string) string {
	if v := r.Env[key]; v != "" {
		return v
	}
	return fallback
}

// collectLayer yields base/config.toml plus the contents of base/config.d in
// lexical order, filtered to the supported extensions.
func collectLayer(base string) []string {
	var out []string
	canonical := filepath.Join(base, "config.toml")
	if isFile(canonical) {
		out = append(out, canonical)
	}
	dropIn := filepath.Join(base, "config.d")
	entries, err := os.ReadDir(dropIn)
	if err != nil {
		return out
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if allowedExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		out = append(out, filepath.Join(dropIn, name))
	}
	return out
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
