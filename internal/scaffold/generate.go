package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"dario.cat/mergo"

	"github.com/layercfg/layercfg/internal/envload"
)

// DefaultHostPlaceholder is the filename stub used for host-specific example
// files; users rename it to their machine hostname.
const DefaultHostPlaceholder = "your-hostname"

// ExampleSpec parameterizes a generated example tree. Zero fields are filled
// from exampleDefaults before generation.
type ExampleSpec struct {
	Slug   string
	Vendor string
	App    string

	// Platform selects the directory layout: "posix" or "windows".
	Platform string

	// HostPlaceholder is the filename stub for the host example.
	HostPlaceholder string

	// Force overwrites files that already exist.
	Force bool
}

var exampleDefaults = ExampleSpec{
	Platform:        "posix",
	HostPlaceholder: DefaultHostPlaceholder,
}

// exampleFile is one rendered file of the tree: a destination-relative path
// and its full contents.
type exampleFile struct {
	relPath string
	content string
}

// GenerateExamples writes the canonical example files for each configuration
// layer under dest, returning the paths written. Files that already exist are
// skipped unless spec.Force is set.
func GenerateExamples(dest string, spec ExampleSpec) ([]string, error) {
	if err := mergo.Merge(&spec, exampleDefaults); err != nil {
		return nil, fmt.Errorf("filling example defaults: %w", err)
	}
	if spec.Platform != "posix" && spec.Platform != "windows" {
		return nil, fmt.Errorf("unsupported example platform: %s", spec.Platform)
	}

	var written []string
	for _, file := range buildExampleFiles(spec) {
		path := filepath.Join(dest, filepath.FromSlash(file.relPath))
		if _, err := os.Stat(path); err == nil && !spec.Force {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, []byte(file.content), 0o644); err != nil {
			return nil, err
		}
		written = append(written, path)
	}
	return written, nil
}

func buildExampleFiles(spec ExampleSpec) []exampleFile {
	appConfig := fmt.Sprintf("# Application-wide defaults for %s\n[service]\nendpoint = \"https://api.example.com\"\ntimeout = 10\n", spec.Slug)
	hostConfig := "# Host overrides (replace filename with the machine hostname)\n[service]\ntimeout = 15\n"
	userConfig := fmt.Sprintf("# User-specific preferences for %s %s\n[service]\nretry = 2\n", spec.Vendor, spec.App)
	dropIn := "# Split overrides live in config.d/ and apply in lexical order\n[service]\nretry = 3\n"
	dotenvExample := fmt.Sprintf("# Copy to .env to provide secrets and local overrides\n%s_SERVICE__PASSWORD=changeme\n", envload.DefaultPrefix(spec.Slug))

	if spec.Platform == "windows" {
		appBase := "ProgramData/" + spec.Vendor + "/" + spec.App
		userBase := "AppData/Roaming/" + spec.Vendor + "/" + spec.App
		return []exampleFile{
			{appBase + "/config.toml", appConfig},
			{appBase + "/hosts/" + spec.HostPlaceholder + ".toml", hostConfig},
			{userBase + "/config.toml", userConfig},
			{userBase + "/config.d/10-override.toml", dropIn},
			{".env.example", dotenvExample},
		}
	}
	return []exampleFile{
		{"etc/" + spec.Slug + "/config.toml", appConfig},
		{"etc/" + spec.Slug + "/hosts/" + spec.HostPlaceholder + ".toml", hostConfig},
		{"xdg/" + spec.Slug + "/config.toml", userConfig},
		{"xdg/" + spec.Slug + "/config.d/10-override.toml", dropIn},
		{".env.example", dotenvExample},
	}
}
