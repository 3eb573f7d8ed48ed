// Package dotenv discovers and parses .env files into nested configuration
// trees. Keys nest on the shared "__" delimiter and values run through the
// shared coercion rules, so a .env file and an exported environment variable
// always produce the same shape.
package dotenv

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/layercfg/layercfg/internal/cfgerr"
	"github.com/layercfg/layercfg/internal/flatkey"
	"github.com/layercfg/layercfg/internal/observe"
)

// Loader finds the first .env file walking upward from a start directory,
// then through any extra candidate paths supplied by the path resolver.
type Loader struct {
	// Extras are absolute candidate paths (typically OS config directories)
	// tried after the upward search.
	Extras []string
}

// Load returns the parsed payload of the first .env file found and the path
// it was read from. A missing file is not an error: the payload is nil and
// the path empty. A malformed file aborts the whole source — no partial
// nested structure survives into the merge.
func (l *Loader) Load(startDir string) (map[string]any, string, error) {
	for _, candidate := range l.candidates(startDir) {
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		payload, err := Parse(candidate)
		if err != nil {
			return nil, "", err
		}
		observe.Layer("dotenv", candidate).Int("keys", len(payload)).Msg("dotenv_loaded")
		return payload, candidate, nil
	}
	observe.Layer("dotenv", "").Msg("dotenv_not_found")
	return nil, "", nil
}

func (l *Loader) candidates(startDir string) []string {
	base := startDir
	if base == "" {
		if cwd, err := os.Getwd(); err == nil {
			base = cwd
		}
	}
	var out []string
	seen := map[string]bool{}
	dir := filepath.Clean(base)
	for {
		candidate := filepath.Join(dir, ".env")
		if !seen[candidate] {
			seen[candidate] = true
			out = append(out, candidate)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	for _, extra := range l.Extras {
		if !seen[extra] {
			seen[extra] = true
			out = append(out, extra)
		}
	}
	return out
}

// Parse reads a dotenv file into a nested mapping. Blank lines and # comments
// are skipped; every other line must be KEY=VALUE. Values lose surrounding
// quotes and trailing inline comments, then are coerced to typed scalars.
func Parse(path string) (map[string]any, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", cfgerr.ErrNotFound, path)
		}
		return nil, err
	}
	defer file.Close()

	result := map[string]any{}
	scanner := bufio.NewScanner(file)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, rawValue, found := strings.Cut(line, "=")
		if !found {
			observe.Error().Str("layer", "dotenv").Str("path", path).Int("line", lineNumber).Msg("dotenv_invalid_line")
			return nil, fmt.Errorf("%w: malformed line %d in %s", cfgerr.ErrInvalidFormat, lineNumber, path)
		}
		value := stripQuotes(strings.TrimSpace(rawValue))
		if err := flatkey.Assign(result, strings.TrimSpace(key), flatkey.Coerce(value), flatkey.Delimiter); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// stripQuotes trims surrounding quotes and inline comments per common dotenv
// conventions.
func stripQuotes(value string) string {
	if len(value) >= 2 && value[0] == value[len(value)-1] && (value[0] == '"' || value[0] == '\'') {
		return value[1 : len(value)-1]
	}
	if strings.HasPrefix(value, "#") {
		return ""
	}
	if idx := strings.Index(value, " #"); idx >= 0 {
		return strings.TrimSpace(value[:idx])
	}
	return value
}
