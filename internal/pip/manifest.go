// SPDX-License-Identifier: MPL-2.0

package pip

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadManifest reads a plain-text dependency manifest: one specifier per
// line, blank lines and '#' comments skipped.
func ReadManifest(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening manifest: %w", err)
	}
	defer func() { _ = f.Close() }() // read-only file handle

	var specs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		specs = append(specs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	return specs, nil
}

// SpecName returns the package-name token of a dependency specifier, i.e. the
// part before any version constraint, extras bracket, or environment marker.
func SpecName(spec string) string {
	name := spec
	if idx := strings.IndexAny(name, "=<>!~[; "); idx >= 0 {
		name = name[:idx]
	}
	return strings.TrimSpace(name)
}
