// Package utils resolves file and glob arguments to document paths.
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ContainsGlob reports whether a pattern contains glob characters.
func ContainsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// ExpandPaths resolves each argument to file paths relative to root.
// Plain paths are kept as given (even if they do not exist, so the caller
// can report them); glob patterns, including ** via doublestar, expand to
// the regular files they match. A pattern matching nothing is returned
// unchanged so that it surfaces as a missing file. Duplicates are removed
// while keeping first-seen order.
func ExpandPaths(root string, args []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, arg := range args {
		path := arg
		if !filepath.IsAbs(path) && root != "" {
			path = filepath.Join(root, path)
		}
		if !ContainsGlob(arg) {
			add(path)
			continue
		}

		matches, err := doublestar.FilepathGlob(path)
		if err != nil {
			return nil, fmt.Errorf("glob error: %w", err)
		}
		var files []string
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil || info.IsDir() {
				continue
			}
			files = append(files, match)
		}
		if len(files) == 0 {
			add(path)
			continue
		}
		sort.Strings(files)
		for _, f := range files {
			add(f)
		}
	}
	return out, nil
}
