package parser

import (
	"fmt"
	"path/filepath"
	"sort"
)

// ExpandInputs resolves the command-line inputs into an ordered list of
// files to read. No inputs means standard input. "-" is kept in place.
//
// Each glob pattern's matches are sorted (rotated logs named access.log.1,
// access.log.2 read in name order), but the patterns themselves keep the
// order they were given in, since the analysis depends on line order.
// A pattern matching nothing is returned as-is so opening it reports a
// proper file-not-found error. Duplicate files are read once.
func ExpandInputs(patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return []string{StdinName}, nil
	}

	seen := make(map[string]bool)
	var result []string

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			result = append(result, path)
		}
	}

	for _, pattern := range patterns {
		if pattern == StdinName {
			add(pattern)
			continue
		}

		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}

		if len(matches) == 0 {
			add(pattern)
			continue
		}

		sort.Strings(matches)
		for _, match := range matches {
			add(match)
		}
	}

	return result, nil
}
