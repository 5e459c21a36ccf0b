package source

import (
	"path/filepath"

	"github.com/pkg/errors"
)

// Glob resolves each pattern, joined with baseDir, to the matching paths.
// Matches of one pattern are in lexical order and the per-pattern lists are
// concatenated in pattern order. A pattern that matches nothing contributes
// nothing; a malformed pattern is an error.
func Glob(baseDir string, patterns []string) ([]string, error) {
	var paths []string
	for _, p := range patterns {
		matches, err := filepath.Glob(filepath.Join(baseDir, p))
		if err != nil {
			return nil, errors.Wrapf(err, "glob %q", p)
		}
		paths = append(paths, matches...)
	}
	return paths, nil
}
