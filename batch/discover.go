package batch

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/poiesic/reqtrace/workbook"
)

// Discover expands glob patterns (with ** support) into a sorted,
// de-duplicated list of supported input files. Files whose name contains
// outputMarker are skipped so a batch never re-reads its own exports.
func Discover(patterns []string, outputMarker string) ([]string, error) {
	seen := make(map[string]struct{})
	var paths []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if _, err := workbook.DetectFormat(m); err != nil {
				continue
			}
			base := filepath.Base(m)
			if strings.HasPrefix(base, "~$") {
				continue // Excel lock file
			}
			if outputMarker != "" && strings.Contains(base, outputMarker) {
				continue
			}
			clean := filepath.Clean(m)
			if _, dup := seen[clean]; dup {
				continue
			}
			seen[clean] = struct{}{}
			paths = append(paths, clean)
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoInputs, strings.Join(patterns, " "))
	}
	slices.Sort(paths)
	return paths, nil
}

// OutputPath derives the export path for input: the input name plus
// marker, in dir when set or next to the input otherwise.
func OutputPath(input, dir, marker string) string {
	ext := filepath.Ext(input)
	name := strings.TrimSuffix(filepath.Base(input), ext) + marker + ext
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, name)
}
