// Package sidecar loads the optional per-page metadata file that sits
// next to a source page (same base name, .yml extension) and overlays
// it onto the page's front matter context.
package sidecar

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
)

// Extension is the structured-data extension a sidecar file must carry.
const Extension = ".yml"

// PathFor derives the sidecar path for a source page.
func PathFor(sourcePath string) string {
	ext := filepath.Ext(sourcePath)
	return strings.TrimSuffix(sourcePath, ext) + Extension
}

// Load reads and parses the sidecar file for sourcePath. A missing file
// is not an error and yields an empty mapping; a file that exists but
// does not parse as a YAML mapping fails with a sidecar error.
func Load(sourcePath string) (map[string]any, error) {
	path := PathFor(sourcePath)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, apperrors.FileUnreadable(path, err)
	}

	var node any
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, apperrors.MalformedSidecarData(path, err)
	}
	switch fields := node.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return fields, nil
	default:
		return nil, apperrors.MalformedSidecarData(path, apperrors.New(
			apperrors.CategorySidecar, apperrors.SeverityError, "sidecar data is not a mapping"))
	}
}

// Overlay merges sidecar fields under front matter fields as a pure
// function: sidecar keys are added, and on collision the front matter
// value wins. Neither input is mutated.
func Overlay(front, side map[string]any) map[string]any {
	merged := make(map[string]any, len(front)+len(side))
	for k, v := range side {
		merged[k] = v
	}
	for k, v := range front {
		merged[k] = v
	}
	return merged
}
