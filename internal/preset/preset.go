// Package preset locates and loads the JSON mapping and filter templates
// shipped under the data directory.
package preset

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	mappingSuffix = ".mapping.json"
	filtersSuffix = ".filters.json"
)

// Store finds presets under two roots: <dataDir>/presets holds the shipped
// public templates, <dataDir>/proprietary/presets holds optional local-only
// ones.
type Store struct {
	dataDir string
}

func NewStore(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

// DefaultMappingPath is the bundled mapping template used when no mapping is
// given on the command line.
func (s *Store) DefaultMappingPath() string {
	return filepath.Join(s.dataDir, "presets", "mapping.template.json")
}

// DefaultWeekViewPath is the bundled week-view template.
func (s *Store) DefaultWeekViewPath() string {
	return filepath.Join(s.dataDir, "presets", "week_view.template.json")
}

func (s *Store) roots() []string {
	candidates := []string{
		filepath.Join(s.dataDir, "presets"),
		filepath.Join(s.dataDir, "proprietary", "presets"),
	}
	roots := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && info.IsDir() {
			roots = append(roots, c)
		}
	}
	return roots
}

// walk yields the relative path of every file under root. A "proprietary"
// subtree directly inside the public presets root is never exposed; local
// presets live under their own root instead.
func walk(root string, fn func(rel string)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if d.IsDir() {
			if filepath.Base(root) == "presets" && strings.EqualFold(d.Name(), "proprietary") && filepath.Dir(rel) == "." {
				return filepath.SkipDir
			}
			return nil
		}
		fn(filepath.ToSlash(rel))
		return nil
	})
}

// Load resolves a preset by name and decodes its JSON. The name may be a
// root-relative path like "team/foo.mapping.json" or a bare filename, which
// must match exactly one file across all roots.
func (s *Store) Load(name string) (map[string]any, error) {
	roots := s.roots()

	for _, root := range roots {
		candidate := filepath.Join(root, filepath.FromSlash(name))
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return LoadFile(candidate)
		}
	}

	var matches []string
	for _, root := range roots {
		err := walk(root, func(rel string) {
			if filepath.Base(rel) == name {
				matches = append(matches, filepath.Join(root, filepath.FromSlash(rel)))
			}
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan presets in %s: %w", root, err)
		}
	}

	switch len(matches) {
	case 1:
		return LoadFile(matches[0])
	case 0:
		return nil, fmt.Errorf("preset not found: %s", name)
	default:
		rels := make([]string, len(matches))
		for i, m := range matches {
			for _, root := range roots {
				if rel, err := filepath.Rel(root, m); err == nil && !strings.HasPrefix(rel, "..") {
					rels[i] = filepath.ToSlash(rel)
					break
				}
			}
		}
		return nil, fmt.Errorf("preset name is ambiguous: %s, matches: %s", name, strings.Join(rels, ", "))
	}
}

// List returns the mapping and filter preset names, root-relative with their
// type suffix stripped, each list sorted.
func (s *Store) List() (mappings, filters []string, err error) {
	for _, root := range s.roots() {
		walkErr := walk(root, func(rel string) {
			switch {
			case strings.HasSuffix(rel, mappingSuffix):
				mappings = append(mappings, strings.TrimSuffix(rel, mappingSuffix))
			case strings.HasSuffix(rel, filtersSuffix):
				filters = append(filters, strings.TrimSuffix(rel, filtersSuffix))
			}
		})
		if walkErr != nil {
			return nil, nil, fmt.Errorf("failed to scan presets in %s: %w", root, walkErr)
		}
	}
	sort.Strings(mappings)
	sort.Strings(filters)
	return mappings, filters, nil
}

// LoadFile decodes a JSON object from a file on disk.
func LoadFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return out, nil
}
