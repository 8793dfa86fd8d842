// Package fixture loads named field-override sets from YAML files.
//
// A fixture file maps entity keys to field values:
//
//	User:
//	  Email: admin@example.com
//	  Role: admin
//	Comment:
//	  Body: pinned
//
// The resulting Set plugs straight into EntityFactory.Build or Make as an
// override map, letting test suites keep well-known fixture values out of
// Go source. Loading is deliberately thin: read, parse, hand back maps.
package fixture

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Set maps an entity key to the field overrides declared for that entity.
type Set map[string]map[string]any

// Load reads a fixture set from a YAML file. If path is a directory, it
// looks for fixtures.yaml or fixtures.yml inside it.
func Load(path string) (Set, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	fixturePath := path
	if info.IsDir() {
		yamlPath := filepath.Join(path, "fixtures.yaml")
		if _, err := os.Stat(yamlPath); err == nil {
			fixturePath = yamlPath
		} else {
			ymlPath := filepath.Join(path, "fixtures.yml")
			if _, err := os.Stat(ymlPath); err != nil {
				return nil, fmt.Errorf("no fixtures.yaml or fixtures.yml found in %s", path)
			}
			fixturePath = ymlPath
		}
	}

	data, err := os.ReadFile(fixturePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a fixture set from YAML bytes.
func Parse(data []byte) (Set, error) {
	var s Set
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse fixture set: %w", err)
	}
	if s == nil {
		s = Set{}
	}
	return s, nil
}

// Overrides returns the override map declared for the entity key, or nil
// when the set has no entry for it.
func (s Set) Overrides(key string) map[string]any {
	return s[key]
}

// Merge returns a new Set combining s with other. Entries in other win on
// both the entity and the individual field level.
func (s Set) Merge(other Set) Set {
	merged := make(Set, len(s)+len(other))
	for key, fields := range s {
		m := make(map[string]any, len(fields))
		for k, v := range fields {
			m[k] = v
		}
		merged[key] = m
	}
	for key, fields := range other {
		m, ok := merged[key]
		if !ok {
			m = make(map[string]any, len(fields))
			merged[key] = m
		}
		for k, v := range fields {
			m[k] = v
		}
	}
	return merged
}
