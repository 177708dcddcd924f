package mapcfg

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// LoadFS walks the provided filesystem and parses JSON/YAML map configuration
// documents. When fsys is nil or no documents are present, the returned
// registry is empty. Defaults from later files overlay earlier ones; a
// resource may only be declared once across all files.
func LoadFS(fsys fs.FS) (*Registry, error) {
	registry := &Registry{resources: make(map[string]ResourceConfig)}
	if fsys == nil {
		return registry, nil
	}

	defaults := []byte("{}")

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isConfigFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("mapcfg: read %s: %w", path, err)
		}

		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}

		if doc.Defaults != nil {
			overlay, err := OptionsJSON(*doc.Defaults)
			if err != nil {
				return fmt.Errorf("mapcfg: encode defaults from %s: %w", path, err)
			}
			defaults, err = MergeOptions(defaults, overlay)
			if err != nil {
				return fmt.Errorf("mapcfg: merge defaults from %s: %w", path, err)
			}
		}

		for name, config := range doc.Resources {
			key := normaliseKey(name)
			if key == "" {
				return fmt.Errorf("mapcfg: file %s declares a resource with an empty name", path)
			}
			if _, exists := registry.resources[key]; exists {
				return fmt.Errorf("mapcfg: duplicate resource %q (file %s)", name, path)
			}
			if err := validateResourceConfig(config, name, path); err != nil {
				return err
			}
			registry.resources[key] = config
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	merged, err := UnmarshalOptions(defaults)
	if err != nil {
		return nil, fmt.Errorf("mapcfg: decode merged defaults: %w", err)
	}
	registry.defaults = merged

	return registry, nil
}

type documentFile struct {
	Defaults  *MapOptions               `json:"defaults" yaml:"defaults"`
	Resources map[string]ResourceConfig `json:"resources" yaml:"resources"`
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("mapcfg: file %s is empty", source)
	}

	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	doc = documentFile{}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	return documentFile{}, fmt.Errorf("mapcfg: parse %s: invalid JSON or YAML", source)
}

func validateResourceConfig(config ResourceConfig, name, source string) error {
	for idx, group := range config.Groups {
		if len(group) == 0 {
			return fmt.Errorf("mapcfg: resource %q (file %s) declares an empty group at index %d", name, source, idx)
		}
		for _, member := range group {
			if strings.TrimSpace(member) == "" {
				return fmt.Errorf("mapcfg: resource %q (file %s) group %d contains an empty field name", name, source, idx)
			}
		}
	}
	for idx, field := range config.ListFields {
		if strings.TrimSpace(field) == "" {
			return fmt.Errorf("mapcfg: resource %q (file %s) listFields entry %d is empty", name, source, idx)
		}
	}
	return nil
}

func isConfigFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
