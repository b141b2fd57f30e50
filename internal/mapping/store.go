package mapping

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/agmd-labs/agmd/internal/branding"
	"go.yaml.in/yaml/v3"
)

var (
	// ErrMissingConfig is returned by Load when the mapping file does not exist.
	ErrMissingConfig = errors.New("missing config file")

	// ErrInvalidConfig is returned when the mapping file is malformed.
	ErrInvalidConfig = errors.New("invalid config")
)

type record struct {
	Path string         `yaml:"path"`
	Mds  []sourceRecord `yaml:"mds"`
}

type sourceRecord struct {
	Name   string `yaml:"name"`
	Module *bool  `yaml:"module"`
}

// Load reads and validates the mapping file at path.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s. Run `%s init` first", ErrMissingConfig, path, branding.CLIName())
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse validates and decodes mapping file content. source names the file in
// error messages.
func Parse(source string, data []byte) (*Set, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w in %s: %v", ErrInvalidConfig, source, err)
	}
	if raw == nil {
		return NewSet(), nil
	}

	issues, err := validate(raw)
	if err != nil {
		return nil, err
	}
	if len(issues) > 0 {
		msgs := make([]string, len(issues))
		for i, issue := range issues {
			msgs[i] = issue.String()
		}
		return nil, fmt.Errorf("%w in %s: %s", ErrInvalidConfig, source, strings.Join(msgs, "; "))
	}

	var records []record
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w in %s: %v", ErrInvalidConfig, source, err)
	}

	set := NewSet()
	for _, rec := range records {
		sources := make([]SourceEntry, 0, len(rec.Mds))
		for _, md := range rec.Mds {
			entry := SourceEntry{Name: strings.TrimSpace(md.Name)}
			if md.Module != nil {
				entry.Module = *md.Module
			}
			sources = append(sources, entry)
		}
		set.Put(rec.Path, sources)
	}
	return set, nil
}

// Save writes set to path as a list of {path, mds} records, preserving order.
func Save(path string, set *Set) error {
	data, err := Marshal(set)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// Marshal renders set in the mapping file format.
func Marshal(set *Set) ([]byte, error) {
	records := set.Mappings()
	for i := range records {
		if records[i].Sources == nil {
			records[i].Sources = []SourceEntry{}
		}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return buf.Bytes(), nil
}
