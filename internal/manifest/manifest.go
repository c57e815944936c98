// Package manifest reads the dependency groups of a package.json file in
// declaration order.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// Group names a dependency section of package.json.
type Group string

const (
	Dependencies    Group = "dependencies"
	DevDependencies Group = "devDependencies"
)

// Dependency is a declared package and its version range.
type Dependency struct {
	Name  string
	Range string
	Group Group
}

// ReadError is returned when the manifest cannot be read or is not a JSON
// object.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Read loads the manifest at path.
func Read(path string) ([]Dependency, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	deps, err := Parse(data)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	return deps, nil
}

// Parse returns dependencies followed by devDependencies, each in
// declaration order. A name declared again, in either group, replaces the
// earlier range but keeps the earlier position.
func Parse(data []byte) ([]Dependency, error) {
	groups, err := decodeGroups(data)
	if err != nil {
		return nil, err
	}

	var deps []Dependency
	index := make(map[string]int)
	for _, group := range []Group{Dependencies, DevDependencies} {
		for _, entry := range groups[group] {
			if i, ok := index[entry.Name]; ok {
				deps[i].Range = entry.Range
				deps[i].Group = group
				continue
			}
			index[entry.Name] = len(deps)
			deps = append(deps, Dependency{Name: entry.Name, Range: entry.Range, Group: group})
		}
	}
	return deps, nil
}

type entry struct {
	Name  string
	Range string
}

// decodeGroups walks the top-level object with a token decoder so member
// order survives; encoding/json maps do not keep it.
func decodeGroups(data []byte) (map[Group][]entry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	groups := make(map[Group][]entry)
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		group := Group(key)
		if group != Dependencies && group != DevDependencies {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, err
			}
			continue
		}
		entries, err := decodeGroup(dec, group)
		if err != nil {
			return nil, err
		}
		// Repeated top-level keys: the last one wins, as in JSON.parse.
		groups[group] = entries
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level object")
	}
	return groups, nil
}

func decodeGroup(dec *json.Decoder, group Group) ([]entry, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("%s: expected an object", group)
	}

	var entries []entry
	seen := make(map[string]int)
	for dec.More() {
		name, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		var rng string
		if err := dec.Decode(&rng); err != nil {
			return nil, fmt.Errorf("%s.%s: %w", group, name, err)
		}
		if i, ok := seen[name]; ok {
			entries[i].Range = rng
			continue
		}
		seen[name] = len(entries)
		entries = append(entries, entry{Name: name, Range: rng})
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return entries, nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}
