// Package pkgjson reads package descriptors.
package pkgjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/exportmap/internal/core/domain"
	"go.trai.ch/zerr"
)

// Loader implements ports.PackageLoader for package.json files.
type Loader struct{}

// NewLoader creates a new Loader.
func NewLoader() *Loader {
	return &Loader{}
}

type descriptor struct {
	Name    string          `json:"name"`
	Version string          `json:"version"`
	Exports json.RawMessage `json:"exports"`
}

// Load reads dir/package.json.
func (l *Loader) Load(dir string) (*domain.Package, error) {
	path := filepath.Join(dir, domain.PackageFileName)

	// #nosec G304 -- dir comes from the harness file or the command line
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrPackageReadFailed.Error()), "path", path)
	}

	pkg, err := Parse(data)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	pkg.Dir = dir
	return pkg, nil
}

// Parse decodes a package.json document.
func Parse(data []byte) (*domain.Package, error) {
	var d descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, zerr.Wrap(err, domain.ErrPackageParseFailed.Error())
	}
	if len(d.Exports) == 0 {
		return nil, zerr.Wrap(domain.ErrMissingExports, "nothing to resolve")
	}

	exports, err := ParseExports(d.Exports)
	if err != nil {
		return nil, err
	}

	return &domain.Package{
		Name:    d.Name,
		Version: d.Version,
		Exports: exports,
	}, nil
}

// ParseExports decodes the value of an "exports" field.
// Object keys keep their declaration order and duplicates are reported instead of collapsed.
func ParseExports(data []byte) (domain.ExportMap, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	root, err := decodeNode(dec, nil)
	if err != nil {
		return domain.ExportMap{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return domain.ExportMap{}, zerr.Wrap(errors.New("trailing data after exports value"), domain.ErrPackageParseFailed.Error())
	}

	return domain.ExportMapFrom(root)
}

func decodeNode(dec *json.Decoder, path []string) (domain.ConditionNode, error) {
	tok, err := dec.Token()
	if err != nil {
		return domain.ConditionNode{}, zerr.Wrap(err, domain.ErrPackageParseFailed.Error())
	}

	switch v := tok.(type) {
	case string:
		return domain.Target(v), nil
	case json.Delim:
		if v == '[' {
			return domain.ConditionNode{}, malformed("fallback arrays are not supported", path)
		}
		return decodeObject(dec, path)
	case nil:
		return domain.ConditionNode{}, malformed("null target", path)
	default:
		return domain.ConditionNode{}, malformed("target must be a string", path)
	}
}

func decodeObject(dec *json.Decoder, path []string) (domain.ConditionNode, error) {
	entries := []domain.ConditionEntry{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return domain.ConditionNode{}, zerr.Wrap(err, domain.ErrPackageParseFailed.Error())
		}
		key, _ := tok.(string)

		child, err := decodeNode(dec, append(path, key))
		if err != nil {
			return domain.ConditionNode{}, err
		}
		entries = append(entries, domain.When(key, child))
	}

	// closing brace
	if _, err := dec.Token(); err != nil {
		return domain.ConditionNode{}, zerr.Wrap(err, domain.ErrPackageParseFailed.Error())
	}
	return domain.Conditions(entries...), nil
}

func malformed(reason string, path []string) error {
	err := zerr.Wrap(domain.ErrMalformedExportMap, reason)
	if len(path) > 0 {
		err = zerr.With(err, "path", strings.Join(path, "."))
	}
	return err
}
