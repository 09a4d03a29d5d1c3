package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// DefaultCondition is the condition key that matches unconditionally.
// It is only taken after every explicit key at the same level has missed.
const DefaultCondition = "default"

// RootSubpath is the subpath of the package entry point.
const RootSubpath = "."

// ConditionNode is one node of an export map.
// It is either a terminal file target or an ordered list of condition entries.
type ConditionNode struct {
	// Target is the file path of a terminal node.
	Target string
	// Conditions holds the condition entries of a branch node in declaration order.
	// A non-nil empty slice is a valid branch that never matches.
	Conditions []ConditionEntry
}

// ConditionEntry pairs a condition key with its nested node.
type ConditionEntry struct {
	Key  string
	Node ConditionNode
}

// Target returns a terminal node pointing at path.
func Target(path string) ConditionNode {
	return ConditionNode{Target: path}
}

// Conditions returns a branch node with the given entries in declaration order.
func Conditions(entries ...ConditionEntry) ConditionNode {
	if entries == nil {
		entries = []ConditionEntry{}
	}
	return ConditionNode{Conditions: entries}
}

// When returns a condition entry for key.
func When(key string, node ConditionNode) ConditionEntry {
	return ConditionEntry{Key: key, Node: node}
}

// IsTarget reports whether the node is a terminal file target.
func (n ConditionNode) IsTarget() bool {
	return n.Conditions == nil
}

// Validate checks the node and all of its descendants.
func (n ConditionNode) Validate() error {
	return n.validate(nil)
}

func (n ConditionNode) validate(path []string) error {
	if n.Conditions == nil {
		if n.Target == "" {
			return malformed("empty target", path)
		}
		return nil
	}

	if n.Target != "" {
		return malformed("node is both a target and a conditions object", path)
	}

	seen := make(map[string]struct{}, len(n.Conditions))
	for _, entry := range n.Conditions {
		if entry.Key == "" {
			return malformed("empty condition key", path)
		}
		if _, dup := seen[entry.Key]; dup {
			return malformed("duplicate condition key "+entry.Key, path)
		}
		seen[entry.Key] = struct{}{}

		if err := entry.Node.validate(append(path, entry.Key)); err != nil {
			return err
		}
	}

	return nil
}

// SubpathEntry pairs an exported subpath with its condition tree.
type SubpathEntry struct {
	Subpath string
	Node    ConditionNode
}

// Export returns a subpath entry.
func Export(subpath string, node ConditionNode) SubpathEntry {
	return SubpathEntry{Subpath: subpath, Node: node}
}

// ExportMap is the "exports" field of a package descriptor.
// Entries are kept in declaration order.
type ExportMap struct {
	Entries []SubpathEntry
}

// NewExportMap builds an export map from entries and validates it.
func NewExportMap(entries ...SubpathEntry) (ExportMap, error) {
	m := ExportMap{Entries: entries}
	if err := m.Validate(); err != nil {
		return ExportMap{}, err
	}
	return m, nil
}

// Validate checks every subpath and condition tree of the map.
func (m ExportMap) Validate() error {
	seen := make(map[string]struct{}, len(m.Entries))
	for _, entry := range m.Entries {
		if !strings.HasPrefix(entry.Subpath, RootSubpath) {
			return zerr.With(malformed("subpath must start with '.'", nil), "subpath", entry.Subpath)
		}
		if _, dup := seen[entry.Subpath]; dup {
			return zerr.With(malformed("duplicate subpath", nil), "subpath", entry.Subpath)
		}
		seen[entry.Subpath] = struct{}{}

		if err := entry.Node.Validate(); err != nil {
			return zerr.With(err, "subpath", entry.Subpath)
		}
	}
	return nil
}

// Lookup returns the condition tree declared for subpath.
func (m ExportMap) Lookup(subpath string) (ConditionNode, bool) {
	for _, entry := range m.Entries {
		if entry.Subpath == subpath {
			return entry.Node, true
		}
	}
	return ConditionNode{}, false
}

// Subpaths returns the declared subpaths in declaration order.
func (m ExportMap) Subpaths() []string {
	out := make([]string, len(m.Entries))
	for i, entry := range m.Entries {
		out[i] = entry.Subpath
	}
	return out
}

func malformed(reason string, path []string) error {
	err := zerr.Wrap(ErrMalformedExportMap, reason)
	if len(path) > 0 {
		err = zerr.With(err, "path", strings.Join(path, "."))
	}
	return err
}

// ExportMapFrom interprets the whole value of an "exports" field.
// A bare target and a conditions object without subpath keys are shorthand for
// the root subpath. Mixing subpath keys and condition keys is malformed.
func ExportMapFrom(value ConditionNode) (ExportMap, error) {
	if value.IsTarget() {
		return NewExportMap(Export(RootSubpath, value))
	}

	subpaths := 0
	for _, entry := range value.Conditions {
		if strings.HasPrefix(entry.Key, RootSubpath) {
			subpaths++
		}
	}

	switch subpaths {
	case 0:
		return NewExportMap(Export(RootSubpath, value))
	case len(value.Conditions):
		entries := make([]SubpathEntry, len(value.Conditions))
		for i, entry := range value.Conditions {
			entries[i] = Export(entry.Key, entry.Node)
		}
		return NewExportMap(entries...)
	default:
		return ExportMap{}, malformed("subpath keys mixed with condition keys", nil)
	}
}
