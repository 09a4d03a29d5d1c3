package resolver

import (
	"path"

	"go.trai.ch/exportmap/internal/core/domain"
)

// Trace finds the condition path under subpath that leads to file.
// It is the reverse of Resolve and serves tools that only report which file they picked.
// When several branches point at the same file the first one in declaration order wins.
func Trace(m domain.ExportMap, subpath, file string) (domain.ResolutionResult, bool) {
	node, ok := m.Lookup(subpath)
	if !ok {
		return domain.ResolutionResult{}, false
	}

	want := path.Clean(file)
	keys, ok := trace(node, want, nil)
	if !ok {
		return domain.ResolutionResult{}, false
	}

	return domain.ResolutionResult{
		Subpath:       subpath,
		File:          file,
		ConditionPath: keys,
	}, true
}

func trace(node domain.ConditionNode, want string, keys []string) ([]string, bool) {
	if node.IsTarget() {
		return keys, path.Clean(node.Target) == want
	}
	for _, entry := range node.Conditions {
		if found, ok := trace(entry.Node, want, extend(keys, entry.Key)); ok {
			return found, true
		}
	}
	return nil, false
}
