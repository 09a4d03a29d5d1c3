// Package resolver selects files from package export maps.
//
// Matching walks a condition tree in declaration order: the first key present in the
// active set wins and is never revisited, "default" is taken only after every explicit
// key at its level has missed, and a branch without a match fails the whole call.
// Bundler and runtime differences live entirely in the active set handed in.
package resolver

import (
	"errors"
	"strings"

	"go.trai.ch/exportmap/internal/core/domain"
	"go.trai.ch/zerr"
)

// Resolve selects the file exported for subpath under the active conditions.
// The map is validated first; a malformed map never yields a partial result.
func Resolve(m domain.ExportMap, subpath string, active domain.ConditionSet) (domain.ResolutionResult, error) {
	if err := m.Validate(); err != nil {
		return domain.ResolutionResult{}, err
	}
	return resolve(m, subpath, active, nil)
}

// ResolveAll resolves every named subpath and collects the results into a report.
// Failed subpaths are left out of the report and their errors are joined.
func ResolveAll(m domain.ExportMap, subpaths []domain.NamedSubpath, active domain.ConditionSet) (domain.Report, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	report := make(domain.Report, len(subpaths))
	var errs error
	for _, sp := range subpaths {
		res, err := resolve(m, sp.Subpath, active, nil)
		if err != nil {
			errs = errors.Join(errs, zerr.With(err, "export", sp.Name))
			continue
		}
		report[sp.Name] = res.Entry()
	}
	return report, errs
}

func resolve(
	m domain.ExportMap,
	subpath string,
	active domain.ConditionSet,
	visit func(Step),
) (domain.ResolutionResult, error) {
	node, ok := m.Lookup(subpath)
	if !ok {
		err := zerr.With(zerr.Wrap(domain.ErrSubpathNotFound, "export map has no entry"), "subpath", subpath)
		return domain.ResolutionResult{}, err
	}

	file, path, ok := walk(node, active, nil, visit)
	if !ok {
		err := zerr.Wrap(domain.ErrConditionsExhausted, "package path not exported for active conditions")
		err = zerr.With(err, "subpath", subpath)
		err = zerr.With(err, "conditions", active.String())
		if len(path) > 0 {
			err = zerr.With(err, "path", strings.Join(path, "."))
		}
		return domain.ResolutionResult{}, err
	}

	return domain.ResolutionResult{
		Subpath:       subpath,
		File:          file,
		ConditionPath: path,
	}, nil
}

// walk returns the target reached from node and the keys taken to reach it.
// On failure the returned path is the branch that was exhausted.
func walk(
	node domain.ConditionNode,
	active domain.ConditionSet,
	path []string,
	visit func(Step),
) (string, []string, bool) {
	if node.IsTarget() {
		return node.Target, path, true
	}

	var fallback *domain.ConditionNode
	for i := range node.Conditions {
		entry := &node.Conditions[i]

		if entry.Key == domain.DefaultCondition {
			fallback = &entry.Node
			emit(visit, path, entry.Key, DecisionDeferred)
			continue
		}

		if active.Has(entry.Key) {
			emit(visit, path, entry.Key, DecisionMatched)
			return walk(entry.Node, active, extend(path, entry.Key), visit)
		}

		emit(visit, path, entry.Key, DecisionSkipped)
	}

	if fallback != nil {
		emit(visit, path, domain.DefaultCondition, DecisionFallback)
		return walk(*fallback, active, extend(path, domain.DefaultCondition), visit)
	}

	return "", path, false
}

func extend(path []string, key string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, key)
}

func emit(visit func(Step), path []string, key string, d Decision) {
	if visit == nil {
		return
	}
	visit(Step{Path: extend(path, key), Key: key, Decision: d})
}
