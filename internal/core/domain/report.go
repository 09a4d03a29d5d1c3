package domain

import (
	"regexp"
	"slices"

	"go.trai.ch/zerr"
)

// ReportEntry is the observable result for one named export.
type ReportEntry struct {
	Filename     string `json:"filename" yaml:"filename"`
	ResolvedFrom string `json:"resolvedFrom" yaml:"resolvedFrom"`
}

// Report maps export names (index, client, runtime, ...) to their resolution.
// It is the JSON document printed by the bundled entry point.
type Report map[string]ReportEntry

// Names returns the export names in sorted order.
func (r Report) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// NamedSubpath binds an export name used in reports to a subpath of the export map.
type NamedSubpath struct {
	Name    string
	Subpath string
}

// DefaultSubpaths returns the subpaths imported by the fixture entry point.
func DefaultSubpaths() []NamedSubpath {
	return []NamedSubpath{
		{Name: "index", Subpath: RootSubpath},
		{Name: "client", Subpath: "./client"},
		{Name: "runtime", Subpath: "./runtime"},
	}
}

var validNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// ValidateSubpaths rejects duplicate or invalid export names.
func ValidateSubpaths(subpaths []NamedSubpath) error {
	seen := make(map[string]struct{}, len(subpaths))
	for _, sp := range subpaths {
		if !validNameRegex.MatchString(sp.Name) {
			return zerr.With(zerr.Wrap(ErrInvalidScenarioName, "invalid subpath name"), "name", sp.Name)
		}
		if _, dup := seen[sp.Name]; dup {
			return zerr.With(zerr.Wrap(ErrDuplicateSubpathName, "subpath declared twice"), "name", sp.Name)
		}
		seen[sp.Name] = struct{}{}
	}
	return nil
}

// MismatchKind classifies a difference between two reports.
type MismatchKind string

const (
	// MismatchFilename indicates the resolved files differ.
	MismatchFilename MismatchKind = "filename"
	// MismatchResolvedFrom indicates the condition paths differ.
	MismatchResolvedFrom MismatchKind = "resolvedFrom"
	// MismatchMissing indicates an expected export was not observed.
	MismatchMissing MismatchKind = "missing"
	// MismatchUnexpected indicates an export was observed but not expected.
	MismatchUnexpected MismatchKind = "unexpected"
)

// Mismatch is one difference between an expected and an observed report.
type Mismatch struct {
	Export   string       `json:"export"`
	Kind     MismatchKind `json:"kind"`
	Expected string       `json:"expected,omitempty"`
	Observed string       `json:"observed,omitempty"`
}

// DiffReports compares expected with observed, ordered by export name.
func DiffReports(expected, observed Report) []Mismatch {
	names := make(map[string]struct{}, len(expected)+len(observed))
	for name := range expected {
		names[name] = struct{}{}
	}
	for name := range observed {
		names[name] = struct{}{}
	}

	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	slices.Sort(sorted)

	var out []Mismatch
	for _, name := range sorted {
		exp, hasExp := expected[name]
		obs, hasObs := observed[name]

		switch {
		case !hasObs:
			out = append(out, Mismatch{Export: name, Kind: MismatchMissing, Expected: exp.Filename})
		case !hasExp:
			out = append(out, Mismatch{Export: name, Kind: MismatchUnexpected, Observed: obs.Filename})
		default:
			if exp.Filename != obs.Filename {
				out = append(out, Mismatch{
					Export: name, Kind: MismatchFilename,
					Expected: exp.Filename, Observed: obs.Filename,
				})
			}
			if exp.ResolvedFrom != obs.ResolvedFrom {
				out = append(out, Mismatch{
					Export: name, Kind: MismatchResolvedFrom,
					Expected: exp.ResolvedFrom, Observed: obs.ResolvedFrom,
				})
			}
		}
	}
	return out
}
