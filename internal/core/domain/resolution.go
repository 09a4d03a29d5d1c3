package domain

import (
	"path"
	"strings"
)

// ResolutionResult is the outcome of resolving one subpath against an active condition set.
type ResolutionResult struct {
	Subpath string
	File    string
	// ConditionPath lists the condition keys traversed from the subpath to File.
	ConditionPath []string
}

// Filename returns the base name of the resolved file.
func (r ResolutionResult) Filename() string {
	return path.Base(r.File)
}

// ResolvedFrom renders the condition path in the acceptance format, e.g. "exports['.'].node.import".
// The prefix is always the package root, matching what the fixture packages print at runtime.
func (r ResolutionResult) ResolvedFrom() string {
	return renderConditionPath(RootSubpath, r.ConditionPath)
}

// Location renders the condition path anchored at the real subpath, e.g. "exports['./client'].bun.import".
func (r ResolutionResult) Location() string {
	return renderConditionPath(r.Subpath, r.ConditionPath)
}

// Entry converts the result into a report entry.
func (r ResolutionResult) Entry() ReportEntry {
	return ReportEntry{
		Filename:     r.Filename(),
		ResolvedFrom: r.ResolvedFrom(),
	}
}

func renderConditionPath(subpath string, keys []string) string {
	var b strings.Builder
	b.WriteString("exports['")
	b.WriteString(subpath)
	b.WriteString("']")
	for _, k := range keys {
		b.WriteByte('.')
		b.WriteString(k)
	}
	return b.String()
}
