package domain

import "strings"

// Package is the part of a package descriptor the harness cares about.
type Package struct {
	Name    string
	Version string
	// Dir is the directory holding package.json.
	Dir     string
	Exports ExportMap
}

// Specifier returns the bare import specifier for subpath, e.g. "pkg/client" for "./client".
func (p Package) Specifier(subpath string) string {
	if subpath == RootSubpath {
		return p.Name
	}
	return p.Name + strings.TrimPrefix(subpath, RootSubpath)
}

// Observation is one import the bundler saw resolved to a file.
type Observation struct {
	// Specifier is the import as written in the source, e.g. "@scope/pkg/client".
	Specifier string
	// File is the resolved file path.
	File string
}
