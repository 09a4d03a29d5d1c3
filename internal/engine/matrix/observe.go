package matrix

import (
	"bytes"
	"encoding/json"
	"path"
	"path/filepath"
	"strings"

	"go.trai.ch/exportmap/internal/core/domain"
	"go.trai.ch/exportmap/internal/engine/resolver"
	"go.trai.ch/zerr"
)

// ParseReport decodes the first JSON object printed by a runtime.
// Anything printed before it, such as warnings, is ignored.
func ParseReport(stdout []byte) (domain.Report, error) {
	start := bytes.IndexByte(stdout, '{')
	if start < 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrObservationParseFailed, "no JSON object in output"), "bytes", len(stdout))
	}

	var report domain.Report
	if err := json.NewDecoder(bytes.NewReader(stdout[start:])).Decode(&report); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrObservationParseFailed, err.Error()), "bytes", len(stdout))
	}
	if report == nil {
		return domain.Report{}, nil
	}
	return report, nil
}

// ObservedReport turns bundler observations into a report.
// Each subpath's specifier is looked up among the observations and the resolved file
// is traced back through the export map to recover the condition path.
// Files the map cannot reach keep their name but get no condition path.
func ObservedReport(
	pkg *domain.Package,
	exports domain.ExportMap,
	subpaths []domain.NamedSubpath,
	root string,
	observed []domain.Observation,
) domain.Report {
	files := make(map[string]string, len(observed))
	for _, o := range observed {
		if _, ok := files[o.Specifier]; !ok {
			files[o.Specifier] = o.File
		}
	}

	dirs := packageDirs(root, pkg.Dir)
	report := make(domain.Report)
	for _, sp := range subpaths {
		file, ok := files[pkg.Specifier(sp.Subpath)]
		if !ok {
			continue
		}

		entry := domain.ReportEntry{Filename: path.Base(filepath.ToSlash(file))}
		if target, ok := relativeTarget(root, dirs, file); ok {
			if res, ok := resolver.Trace(exports, sp.Subpath, target); ok {
				entry = res.Entry()
			}
		}
		report[sp.Name] = entry
	}
	return report
}

// packageDirs returns the package directory and, when it is a symlink as in
// pnpm layouts, its real location.
func packageDirs(root, dir string) []string {
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	dirs := []string{dir}
	if real, err := filepath.EvalSymlinks(dir); err == nil && real != dir {
		dirs = append(dirs, real)
	}
	return dirs
}

// relativeTarget expresses file as an export target, e.g. "./dist/index.mjs".
func relativeTarget(root string, dirs []string, file string) (string, bool) {
	abs := filepath.FromSlash(file)
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(root, abs)
	}

	for _, dir := range dirs {
		rel, err := filepath.Rel(dir, abs)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return "./" + filepath.ToSlash(rel), true
	}
	return "", false
}
