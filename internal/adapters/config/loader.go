// Package config provides the harness file loader for exportmap.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.trai.ch/exportmap/internal/core/domain"
	"go.trai.ch/exportmap/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// DefaultEntry is the entry point used when the harness file does not name one.
const DefaultEntry = "src/index.ts"

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads the harness file found from cwd upwards.
// Without a harness file the default matrix rooted at cwd is returned.
func (l *Loader) Load(cwd string) (*domain.Harness, error) {
	cwd, err := absDir(cwd)
	if err != nil {
		return nil, err
	}

	configPath, err := findConfiguration(cwd)
	if err != nil {
		if errors.Is(err, domain.ErrConfigNotFound) {
			return defaultHarness(cwd), nil
		}
		return nil, err
	}
	return l.loadHarnessfile(configPath)
}

// DiscoverRoot walks up from cwd to the directory holding exportmap.yaml.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	cwd, err := absDir(cwd)
	if err != nil {
		return "", err
	}

	configPath, err := findConfiguration(cwd)
	if err != nil {
		return "", err
	}
	return filepath.Dir(configPath), nil
}

// absDir makes cwd absolute so the upward walk does not stop at ".".
func absDir(cwd string) (string, error) {
	abs, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to resolve working directory"), "cwd", cwd)
	}
	return abs, nil
}

func findConfiguration(cwd string) (string, error) {
	currentDir := cwd
	for {
		candidate := filepath.Join(currentDir, domain.HarnessFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}

	return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "no harness file"), "cwd", cwd)
}

func defaultHarness(root string) *domain.Harness {
	root = filepath.Clean(root)
	return &domain.Harness{
		Root:       root,
		PackageDir: root,
		Entry:      DefaultEntry,
		Subpaths:   domain.DefaultSubpaths(),
		Scenarios:  domain.DefaultScenarios(),
	}
}

func (l *Loader) loadHarnessfile(configPath string) (*domain.Harness, error) {
	var file Harnessfile
	if err := readAndUnmarshalYAML(configPath, &file); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}

	if file.Version != "" && file.Version != SupportedVersion {
		err := zerr.Wrap(domain.ErrUnsupportedVersion, "cannot load "+domain.HarnessFileName)
		return nil, zerr.With(err, "version", file.Version)
	}

	h := defaultHarness(filepath.Dir(configPath))
	h.ConfigPath = configPath
	h.PackageDir = resolvePath(h.Root, file.Package)
	if file.Entry != "" {
		h.Entry = filepath.Clean(file.Entry)
	}
	if file.Parallelism < 0 {
		l.Logger.Warn(fmt.Sprintf("ignoring negative parallelism %d in %s", file.Parallelism, domain.HarnessFileName))
	} else {
		h.Parallelism = file.Parallelism
	}

	if file.Subpaths.Kind != 0 {
		subpaths, err := decodeSubpaths(&file.Subpaths)
		if err != nil {
			return nil, err
		}
		h.Subpaths = subpaths
	}

	if file.Scenarios.Kind != 0 {
		scenarios, err := l.decodeScenarios(&file.Scenarios)
		if err != nil {
			return nil, err
		}
		if len(scenarios) > 0 {
			h.Scenarios = scenarios
		}
	}

	return h, nil
}

func decodeSubpaths(n *yaml.Node) ([]domain.NamedSubpath, error) {
	if n.Kind != yaml.MappingNode {
		return nil, zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, "subpaths must be a mapping"), "line", n.Line)
	}

	subpaths := make([]domain.NamedSubpath, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		var subpath string
		if err := n.Content[i+1].Decode(&subpath); err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "subpath", n.Content[i].Value)
		}
		subpaths = append(subpaths, domain.NamedSubpath{Name: n.Content[i].Value, Subpath: subpath})
	}

	if err := domain.ValidateSubpaths(subpaths); err != nil {
		return nil, err
	}
	return subpaths, nil
}

func (l *Loader) decodeScenarios(n *yaml.Node) ([]domain.Scenario, error) {
	if n.Kind != yaml.MappingNode {
		return nil, zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, "scenarios must be a mapping"), "line", n.Line)
	}

	scenarios := make([]domain.Scenario, 0, len(n.Content)/2)
	seen := make(map[string]int, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		name := n.Content[i].Value
		if line, dup := seen[name]; dup {
			err := zerr.With(zerr.Wrap(domain.ErrDuplicateScenarioName, "invalid harness file"), "scenario", name)
			err = zerr.With(err, "first_occurrence", line)
			return nil, zerr.With(err, "duplicate_at", n.Content[i].Line)
		}
		seen[name] = n.Content[i].Line

		s, err := l.buildScenario(name, n.Content[i+1])
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func (l *Loader) buildScenario(name string, n *yaml.Node) (domain.Scenario, error) {
	var dto ScenarioDTO
	if err := n.Decode(&dto); err != nil {
		return domain.Scenario{}, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "scenario", name)
	}

	s := domain.Scenario{
		Name:               name,
		Bundler:            domain.Bundler(dto.Bundler),
		Runtime:            domain.Runtime(dto.Runtime),
		Format:             domain.Format(dto.Format),
		Platform:           domain.Platform(dto.Platform),
		Conditions:         dto.Conditions,
		ConditionsOverride: dto.ConditionsOverride,
		External:           dto.External,
		Build:              dto.Build,
		Run:                dto.Run,
		Env:                dto.Env,
		Expect:             dto.Expect,
		Timeout:            dto.Timeout,
	}

	if dto.Exports.Kind != 0 {
		exports, err := decodeExports(&dto.Exports)
		if err != nil {
			return domain.Scenario{}, zerr.With(err, "scenario", name)
		}
		s.Exports = &exports
	}

	s.Normalize()
	if err := s.Validate(); err != nil {
		return domain.Scenario{}, err
	}

	if len(s.ConditionsOverride) > 0 && len(s.Conditions) > 0 {
		l.Logger.Warn(fmt.Sprintf("scenario %s: 'conditions' has no effect when 'conditions_override' is set", name))
	}
	if s.Bundler == domain.BundlerEsbuild && len(s.Build) > 0 {
		l.Logger.Warn(fmt.Sprintf("scenario %s: 'build' replaces the in-process esbuild bundle", name))
	}

	return s, nil
}

func resolvePath(root, configured string) string {
	if configured == "" {
		return root
	}
	if filepath.IsAbs(configured) {
		return filepath.Clean(configured)
	}
	return filepath.Clean(filepath.Join(root, configured))
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is discovered by walking up from cwd
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error())
	}

	return nil
}
