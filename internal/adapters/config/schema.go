package config

import (
	"time"

	"go.trai.ch/exportmap/internal/core/domain"
	"gopkg.in/yaml.v3"
)

// SupportedVersion is the only harness file schema version understood by the loader.
const SupportedVersion = "1"

// Harnessfile represents the structure of the exportmap.yaml configuration file.
type Harnessfile struct {
	Version     string `yaml:"version"`
	Package     string `yaml:"package"`
	Entry       string `yaml:"entry"`
	Parallelism int    `yaml:"parallelism"`
	// Subpaths and Scenarios are decoded by hand to keep their declaration order.
	Subpaths  yaml.Node `yaml:"subpaths"`
	Scenarios yaml.Node `yaml:"scenarios"`
}

// ScenarioDTO represents a scenario definition in the configuration.
type ScenarioDTO struct {
	Bundler            string            `yaml:"bundler"`
	Runtime            string            `yaml:"runtime"`
	Format             string            `yaml:"format"`
	Platform           string            `yaml:"platform"`
	Conditions         []string          `yaml:"conditions"`
	ConditionsOverride []string          `yaml:"conditions_override"`
	External           []string          `yaml:"external"`
	Build              []string          `yaml:"build"`
	Run                []string          `yaml:"run"`
	Env                map[string]string `yaml:"env"`
	Expect             domain.Report     `yaml:"expect"`
	Exports            yaml.Node         `yaml:"exports"`
	Timeout            time.Duration     `yaml:"timeout"`
}
