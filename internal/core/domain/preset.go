package domain

import "strings"

// CustomPlaceholder stands for user supplied conditions in the preset table.
const CustomPlaceholder = "<custom>"

// Preset is a named active condition set derived from a scenario.
type Preset struct {
	Name   string
	Active ConditionSet
}

// PresetFor maps a scenario onto the active conditions its bundler or runtime passes to the resolver.
// Custom conditions replace the implicit import/require condition but keep the platform condition.
func PresetFor(s Scenario) (Preset, error) {
	s.Normalize()
	if err := s.Validate(); err != nil {
		return Preset{}, err
	}

	if len(s.ConditionsOverride) > 0 {
		return Preset{
			Name:   presetName(s.Name, "", "", false) + "+override",
			Active: NewConditionSet(s.ConditionsOverride...),
		}, nil
	}

	custom := len(s.Conditions) > 0

	if s.Bundler != BundlerNone {
		implicit := ImportCondition
		platformCondition := s.Platform == PlatformNode

		switch s.Bundler {
		case BundlerWebpack:
			implicit = RequireCondition
		case BundlerVite:
			if s.Format == FormatCJS {
				implicit = RequireCondition
			}
			platformCondition = false
		case BundlerEsbuild, BundlerRolldown, BundlerRsbuild, BundlerNone:
		}

		keys := make([]string, 0, 1+len(s.Conditions))
		if platformCondition {
			keys = append(keys, NodeCondition)
		}
		if custom {
			keys = append(keys, s.Conditions...)
		} else {
			keys = append(keys, implicit)
		}

		return Preset{
			Name:   presetName(string(s.Bundler), s.Format, s.Platform, custom),
			Active: NewConditionSet(keys...),
		}, nil
	}

	implicit := ImportCondition
	if s.Runtime == RuntimeNode && s.Format == FormatCJS {
		implicit = RequireCondition
	}

	keys := []string{string(s.Runtime)}
	if custom {
		keys = append(keys, s.Conditions...)
	} else {
		keys = append(keys, implicit)
	}

	return Preset{
		Name:   presetName(string(s.Runtime), s.Format, s.Platform, custom),
		Active: NewConditionSet(keys...),
	}, nil
}

func presetName(target string, format Format, platform Platform, custom bool) string {
	parts := []string{target}
	if format != "" {
		parts = append(parts, string(format))
	}
	if platform != "" {
		parts = append(parts, string(platform))
	}
	name := strings.Join(parts, "/")
	if custom {
		name += "+custom"
	}
	return name
}

// PresetRow is one line of the preset table.
type PresetRow struct {
	Bundler  Bundler
	Runtime  Runtime
	Format   Format
	Platform Platform
	Custom   bool
	Preset   Preset
}

// PresetTable enumerates every preset, with CustomPlaceholder standing for custom conditions.
func PresetTable() []PresetRow {
	var rows []PresetRow

	add := func(s Scenario) {
		for _, custom := range []bool{false, true} {
			s.Name = "preset"
			s.Conditions = nil
			if custom {
				s.Conditions = []string{CustomPlaceholder}
			}
			p, err := PresetFor(s)
			if err != nil {
				continue
			}
			rows = append(rows, PresetRow{
				Bundler:  s.Bundler,
				Runtime:  s.Runtime,
				Format:   s.Format,
				Platform: s.Platform,
				Custom:   custom,
				Preset:   p,
			})
		}
	}

	for _, b := range []Bundler{BundlerEsbuild, BundlerRolldown, BundlerWebpack, BundlerVite, BundlerRsbuild} {
		for _, f := range []Format{FormatCJS, FormatESM} {
			for _, p := range []Platform{PlatformNode, PlatformNeutral} {
				add(Scenario{Bundler: b, Format: f, Platform: p})
			}
		}
	}

	for _, r := range []Runtime{RuntimeNode, RuntimeBun, RuntimeDeno, RuntimeWorkerd} {
		for _, f := range []Format{FormatCJS, FormatESM} {
			add(Scenario{Runtime: r, Format: f, Platform: PlatformNode})
		}
	}

	return rows
}
