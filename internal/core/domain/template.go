package domain

import (
	"strings"
	"text/template"

	"go.trai.ch/zerr"
)

// CommandVars are the fields available to build and run command templates.
type CommandVars struct {
	OutDir     string
	Root       string
	Entry      string
	PackageDir string
	Scenario   string
	Format     Format
	Platform   Platform
}

// ExpandArgs renders every argument as a template over vars.
// Arguments without actions are returned unchanged.
func ExpandArgs(args []string, vars CommandVars) ([]string, error) {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		if !strings.Contains(arg, "{{") {
			out = append(out, arg)
			continue
		}

		tmpl, err := template.New("arg").Option("missingkey=error").Parse(arg)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(ErrCommandTemplateFailed, err.Error()), "arg", arg)
		}

		var b strings.Builder
		if err := tmpl.Execute(&b, vars); err != nil {
			return nil, zerr.With(zerr.Wrap(ErrCommandTemplateFailed, err.Error()), "arg", arg)
		}
		out = append(out, b.String())
	}
	return out, nil
}
