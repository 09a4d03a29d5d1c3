package resolver

import "go.trai.ch/exportmap/internal/core/domain"

// Decision records what the resolver did with one condition key.
type Decision string

const (
	// DecisionMatched means the key was active and its branch was taken.
	DecisionMatched Decision = "matched"
	// DecisionSkipped means the key was not active.
	DecisionSkipped Decision = "skipped"
	// DecisionDeferred means a "default" key was set aside until the level was exhausted.
	DecisionDeferred Decision = "deferred"
	// DecisionFallback means the deferred "default" branch was taken.
	DecisionFallback Decision = "fallback"
)

// Step is one visited condition key.
type Step struct {
	// Path is the condition path up to and including Key.
	Path     []string
	Key      string
	Decision Decision
}

// Depth returns the nesting level of the step, starting at 0.
func (s Step) Depth() int {
	return len(s.Path) - 1
}

// Explanation is the trace of a single resolution.
type Explanation struct {
	Subpath string
	Active  []string
	Steps   []Step
	Result  domain.ResolutionResult
	Err     error
}

// Explain resolves subpath like Resolve and records every condition key visited on the way.
func Explain(m domain.ExportMap, subpath string, active domain.ConditionSet) Explanation {
	ex := Explanation{
		Subpath: subpath,
		Active:  active.Keys(),
	}

	if err := m.Validate(); err != nil {
		ex.Err = err
		return ex
	}

	ex.Result, ex.Err = resolve(m, subpath, active, func(s Step) {
		ex.Steps = append(ex.Steps, s)
	})
	return ex
}
