package domain

import "time"

// OutcomeStatus is the final state of one scenario.
type OutcomeStatus string

const (
	// StatusPassed indicates the observed report matched the expectation.
	StatusPassed OutcomeStatus = "passed"
	// StatusFailed indicates a mismatch or an execution error.
	StatusFailed OutcomeStatus = "failed"
	// StatusCached indicates a previous passing run with the same fingerprint was reused.
	StatusCached OutcomeStatus = "cached"
	// StatusPlanned indicates a dry run: only the expectation was computed.
	StatusPlanned OutcomeStatus = "planned"
)

// Outcome is the result of running one scenario.
type Outcome struct {
	Scenario   string        `json:"scenario"`
	Preset     string        `json:"preset"`
	Active     []string      `json:"conditions"`
	Status     OutcomeStatus `json:"status"`
	Expected   Report        `json:"expected"`
	Observed   Report        `json:"observed,omitempty"`
	Mismatches []Mismatch    `json:"mismatches,omitempty"`
	Message    string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
	Err        error         `json:"-"`
}

// Failed reports whether the scenario failed.
func (o Outcome) Failed() bool {
	return o.Status == StatusFailed
}

// RunRecord is what the result store keeps per scenario.
type RunRecord struct {
	Scenario    string    `json:"scenario,omitzero"`
	Fingerprint string    `json:"fingerprint,omitzero"`
	Passed      bool      `json:"passed,omitzero"`
	Observed    Report    `json:"observed,omitzero"`
	Timestamp   time.Time `json:"timestamp,omitzero"`
}
