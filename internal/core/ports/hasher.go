package ports

import "go.trai.ch/exportmap/internal/core/domain"

// Hasher defines the interface for computing scenario fingerprints.
//
//go:generate mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// Fingerprint hashes everything that can change the outcome of s:
	// the package descriptor, the files under the package directory, the entry point,
	// the scenario definition and the active conditions.
	Fingerprint(h *domain.Harness, s domain.Scenario, active domain.ConditionSet) (string, error)
}
