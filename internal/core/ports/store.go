package ports

import "go.trai.ch/exportmap/internal/core/domain"

// ResultStore defines the interface for storing and retrieving scenario run records.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type ResultStore interface {
	// Get retrieves the last record for a scenario.
	// Returns nil, nil if not found.
	Get(root, scenario string) (*domain.RunRecord, error)

	// Put stores the record.
	Put(root string, rec domain.RunRecord) error
}
