// Package cas stores scenario run records in hash-named files under the harness root.
package cas

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/exportmap/internal/core/domain"
	"go.trai.ch/zerr"
)

// Store implements ports.ResultStore with one JSON file per scenario.
type Store struct{}

// NewStore creates a new Store. Every call names the harness root explicitly.
func NewStore() *Store {
	return &Store{}
}

// Get retrieves the last record of a scenario.
func (s *Store) Get(root, scenario string) (*domain.RunRecord, error) {
	filename := s.filename(root, scenario)

	//nolint:gosec // Path is constructed from the harness root and a hashed filename
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
	}

	var rec domain.RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error()), "scenario", scenario)
	}

	return &rec, nil
}

// Put stores the record, replacing any previous one for the same scenario.
func (s *Store) Put(root string, rec domain.RunRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreMarshalFailed.Error())
	}

	filename := s.filename(root, rec.Scenario)
	if err := os.MkdirAll(filepath.Dir(filename), domain.DirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}

	// Write through a temp file so parallel scenarios never observe a torn record.
	tmp, err := os.CreateTemp(filepath.Dir(filename), ".record-*")
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	if err := tmp.Close(); err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	if err := os.Chmod(tmp.Name(), domain.FilePerm); err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}

	return nil
}

func (s *Store) filename(root, scenario string) string {
	hash := sha256.Sum256([]byte(scenario))
	return filepath.Join(root, domain.DefaultStorePath(), hex.EncodeToString(hash[:])+".json")
}
