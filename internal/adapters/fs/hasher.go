package fs

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/exportmap/internal/core/domain"
	"go.trai.ch/exportmap/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher computes scenario fingerprints with xxhash.
type Hasher struct {
	walker *Walker
}

// NewHasher creates a new Hasher.
func NewHasher(walker *Walker) *Hasher {
	return &Hasher{walker: walker}
}

// ComputeFileHash computes the XXHash of a file's content.
func (h *Hasher) ComputeFileHash(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrFileOpenFailed.Error()), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrFileHashFailed.Error()), "path", path)
	}

	return hasher.Sum64(), nil
}

// Fingerprint hashes the scenario definition, the active conditions, the harness file,
// the entry point and every file of the package under test.
func (h *Hasher) Fingerprint(harness *domain.Harness, s domain.Scenario, active domain.ConditionSet) (string, error) {
	hasher := xxhash.New()

	hashScenario(s, hasher)

	keys := active.Keys()
	slices.Sort(keys)
	writeList(hasher, keys)

	for _, sp := range harness.Subpaths {
		writeList(hasher, []string{sp.Name, sp.Subpath})
	}

	if harness.ConfigPath != "" {
		if err := h.hashFile(harness.Root, harness.ConfigPath, hasher); err != nil {
			return "", zerr.Wrap(err, domain.ErrFingerprintFailed.Error())
		}
	}

	entry := filepath.Join(harness.Root, harness.Entry)
	if _, err := os.Stat(entry); err == nil {
		if err := h.hashFile(harness.Root, entry, hasher); err != nil {
			return "", zerr.Wrap(err, domain.ErrFingerprintFailed.Error())
		}
	}

	for path := range h.walker.WalkFiles(harness.PackageDir, nil) {
		if err := h.hashFile(harness.Root, path, hasher); err != nil {
			return "", zerr.Wrap(err, domain.ErrFingerprintFailed.Error())
		}
	}

	return fmt.Sprintf("%016x", hasher.Sum64()), nil
}

// hashScenario writes every field that changes how a scenario is built or judged.
func hashScenario(s domain.Scenario, hasher *xxhash.Digest) {
	writeList(hasher, []string{
		s.Name,
		string(s.Bundler),
		string(s.Runtime),
		string(s.Format),
		string(s.Platform),
	})
	writeList(hasher, s.Conditions)
	writeList(hasher, s.ConditionsOverride)
	writeList(hasher, s.External)
	writeList(hasher, s.Build)
	writeList(hasher, s.Run)

	envKeys := make([]string, 0, len(s.Env))
	for k := range s.Env {
		envKeys = append(envKeys, k)
	}
	slices.Sort(envKeys)
	for _, k := range envKeys {
		_, _ = hasher.WriteString(k)
		_, _ = hasher.Write([]byte{'='})
		_, _ = hasher.WriteString(s.Env[k])
		_, _ = hasher.Write([]byte{0})
	}
	_, _ = hasher.Write([]byte{0})

	for _, name := range s.Expect.Names() {
		e := s.Expect[name]
		writeList(hasher, []string{name, e.Filename, e.ResolvedFrom})
	}
	_, _ = hasher.Write([]byte{0})

	if s.Exports != nil {
		for _, entry := range s.Exports.Entries {
			_, _ = hasher.WriteString(entry.Subpath)
			_, _ = hasher.Write([]byte{0})
			hashNode(entry.Node, hasher)
		}
	}
	_, _ = hasher.Write([]byte{0})
}

func hashNode(n domain.ConditionNode, hasher *xxhash.Digest) {
	if n.IsTarget() {
		_, _ = hasher.WriteString("=" + n.Target)
		_, _ = hasher.Write([]byte{0})
		return
	}
	_, _ = hasher.WriteString("{" + strconv.Itoa(len(n.Conditions)))
	for _, entry := range n.Conditions {
		_, _ = hasher.WriteString(entry.Key)
		_, _ = hasher.Write([]byte{0})
		hashNode(entry.Node, hasher)
	}
}

func writeList(hasher *xxhash.Digest, items []string) {
	for _, item := range items {
		_, _ = hasher.WriteString(item)
		_, _ = hasher.Write([]byte{0})
	}
	_, _ = hasher.Write([]byte{0}) // Section separator
}

// hashFile writes the path relative to root and the file's content hash.
func (h *Hasher) hashFile(root, path string, hasher io.Writer) error {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	_, _ = hasher.Write([]byte(filepath.ToSlash(rel)))
	_, _ = hasher.Write([]byte{0})

	sum, err := h.ComputeFileHash(path)
	if err != nil {
		return err
	}

	if err := binary.Write(hasher, binary.LittleEndian, sum); err != nil {
		return zerr.Wrap(err, domain.ErrFileHashFailed.Error())
	}
	return nil
}
