package domain

import "path/filepath"

const (
	// StateDirName is the name of the internal state directory.
	StateDirName = ".exportmap"

	// StoreDirName is the name of the run record store directory.
	StoreDirName = "store"

	// DistDirName is the name of the directory holding scoped bundle outputs.
	DistDirName = "dist"

	// HarnessFileName is the name of the harness configuration file.
	HarnessFileName = "exportmap.yaml"

	// PackageFileName is the name of the package descriptor.
	PackageFileName = "package.json"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// DefaultStatePath returns the default root directory for exportmap state.
func DefaultStatePath() string {
	return StateDirName
}

// DefaultStorePath returns the default path for the run record store.
// It joins .exportmap and store.
func DefaultStorePath() string {
	return filepath.Join(StateDirName, StoreDirName)
}

// DefaultDistPath returns the default parent directory of scoped bundle outputs.
// It joins .exportmap and dist.
func DefaultDistPath() string {
	return filepath.Join(StateDirName, DistDirName)
}
