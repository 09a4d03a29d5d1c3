package domain

import "go.trai.ch/zerr"

var (
	// ErrMalformedExportMap is returned when an export map has duplicate keys, non-string leaves,
	// empty targets or an otherwise invalid shape.
	ErrMalformedExportMap = zerr.New("malformed export map")

	// ErrSubpathNotFound is returned when the requested subpath is not declared in the export map.
	ErrSubpathNotFound = zerr.New("subpath not exported")

	// ErrConditionsExhausted is returned when no condition matched and no "default" was declared.
	ErrConditionsExhausted = zerr.New("no matching export condition")

	// ErrUnknownBundler is returned when a scenario names a bundler with no condition preset.
	ErrUnknownBundler = zerr.New("unknown bundler")

	// ErrUnknownRuntime is returned when a scenario names a runtime with no condition preset.
	ErrUnknownRuntime = zerr.New("unknown runtime")

	// ErrInvalidFormat is returned when a scenario format is not cjs or esm.
	ErrInvalidFormat = zerr.New("invalid format, expected 'cjs' or 'esm'")

	// ErrInvalidPlatform is returned when a scenario platform is not node or neutral.
	ErrInvalidPlatform = zerr.New("invalid platform, expected 'node' or 'neutral'")

	// ErrInvalidScenarioName is returned when a scenario name contains invalid characters.
	ErrInvalidScenarioName = zerr.New("invalid scenario name")

	// ErrReservedScenarioName is returned when a scenario uses a reserved name (e.g., "all").
	ErrReservedScenarioName = zerr.New("scenario name 'all' is reserved")

	// ErrScenarioWithoutTarget is returned when a scenario declares neither a bundler nor a runtime.
	ErrScenarioWithoutTarget = zerr.New("scenario must declare a bundler or a runtime")

	// ErrScenarioNotFound is returned when a requested scenario is not declared in the harness.
	ErrScenarioNotFound = zerr.New("scenario not found")

	// ErrDuplicateScenarioName is returned when the harness file declares a scenario twice.
	ErrDuplicateScenarioName = zerr.New("duplicate scenario name")

	// ErrDuplicateSubpathName is returned when two subpath aliases share the same name.
	ErrDuplicateSubpathName = zerr.New("duplicate subpath name")

	// ErrExpectationDrift is returned when a pinned expectation disagrees with the resolver.
	ErrExpectationDrift = zerr.New("pinned expectation disagrees with resolver")

	// ErrReportMismatch is returned when the observed report differs from the expected report.
	ErrReportMismatch = zerr.New("observed resolution differs from expected")

	// ErrScenarioFailed is returned when at least one scenario of a run failed.
	ErrScenarioFailed = zerr.New("scenario failed")

	// ErrConfigReadFailed is returned when the harness file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read harness file")

	// ErrConfigParseFailed is returned when the harness file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse harness file")

	// ErrConfigNotFound is returned when no harness file can be found.
	ErrConfigNotFound = zerr.New("could not find exportmap.yaml")

	// ErrUnsupportedVersion is returned when the harness file declares an unknown schema version.
	ErrUnsupportedVersion = zerr.New("unsupported harness file version")

	// ErrPackageReadFailed is returned when the package descriptor cannot be read.
	ErrPackageReadFailed = zerr.New("failed to read package.json")

	// ErrPackageParseFailed is returned when the package descriptor is not valid JSON.
	ErrPackageParseFailed = zerr.New("failed to parse package.json")

	// ErrMissingExports is returned when the package descriptor has no "exports" field.
	ErrMissingExports = zerr.New("package.json has no exports field")

	// ErrStoreCreateFailed is returned when the run record store directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create run record store directory")

	// ErrStoreReadFailed is returned when a run record cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read run record")

	// ErrStoreUnmarshalFailed is returned when a run record cannot be unmarshaled.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal run record")

	// ErrStoreMarshalFailed is returned when a run record cannot be marshaled.
	ErrStoreMarshalFailed = zerr.New("failed to marshal run record")

	// ErrStoreWriteFailed is returned when a run record cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write run record")

	// ErrFingerprintFailed is returned when the scenario fingerprint cannot be computed.
	ErrFingerprintFailed = zerr.New("failed to compute scenario fingerprint")

	// ErrFileOpenFailed is returned when a file cannot be opened.
	ErrFileOpenFailed = zerr.New("failed to open file")

	// ErrFileHashFailed is returned when hashing a file fails.
	ErrFileHashFailed = zerr.New("failed to hash file content")

	// ErrOutputDirFailed is returned when the scoped bundle output directory cannot be created.
	ErrOutputDirFailed = zerr.New("failed to create bundle output directory")

	// ErrCommandTemplateFailed is returned when a command argument template cannot be rendered.
	ErrCommandTemplateFailed = zerr.New("failed to render command template")

	// ErrBundleFailed is returned when the bundler reports errors.
	ErrBundleFailed = zerr.New("bundle failed")

	// ErrBundlerNotConfigured is returned when a scenario needs a build command that is not declared.
	ErrBundlerNotConfigured = zerr.New("no build command configured for bundler")

	// ErrCommandFailed is returned when an external command exits with an error.
	ErrCommandFailed = zerr.New("command failed")

	// ErrObservationParseFailed is returned when runtime output is not a valid resolution report.
	ErrObservationParseFailed = zerr.New("failed to parse runtime output as resolution report")

	// ErrNothingObserved is returned when a scenario produced neither runtime output nor bundler observations.
	ErrNothingObserved = zerr.New("scenario produced no observed resolutions")
)
