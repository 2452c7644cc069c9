package air

import (
	"fmt"
)

// Version is a semver-lite triple, just enough to compare data versions
// against the interpreter's minimum supported version (§6 "Trace data
// format" versions field).
type Version struct {
	Major, Minor, Patch int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Less reports whether v is strictly older than other.
func (v Version) Less(other Version) bool {
	if v.Major != other.Major {
		return v.Major < other.Major
	}
	if v.Minor != other.Minor {
		return v.Minor < other.Minor
	}
	return v.Patch < other.Patch
}

// DefaultMinSupportedVersion is the floor NewRunner falls back to when the
// caller doesn't supply one. It was a thread-local static in the source
// (a package-global minimum-version cell); here the floor is explicit
// construction-time configuration instead (§9 "Thread-local statics") —
// callers that need rollout control over the minimum supported data
// version parse their own and pass it to NewRunner rather than mutating a
// package var.
var DefaultMinSupportedVersion = Version{Major: 0, Minor: 1, Patch: 0}

// InterpreterVersion is the version this build of the interpreter reports
// in its outcome.
var InterpreterVersion = Version{Major: 1, Minor: 0, Patch: 0}

// ParseVersion parses a "major.minor.patch" string, the form §6's
// "versions" object and NewRunner's minVersion argument both use.
func ParseVersion(s string) (Version, error) {
	var v Version
	n, err := fmt.Sscanf(s, "%d.%d.%d", &v.Major, &v.Minor, &v.Patch)
	if err != nil || n != 3 {
		return Version{}, fmt.Errorf("air: invalid version %q: expected major.minor.patch", s)
	}
	return v, nil
}

// CheckVersion enforces §6's version rule, returning an uncatchable error
// describing the mismatch when dataVersion is too old.
func CheckVersion(dataVersion, minSupported Version) error {
	if dataVersion.Less(minSupported) {
		return &UncatchableError{
			Code: CodeTraceMergeError,
			Message: fmt.Sprintf(
				"trace data_version %s is older than the minimum supported version %s",
				dataVersion, minSupported,
			),
		}
	}
	return nil
}
