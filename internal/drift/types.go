// Package drift checks that installed Carvel tools are the ones the
// execution path actually resolves, at the expected versions.
package drift

// DriftType represents the type of drift detected
type DriftType int

const (
	DriftOK DriftType = iota
	DriftVersionMismatch
	DriftMissing
	DriftExternalOverride
	DriftManagedButNotActive
	DriftVersionUnknown
)

// String returns human-readable drift type name
func (d DriftType) String() string {
	switch d {
	case DriftOK:
		return "OK"
	case DriftVersionMismatch:
		return "VERSION_MISMATCH"
	case DriftMissing:
		return "MISSING"
	case DriftExternalOverride:
		return "EXTERNAL_OVERRIDE"
	case DriftManagedButNotActive:
		return "MANAGED_BUT_NOT_ACTIVE"
	case DriftVersionUnknown:
		return "VERSION_UNKNOWN"
	default:
		return "UNKNOWN"
	}
}

// Expectation describes a tool that should be on the execution path.
type Expectation struct {
	// Tool is the executable name looked up on PATH.
	Tool string
	// Version is the expected release tag. Empty or "latest" accepts any.
	Version string
	// Dir is the directory the tool was installed into, when known.
	Dir string
}

// DriftResult represents a single drift detection result
type DriftResult struct {
	Tool            string
	DriftType       DriftType
	ExpectedVersion string
	ActiveVersion   string
	ActivePath      string
	ExpectedDir     string
}

// HasDrift reports whether any result is not DriftOK.
func HasDrift(results []DriftResult) bool {
	for _, r := range results {
		if r.DriftType != DriftOK {
			return true
		}
	}
	return false
}
