package binary

import (
	"errors"
	"fmt"
	"time"
)

// Binary names a Carvel tool managed by carvel-setup.
type Binary string

const (
	BinaryYtt    Binary = "ytt"
	BinaryKbld   Binary = "kbld"
	BinaryKapp   Binary = "kapp"
	BinaryKwt    Binary = "kwt"
	BinaryImgpkg Binary = "imgpkg"
	BinaryVendir Binary = "vendir"
	BinaryKctrl  Binary = "kctrl"
)

// String returns the string representation of the binary
func (b Binary) String() string {
	return string(b)
}

// VersionRequest is the version a caller asks for: either Latest or an
// Exact release tag. The unexported method closes the set.
type VersionRequest interface {
	fmt.Stringer
	isVersionRequest()
}

// Latest requests the release with the highest version precedence.
type Latest struct{}

func (Latest) String() string    { return "latest" }
func (Latest) isVersionRequest() {}

// Exact requests the release whose tag equals the string exactly.
type Exact string

func (e Exact) String() string  { return string(e) }
func (Exact) isVersionRequest() {}

// ParseVersionRequest maps "" and "latest" to Latest and anything else to Exact.
func ParseVersionRequest(s string) VersionRequest {
	if s == "" || s == "latest" {
		return Latest{}
	}
	return Exact(s)
}

// ArtifactRequest asks for one tool at one version.
type ArtifactRequest struct {
	Binary  Binary
	Version VersionRequest
}

// String returns "name:version".
func (r ArtifactRequest) String() string {
	return fmt.Sprintf("%s:%s", r.Binary, r.versionRequest())
}

// versionRequest treats a nil Version as Latest.
func (r ArtifactRequest) versionRequest() VersionRequest {
	if r.Version == nil {
		return Latest{}
	}
	return r.Version
}

// DownloadInfo describes exactly what to fetch for one request.
// Version may differ from the requested one when Latest was asked for.
type DownloadInfo struct {
	Binary       Binary
	Version      string
	AssetName    string
	URL          string
	ReleaseNotes string
}

// VerificationMethod indicates how a binary was verified
type VerificationMethod int

const (
	// VerificationNone means nothing was verified, either because the
	// binary came from the cache or because verification failed.
	VerificationNone VerificationMethod = iota
	// VerificationSHA256 means the checksum line was found in the notes.
	VerificationSHA256
	// VerificationSignedNotes means the notes carried a valid OpenPGP
	// clear signature and the checksum line was found in the signed text.
	VerificationSignedNotes
)

// String returns the string representation of the verification method
func (v VerificationMethod) String() string {
	switch v {
	case VerificationSHA256:
		return "SHA256"
	case VerificationSignedNotes:
		return "SHA256+PGP"
	case VerificationNone:
		return "None"
	default:
		return "Unknown"
	}
}

// InstallResult describes one completed install.
type InstallResult struct {
	Binary   Binary
	Version  string
	Dir      string // directory added to the execution path
	Path     string // full path of the executable
	Cached   bool   // true when no download happened
	Verified VerificationMethod
	Duration time.Duration
}

var (
	// ErrVersionNotFound matches VersionNotFoundError.
	ErrVersionNotFound = errors.New("version not found")
	// ErrAssetNotFound matches AssetNotFoundError.
	ErrAssetNotFound = errors.New("asset not found")
	// ErrChecksumMismatch matches ChecksumError.
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// VersionNotFoundError reports that no release carries the requested tag.
type VersionNotFoundError struct {
	Binary  Binary
	Version string
}

func (e *VersionNotFoundError) Error() string {
	return fmt.Sprintf("could not find version %q for %s", e.Version, e.Binary)
}

func (e *VersionNotFoundError) Is(target error) bool {
	return target == ErrVersionNotFound
}

// AssetNotFoundError reports that the selected release has no asset for the platform.
type AssetNotFoundError struct {
	Binary   Binary
	Platform string
	Asset    string
}

func (e *AssetNotFoundError) Error() string {
	return fmt.Sprintf("could not find %s for platform %s (expected asset %s)", e.Binary, e.Platform, e.Asset)
}

func (e *AssetNotFoundError) Is(target error) bool {
	return target == ErrAssetNotFound
}

// ChecksumError reports that the expected checksum line is missing from the
// release notes. Expected is the exact line that was searched for.
type ChecksumError struct {
	Asset    string
	Expected string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("unable to verify checksum for %s: expected to find %q in release notes", e.Asset, e.Expected)
}

func (e *ChecksumError) Is(target error) bool {
	return target == ErrChecksumMismatch
}

// UnknownBinaryError reports a tool name outside the registry.
type UnknownBinaryError struct {
	Name string
}

func (e *UnknownBinaryError) Error() string {
	return fmt.Sprintf("unknown app: %s", e.Name)
}
