// Package release lists published releases of a GitHub repository.
//
// Wire payloads are decoded into private structs and converted into the
// typed Release and Asset values below at the client boundary, so the
// resolver never handles loosely shaped data.
package release

import (
	"context"
	"fmt"
)

// DefaultOwner is the GitHub organization publishing the Carvel tools.
const DefaultOwner = "carvel-dev"

// Repository identifies a GitHub repository.
type Repository struct {
	Owner string
	Name  string
}

// String returns "owner/name".
func (r Repository) String() string {
	return r.Owner + "/" + r.Name
}

// Release is one published version of a repository.
type Release struct {
	// Tag is the release's tag name, used as its version.
	Tag string
	// Notes is the free-form release body. It may embed checksum lines.
	Notes string
	// Assets are the downloadable files, in provider order.
	Assets []Asset
}

// Asset is one file attached to a release.
type Asset struct {
	Name        string
	DownloadURL string
}

// Catalog lists the releases of a repository in provider order.
type Catalog interface {
	ListReleases(ctx context.Context, repo Repository) ([]Release, error)
}

// InvalidReleaseError reports a malformed release payload.
type InvalidReleaseError struct {
	Repo    Repository
	Message string
}

func (e *InvalidReleaseError) Error() string {
	return fmt.Sprintf("invalid release data from %s: %s", e.Repo, e.Message)
}
