package binary

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/Masterminds/semver/v3"

	"github.com/ZebulonRouseFrantzich/carvel-setup/internal/release"
)

// Resolver selects the release and asset to install for a request.
type Resolver struct {
	catalog release.Catalog
}

// NewResolver creates a resolver backed by catalog.
func NewResolver(catalog release.Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// Resolve returns the download for req on the given operating system.
//
// Latest picks the release with the highest semantic version; tags that do
// not parse rank below every tag that does. Exact picks the first release
// whose tag matches byte for byte. Releases sharing a tag resolve to the
// first one in provider order.
func (r *Resolver) Resolve(ctx context.Context, req ArtifactRequest, os string) (*DownloadInfo, error) {
	assetName := AssetName(req.Binary, os)

	releases, err := r.catalog.ListReleases(ctx, RepositoryFor(req.Binary))
	if err != nil {
		return nil, fmt.Errorf("list %s releases: %w", req.Binary, err)
	}

	var selected *release.Release
	switch v := req.versionRequest().(type) {
	case Latest:
		sorted := sortReleases(releases)
		if len(sorted) == 0 {
			return nil, &VersionNotFoundError{Binary: req.Binary, Version: v.String()}
		}
		selected = &sorted[0]
	case Exact:
		selected = findRelease(releases, string(v))
		if selected == nil {
			return nil, &VersionNotFoundError{Binary: req.Binary, Version: string(v)}
		}
	default:
		return nil, fmt.Errorf("unsupported version request %T", v)
	}

	asset := findAsset(selected.Assets, assetName)
	if asset == nil {
		return nil, &AssetNotFoundError{Binary: req.Binary, Platform: os, Asset: assetName}
	}

	return &DownloadInfo{
		Binary:       req.Binary,
		Version:      selected.Tag,
		AssetName:    asset.Name,
		URL:          asset.DownloadURL,
		ReleaseNotes: selected.Notes,
	}, nil
}

// sortReleases returns a copy of releases ordered by descending version
// precedence. The sort is stable: unparseable tags, and tags with equal
// precedence, keep their provider order.
func sortReleases(releases []release.Release) []release.Release {
	type ranked struct {
		release release.Release
		version *semver.Version
	}

	items := make([]ranked, len(releases))
	for i, rel := range releases {
		items[i] = ranked{release: rel, version: parseReleaseVersion(rel.Tag)}
	}

	sort.SliceStable(items, func(i, j int) bool {
		vi, vj := items[i].version, items[j].version
		switch {
		case vi == nil:
			return false
		case vj == nil:
			return true
		default:
			return vi.GreaterThan(vj)
		}
	})

	out := make([]release.Release, len(items))
	for i, item := range items {
		out[i] = item.release
	}
	return out
}

// parseReleaseVersion strips leading non-numeric decoration such as "v" and
// parses the rest as a semantic version. It returns nil when parsing fails.
func parseReleaseVersion(tag string) *semver.Version {
	trimmed := strings.TrimLeftFunc(strings.TrimSpace(tag), func(r rune) bool {
		return !unicode.IsDigit(r)
	})
	if trimmed == "" {
		return nil
	}

	v, err := semver.NewVersion(trimmed)
	if err != nil {
		return nil
	}
	return v
}

func findRelease(releases []release.Release, tag string) *release.Release {
	for i := range releases {
		if releases[i].Tag == tag {
			return &releases[i]
		}
	}
	return nil
}

func findAsset(assets []release.Asset, name string) *release.Asset {
	for i := range assets {
		if assets[i].Name == name {
			return &assets[i]
		}
	}
	return nil
}
