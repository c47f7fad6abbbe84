// Package binary resolves, downloads, verifies and installs the Carvel tool
// binaries.
//
// # Pipeline
//
// For every requested tool the Manager runs:
//
//  1. Resolve: the Resolver lists the tool's GitHub releases, picks the
//     requested (or newest) release and the asset built for the platform.
//  2. Cache probe: the tool cache is queried by (binary name, resolved
//     version). A hit skips straight to step 5.
//  3. Download: the asset is fetched into a temporary file.
//  4. Verify: the sha256 of the downloaded bytes must appear in the release
//     notes as "<hex>  ./<asset name>". Only verified files are marked
//     executable and stored in the cache.
//  5. Expose: the installed directory is handed to the path registrar.
//
// InstallAll runs one pipeline per tool concurrently and waits for all of
// them. A failing tool fails the batch, but tools that finished are left
// installed.
//
// # Usage
//
//	mgr, err := binary.NewManager(binary.Config{
//	    Resolver:  binary.NewResolver(release.NewGitHubClient()),
//	    Cache:     cache,
//	    Fetcher:   binary.NewDownloader(os.TempDir()),
//	    Registrar: registrar,
//	})
//	if err != nil {
//	    return err
//	}
//	results, err := mgr.InstallAll(ctx, requests, "linux")
package binary
