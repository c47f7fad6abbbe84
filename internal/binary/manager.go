package binary

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ZebulonRouseFrantzich/carvel-setup/internal/logging"
	"github.com/ZebulonRouseFrantzich/carvel-setup/internal/shell"
)

// AssetResolver maps a request to a concrete download.
type AssetResolver interface {
	Resolve(ctx context.Context, req ArtifactRequest, os string) (*DownloadInfo, error)
}

// ToolCache stores installed binaries keyed by (binaryName, version).
type ToolCache interface {
	// Find returns the directory holding binaryName at version.
	Find(binaryName, version string) (dir string, ok bool)
	// Store copies src into the cache as targetName and returns the
	// directory it now lives in.
	Store(src, targetName, binaryName, version string) (dir string, err error)
}

// Fetcher downloads a URL to a local file owned by the caller.
// *Downloader implements it.
type Fetcher interface {
	Download(ctx context.Context, url string) (string, error)
}

// FileSystem holds the file primitives the installer needs.
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
	Chmod(name string, mode os.FileMode) error
	Remove(name string) error
}

// OSFileSystem implements FileSystem on the local disk.
type OSFileSystem struct{}

func (OSFileSystem) ReadFile(name string) ([]byte, error)      { return os.ReadFile(name) }
func (OSFileSystem) Chmod(name string, mode os.FileMode) error { return os.Chmod(name, mode) }
func (OSFileSystem) Remove(name string) error                  { return os.Remove(name) }

// Config holds configuration for the binary manager
type Config struct {
	Resolver  AssetResolver
	Cache     ToolCache
	Fetcher   Fetcher
	Registrar shell.PathRegistrar

	// Verifier defaults to a plain checksum verifier.
	Verifier *Verifier
	// FileSystem defaults to OSFileSystem.
	FileSystem FileSystem
	Logger     logging.Logger
}

// Manager installs Carvel tools: resolve, probe the cache, download and
// verify on a miss, then expose the installed directory.
type Manager struct {
	resolver  AssetResolver
	cache     ToolCache
	fetcher   Fetcher
	registrar shell.PathRegistrar
	verifier  *Verifier
	fs        FileSystem
	logger    logging.Logger
}

// NewManager creates a new binary manager
func NewManager(config Config) (*Manager, error) {
	if config.Resolver == nil {
		return nil, fmt.Errorf("resolver is required")
	}
	if config.Cache == nil {
		return nil, fmt.Errorf("cache is required")
	}
	if config.Fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if config.Registrar == nil {
		return nil, fmt.Errorf("path registrar is required")
	}

	m := &Manager{
		resolver:  config.Resolver,
		cache:     config.Cache,
		fetcher:   config.Fetcher,
		registrar: config.Registrar,
		verifier:  config.Verifier,
		fs:        config.FileSystem,
		logger:    logging.OrNoop(config.Logger),
	}
	if m.verifier == nil {
		m.verifier = NewVerifier()
	}
	if m.fs == nil {
		m.fs = OSFileSystem{}
	}

	return m, nil
}

// Install makes req available on the execution path. A cache hit skips the
// download entirely; on a miss, bytes that fail verification never reach
// the cache.
func (m *Manager) Install(ctx context.Context, req ArtifactRequest, goos string) (*InstallResult, error) {
	startTime := time.Now()

	info, err := m.resolver.Resolve(ctx, req, goos)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", req, err)
	}

	binaryName := BinaryName(req.Binary, goos)
	result := &InstallResult{
		Binary:  req.Binary,
		Version: info.Version,
	}

	dir, ok := m.cache.Find(binaryName, info.Version)
	if ok {
		m.logger.Info(fmt.Sprintf("%s %s already in tool cache", req.Binary, info.Version), "dir", dir)
		result.Cached = true
	} else {
		dir, result.Verified, err = m.downloadAndStore(ctx, info, binaryName)
		if err != nil {
			return nil, err
		}
	}

	if err := m.registrar.AddPath(dir); err != nil {
		return nil, fmt.Errorf("add %s to path: %w", dir, err)
	}

	result.Dir = dir
	result.Path = filepath.Join(dir, binaryName)
	result.Duration = time.Since(startTime)
	return result, nil
}

// downloadAndStore handles the cache-miss branch of Install.
func (m *Manager) downloadAndStore(ctx context.Context, info *DownloadInfo, binaryName string) (string, VerificationMethod, error) {
	m.logger.Info(fmt.Sprintf("Downloading %s %s from %s", info.Binary, info.Version, info.URL))

	tmpPath, err := m.fetcher.Download(ctx, info.URL)
	if err != nil {
		return "", VerificationNone, fmt.Errorf("download %s: %w", info.AssetName, err)
	}
	defer func() {
		if err := m.fs.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
			m.logger.Debug("failed to remove temp download", "path", tmpPath, "error", err)
		}
	}()

	data, err := m.fs.ReadFile(tmpPath)
	if err != nil {
		return "", VerificationNone, fmt.Errorf("read download: %w", err)
	}

	method, err := m.verifier.Verify(data, info.AssetName, info.ReleaseNotes)
	if err != nil {
		return "", VerificationNone, err
	}
	m.logger.Debug("verified download", "asset", info.AssetName, "method", method.String())

	if err := m.fs.Chmod(tmpPath, 0755); err != nil {
		return "", VerificationNone, fmt.Errorf("set executable: %w", err)
	}

	dir, err := m.cache.Store(tmpPath, binaryName, binaryName, info.Version)
	if err != nil {
		return "", VerificationNone, fmt.Errorf("cache %s %s: %w", info.Binary, info.Version, err)
	}

	return dir, method, nil
}

// InstallAll installs every request concurrently and waits for all of them.
// A failure does not cancel the others, and completed installs stay in
// place. Results are in request order with nil entries for failed
// installs; the first error is returned.
func (m *Manager) InstallAll(ctx context.Context, reqs []ArtifactRequest, goos string) ([]*InstallResult, error) {
	names := make([]string, len(reqs))
	for i, req := range reqs {
		names[i] = req.String()
	}
	m.logger.Info("Installing " + strings.Join(names, ", "))

	results := make([]*InstallResult, len(reqs))
	var g errgroup.Group
	for i, req := range reqs {
		g.Go(func() error {
			result, err := m.Install(ctx, req, goos)
			if err != nil {
				m.logger.Error("install failed", "tool", req.Binary.String(), "error", err)
				return fmt.Errorf("install %s: %w", req.Binary, err)
			}
			m.logger.Info(fmt.Sprintf("Installed %s %s", result.Binary, result.Version),
				"path", result.Path,
				"cached", result.Cached,
				"verified", result.Verified.String(),
				"duration", result.Duration.Round(time.Millisecond).String(),
			)
			results[i] = result
			return nil
		})
	}

	err := g.Wait()
	return results, err
}
