package toolcache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Cache is a directory of installed tools.
type Cache struct {
	root  string
	arch  string
	clock Clock
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock sets the clock used for receipt timestamps.
func WithClock(clock Clock) Option {
	return func(c *Cache) { c.clock = clock }
}

// New creates a cache rooted at root for binaries built for arch.
func New(root, arch string, opts ...Option) *Cache {
	c := &Cache{root: root, arch: arch, clock: RealClock{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Root returns the cache root directory.
func (c *Cache) Root() string {
	return c.root
}

// entryDir returns the directory for (binaryName, version).
func (c *Cache) entryDir(binaryName, version string) (string, error) {
	if err := validateSegment("tool name", binaryName); err != nil {
		return "", err
	}
	if err := validateSegment("release tag", version); err != nil {
		return "", err
	}
	return filepath.Join(c.root, binaryName, version, c.arch), nil
}

// InvalidKeyError reports a cache key part that cannot be a single
// directory or file name, such as a release tag containing a slash.
type InvalidKeyError struct {
	Kind  string
	Value string
}

func (e *InvalidKeyError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("empty %s cannot be used as a cache directory", e.Kind)
	}
	return fmt.Sprintf("%s %q cannot be used as a cache directory", e.Kind, e.Value)
}

// validateSegment rejects names that would escape their directory.
func validateSegment(kind, s string) error {
	if s == "" || s == "." || s == ".." || strings.ContainsAny(s, `/\`) {
		return &InvalidKeyError{Kind: kind, Value: s}
	}
	return nil
}

// Find returns the directory holding binaryName at version. Incomplete
// entries are misses.
func (c *Cache) Find(binaryName, version string) (string, bool) {
	dir, err := c.entryDir(binaryName, version)
	if err != nil {
		return "", false
	}

	r, err := readReceipt(dir)
	if err != nil {
		return "", false
	}

	info, err := os.Stat(filepath.Join(dir, r.File))
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}

	return dir, true
}

// Receipt returns the receipt of a complete entry.
func (c *Cache) Receipt(binaryName, version string) (*Receipt, error) {
	dir, err := c.entryDir(binaryName, version)
	if err != nil {
		return nil, err
	}
	return readReceipt(dir)
}

// Store copies src into the entry for (binaryName, version) as targetName
// and returns the entry directory. The file mode of src is kept. Storing
// over a complete entry returns it unchanged.
func (c *Cache) Store(src, targetName, binaryName, version string) (string, error) {
	if err := validateSegment("file name", targetName); err != nil {
		return "", err
	}
	dir, err := c.entryDir(binaryName, version)
	if err != nil {
		return "", err
	}

	if existing, ok := c.Find(binaryName, version); ok {
		return existing, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	sum, err := copyFile(src, filepath.Join(dir, targetName))
	if err != nil {
		return "", err
	}

	receipt := &Receipt{
		Name:        binaryName,
		Version:     version,
		Arch:        c.arch,
		File:        targetName,
		SHA256:      sum,
		InstalledAt: c.clock.Now().UTC(),
	}
	if err := writeReceipt(dir, receipt); err != nil {
		return "", err
	}

	return dir, nil
}

// copyFile copies src to dst through a temp file, preserving the mode,
// and returns the hex sha256 of the copied bytes.
func copyFile(src, dst string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return "", fmt.Errorf("stat source: %w", err)
	}

	tmpPath := dst + ".tmp"
	out, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return "", fmt.Errorf("create cache file: %w", err)
	}

	cleanupNeeded := true
	defer func() {
		out.Close()
		if cleanupNeeded {
			os.Remove(tmpPath)
		}
	}()

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(out, h), in); err != nil {
		return "", fmt.Errorf("copy to cache: %w", err)
	}

	// umask may have stripped bits at create time
	if err := out.Chmod(info.Mode().Perm()); err != nil {
		return "", fmt.Errorf("set mode: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close cache file: %w", err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return "", fmt.Errorf("rename cache file: %w", err)
	}

	cleanupNeeded = false
	return hex.EncodeToString(h.Sum(nil)), nil
}
