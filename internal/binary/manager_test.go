package binary

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/ZebulonRouseFrantzich/carvel-setup/internal/release"
)

// memoryCache is an in-memory ToolCache backed by a temp directory.
type memoryCache struct {
	mu      sync.Mutex
	root    string
	entries map[string]string
	stores  int
}

func newMemoryCache(t *testing.T) *memoryCache {
	return &memoryCache{root: t.TempDir(), entries: map[string]string{}}
}

func (c *memoryCache) Find(binaryName, version string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	dir, ok := c.entries[binaryName+"@"+version]
	return dir, ok
}

func (c *memoryCache) Store(src, targetName, binaryName, version string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, err := os.ReadFile(src)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(c.root, binaryName, version)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, targetName), data, 0755); err != nil {
		return "", err
	}
	c.entries[binaryName+"@"+version] = dir
	c.stores++
	return dir, nil
}

// fakeFetcher serves canned bodies by URL.
type fakeFetcher struct {
	mu     sync.Mutex
	dir    string
	bodies map[string]string
	calls  []string
}

func (f *fakeFetcher) Download(ctx context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	body, ok := f.bodies[url]
	if !ok {
		return "", fmt.Errorf("unexpected status code: 404")
	}
	path := filepath.Join(f.dir, fmt.Sprintf("dl-%d", len(f.calls)))
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		return "", err
	}
	return path, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// recordingRegistrar remembers every directory added.
type recordingRegistrar struct {
	mu   sync.Mutex
	dirs []string
	err  error
}

func (r *recordingRegistrar) AddPath(dir string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.dirs = append(r.dirs, dir)
	return nil
}

type managerFixture struct {
	catalog   *fakeCatalog
	cache     *memoryCache
	fetcher   *fakeFetcher
	registrar *recordingRegistrar
	manager   *Manager
}

// newManagerFixture publishes tool at each tag, with "foo bar baz" as
// every asset and notes carrying the matching checksum lines.
func newManagerFixture(t *testing.T, tools map[string][]string) *managerFixture {
	t.Helper()
	f := &managerFixture{
		catalog:   &fakeCatalog{releases: map[string][]release.Release{}},
		cache:     newMemoryCache(t),
		fetcher:   &fakeFetcher{dir: t.TempDir(), bodies: map[string]string{}},
		registrar: &recordingRegistrar{},
	}

	for tool, tags := range tools {
		repo := RepositoryFor(Binary(tool)).Name
		for _, tag := range tags {
			rel := testRelease(tool, tag)
			var lines []string
			for _, a := range rel.Assets {
				f.fetcher.bodies[a.DownloadURL] = fixtureContent
				lines = append(lines, ExpectedChecksumLine([]byte(fixtureContent), a.Name))
			}
			rel.Notes = "Checksums:\n" + strings.Join(lines, "\n")
			f.catalog.releases[repo] = append(f.catalog.releases[repo], rel)
		}
	}

	m, err := NewManager(Config{
		Resolver:  NewResolver(f.catalog),
		Cache:     f.cache,
		Fetcher:   f.fetcher,
		Registrar: f.registrar,
	})
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	f.manager = m
	return f
}

func TestNewManager(t *testing.T) {
	resolver := NewResolver(&fakeCatalog{})
	cache := &memoryCache{}
	fetcher := &fakeFetcher{}
	registrar := &recordingRegistrar{}

	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{
			name:   "valid_config",
			config: Config{Resolver: resolver, Cache: cache, Fetcher: fetcher, Registrar: registrar},
		},
		{
			name:    "missing_resolver",
			config:  Config{Cache: cache, Fetcher: fetcher, Registrar: registrar},
			wantErr: "resolver",
		},
		{
			name:    "missing_cache",
			config:  Config{Resolver: resolver, Fetcher: fetcher, Registrar: registrar},
			wantErr: "cache",
		},
		{
			name:    "missing_fetcher",
			config:  Config{Resolver: resolver, Cache: cache, Registrar: registrar},
			wantErr: "fetcher",
		},
		{
			name:    "missing_registrar",
			config:  Config{Resolver: resolver, Cache: cache, Fetcher: fetcher},
			wantErr: "registrar",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager, err := NewManager(tt.config)

			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error = %v, want mention of %q", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if manager.verifier == nil || manager.fs == nil || manager.logger == nil {
				t.Error("defaults were not applied")
			}
		})
	}
}

func TestManagerInstall_DownloadsOnMiss(t *testing.T) {
	f := newManagerFixture(t, map[string][]string{"ytt": {"0.10.1", "0.28.0", "0.27.0"}})

	result, err := f.manager.Install(context.Background(), ArtifactRequest{Binary: BinaryYtt}, "linux")
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}

	if result.Version != "0.28.0" {
		t.Errorf("Version = %q, want 0.28.0", result.Version)
	}
	if result.Cached {
		t.Error("first install should not be a cache hit")
	}
	if result.Verified != VerificationSHA256 {
		t.Errorf("Verified = %v, want SHA256", result.Verified)
	}
	if f.fetcher.callCount() != 1 {
		t.Errorf("expected 1 download, got %d", f.fetcher.callCount())
	}
	if result.Path != filepath.Join(result.Dir, "ytt") {
		t.Errorf("Path = %q", result.Path)
	}

	content, err := os.ReadFile(result.Path)
	if err != nil {
		t.Fatalf("installed binary missing: %v", err)
	}
	if string(content) != fixtureContent {
		t.Errorf("installed content = %q", content)
	}

	if len(f.registrar.dirs) != 1 || f.registrar.dirs[0] != result.Dir {
		t.Errorf("registered dirs = %v, want [%s]", f.registrar.dirs, result.Dir)
	}

	leftovers, _ := os.ReadDir(f.fetcher.dir)
	if len(leftovers) != 0 {
		t.Errorf("temp download not removed: %d files remain", len(leftovers))
	}
}

func TestManagerInstall_Idempotent(t *testing.T) {
	f := newManagerFixture(t, map[string][]string{"kbld": {"0.28.0"}})
	req := ArtifactRequest{Binary: BinaryKbld, Version: Exact("0.28.0")}

	first, err := f.manager.Install(context.Background(), req, "linux")
	if err != nil {
		t.Fatalf("first Install() error = %v", err)
	}
	second, err := f.manager.Install(context.Background(), req, "linux")
	if err != nil {
		t.Fatalf("second Install() error = %v", err)
	}

	if f.fetcher.callCount() != 1 {
		t.Errorf("expected exactly 1 download across two installs, got %d", f.fetcher.callCount())
	}
	if !second.Cached {
		t.Error("second install should be a cache hit")
	}
	if second.Verified != VerificationNone {
		t.Errorf("cache hit Verified = %v, want None", second.Verified)
	}
	if first.Dir != second.Dir {
		t.Errorf("dirs differ: %s vs %s", first.Dir, second.Dir)
	}
	if len(f.registrar.dirs) != 2 {
		t.Errorf("expected path registered on both installs, got %v", f.registrar.dirs)
	}
}

func TestManagerInstall_WindowsBinaryName(t *testing.T) {
	f := newManagerFixture(t, map[string][]string{"vendir": {"0.8.0"}})

	result, err := f.manager.Install(context.Background(), ArtifactRequest{Binary: BinaryVendir}, "windows")
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if filepath.Base(result.Path) != "vendir.exe" {
		t.Errorf("Path = %q, want vendir.exe", result.Path)
	}
	if _, ok := f.cache.Find("vendir.exe", "0.8.0"); !ok {
		t.Error("cache should be keyed by the windows binary name")
	}
}

func TestManagerInstall_ChecksumMismatchLeavesCacheEmpty(t *testing.T) {
	f := newManagerFixture(t, map[string][]string{"ytt": {"0.28.0"}})
	for url := range f.fetcher.bodies {
		f.fetcher.bodies[url] = "tampered"
	}

	_, err := f.manager.Install(context.Background(), ArtifactRequest{Binary: BinaryYtt}, "linux")
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("error = %v, want ErrChecksumMismatch", err)
	}
	if !strings.Contains(err.Error(), "ytt-linux-amd64") {
		t.Errorf("error should name the asset: %v", err)
	}
	if f.cache.stores != 0 {
		t.Errorf("cache was written %d times", f.cache.stores)
	}
	if len(f.registrar.dirs) != 0 {
		t.Errorf("path registered despite failure: %v", f.registrar.dirs)
	}
}

func TestManagerInstall_ResolveFailure(t *testing.T) {
	f := newManagerFixture(t, map[string][]string{"ytt": {"0.28.0"}})

	_, err := f.manager.Install(context.Background(), ArtifactRequest{Binary: BinaryYtt, Version: Exact("9.9.9")}, "linux")
	if !errors.Is(err, ErrVersionNotFound) {
		t.Fatalf("error = %v, want ErrVersionNotFound", err)
	}
	if f.fetcher.callCount() != 0 {
		t.Error("nothing should be downloaded when resolution fails")
	}
}

func TestManagerInstall_RegistrarFailure(t *testing.T) {
	f := newManagerFixture(t, map[string][]string{"ytt": {"0.28.0"}})
	f.registrar.err = errors.New("read-only")

	_, err := f.manager.Install(context.Background(), ArtifactRequest{Binary: BinaryYtt}, "linux")
	if err == nil || !strings.Contains(err.Error(), "read-only") {
		t.Fatalf("error = %v, want registrar failure", err)
	}
}

func TestManagerInstallAll(t *testing.T) {
	f := newManagerFixture(t, map[string][]string{
		"ytt":   {"0.28.0"},
		"kbld":  {"0.28.0", "0.27.0"},
		"kapp":  {"0.35.0"},
		"kctrl": {"0.30.0"},
	})

	reqs := []ArtifactRequest{
		{Binary: BinaryYtt},
		{Binary: BinaryKbld, Version: Exact("0.27.0")},
		{Binary: BinaryKapp},
		{Binary: BinaryKctrl},
	}

	results, err := f.manager.InstallAll(context.Background(), reqs, "linux")
	if err != nil {
		t.Fatalf("InstallAll() error = %v", err)
	}

	wantVersions := []string{"0.28.0", "0.27.0", "0.35.0", "0.30.0"}
	for i, r := range results {
		if r == nil || r.Binary != reqs[i].Binary || r.Version != wantVersions[i] {
			t.Errorf("results[%d] = %+v, want %s %s", i, r, reqs[i].Binary, wantVersions[i])
		}
	}

	if got := f.fetcher.callCount(); got != len(reqs) {
		t.Errorf("expected %d downloads, got %d", len(reqs), got)
	}

	var tools []string
	for _, dir := range f.registrar.dirs {
		rel, err := filepath.Rel(f.cache.root, dir)
		if err != nil {
			t.Fatal(err)
		}
		tools = append(tools, filepath.ToSlash(rel))
	}
	sort.Strings(tools)
	want := []string{"kapp/0.35.0", "kbld/0.27.0", "kctrl/0.30.0", "ytt/0.28.0"}
	if strings.Join(tools, ",") != strings.Join(want, ",") {
		t.Errorf("registered %v, want %v", tools, want)
	}
}

func TestManagerInstallAll_FailureDoesNotCancelSiblings(t *testing.T) {
	f := newManagerFixture(t, map[string][]string{
		"ytt":  {"0.28.0"},
		"kapp": {"0.35.0"},
	})

	reqs := []ArtifactRequest{
		{Binary: BinaryYtt},
		{Binary: BinaryKapp, Version: Exact("0.1.0")},
	}

	results, err := f.manager.InstallAll(context.Background(), reqs, "linux")
	if !errors.Is(err, ErrVersionNotFound) {
		t.Fatalf("error = %v, want ErrVersionNotFound", err)
	}
	if results[0] == nil || results[1] != nil {
		t.Errorf("results = %v, want ytt only", results)
	}
	if !strings.Contains(err.Error(), "kapp") {
		t.Errorf("error should name the failing tool: %v", err)
	}

	if _, ok := f.cache.Find("ytt", "0.28.0"); !ok {
		t.Error("successful sibling install should persist")
	}
	if len(f.registrar.dirs) != 1 {
		t.Errorf("expected only ytt registered, got %v", f.registrar.dirs)
	}
}

func TestManagerInstallAll_Empty(t *testing.T) {
	f := newManagerFixture(t, nil)
	if _, err := f.manager.InstallAll(context.Background(), nil, "linux"); err != nil {
		t.Fatalf("InstallAll(nil) error = %v", err)
	}
	if f.catalog.calls != 0 {
		t.Error("no catalog calls expected")
	}
}
