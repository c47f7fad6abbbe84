package drift

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Checker inspects the tools resolvable on the execution path.
type Checker struct {
	lookPath   func(file string) (string, error)
	runVersion func(ctx context.Context, binaryPath string) (string, error)
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithLookPath replaces exec.LookPath.
func WithLookPath(fn func(string) (string, error)) CheckerOption {
	return func(c *Checker) { c.lookPath = fn }
}

// WithVersionRunner replaces the command used to query a tool's version.
func WithVersionRunner(fn func(ctx context.Context, binaryPath string) (string, error)) CheckerOption {
	return func(c *Checker) { c.runVersion = fn }
}

// NewChecker creates a checker using the real PATH.
func NewChecker(opts ...CheckerOption) *Checker {
	c := &Checker{
		lookPath:   exec.LookPath,
		runVersion: DetectVersionOutput,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check classifies each expectation in order.
func (c *Checker) Check(ctx context.Context, expectations []Expectation) []DriftResult {
	results := make([]DriftResult, 0, len(expectations))
	for _, e := range expectations {
		results = append(results, c.checkOne(ctx, e))
	}
	return results
}

func (c *Checker) checkOne(ctx context.Context, e Expectation) DriftResult {
	result := DriftResult{
		Tool:            e.Tool,
		ExpectedVersion: e.Version,
		ExpectedDir:     e.Dir,
	}

	path, err := c.lookPath(e.Tool)
	if err != nil {
		result.DriftType = DriftMissing
		if e.Dir != "" && installedIn(e.Dir, e.Tool) {
			result.DriftType = DriftManagedButNotActive
		}
		return result
	}

	resolvedPath, err := filepath.EvalSymlinks(path)
	if err != nil {
		resolvedPath = path
	}
	result.ActivePath = resolvedPath

	if e.Dir != "" && !sameDir(filepath.Dir(resolvedPath), e.Dir) {
		result.DriftType = DriftExternalOverride
		if output, err := c.runVersion(ctx, resolvedPath); err == nil {
			result.ActiveVersion, _ = ExtractVersion(output)
		}
		return result
	}

	output, err := c.runVersion(ctx, resolvedPath)
	if err != nil {
		result.DriftType = DriftVersionUnknown
		return result
	}
	version, err := ExtractVersion(output)
	if err != nil {
		result.DriftType = DriftVersionUnknown
		return result
	}
	result.ActiveVersion = version

	if !versionsMatch(e.Version, version) {
		result.DriftType = DriftVersionMismatch
		return result
	}

	result.DriftType = DriftOK
	return result
}

// DetectVersionOutput runs "<tool> version", the Carvel convention, and
// falls back to "--version".
func DetectVersionOutput(ctx context.Context, binaryPath string) (string, error) {
	for _, arg := range []string{"version", "--version"} {
		output, err := exec.CommandContext(ctx, binaryPath, arg).Output()
		if err == nil {
			if _, err := ExtractVersion(string(output)); err == nil {
				return string(output), nil
			}
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}
	return "", fmt.Errorf("failed to detect version for %s", binaryPath)
}

func installedIn(dir, tool string) bool {
	name := tool
	if runtime.GOOS == "windows" && filepath.Ext(name) == "" {
		name += ".exe"
	}
	info, err := os.Stat(filepath.Join(dir, name))
	return err == nil && info.Mode().IsRegular()
}

func sameDir(a, b string) bool {
	if ra, err := filepath.EvalSymlinks(a); err == nil {
		a = ra
	}
	if rb, err := filepath.EvalSymlinks(b); err == nil {
		b = rb
	}
	return filepath.Clean(a) == filepath.Clean(b)
}
