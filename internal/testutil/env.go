// Package testutil provides utilities for testing carvel-setup in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// RunnerEnv is a fake GitHub Actions runner environment rooted in a
// temporary directory.
type RunnerEnv struct {
	// ToolCache is the RUNNER_TOOL_CACHE directory.
	ToolCache string
	// GitHubPath is the GITHUB_PATH file. It does not exist until written.
	GitHubPath string
	// Vars holds the environment seen through Getenv.
	Vars map[string]string
}

// SetupRunnerEnv creates isolated runner directories for each test.
// This ensures tests never touch:
// - the user's tool cache
// - a real runner's GITHUB_PATH file
// - the PATH of later tests
//
// PATH is restored when the test ends, since installs prepend to it.
func SetupRunnerEnv(t *testing.T) *RunnerEnv {
	t.Helper()

	tmpDir := t.TempDir()
	env := &RunnerEnv{
		ToolCache:  filepath.Join(tmpDir, "toolcache"),
		GitHubPath: filepath.Join(tmpDir, "github_path"),
	}
	if err := os.MkdirAll(env.ToolCache, 0o750); err != nil {
		t.Fatalf("failed to create tool cache %s: %v", env.ToolCache, err)
	}

	env.Vars = map[string]string{
		"RUNNER_TOOL_CACHE": env.ToolCache,
		"GITHUB_PATH":       env.GitHubPath,
	}

	t.Setenv("PATH", os.Getenv("PATH"))

	return env
}

// Getenv looks up key in Vars. Unset keys read as empty.
func (e *RunnerEnv) Getenv(key string) string {
	return e.Vars[key]
}

// Set adds or replaces a variable.
func (e *RunnerEnv) Set(key, value string) {
	e.Vars[key] = value
}
