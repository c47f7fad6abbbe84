package testutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZebulonRouseFrantzich/carvel-setup/internal/testutil"
)

func TestSetupRunnerEnv(t *testing.T) {
	env := testutil.SetupRunnerEnv(t)

	if env.Getenv("RUNNER_TOOL_CACHE") != env.ToolCache {
		t.Errorf("RUNNER_TOOL_CACHE = %q, want %q", env.Getenv("RUNNER_TOOL_CACHE"), env.ToolCache)
	}
	if env.Getenv("GITHUB_PATH") != env.GitHubPath {
		t.Errorf("GITHUB_PATH = %q, want %q", env.Getenv("GITHUB_PATH"), env.GitHubPath)
	}

	info, err := os.Stat(env.ToolCache)
	if err != nil {
		t.Fatalf("tool cache not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("tool cache is not a directory")
	}
	if _, err := os.Stat(env.GitHubPath); !os.IsNotExist(err) {
		t.Errorf("GITHUB_PATH file should not exist yet: %v", err)
	}
	if filepath.Dir(env.ToolCache) != filepath.Dir(env.GitHubPath) {
		t.Error("runner files should share one temp root")
	}
}

func TestRunnerEnv_Set(t *testing.T) {
	env := testutil.SetupRunnerEnv(t)

	if env.Getenv("INPUT_TOKEN") != "" {
		t.Error("unset variables should read as empty")
	}
	env.Set("INPUT_TOKEN", "secret")
	if env.Getenv("INPUT_TOKEN") != "secret" {
		t.Errorf("INPUT_TOKEN = %q", env.Getenv("INPUT_TOKEN"))
	}
}

func TestSetupRunnerEnv_RestoresPath(t *testing.T) {
	original := os.Getenv("PATH")

	t.Run("inner", func(t *testing.T) {
		testutil.SetupRunnerEnv(t)
		os.Setenv("PATH", "/changed")
	})

	if got := os.Getenv("PATH"); got != original {
		t.Errorf("PATH = %q, want %q", got, original)
	}
}
