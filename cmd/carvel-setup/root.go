package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/carvel-setup/internal/config"
	"github.com/ZebulonRouseFrantzich/carvel-setup/internal/logging"
	"github.com/ZebulonRouseFrantzich/carvel-setup/internal/platform"
	"github.com/ZebulonRouseFrantzich/carvel-setup/internal/release"
)

const rootDesc = `Install the Carvel tools (ytt, kbld, kapp, kwt, imgpkg, vendir, kctrl)
from their GitHub releases, verify them against the checksums published in
the release notes, keep them in a local tool cache, and put them on PATH.

Inside GitHub Actions the installed directories are appended to $GITHUB_PATH
and the action inputs (INPUT_ONLY, INPUT_EXCLUDE, INPUT_<TOOL>, INPUT_TOKEN)
are honored.
`

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	cacheDir   string
	platform   string
	token      string
	apiURL     string
	debug      bool

	out    io.Writer
	errOut io.Writer
	getenv func(string) string
}

func newRootCmd(out, errOut io.Writer, getenv func(string) string) *cobra.Command {
	g := &globalOptions{out: out, errOut: errOut, getenv: getenv}

	cmd := &cobra.Command{
		Use:           "carvel-setup",
		Short:         "install Carvel tools from GitHub releases",
		Long:          rootDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	f := cmd.PersistentFlags()
	f.StringVar(&g.configPath, "config", "", "path to a Lua config file")
	f.StringVar(&g.cacheDir, "cache-dir", "", "tool cache directory (default $RUNNER_TOOL_CACHE or the user cache dir)")
	f.StringVar(&g.platform, "platform", "", "target platform as os or os/arch (default: this host)")
	f.StringVar(&g.token, "token", "", "GitHub token (default $INPUT_TOKEN or $GITHUB_TOKEN)")
	f.StringVar(&g.apiURL, "api-url", release.DefaultAPIURL, "GitHub API base URL")
	f.BoolVar(&g.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(
		newInstallCmd(g),
		newResolveCmd(g),
		newVerifyCmd(g),
		newInitCmd(g),
		newVersionCmd(g),
	)

	return cmd
}

func (g *globalOptions) logger() logging.Logger {
	return logging.NewLogrus(g.errOut, g.debug)
}

// detector returns the --platform override or the host detector.
func (g *globalOptions) detector() (platform.Detector, error) {
	if g.platform != "" {
		d, err := platform.Parse(g.platform)
		if err != nil {
			return nil, fmt.Errorf("parse --platform: %w", err)
		}
		return d, nil
	}
	return platform.NewDetector(), nil
}

// loadConfig merges the config file, the environment and flags, in that
// order of precedence. The token falls back to $GITHUB_TOKEN.
func (g *globalOptions) loadConfig(ctx context.Context, detector platform.Detector, log logging.Logger, flags *config.Config) (*config.Config, error) {
	var fileCfg *config.Config
	if g.configPath != "" {
		parsed, err := config.NewParser(detector, config.WithLogger(log)).ParseFile(ctx, g.configPath)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", g.configPath, err)
		}
		fileCfg = parsed
	}

	if flags == nil {
		flags = &config.Config{}
	}
	flags.Token = g.token

	cfg := config.Merge(fileCfg, config.FromEnv(g.getenv), flags)
	if cfg.Token == "" {
		cfg.Token = g.getenv("GITHUB_TOKEN")
	}
	return cfg, nil
}

// cacheRoot picks the tool cache directory.
func (g *globalOptions) cacheRoot() (string, error) {
	if g.cacheDir != "" {
		return g.cacheDir, nil
	}
	if dir := g.getenv("RUNNER_TOOL_CACHE"); dir != "" {
		return dir, nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("determine cache directory: %w", err)
	}
	return filepath.Join(dir, "carvel-setup"), nil
}

func (g *globalOptions) catalog(token string, log logging.Logger) *release.GitHubClient {
	return release.NewGitHubClient(
		release.WithToken(token),
		release.WithBaseURL(g.apiURL),
		release.WithLogger(log),
	)
}
