package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/carvel-setup/internal/binary"
	"github.com/ZebulonRouseFrantzich/carvel-setup/internal/config"
	"github.com/ZebulonRouseFrantzich/carvel-setup/internal/drift"
	"github.com/ZebulonRouseFrantzich/carvel-setup/internal/logging"
	"github.com/ZebulonRouseFrantzich/carvel-setup/internal/shell"
	"github.com/ZebulonRouseFrantzich/carvel-setup/internal/toolcache"
)

const installDesc = `
Install Carvel tools.

With no arguments every tool available on the platform is installed at its
latest release. Arguments of the form tool[@version] narrow the selection:

    carvel-setup install ytt kapp@v0.54.0

When $GITHUB_PATH is set the install directories are appended to it.
Otherwise a snippet that puts them on PATH is printed for --shell.
`

type installOptions struct {
	*globalOptions
	selection

	shell   string
	keyring string
	check   bool
}

func newInstallCmd(g *globalOptions) *cobra.Command {
	o := &installOptions{globalOptions: g}

	cmd := &cobra.Command{
		Use:   "install [tool[@version]...]",
		Short: "install Carvel tools",
		Long:  installDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd.Context(), args)
		},
	}

	f := cmd.Flags()
	o.selection.addFlags(f)
	f.StringVar(&o.shell, "shell", "", "shell for the PATH snippet: bash, zsh or fish (default: detected)")
	f.StringVar(&o.keyring, "keyring", "", "OpenPGP keyring; when set, release notes must be clear-signed by it")
	f.BoolVar(&o.check, "check", false, "check that the installed tools resolve on PATH afterwards")

	return cmd
}

func (o *installOptions) run(ctx context.Context, args []string) error {
	log := o.logger()

	if o.shell != "" {
		if _, err := shell.ParseShellType(o.shell); err != nil {
			return err
		}
	}
	flagCfg, err := o.selection.config(args)
	if err != nil {
		return err
	}
	detector, err := o.detector()
	if err != nil {
		return err
	}
	info, err := detector.Detect(ctx)
	if err != nil {
		return fmt.Errorf("detect platform: %w", err)
	}
	cfg, err := o.loadConfig(ctx, detector, log, flagCfg)
	if err != nil {
		return err
	}
	reqs, err := config.Requests(cfg, info.OS)
	if err != nil {
		return err
	}
	if len(reqs) == 0 {
		fmt.Fprintln(o.out, "Nothing to install.")
		return nil
	}

	if cfg.Token == "" {
		log.Warn("No token set, you may experience rate limiting. Set --token or GITHUB_TOKEN if you experience issues.")
	}

	verifier, err := o.verifier()
	if err != nil {
		return err
	}

	root, err := o.cacheRoot()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	lock, err := toolcache.AcquireLock(ctx, root)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			log.Debug("failed to release cache lock", "error", err)
		}
	}()

	registrar, collector := o.registrar()

	mgr, err := binary.NewManager(binary.Config{
		Resolver:  binary.NewResolver(o.catalog(cfg.Token, log)),
		Cache:     toolcache.New(root, info.Arch),
		Fetcher:   binary.NewDownloader(""),
		Registrar: registrar,
		Verifier:  verifier,
		Logger:    log,
	})
	if err != nil {
		return err
	}

	results, err := mgr.InstallAll(ctx, reqs, info.OS)
	if err != nil {
		return err
	}

	if collector != nil {
		if err := o.printScript(collector, log); err != nil {
			return err
		}
	}

	if o.check {
		return o.runCheck(ctx, info.OS, results, log)
	}
	return nil
}

func (o *installOptions) verifier() (*binary.Verifier, error) {
	if o.keyring == "" {
		return binary.NewVerifier(), nil
	}
	keyring, err := binary.LoadKeyring(o.keyring)
	if err != nil {
		return nil, err
	}
	return binary.NewVerifier(binary.WithKeyring(keyring)), nil
}

// registrar writes to $GITHUB_PATH on a runner and collects directories for
// a shell snippet otherwise. Both also prepend to this process's PATH.
func (o *installOptions) registrar() (shell.PathRegistrar, *shell.Collector) {
	process := &shell.ProcessPath{}
	if file := o.getenv("GITHUB_PATH"); file != "" {
		return shell.Multi{shell.NewGitHubPath(file), process}, nil
	}
	collector := &shell.Collector{}
	return shell.Multi{collector, process}, collector
}

func (o *installOptions) printScript(collector *shell.Collector, log logging.Logger) error {
	shellType := shell.ShellBash
	if o.shell != "" {
		parsed, err := shell.ParseShellType(o.shell)
		if err != nil {
			return err
		}
		shellType = parsed
	} else if detected := shell.DetectShell(); detected.Detected() {
		log.Debug("detected shell", "shell", detected.Shell.String(), "source", string(detected.Source), "path", detected.Path)
		shellType = detected.Shell
	} else {
		log.Debug("shell detection failed, using bash")
	}

	script, err := collector.Script(shellType)
	if err != nil {
		return err
	}
	fmt.Fprint(o.out, script)
	return nil
}

// runCheck confirms every installed tool is the one PATH resolves to.
func (o *installOptions) runCheck(ctx context.Context, goos string, results []*binary.InstallResult, log logging.Logger) error {
	if goos != runtime.GOOS {
		log.Warn("skipping --check, installed tools target another platform", "platform", goos)
		return nil
	}

	expectations := make([]drift.Expectation, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		expectations = append(expectations, drift.Expectation{
			Tool:    r.Binary.String(),
			Version: r.Version,
			Dir:     r.Dir,
		})
	}

	checked := drift.NewChecker().Check(ctx, expectations)
	fmt.Fprint(o.errOut, drift.FormatReport(checked))
	if drift.HasDrift(checked) {
		return fmt.Errorf("installed tools do not match PATH")
	}
	return nil
}
