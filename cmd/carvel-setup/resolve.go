package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ZebulonRouseFrantzich/carvel-setup/internal/binary"
	"github.com/ZebulonRouseFrantzich/carvel-setup/internal/config"
)

const resolveDesc = `
Show what install would download without downloading it: the resolved
release tag, the asset name and its URL for each selected tool.
`

type resolveOptions struct {
	*globalOptions
	selection
}

func newResolveCmd(g *globalOptions) *cobra.Command {
	o := &resolveOptions{globalOptions: g}

	cmd := &cobra.Command{
		Use:   "resolve [tool[@version]...]",
		Short: "resolve tool versions and download URLs",
		Long:  resolveDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd.Context(), args)
		},
	}
	o.selection.addFlags(cmd.Flags())

	return cmd
}

func (o *resolveOptions) run(ctx context.Context, args []string) error {
	log := o.logger()

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

	resolver := binary.NewResolver(o.catalog(cfg.Token, log))
	resolved := make([]*binary.DownloadInfo, len(reqs))

	var g errgroup.Group
	for i, req := range reqs {
		g.Go(func() error {
			dl, err := resolver.Resolve(ctx, req, info.OS)
			if err != nil {
				return fmt.Errorf("resolve %s: %w", req, err)
			}
			resolved[i] = dl
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	w := tabwriter.NewWriter(o.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TOOL\tVERSION\tASSET\tURL")
	for _, dl := range resolved {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", dl.Binary, dl.Version, dl.AssetName, dl.URL)
	}
	return w.Flush()
}
