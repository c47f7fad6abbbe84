package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/carvel-setup/internal/config"
)

const initDesc = `
Write a Lua config file from the selection flags. The file can be passed back
with --config and edited by hand; it may branch on the read-only platform
table. Tokens are never written.
`

const defaultConfigFile = "carvel-setup.lua"

type initOptions struct {
	*globalOptions
	selection

	output string
	force  bool
}

func newInitCmd(g *globalOptions) *cobra.Command {
	o := &initOptions{globalOptions: g}

	cmd := &cobra.Command{
		Use:   "init [tool[@version]...]",
		Short: "generate a config file",
		Long:  initDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd.Context(), args)
		},
	}

	f := cmd.Flags()
	o.selection.addFlags(f)
	f.StringVarP(&o.output, "output", "o", defaultConfigFile, `file to write, or "-" for stdout`)
	f.BoolVar(&o.force, "force", false, "overwrite an existing file")

	return cmd
}

func (o *initOptions) run(ctx context.Context, args []string) error {
	cfg, err := o.selection.config(args)
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
	// Unknown tool names fail here rather than when the file is used.
	if _, err := config.Requests(cfg, info.OS); err != nil {
		return err
	}

	content, err := config.NewGenerator().Generate(cfg)
	if err != nil {
		return fmt.Errorf("generate config: %w", err)
	}

	if o.output == "-" {
		fmt.Fprint(o.out, content)
		return nil
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if o.force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(o.output, flags, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%s already exists (use --force to overwrite)", o.output)
		}
		return fmt.Errorf("create %s: %w", o.output, err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", o.output, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", o.output, err)
	}

	fmt.Fprintf(o.out, "Wrote %s\n", o.output)
	return nil
}
