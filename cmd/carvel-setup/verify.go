package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/carvel-setup/internal/binary"
	"github.com/ZebulonRouseFrantzich/carvel-setup/internal/config"
	"github.com/ZebulonRouseFrantzich/carvel-setup/internal/drift"
	"github.com/ZebulonRouseFrantzich/carvel-setup/internal/toolcache"
)

const verifyDesc = `
Check that Carvel tools on PATH are present and at the expected versions.

    carvel-setup verify ytt@v0.44.1 kapp

A tool without a version only has to be present. When the pinned version is
in the tool cache, the tool must also resolve from there. Exits non-zero
when any tool drifts.
`

type verifyOptions struct {
	*globalOptions

	checker *drift.Checker
}

func newVerifyCmd(g *globalOptions) *cobra.Command {
	o := &verifyOptions{globalOptions: g}

	cmd := &cobra.Command{
		Use:   "verify [tool[@version]...]",
		Short: "check installed Carvel tools against PATH",
		Long:  verifyDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd.Context(), args)
		},
	}

	return cmd
}

func (o *verifyOptions) run(ctx context.Context, args []string) error {
	detector, err := o.detector()
	if err != nil {
		return err
	}
	info, err := detector.Detect(ctx)
	if err != nil {
		return fmt.Errorf("detect platform: %w", err)
	}

	var reqs []binary.ArtifactRequest
	if len(args) == 0 {
		if reqs, err = config.Requests(nil, info.OS); err != nil {
			return err
		}
	}
	for _, arg := range args {
		req, err := config.ParseSpec(arg)
		if err != nil {
			return err
		}
		reqs = append(reqs, req)
	}

	root, err := o.cacheRoot()
	if err != nil {
		return err
	}
	cache := toolcache.New(root, info.Arch)

	expectations := make([]drift.Expectation, 0, len(reqs))
	for _, req := range reqs {
		e := drift.Expectation{Tool: req.Binary.String(), Version: req.Version.String()}
		if exact, ok := req.Version.(binary.Exact); ok {
			if dir, found := cache.Find(binary.BinaryName(req.Binary, info.OS), string(exact)); found {
				e.Dir = dir
			}
		}
		expectations = append(expectations, e)
	}

	checker := o.checker
	if checker == nil {
		checker = drift.NewChecker()
	}
	results := checker.Check(ctx, expectations)
	fmt.Fprint(o.out, drift.FormatReport(results))

	if drift.HasDrift(results) {
		drifted := 0
		for _, r := range results {
			if r.DriftType != drift.DriftOK {
				drifted++
			}
		}
		return fmt.Errorf("%d of %d tools drifted", drifted, len(results))
	}
	return nil
}
