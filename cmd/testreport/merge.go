package main

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/kong/kubernetes-testreport/pkg/execution"
	"github.com/kong/kubernetes-testreport/pkg/forwarders"
	"github.com/kong/kubernetes-testreport/pkg/report"
)

type mergeOptions struct {
	skeleton  string
	out       string
	nonStrict bool
}

func newMergeCmd(root *rootOptions) *cobra.Command {
	o := &mergeOptions{}
	cmd := &cobra.Command{
		Use:   "merge --skeleton FILE --out FILE PARTIAL...",
		Short: "Merge partial reports into their skeleton",
		Long: `Merge partial reports, produced by workers running parts of a test plan,
into the plan's skeleton. Reports are matched by uid. Nothing is written
when any of the partials fails to merge.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cmd.Context(), root.logger(), o, args)
		},
	}

	cmd.Flags().StringVar(&o.skeleton, "skeleton", "", "skeleton report (JSON or YAML)")
	cmd.Flags().StringVar(&o.out, "out", "", "merged report destination, format follows the extension")
	cmd.Flags().BoolVar(&o.nonStrict, "non-strict", false, "skip partial nodes missing from the skeleton instead of failing")
	cobra.CheckErr(cmd.MarkFlagRequired("skeleton"))
	cobra.CheckErr(cmd.MarkFlagRequired("out"))

	return cmd
}

func runMerge(ctx context.Context, logger logr.Logger, o *mergeOptions, partials []string) error {
	skeleton, err := readGroup(o.skeleton)
	if err != nil {
		return err
	}

	opts := []execution.OptMerger{execution.OptMergerLogger(logger)}
	if o.nonStrict {
		opts = append(opts, execution.OptMergerNonStrict())
	}
	m, err := execution.NewMerger(skeleton, opts...)
	if err != nil {
		return err
	}

	groups := make([]*report.Group, 0, len(partials))
	for _, path := range partials {
		g, err := readGroup(path)
		if err != nil {
			return err
		}
		groups = append(groups, g)
	}
	if err := m.MergeAll(groups...); err != nil {
		return err
	}

	s, err := newSerializer(formatOf(o.out), "")
	if err != nil {
		return err
	}
	b, err := s.Serialize(m.Report())
	if err != nil {
		return err
	}

	logger.Info("merged reports", "partials", m.Merged(), "out", o.out)
	return forwarders.NewFileForwarder(o.out).Forward(ctx, b)
}
