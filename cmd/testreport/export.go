package main

import (
	"context"
	"io"
	"strings"

	"github.com/go-logr/logr"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/kong/kubernetes-testreport/pkg/execution"
	"github.com/kong/kubernetes-testreport/pkg/forwarders"
	"github.com/kong/kubernetes-testreport/pkg/log"
	"github.com/kong/kubernetes-testreport/pkg/report"
	"github.com/kong/kubernetes-testreport/pkg/types"
)

type exportOptions struct {
	in           string
	out          string
	format       string
	signal       string
	statuses     []string
	configMap    string
	configMapKey string
	kubeconfig   string
	dryRun       bool
}

func newExportCmd(root *rootOptions, d deps) *cobra.Command {
	o := &exportOptions{}
	cmd := &cobra.Command{
		Use:   "export --in FILE --format FORMAT",
		Short: "Export a report",
		Long: `Export a report as JSON, YAML, JUnit XML or a one line summary. The export
is written to --out and/or to a Kubernetes ConfigMap, or to standard output
when neither is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd.Context(), root.logger(), d, o, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&o.in, "in", "", "report to export (JSON or YAML)")
	cmd.Flags().StringVar(&o.format, "format", formatJSON, "export format: "+strings.Join(formats, ", "))
	cmd.Flags().StringVar(&o.out, "out", "", "export destination file")
	cmd.Flags().StringVar(&o.signal, "signal", "testreport", "signal name of summary exports")
	cmd.Flags().StringSliceVar(&o.statuses, "status", nil, "only export nodes with these statuses")
	cmd.Flags().StringVar(&o.configMap, "configmap", "", "store the export in the ConfigMap NAMESPACE/NAME")
	cmd.Flags().StringVar(&o.configMapKey, "configmap-key", "", "ConfigMap data key, defaults to a name derived from the format")
	cmd.Flags().StringVar(&o.kubeconfig, "kubeconfig", "", "path to the kubeconfig used with --configmap")
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "serialize the report without writing it anywhere")
	cobra.CheckErr(cmd.MarkFlagRequired("in"))

	return cmd
}

func runExport(ctx context.Context, logger logr.Logger, d deps, o *exportOptions, stdout io.Writer) error {
	s, err := newSerializer(o.format, o.signal)
	if err != nil {
		return err
	}

	n, err := readReport(o.in)
	if err != nil {
		return err
	}
	if len(o.statuses) > 0 {
		if n, err = filterByStatus(n, o.statuses); err != nil {
			return err
		}
	}

	b, err := s.Serialize(n)
	if err != nil {
		return err
	}

	fwds, err := exportForwarders(logger, d, o, stdout)
	if err != nil {
		return err
	}

	var mErr *multierror.Error
	for _, f := range fwds {
		if err := f.Forward(ctx, b); err != nil {
			logger.Error(err, "failed to export report", "forwarder", f.Name())
			mErr = multierror.Append(mErr, err)
			continue
		}
		logger.V(log.DebugLevel).Info("exported report", "forwarder", f.Name(), "format", o.format)
	}
	return mErr.ErrorOrNil()
}

// exportForwarders returns the sinks of an export. The export is also logged
// at trace verbosity.
func exportForwarders(logger logr.Logger, d deps, o *exportOptions, stdout io.Writer) ([]execution.Forwarder, error) {
	fwds := []execution.Forwarder{
		forwarders.NewLogForwarder(logger.V(log.TraceLevel).WithName("export")),
	}
	if o.dryRun {
		return append(fwds, forwarders.NewDiscardForwarder()), nil
	}

	var sinks []execution.Forwarder
	if o.out != "" {
		sinks = append(sinks, forwarders.NewFileForwarder(o.out))
	}
	if o.configMap != "" {
		namespace, name, ok := strings.Cut(o.configMap, "/")
		if !ok {
			return nil, errors.Errorf("invalid --configmap %q, expected NAMESPACE/NAME", o.configMap)
		}
		kc, err := d.newKubeClient(o.kubeconfig)
		if err != nil {
			return nil, err
		}
		key := o.configMapKey
		if key == "" {
			key = defaultConfigMapKey(o.format)
		}
		f, err := forwarders.NewConfigMapForwarder(kc, namespace, name, forwarders.WithConfigMapKey(key))
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, f)
	}
	if len(sinks) == 0 {
		sinks = append(sinks, forwarders.NewWriterForwarder(stdout))
	}
	return append(fwds, sinks...), nil
}

func filterByStatus(n report.Node, statuses []string) (report.Node, error) {
	wanted := make([]types.Status, 0, len(statuses))
	for _, s := range statuses {
		switch st := types.Status(s); st {
		case types.StatusPassed, types.StatusFailed, types.StatusError, types.StatusUnknown:
			wanted = append(wanted, st)
		default:
			return nil, errors.Errorf("unknown status %q", s)
		}
	}

	g, ok := n.(*report.Group)
	if !ok {
		return n, nil
	}
	// Entries of kept test cases are kept as they are.
	allEntries := report.Entries(func(types.Entry) bool { return true })
	if err := g.FilterInPlace(report.ByStatus(wanted...), allEntries); err != nil {
		return nil, err
	}
	return g, nil
}
