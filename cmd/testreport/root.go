package main

import (
	"github.com/go-logr/logr"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/kong/kubernetes-testreport/pkg"
	"github.com/kong/kubernetes-testreport/pkg/log"
)

const rootLongDescription = `testreport merges report trees produced by independent test workers
into their skeleton and exports merged reports as JSON, YAML, JUnit XML
or a one line summary.`

// deps holds the dependencies of commands which tests replace.
type deps struct {
	newKubeClient func(kubeconfig string) (kubernetes.Interface, error)
}

func defaultDeps() deps {
	return deps{
		newKubeClient: newKubeClient,
	}
}

// newKubeClient creates a kubernetes client from kubeconfig, falling back to
// the default loading rules (KUBECONFIG, ~/.kube/config, in-cluster).
func newKubeClient(kubeconfig string) (kubernetes.Interface, error) {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	if kubeconfig != "" {
		rules.ExplicitPath = kubeconfig
	}
	cfg, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, &clientcmd.ConfigOverrides{}).ClientConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load kubeconfig")
	}
	kc, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create kubernetes client")
	}
	return kc, nil
}

type rootOptions struct {
	verbosity int
}

func (o *rootOptions) logger() logr.Logger {
	return pkg.DefaultLogger(o.verbosity)
}

func newRootCmd(d deps) *cobra.Command {
	o := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "testreport",
		Short:         "Merge and export test reports",
		Long:          rootLongDescription,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().IntVarP(&o.verbosity, "verbosity", "v", log.InfoLevel,
		"logging verbosity: 0 info, 1 debug, 2 trace",
	)

	cmd.AddCommand(
		newMergeCmd(o),
		newExportCmd(o, d),
	)
	return cmd
}
