package environment

import (
	"context"
	"fmt"
	"strings"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	utilversion "k8s.io/apimachinery/pkg/util/version"
	"k8s.io/apimachinery/pkg/version"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/kubernetes"
)

const (
	// ClusterVersionKey is the info key under which cluster k8s version will
	// be provided as returned by the /version API.
	ClusterVersionKey = "k8s_version"
	// ClusterVersionSemverKey is the info key under which cluster k8s semver
	// version will be provided.
	ClusterVersionSemverKey = "k8s_version_semver"
	// ClusterArchKey is the info key under which cluster architecture will be provided.
	ClusterArchKey = "k8s_arch"
	// ClusterProviderKey is the info key under which the cluster provider will be provided.
	ClusterProviderKey = "k8s_provider"
	// NodeCountKey is the info key under which the number of nodes in the cluster
	// will be provided.
	NodeCountKey = "k8s_nodes_count"
)

// ClusterProvider identifies a particular cluster provider like AWS, GKE etc.
type ClusterProvider string

const (
	// ClusterProviderGKE identifies Google's GKE cluster provider.
	ClusterProviderGKE = ClusterProvider("GKE")
	// ClusterProviderAWS identifies Amazon's AWS cluster provider.
	ClusterProviderAWS = ClusterProvider("AWS")
	// ClusterProviderUnknown represents an unknown cluster provider.
	ClusterProviderUnknown = ClusterProvider("UNKNOWN")
)

// ClientGoInfoFunc defines an info func for client-go based providers.
type ClientGoInfoFunc func(ctx context.Context, kc kubernetes.Interface) (Info, error)

// k8sClientGoBase is a base boilerplate struct that allows users to create their
// own k8s environment providers that interact with the cluster using kubernetes.Interface.
type k8sClientGoBase struct {
	kc       kubernetes.Interface
	infoFunc ClientGoInfoFunc

	base
}

// NewK8sClientGoBase returns a kubernetes provider (based on client-go) returning
// environment info using the logic in provided func.
func NewK8sClientGoBase(name string, kind Kind, kc kubernetes.Interface, f ClientGoInfoFunc) (Provider, error) {
	if kc == nil {
		return nil, ErrNilClient
	}
	if f == nil {
		return nil, ErrNilFunctor
	}
	return &k8sClientGoBase{
		kc:       kc,
		infoFunc: f,
		base: base{
			name: name,
			kind: kind,
		},
	}, nil
}

func (p *k8sClientGoBase) Provide(ctx context.Context) (Info, error) {
	info, err := p.infoFunc(ctx, p.kc)
	if err != nil {
		return nil, p.WrapError(err)
	}
	return info, nil
}

// NewK8sClusterVersionProvider creates a provider that will query the configured
// k8s cluster to get cluster k8s version.
func NewK8sClusterVersionProvider(name string, kc kubernetes.Interface) (Provider, error) {
	return NewK8sClientGoBase(name, Kind(ClusterVersionKey), kc, clusterVersionInfo)
}

func clusterVersionInfo(_ context.Context, kc kubernetes.Interface) (Info, error) {
	v, err := clusterVersion(kc.Discovery())
	if err != nil {
		return nil, err
	}

	semver, err := utilversion.ParseGeneric(v.GitVersion)
	if err != nil {
		// Fall back to the major and minor returned from /version API.
		return Info{ //nolint:nilerr
			ClusterVersionKey:       v.GitVersion,
			ClusterVersionSemverKey: fmt.Sprintf("v%s.%s", v.Major, v.Minor),
		}, nil
	}

	return Info{
		ClusterVersionKey:       v.GitVersion,
		ClusterVersionSemverKey: "v" + semver.String(),
	}, nil
}

func clusterVersion(d discovery.DiscoveryInterface) (*version.Info, error) {
	v, err := d.ServerVersion()
	if err != nil {
		return nil, fmt.Errorf("failed to get cluster version: %w", err)
	}
	return v, nil
}

// NewK8sClusterArchProvider creates a provider that will query the configured
// k8s cluster to get cluster architecture.
func NewK8sClusterArchProvider(name string, kc kubernetes.Interface) (Provider, error) {
	return NewK8sClientGoBase(name, Kind(ClusterArchKey), kc, func(_ context.Context, kc kubernetes.Interface) (Info, error) {
		v, err := clusterVersion(kc.Discovery())
		if err != nil {
			return nil, err
		}
		return Info{
			ClusterArchKey: v.Platform,
		}, nil
	})
}

// NewK8sNodeCountProvider creates a provider that will count the nodes of
// the configured k8s cluster.
func NewK8sNodeCountProvider(name string, kc kubernetes.Interface) (Provider, error) {
	return NewK8sClientGoBase(name, Kind(NodeCountKey), kc, func(ctx context.Context, kc kubernetes.Interface) (Info, error) {
		nodes, err := kc.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to list nodes: %w", err)
		}
		return Info{
			NodeCountKey: len(nodes.Items),
		}, nil
	})
}

// NewK8sClusterProviderProvider creates a provider that will return the
// cluster provider name based on a set of heuristics.
func NewK8sClusterProviderProvider(name string, kc kubernetes.Interface) (Provider, error) {
	return NewK8sClientGoBase(name, Kind(ClusterProviderKey), kc, clusterProviderInfo)
}

func clusterProviderInfo(ctx context.Context, kc kubernetes.Interface) (Info, error) {
	v, err := clusterVersion(kc.Discovery())
	if err != nil {
		return nil, err
	}
	if p, ok := clusterProviderFromVersion(v.GitVersion); ok {
		return Info{ClusterProviderKey: p}, nil
	}

	nodes, err := kc.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	if p, ok := clusterProviderFromNodes(nodes.Items); ok {
		return Info{ClusterProviderKey: p}, nil
	}

	return Info{ClusterProviderKey: ClusterProviderUnknown}, nil
}

func clusterProviderFromVersion(v string) (ClusterProvider, bool) {
	switch {
	case strings.Contains(v, "gke"):
		return ClusterProviderGKE, true
	case strings.Contains(v, "eks"):
		return ClusterProviderAWS, true
	default:
		return "", false
	}
}

func clusterProviderFromNodes(nodes []corev1.Node) (ClusterProvider, bool) {
	const (
		// Nodes on GKE are provided by GCE (Google Compute Engine).
		providerIDPrefixGKE = "gce"
		providerIDPrefixAWS = "aws"

		annotationGKEInstanceID = "container.googleapis.com/instance_id"
		labelAWSClusterName     = "alpha.eksctl.io/cluster-name"
		labelAWSInstanceID      = "alpha.eksctl.io/instance-id"
	)

	counts := make(map[ClusterProvider]int)
	for _, n := range nodes {
		switch {
		case strings.HasPrefix(n.Spec.ProviderID, providerIDPrefixGKE):
			counts[ClusterProviderGKE]++
		case strings.HasPrefix(n.Spec.ProviderID, providerIDPrefixAWS):
			counts[ClusterProviderAWS]++
		}
	}
	// The most common provider wins, GKE on ties.
	if counts[ClusterProviderGKE] > 0 || counts[ClusterProviderAWS] > 0 {
		if counts[ClusterProviderGKE] >= counts[ClusterProviderAWS] {
			return ClusterProviderGKE, true
		}
		return ClusterProviderAWS, true
	}

	for _, n := range nodes {
		if _, ok := n.Annotations[annotationGKEInstanceID]; ok {
			return ClusterProviderGKE, true
		}
		_, hasName := n.Labels[labelAWSClusterName]
		_, hasID := n.Labels[labelAWSInstanceID]
		if hasName || hasID {
			return ClusterProviderAWS, true
		}
	}
	return "", false
}
