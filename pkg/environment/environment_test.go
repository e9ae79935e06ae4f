package environment

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/version"
	fakediscovery "k8s.io/client-go/discovery/fake"
	clientgo_fake "k8s.io/client-go/kubernetes/fake"
)

func withServerVersion(t *testing.T, kc *clientgo_fake.Clientset, gitVersion string) *clientgo_fake.Clientset {
	t.Helper()
	d, ok := kc.Discovery().(*fakediscovery.FakeDiscovery)
	require.True(t, ok)
	d.FakedServerVersion = &version.Info{
		Major:      "1",
		Minor:      "24",
		GitVersion: gitVersion,
		Platform:   "linux/arm64",
	}
	return kc
}

func TestClusterVersion(t *testing.T) {
	testcases := []struct {
		name       string
		gitVersion string
		expected   Info
	}{
		{
			name:       "undecodable git version falls back to major and minor",
			gitVersion: "v1-custom",
			expected: Info{
				ClusterVersionKey:       "v1-custom",
				ClusterVersionSemverKey: "v1.24",
			},
		},
		{
			name:       "gke versioning scheme is decoded properly",
			gitVersion: "v1.24.1-gke.1400",
			expected: Info{
				ClusterVersionKey:       "v1.24.1-gke.1400",
				ClusterVersionSemverKey: "v1.24.1",
			},
		},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			kc := withServerVersion(t, clientgo_fake.NewSimpleClientset(), tc.gitVersion)
			p, err := NewK8sClusterVersionProvider("version", kc)
			require.NoError(t, err)

			info, err := p.Provide(context.Background())
			require.NoError(t, err)
			require.Equal(t, tc.expected, info)
		})
	}
}

func TestClusterProvider(t *testing.T) {
	testcases := []struct {
		name       string
		gitVersion string
		nodes      []corev1.Node
		expected   ClusterProvider
	}{
		{
			name:     "no objects in the cluster return unknown cluster provider",
			expected: ClusterProviderUnknown,
		},
		{
			name:       "gke version string",
			gitVersion: "v1.24.1-gke.1400",
			expected:   ClusterProviderGKE,
		},
		{
			name:       "eks version string",
			gitVersion: "v1.23.7-eks-4721010",
			expected:   ClusterProviderAWS,
		},
		{
			name: "gke node provider id",
			nodes: []corev1.Node{{
				ObjectMeta: metav1.ObjectMeta{Name: "n1"},
				Spec:       corev1.NodeSpec{ProviderID: "gce://k8s-playground/europe-north1-a/gke-cluster-user-default-pool"},
			}},
			expected: ClusterProviderGKE,
		},
		{
			name: "aws nodes outnumber gke nodes",
			nodes: []corev1.Node{
				{
					ObjectMeta: metav1.ObjectMeta{Name: "n1"},
					Spec:       corev1.NodeSpec{ProviderID: "aws:///eu-west-1b/i-0fa11111111111111"},
				},
				{
					ObjectMeta: metav1.ObjectMeta{Name: "n2"},
					Spec:       corev1.NodeSpec{ProviderID: "aws:///eu-west-1b/i-0fa22222222222222"},
				},
				{
					ObjectMeta: metav1.ObjectMeta{Name: "n3"},
					Spec:       corev1.NodeSpec{ProviderID: "gce://k8s-playground/europe-north1-a/node"},
				},
			},
			expected: ClusterProviderAWS,
		},
		{
			name: "gke node annotations",
			nodes: []corev1.Node{{
				ObjectMeta: metav1.ObjectMeta{
					Name:        "n1",
					Annotations: map[string]string{"container.googleapis.com/instance_id": "123"},
				},
			}},
			expected: ClusterProviderGKE,
		},
		{
			name: "aws node labels",
			nodes: []corev1.Node{{
				ObjectMeta: metav1.ObjectMeta{
					Name:   "n1",
					Labels: map[string]string{"alpha.eksctl.io/cluster-name": "cluster"},
				},
			}},
			expected: ClusterProviderAWS,
		},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			kc := clientgo_fake.NewSimpleClientset()
			for i := range tc.nodes {
				_, err := kc.CoreV1().Nodes().Create(context.Background(), &tc.nodes[i], metav1.CreateOptions{})
				require.NoError(t, err)
			}
			if tc.gitVersion != "" {
				withServerVersion(t, kc, tc.gitVersion)
			}

			p, err := NewK8sClusterProviderProvider("provider", kc)
			require.NoError(t, err)
			info, err := p.Provide(context.Background())
			require.NoError(t, err)
			require.Equal(t, Info{ClusterProviderKey: tc.expected}, info)
		})
	}
}

func TestCollect(t *testing.T) {
	kc := withServerVersion(t, clientgo_fake.NewSimpleClientset(&corev1.Node{
		ObjectMeta: metav1.ObjectMeta{Name: "n1"},
	}), "v1.25.4")

	var providers []Provider
	for _, f := range []func() (Provider, error){
		func() (Provider, error) { return NewK8sClusterArchProvider("arch", kc) },
		func() (Provider, error) { return NewK8sNodeCountProvider("nodes", kc) },
		func() (Provider, error) { return NewHostnameProvider("hostname") },
		func() (Provider, error) { return NewFixedValueProvider("constant", Info{"ci": true}) },
	} {
		p, err := f()
		require.NoError(t, err)
		providers = append(providers, p)
	}

	hostname, err := os.Hostname()
	require.NoError(t, err)

	info, err := Collect(context.Background(), providers...)
	require.NoError(t, err)
	require.Equal(t, Info{
		ClusterArchKey: "linux/arm64",
		NodeCountKey:   1,
		HostnameKey:    hostname,
		"ci":           true,
	}, info)

	t.Run("failing providers", func(t *testing.T) {
		boom := errors.New("boom")
		failing, err := NewFunctorProvider("failing", func(context.Context) (Info, error) {
			return nil, boom
		})
		require.NoError(t, err)

		info, err := Collect(context.Background(), append(providers, failing)...)
		require.ErrorIs(t, err, boom)
		require.Len(t, info, 4, "info of successful providers should be kept")
	})
}

func TestInfoKeysAndValues(t *testing.T) {
	info := Info{"b": 2, "a": 1}
	require.Equal(t, []any{"a", 1, "b", 2}, info.KeysAndValues())

	var empty Info
	empty.Merge(Info{"a": 1})
	require.Equal(t, Info{"a": 1}, empty)
}

func TestProvidersArguments(t *testing.T) {
	_, err := NewFunctorProvider("nil", nil)
	require.ErrorIs(t, err, ErrNilFunctor)
	_, err = NewK8sNodeCountProvider("nodes", nil)
	require.ErrorIs(t, err, ErrNilClient)
}

func TestPresets(t *testing.T) {
	host, err := NewHostProviders()
	require.NoError(t, err)
	info, err := Collect(context.Background(), host...)
	require.NoError(t, err)
	require.Contains(t, info, HostnameKey)
	require.Contains(t, info, "go_version")

	kc := withServerVersion(t, clientgo_fake.NewSimpleClientset(), "v1.24.1-gke.1400")
	cluster, err := NewClusterProviders(kc)
	require.NoError(t, err)
	info, err = Collect(context.Background(), cluster...)
	require.NoError(t, err)
	require.Equal(t, Info{
		ClusterArchKey:          "linux/arm64",
		ClusterVersionKey:       "v1.24.1-gke.1400",
		ClusterVersionSemverKey: "v1.24.1",
		ClusterProviderKey:      ClusterProviderGKE,
		NodeCountKey:            0,
	}, info)

	_, err = NewClusterProviders(nil)
	require.ErrorIs(t, err, ErrNilClient)
}
