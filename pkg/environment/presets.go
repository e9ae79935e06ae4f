package environment

import (
	"runtime"

	"k8s.io/client-go/kubernetes"
)

// NewHostProviders creates the providers describing the host running the plan.
//
// Exemplar info produced:
//
//	{
//	  "hostname": "runner-1",
//	  "os": "linux",
//	  "arch": "amd64",
//	  "go_version": "go1.20.4"
//	}
func NewHostProviders() ([]Provider, error) {
	hostname, err := NewHostnameProvider(HostnameKey)
	if err != nil {
		return nil, err
	}
	rt, err := NewFixedValueProvider("runtime", Info{
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"go_version": runtime.Version(),
	})
	if err != nil {
		return nil, err
	}
	return []Provider{hostname, rt}, nil
}

// NewClusterProviders creates the providers describing the kubernetes cluster
// the plan is tested against.
//
// Exemplar info produced:
//
//	{
//	  "k8s_arch": "linux/amd64",
//	  "k8s_version": "v1.24.1-gke.1400",
//	  "k8s_version_semver": "v1.24.1",
//	  "k8s_provider": "GKE",
//	  "k8s_nodes_count": 3
//	}
func NewClusterProviders(kc kubernetes.Interface) ([]Provider, error) {
	if kc == nil {
		return nil, ErrNilClient
	}

	var providers []Provider
	for _, f := range []func(string, kubernetes.Interface) (Provider, error){
		NewK8sClusterArchProvider,
		NewK8sClusterVersionProvider,
		NewK8sClusterProviderProvider,
		NewK8sNodeCountProvider,
	} {
		p, err := f("cluster", kc)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return providers, nil
}
