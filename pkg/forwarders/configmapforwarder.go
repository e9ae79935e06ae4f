package forwarders

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// DefaultConfigMapKey is the ConfigMap data key under which reports are stored
// unless configured otherwise.
const DefaultConfigMapKey = "report"

type configMapForwarder struct {
	kc        kubernetes.Interface
	namespace string
	name      string
	key       string
	labels    map[string]string
}

// ConfigMapOpt configures the ConfigMap forwarder.
type ConfigMapOpt func(*configMapForwarder)

// WithConfigMapKey sets the data key under which reports are stored.
func WithConfigMapKey(key string) ConfigMapOpt {
	return func(f *configMapForwarder) {
		f.key = key
	}
}

// WithConfigMapLabels sets labels put on ConfigMaps created by the forwarder.
func WithConfigMapLabels(labels map[string]string) ConfigMapOpt {
	return func(f *configMapForwarder) {
		f.labels = labels
	}
}

// NewConfigMapForwarder creates a forwarder which stores every received report
// in the ConfigMap namespace/name, creating it when it doesn't exist.
func NewConfigMapForwarder(kc kubernetes.Interface, namespace, name string, opts ...ConfigMapOpt) (*configMapForwarder, error) {
	if kc == nil {
		return nil, fmt.Errorf("configmap forwarder requires a kubernetes client")
	}
	if namespace == "" || name == "" {
		return nil, fmt.Errorf("configmap forwarder requires namespace and name, got %q/%q", namespace, name)
	}

	f := &configMapForwarder{
		kc:        kc,
		namespace: namespace,
		name:      name,
		key:       DefaultConfigMapKey,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Name returns the name of the forwarder.
func (f *configMapForwarder) Name() string {
	return "ConfigMapForwarder"
}

// Forward stores payload in the configured ConfigMap.
func (f *configMapForwarder) Forward(ctx context.Context, payload []byte) error {
	cms := f.kc.CoreV1().ConfigMaps(f.namespace)

	cm, err := cms.Get(ctx, f.name, metav1.GetOptions{})
	if k8serrors.IsNotFound(err) {
		cm = &corev1.ConfigMap{
			ObjectMeta: metav1.ObjectMeta{
				Namespace: f.namespace,
				Name:      f.name,
				Labels:    f.labels,
			},
			Data: map[string]string{
				f.key: string(payload),
			},
		}
		if _, err := cms.Create(ctx, cm, metav1.CreateOptions{}); err != nil {
			return fmt.Errorf("failed to create report configmap %s/%s: %w", f.namespace, f.name, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get report configmap %s/%s: %w", f.namespace, f.name, err)
	}

	cm = cm.DeepCopy()
	if cm.Data == nil {
		cm.Data = map[string]string{}
	}
	cm.Data[f.key] = string(payload)
	if _, err := cms.Update(ctx, cm, metav1.UpdateOptions{}); err != nil {
		return fmt.Errorf("failed to update report configmap %s/%s: %w", f.namespace, f.name, err)
	}
	return nil
}
