package forwarders

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	clientgo_fake "k8s.io/client-go/kubernetes/fake"

	"github.com/kong/kubernetes-testreport/pkg/report"
)

func TestChannelForwarder(t *testing.T) {
	ch := make(chan []byte, 1)
	f := NewChannelForwarder(ch)

	payload := []byte("report")
	require.NoError(t, f.Forward(context.Background(), payload))
	payload[0] = 'R'
	require.Equal(t, []byte("report"), <-ch)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, NewChannelForwarder(make(chan []byte)).Forward(ctx, nil), context.Canceled)
}

func TestRawChannelForwarder(t *testing.T) {
	ch := make(chan *report.Group, 1)
	f := NewRawChannelForwarder(ch)

	g, err := report.NewGroup("plan", report.WithUID("plan"))
	require.NoError(t, err)
	require.NoError(t, f.Forward(context.Background(), g))

	received := <-ch
	require.True(t, g.Equal(received))
	require.NotSame(t, g, received)
}

func TestDiscardAndLogForwarders(t *testing.T) {
	require.NoError(t, NewDiscardForwarder().Forward(context.Background(), []byte("report")))
	require.NoError(t, NewLogForwarder(logr.Discard()).Forward(context.Background(), []byte("report")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, NewDiscardForwarder().Forward(ctx, nil), context.Canceled)
}

func TestWriterForwarder(t *testing.T) {
	var buf bytes.Buffer
	f := NewWriterForwarder(&buf)

	require.NoError(t, f.Forward(context.Background(), []byte("first\n")))
	require.NoError(t, f.Forward(context.Background(), []byte("second\n")))
	require.Equal(t, "first\nsecond\n", buf.String())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, f.Forward(ctx, []byte("third")), context.Canceled)
}

func TestFileForwarder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	f := NewFileForwarder(path)

	require.NoError(t, f.Forward(context.Background(), []byte("first")))
	require.NoError(t, f.Forward(context.Background(), []byte("second")))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "second", string(b))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files should be cleaned up")

	t.Run("missing directory", func(t *testing.T) {
		f := NewFileForwarder(filepath.Join(t.TempDir(), "missing", "report.json"))
		require.Error(t, f.Forward(context.Background(), []byte("report")))
	})
}

func TestConfigMapForwarder(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	t.Run("creates the configmap", func(t *testing.T) {
		kc := clientgo_fake.NewSimpleClientset()
		f, err := NewConfigMapForwarder(kc, "kong", "test-report",
			WithConfigMapLabels(map[string]string{"app": "testreport"}),
		)
		require.NoError(t, err)

		require.NoError(t, f.Forward(ctx, []byte("first")))
		cm, err := kc.CoreV1().ConfigMaps("kong").Get(ctx, "test-report", metav1.GetOptions{})
		require.NoError(t, err)
		require.Equal(t, "first", cm.Data[DefaultConfigMapKey])
		require.Equal(t, "testreport", cm.Labels["app"])

		require.NoError(t, f.Forward(ctx, []byte("second")))
		cm, err = kc.CoreV1().ConfigMaps("kong").Get(ctx, "test-report", metav1.GetOptions{})
		require.NoError(t, err)
		require.Equal(t, "second", cm.Data[DefaultConfigMapKey])
	})

	t.Run("updates an existing configmap keeping other keys", func(t *testing.T) {
		kc := clientgo_fake.NewSimpleClientset(&corev1.ConfigMap{
			ObjectMeta: metav1.ObjectMeta{Namespace: "kong", Name: "test-report"},
			Data:       map[string]string{"other": "value"},
		})
		f, err := NewConfigMapForwarder(kc, "kong", "test-report", WithConfigMapKey("junit.xml"))
		require.NoError(t, err)

		require.NoError(t, f.Forward(ctx, []byte("<testsuites/>")))
		cm, err := kc.CoreV1().ConfigMaps("kong").Get(ctx, "test-report", metav1.GetOptions{})
		require.NoError(t, err)
		require.Equal(t, map[string]string{
			"other":     "value",
			"junit.xml": "<testsuites/>",
		}, cm.Data)
	})

	t.Run("invalid arguments", func(t *testing.T) {
		_, err := NewConfigMapForwarder(nil, "kong", "test-report")
		require.Error(t, err)
		_, err = NewConfigMapForwarder(clientgo_fake.NewSimpleClientset(), "", "test-report")
		require.Error(t, err)
	})
}
