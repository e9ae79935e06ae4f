package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	clientgo_fake "k8s.io/client-go/kubernetes/fake"

	"github.com/kong/kubernetes-testreport/pkg/execution"
	"github.com/kong/kubernetes-testreport/pkg/report"
	"github.com/kong/kubernetes-testreport/pkg/serializers"
	"github.com/kong/kubernetes-testreport/pkg/testcase"
	"github.com/kong/kubernetes-testreport/pkg/types"
)

func fakeDeps(kc kubernetes.Interface) deps {
	return deps{
		newKubeClient: func(string) (kubernetes.Interface, error) {
			return kc, nil
		},
	}
}

func runCmd(t *testing.T, d deps, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(d)
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args, "--verbosity", "0"))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name string, s execution.Serializer, n report.Node) string {
	t.Helper()
	b, err := s.Serialize(n)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

// writePlan writes the skeleton of a two suite plan and a partial report for
// each of the suites, the way independent workers would.
func writePlan(t *testing.T, dir string) (skeleton string, partials []string) {
	t.Helper()

	c, err := execution.NewCoordinator("plan", execution.OptCoordinatorUID("plan"))
	require.NoError(t, err)

	var suites []execution.Suite
	for i, passed := range []bool{true, false} {
		name := []string{"suite1", "suite2"}[i]
		s, err := execution.NewSuite(name, execution.OptSuiteUID(types.UID(name)))
		require.NoError(t, err)
		tc, err := testcase.NewFixedEntriesCase("test_"+name, types.NewAssertion(types.EntryTypeEqual, "values match", passed))
		require.NoError(t, err)
		require.NoError(t, s.AddCase(tc, types.UID(name+"/case")))
		require.NoError(t, c.AddSuite(s))
		suites = append(suites, s)
	}

	plan, err := c.Skeleton()
	require.NoError(t, err)
	skeleton = writeFile(t, dir, "skeleton.json", serializers.NewJSON(), plan)

	for i, s := range suites {
		g, err := s.Execute(context.Background())
		require.NoError(t, err)
		partial, err := report.NewGroup("plan",
			report.WithUID("plan"),
			report.WithCategory(report.CategoryPlan),
			report.WithChildren(g),
		)
		require.NoError(t, err)

		// Mix formats, partials may come in JSON or YAML.
		if i%2 == 0 {
			partials = append(partials, writeFile(t, dir, s.Name()+".json", serializers.NewJSON(), partial))
		} else {
			partials = append(partials, writeFile(t, dir, s.Name()+".yaml", serializers.NewYAML(), partial))
		}
	}
	return skeleton, partials
}

func TestNewRootCmd(t *testing.T) {
	cmd := newRootCmd(defaultDeps())
	assert.Equal(t, "testreport", cmd.Use)
	assert.Equal(t, rootLongDescription, cmd.Long)

	out, err := runCmd(t, defaultDeps())
	require.NoError(t, err)
	assert.Contains(t, out, "merge")
	assert.Contains(t, out, "export")
}

func TestMergeAndExport(t *testing.T) {
	dir := t.TempDir()
	skeleton, partials := writePlan(t, dir)
	merged := filepath.Join(dir, "merged.json")

	_, err := runCmd(t, defaultDeps(), append([]string{"merge", "--skeleton", skeleton, "--out", merged}, partials...)...)
	require.NoError(t, err)

	b, err := os.ReadFile(merged)
	require.NoError(t, err)
	n, err := serializers.DeserializeJSON(b)
	require.NoError(t, err)
	require.Equal(t, types.Counts{Passed: 1, Failed: 1}, n.Counts())

	t.Run("summary to standard output", func(t *testing.T) {
		out, err := runCmd(t, defaultDeps(), "export", "--in", merged, "--format", "summary", "--signal", "ci")
		require.NoError(t, err)
		assert.Equal(t,
			"<14>signal=ci;name=plan;passed=1;failed=1;error=0;status=failed;suite:suite1=passed;suite:suite2=failed;\n",
			out,
		)
	})

	t.Run("failed nodes only", func(t *testing.T) {
		out, err := runCmd(t, defaultDeps(), "export", "--in", merged, "--format", "summary", "--status", "failed")
		require.NoError(t, err)
		assert.Equal(t,
			"<14>signal=testreport;name=plan;passed=0;failed=1;error=0;status=failed;suite:suite2=failed;\n",
			out,
		)
	})

	t.Run("junit to a file", func(t *testing.T) {
		path := filepath.Join(dir, "junit.xml")
		out, err := runCmd(t, defaultDeps(), "export", "--in", merged, "--format", "junit", "--out", path)
		require.NoError(t, err)
		assert.Empty(t, out)

		b, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(b), `classname="suite2:test_suite2"`)
		assert.Contains(t, string(b), `<failure message="values match" type="assertion"></failure>`)
	})

	t.Run("yaml to a configmap", func(t *testing.T) {
		kc := clientgo_fake.NewSimpleClientset()
		_, err := runCmd(t, fakeDeps(kc), "export", "--in", merged, "--format", "yaml", "--configmap", "kong/test-report")
		require.NoError(t, err)

		cm, err := kc.CoreV1().ConfigMaps("kong").Get(context.Background(), "test-report", metav1.GetOptions{})
		require.NoError(t, err)
		n, err := serializers.DeserializeYAML([]byte(cm.Data["report.yaml"]))
		require.NoError(t, err)
		require.Equal(t, types.UID("plan"), n.UID())
	})

	t.Run("dry run writes nothing", func(t *testing.T) {
		path := filepath.Join(dir, "dry.json")
		out, err := runCmd(t, defaultDeps(), "export", "--in", merged, "--out", path, "--dry-run")
		require.NoError(t, err)
		assert.Empty(t, out)
		assert.NoFileExists(t, path)
	})

	t.Run("invalid arguments", func(t *testing.T) {
		_, err := runCmd(t, defaultDeps(), "export", "--in", merged, "--format", "xml")
		require.ErrorContains(t, err, "unknown format")
		_, err = runCmd(t, defaultDeps(), "export", "--in", merged, "--status", "flaky")
		require.ErrorContains(t, err, "unknown status")
		_, err = runCmd(t, fakeDeps(clientgo_fake.NewSimpleClientset()), "export", "--in", merged, "--configmap", "test-report")
		require.ErrorContains(t, err, "NAMESPACE/NAME")
		_, err = runCmd(t, defaultDeps(), "export")
		require.Error(t, err)
	})
}

func TestMergeFailures(t *testing.T) {
	dir := t.TempDir()
	skeleton, partials := writePlan(t, dir)

	foreign, err := report.NewGroup("plan",
		report.WithUID("plan"),
		report.WithCategory(report.CategoryPlan),
		report.WithChildren(func() report.Node {
			g, err := report.NewGroup("suite3", report.WithUID("suite3"), report.WithCategory(report.CategorySuite))
			require.NoError(t, err)
			return g
		}()),
	)
	require.NoError(t, err)
	foreignPath := writeFile(t, dir, "foreign.json", serializers.NewJSON(), foreign)

	t.Run("strict merges fail and write nothing", func(t *testing.T) {
		out := filepath.Join(dir, "strict.json")
		_, err := runCmd(t, defaultDeps(), append([]string{"merge", "--skeleton", skeleton, "--out", out, foreignPath}, partials...)...)
		require.ErrorIs(t, err, report.ErrUnknownChild)
		require.NoFileExists(t, out)
	})

	t.Run("non strict merges skip unknown suites", func(t *testing.T) {
		out := filepath.Join(dir, "lenient.yaml")
		_, err := runCmd(t, defaultDeps(), append([]string{"merge", "--non-strict", "--skeleton", skeleton, "--out", out, foreignPath}, partials...)...)
		require.NoError(t, err)

		b, err := os.ReadFile(out)
		require.NoError(t, err)
		require.True(t, strings.Contains(string(b), "kind: group"))
	})

	t.Run("missing partials", func(t *testing.T) {
		_, err := runCmd(t, defaultDeps(), "merge", "--skeleton", skeleton, "--out", filepath.Join(dir, "out.json"))
		require.Error(t, err)
		_, err = runCmd(t, defaultDeps(), "merge", "--skeleton", skeleton, "--out", filepath.Join(dir, "out.json"), filepath.Join(dir, "missing.json"))
		require.Error(t, err)
	})

	t.Run("leaf skeleton", func(t *testing.T) {
		leaf, err := report.NewTestCase("case", report.WithUID("case"))
		require.NoError(t, err)
		path := writeFile(t, dir, "leaf.json", serializers.NewJSON(), leaf)
		_, err = runCmd(t, defaultDeps(), "merge", "--skeleton", path, "--out", filepath.Join(dir, "out.json"), partials[0])
		require.ErrorIs(t, err, report.ErrKindMismatch)
	})
}
