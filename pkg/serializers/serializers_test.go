package serializers

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kong/kubernetes-testreport/pkg/report"
	"github.com/kong/kubernetes-testreport/pkg/types"
)

func newPlan(t *testing.T) *report.Group {
	t.Helper()

	passing, err := report.NewTestCase("test_passing",
		report.WithUID("case-passing"),
		report.WithEntries(types.NewAssertion(types.EntryTypeEqual, "values are equal", true)),
	)
	require.NoError(t, err)

	failing, err := report.NewTestCase("test_failing",
		report.WithUID("case-failing"),
		report.WithEntries(
			types.NewAssertion(types.EntryTypeEqual, "values are equal", true),
			types.NewAssertion(types.EntryTypeContain, "", false),
		),
	)
	require.NoError(t, err)

	erroring, err := report.NewTestCase("test_erroring", report.WithUID("case-erroring"))
	require.NoError(t, err)
	erroring.Logger().Error(errors.New("connection refused"), "failed to reach the proxy")

	suite, err := report.NewGroup("suite1",
		report.WithUID("suite1"),
		report.WithCategory(report.CategorySuite),
		report.WithChildren(passing, failing, erroring),
	)
	require.NoError(t, err)

	plan, err := report.NewGroup("plan",
		report.WithUID("plan"),
		report.WithCategory(report.CategoryPlan),
		report.WithChildren(suite),
	)
	require.NoError(t, err)
	return plan
}

func TestSemicolonDelimited(t *testing.T) {
	t.Run("basic", func(t *testing.T) {
		s := NewSemicolonDelimited("kic-tests")

		out, err := s.Serialize(newPlan(t))
		require.NoError(t, err)
		assert.EqualValues(t,
			"<14>signal=kic-tests;name=plan;passed=1;failed=1;error=1;status=error;suite:suite1=error;\n",
			string(out),
		)
	})

	t.Run("single test case", func(t *testing.T) {
		r, err := report.NewTestCase("case")
		require.NoError(t, err)
		r.Append(types.NewAssertion(types.EntryTypeEqual, "", true))

		out, err := NewSemicolonDelimited("ping").Serialize(r)
		require.NoError(t, err)
		assert.EqualValues(t, "<14>signal=ping;name=case;passed=1;failed=0;error=0;status=passed;\n", string(out))
	})

	t.Run("nil report", func(t *testing.T) {
		_, err := NewSemicolonDelimited("ping").Serialize(nil)
		require.ErrorIs(t, err, report.ErrNilNode)
	})
}

func TestSerializeNilReports(t *testing.T) {
	var (
		group *report.Group
		leaf  *report.Report
	)
	serializers := map[string]interface {
		Serialize(report.Node) ([]byte, error)
	}{
		"json":    NewJSON(),
		"yaml":    NewYAML(),
		"junit":   NewJUnit(),
		"summary": NewSemicolonDelimited("ping"),
	}
	for name, s := range serializers {
		s := s
		t.Run(name, func(t *testing.T) {
			for _, n := range []report.Node{nil, group, leaf} {
				_, err := s.Serialize(n)
				require.ErrorIs(t, err, report.ErrNilNode)
			}
		})
	}
}

func TestRoundTripKeepsEquality(t *testing.T) {
	r, err := report.NewTestCase("test_numbers",
		report.WithUID("case"),
		report.WithEntries(types.NewAssertion(types.EntryTypeEqual, "values match", false, types.Payload{
			"first":  1,
			"second": int64(2),
			"ratio":  0.5,
			"list":   []string{"a", "b"},
			"nested": map[string]any{"count": uint8(3)},
		})),
	)
	require.NoError(t, err)
	r.Logger().Info("retrying", "attempt", 3)
	plan, err := report.NewGroup("plan", report.WithUID("plan"), report.WithChildren(r))
	require.NoError(t, err)

	b, err := NewJSON().Serialize(plan)
	require.NoError(t, err)
	fromJSON, err := DeserializeJSON(b)
	require.NoError(t, err)
	require.True(t, plan.Equal(fromJSON))

	b, err = NewYAML().Serialize(plan)
	require.NoError(t, err)
	fromYAML, err := DeserializeYAML(b)
	require.NoError(t, err)
	require.True(t, plan.Equal(fromYAML))
}

func TestJSON(t *testing.T) {
	plan := newPlan(t)

	for _, s := range []jsonSerializer{NewJSON(), NewJSON(OptJSONIndent("  "))} {
		b, err := s.Serialize(plan)
		require.NoError(t, err)

		n, err := DeserializeJSON(b)
		require.NoError(t, err)
		require.Equal(t, report.CategorySuite, n.(*report.Group).Entries()[0].Category())
		require.Equal(t, plan.UID(), n.UID())
		require.Equal(t, types.StatusError, n.Status())
		require.Equal(t, plan.Counts(), n.Counts())
	}

	_, err := DeserializeJSON([]byte("{"))
	require.Error(t, err)
}

func TestYAML(t *testing.T) {
	plan := newPlan(t)

	b, err := NewYAML().Serialize(plan)
	require.NoError(t, err)
	require.Contains(t, string(b), "category: suite")

	n, err := DeserializeYAML(b)
	require.NoError(t, err)
	require.True(t, plan.Equal(n))

	_, err = DeserializeYAML([]byte("kind: ["))
	require.Error(t, err)
}

func TestJUnit(t *testing.T) {
	s := junit{hostname: "runner"}

	b, err := s.Serialize(newPlan(t))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(b), xml.Header))

	var out junitTestSuites
	require.NoError(t, xml.Unmarshal(b, &out))
	require.Equal(t, 3, out.Tests)
	require.Equal(t, 1, out.Failures)
	require.Equal(t, 1, out.Errors)
	require.Len(t, out.Suites, 1)

	suite := out.Suites[0]
	require.Equal(t, "suite1", suite.Name)
	require.Equal(t, "suite1", suite.Package)
	require.Equal(t, "runner", suite.Hostname)
	require.Len(t, suite.TestCases, 3)

	require.Equal(t, "suite1:test_passing", suite.TestCases[0].ClassName)
	require.Empty(t, suite.TestCases[0].Failures)
	require.Nil(t, suite.TestCases[0].Error)

	require.Equal(t, []junitFailure{{Message: string(types.EntryTypeContain), Type: "assertion"}}, suite.TestCases[1].Failures)

	require.NotNil(t, suite.TestCases[2].Error)
	require.Equal(t, "failed to reach the proxy", suite.TestCases[2].Error.Message)
	require.Contains(t, suite.TestCases[2].Error.Trace, "connection refused")
}

func TestJUnitNestedGroups(t *testing.T) {
	plan := newPlan(t)
	suite, err := plan.GetByUID("suite1")
	require.NoError(t, err)

	multitest, err := report.NewGroup("multitest1",
		report.WithUID("multitest1"),
		report.WithCategory(report.CategoryMultiTest),
		report.WithChildren(suite.Clone()),
	)
	require.NoError(t, err)
	root, err := report.NewGroup("plan", report.WithCategory(report.CategoryPlan), report.WithChildren(multitest))
	require.NoError(t, err)

	b, err := junit{hostname: "runner"}.Serialize(root)
	require.NoError(t, err)

	var out junitTestSuites
	require.NoError(t, xml.Unmarshal(b, &out))
	require.Len(t, out.Suites, 1)
	require.Equal(t, "multitest1:suite1", out.Suites[0].Package)
	require.Equal(t, "multitest1:suite1:test_failing", out.Suites[0].TestCases[1].ClassName)
}
