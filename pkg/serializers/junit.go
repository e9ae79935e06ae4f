package serializers

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/kong/kubernetes-testreport/pkg/report"
)

type junitTestSuites struct {
	XMLName  xml.Name         `xml:"testsuites"`
	Name     string           `xml:"name,attr,omitempty"`
	Tests    int              `xml:"tests,attr"`
	Failures int              `xml:"failures,attr"`
	Errors   int              `xml:"errors,attr"`
	Suites   []junitTestSuite `xml:"testsuite"`
}

type junitTestSuite struct {
	Name      string          `xml:"name,attr"`
	Package   string          `xml:"package,attr"`
	Hostname  string          `xml:"hostname,attr"`
	ID        int             `xml:"id,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	TestCases []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	ClassName string         `xml:"classname,attr"`
	Name      string         `xml:"name,attr"`
	Time      string         `xml:"time,attr"`
	Failures  []junitFailure `xml:"failure"`
	Error     *junitError    `xml:"error,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
}

type junitError struct {
	Message string `xml:"message,attr"`
	Trace   string `xml:",chardata"`
}

type junit struct {
	hostname string
}

// NewJUnit creates a new serializer that will serialize report trees into
// JUnit XML documents. Every group holding test case reports becomes a test
// suite.
func NewJUnit() junit {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return junit{hostname: hostname}
}

func (j junit) Serialize(n report.Node) ([]byte, error) {
	if report.IsNil(n) {
		return nil, report.ErrNilNode
	}

	out := junitTestSuites{Name: n.Name()}
	switch nn := n.(type) {
	case *report.Group:
		j.collect(&out, nn, nil)
	case *report.Report:
		// A lone test case gets a suite of its own.
		out.Suites = append(out.Suites, j.newSuite(len(out.Suites), nil, nn.Name(), []*report.Report{nn}))
	}

	for _, s := range out.Suites {
		out.Tests += s.Tests
		out.Failures += s.Failures
		out.Errors += s.Errors
	}

	b, err := xml.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to serialize report %s to JUnit", n.UID())
	}
	return append([]byte(xml.Header), append(b, '\n')...), nil
}

// collect walks the tree and appends a suite for every group that directly
// holds test case reports. path holds the names of the enclosing groups
// below the root.
func (j junit) collect(out *junitTestSuites, g *report.Group, path []string) {
	var cases []*report.Report
	for _, child := range g.Entries() {
		switch c := child.(type) {
		case *report.Report:
			cases = append(cases, c)
		case *report.Group:
			j.collect(out, c, append(path[:len(path):len(path)], c.Name()))
		}
	}
	if len(cases) > 0 {
		out.Suites = append(out.Suites, j.newSuite(len(out.Suites), path, g.Name(), cases))
	}
}

func (j junit) newSuite(id int, path []string, name string, cases []*report.Report) junitTestSuite {
	pkg := strings.Join(path, ":")
	if pkg == "" {
		pkg = name
	}

	s := junitTestSuite{
		Name:     name,
		Package:  pkg,
		Hostname: j.hostname,
		ID:       id,
	}
	for _, r := range cases {
		tc := junitTestCase{
			ClassName: pkg + ":" + r.Name(),
			Name:      r.Name(),
			Time:      fmt.Sprintf("%.3f", r.Timer().Duration().Seconds()),
		}
		for _, e := range r.Entries() {
			if !e.Passed {
				tc.Failures = append(tc.Failures, junitFailure{Message: e.Title(), Type: "assertion"})
			}
		}
		if je := junitErrorFrom(r); je != nil {
			tc.Error = je
			s.Errors++
		} else if len(tc.Failures) > 0 {
			s.Failures++
		}
		s.Tests++
		s.TestCases = append(s.TestCases, tc)
	}
	return s
}

func junitErrorFrom(r *report.Report) *junitError {
	var (
		messages []string
		traces   []string
	)
	for _, rec := range r.Logs() {
		if rec.Level > logrus.ErrorLevel {
			continue
		}
		messages = append(messages, rec.Message)
		if rec.Trace != "" {
			traces = append(traces, rec.Trace)
		} else {
			traces = append(traces, rec.Message)
		}
	}
	if len(messages) == 0 {
		return nil
	}
	return &junitError{
		Message: strings.Join(messages, "; "),
		Trace:   strings.Join(traces, "\n"),
	}
}
