package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/kong/kubernetes-testreport/pkg/execution"
	"github.com/kong/kubernetes-testreport/pkg/report"
	"github.com/kong/kubernetes-testreport/pkg/serializers"
)

const (
	formatJSON    = "json"
	formatYAML    = "yaml"
	formatJUnit   = "junit"
	formatSummary = "summary"
)

var formats = []string{formatJSON, formatYAML, formatJUnit, formatSummary}

// formatOf guesses the document format of a report file from its extension.
func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	default:
		return formatJSON
	}
}

func readReport(path string) (report.Node, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read report")
	}

	var n report.Node
	if formatOf(path) == formatYAML {
		n, err = serializers.DeserializeYAML(b)
	} else {
		n, err = serializers.DeserializeJSON(b)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load report %s", path)
	}
	return n, nil
}

func readGroup(path string) (*report.Group, error) {
	n, err := readReport(path)
	if err != nil {
		return nil, err
	}
	g, ok := n.(*report.Group)
	if !ok {
		return nil, errors.Wrapf(report.ErrKindMismatch, "report %s is not a group, got %s", path, n)
	}
	return g, nil
}

func newSerializer(format, signal string) (execution.Serializer, error) {
	switch format {
	case formatJSON:
		return serializers.NewJSON(serializers.OptJSONIndent("  ")), nil
	case formatYAML:
		return serializers.NewYAML(), nil
	case formatJUnit:
		return serializers.NewJUnit(), nil
	case formatSummary:
		return serializers.NewSemicolonDelimited(signal), nil
	default:
		return nil, errors.Errorf("unknown format %q, expected one of %s", format, strings.Join(formats, ", "))
	}
}

// defaultConfigMapKey names the ConfigMap key an export in format is stored under.
func defaultConfigMapKey(format string) string {
	switch format {
	case formatJUnit:
		return "junit.xml"
	case formatSummary:
		return "summary.txt"
	default:
		return "report." + format
	}
}
