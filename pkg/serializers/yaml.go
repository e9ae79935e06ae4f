package serializers

import (
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/kong/kubernetes-testreport/pkg/report"
)

type yamlSerializer struct{}

// NewYAML creates a new serializer that will serialize report trees into YAML
// documents.
func NewYAML() yamlSerializer {
	return yamlSerializer{}
}

func (s yamlSerializer) Serialize(n report.Node) ([]byte, error) {
	if report.IsNil(n) {
		return nil, report.ErrNilNode
	}

	b, err := yaml.Marshal(report.ToDocument(n))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to serialize report %s to YAML", n.UID())
	}
	return b, nil
}

// DeserializeYAML rebuilds a report tree from its YAML document.
func DeserializeYAML(b []byte) (report.Node, error) {
	var d report.Document
	if err := yaml.Unmarshal(b, &d); err != nil {
		return nil, errors.Wrap(err, "failed to decode YAML report")
	}
	return report.FromDocument(d)
}
