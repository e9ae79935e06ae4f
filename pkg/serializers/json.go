package serializers

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/kong/kubernetes-testreport/pkg/report"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type jsonSerializer struct {
	indent string
}

// OptJSON configures the JSON serializer.
type OptJSON func(*jsonSerializer)

// OptJSONIndent returns an option that makes the serializer indent its output.
func OptJSONIndent(indent string) OptJSON {
	return func(s *jsonSerializer) {
		s.indent = indent
	}
}

// NewJSON creates a new serializer that will serialize report trees into JSON
// documents.
func NewJSON(opts ...OptJSON) jsonSerializer {
	s := jsonSerializer{}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (s jsonSerializer) Serialize(n report.Node) ([]byte, error) {
	if report.IsNil(n) {
		return nil, report.ErrNilNode
	}

	var (
		d   = report.ToDocument(n)
		b   []byte
		err error
	)
	if s.indent != "" {
		b, err = json.MarshalIndent(d, "", s.indent)
	} else {
		b, err = json.Marshal(d)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to serialize report %s to JSON", n.UID())
	}
	return b, nil
}

// DeserializeJSON rebuilds a report tree from its JSON document.
func DeserializeJSON(b []byte) (report.Node, error) {
	var d report.Document
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, errors.Wrap(err, "failed to decode JSON report")
	}
	return report.FromDocument(d)
}
