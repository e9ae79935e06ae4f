package execution

import (
	"context"

	"github.com/kong/kubernetes-testreport/pkg/report"
)

// Serializer serializes report trees into byte slices.
type Serializer interface {
	Serialize(report.Node) ([]byte, error)
}

// Forwarder is used to forward serialized reports to configured destination(s).
type Forwarder interface {
	Name() string
	Forward(context.Context, []byte) error
}

// RawForwarder is used to forward raw, unserialized report trees to configured
// destination(s).
type RawForwarder interface {
	Name() string
	Forward(context.Context, *report.Group) error
}
