package forwarders

import (
	"context"

	"github.com/go-logr/logr"
)

type logForwarder struct {
	log logr.Logger
}

// NewLogForwarder creates new logForwarder which uses the provided logger to
// print all the received reports.
func NewLogForwarder(log logr.Logger) *logForwarder {
	return &logForwarder{
		log: log,
	}
}

func (lf *logForwarder) Name() string {
	return "LogForwarder"
}

func (lf *logForwarder) Forward(_ context.Context, payload []byte) error {
	lf.log.Info("got a report", "report", string(payload))
	return nil
}
