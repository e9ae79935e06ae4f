package report

import (
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/sirupsen/logrus"

	"github.com/kong/kubernetes-testreport/pkg/log"
	"github.com/kong/kubernetes-testreport/pkg/types"
)

// recorder is a logr.LogSink appending records to a report's logs, each with
// its own uid. Records are forwarded to the report's delegate logger if set.
type recorder struct {
	node     *base
	name     string
	values   []any
	delegate logr.Logger
}

var _ logr.LogSink = (*recorder)(nil)

func newRecorder(b *base) *recorder {
	return &recorder{
		node:     b,
		delegate: b.delegate,
	}
}

func (r *recorder) Init(logr.RuntimeInfo) {}

// Enabled records everything up to debug verbosity.
func (r *recorder) Enabled(level int) bool {
	return level <= log.DebugLevel
}

func (r *recorder) Info(level int, msg string, keysAndValues ...any) {
	r.record(log.ToLogrusLevel(level), msg, "", keysAndValues)
	if r.delegate.GetSink() != nil {
		r.delegate.V(level).Info(msg, keysAndValues...)
	}
}

func (r *recorder) Error(err error, msg string, keysAndValues ...any) {
	var trace string
	if err != nil {
		if msg == "" {
			msg = err.Error()
		}
		keysAndValues = append(keysAndValues, "error", err.Error())
		trace = fmt.Sprintf("%+v", err)
	}
	r.record(logrus.ErrorLevel, msg, trace, keysAndValues)
	if r.delegate.GetSink() != nil {
		r.delegate.Error(err, msg, keysAndValues...)
	}
}

func (r *recorder) WithValues(keysAndValues ...any) logr.LogSink {
	c := *r
	c.values = append(append([]any(nil), r.values...), keysAndValues...)
	if r.delegate.GetSink() != nil {
		c.delegate = r.delegate.WithValues(keysAndValues...)
	}
	return &c
}

func (r *recorder) WithName(name string) logr.LogSink {
	c := *r
	if c.name == "" {
		c.name = name
	} else {
		c.name = c.name + "/" + name
	}
	if r.delegate.GetSink() != nil {
		c.delegate = r.delegate.WithName(name)
	}
	return &c
}

func (r *recorder) record(level logrus.Level, msg, trace string, keysAndValues []any) {
	r.node.logs = append(r.node.logs, types.LogRecord{
		UID:     types.NewUID(),
		Created: time.Now().UTC(),
		Level:   level,
		Logger:  r.name,
		Message: msg,
		Fields:  fields(r.values, keysAndValues),
		Trace:   trace,
	})
}

func fields(lists ...[]any) map[string]any {
	var out map[string]any
	for _, kv := range lists {
		for i := 0; i < len(kv); i += 2 {
			if out == nil {
				out = map[string]any{}
			}
			key, ok := kv[i].(string)
			if !ok {
				key = fmt.Sprint(kv[i])
			}
			if i+1 < len(kv) {
				out[key] = kv[i+1]
			} else {
				out[key] = nil
			}
		}
	}
	return out
}
