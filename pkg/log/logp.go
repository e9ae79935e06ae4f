package log

import "github.com/sirupsen/logrus"

const (
	logrusrDiff = 4

	// InfoLevel is the converted logging level from logrus to go-logr for
	// information level logging. Note that the logrusr middleware technically
	// flattens all levels prior to this level into this level as well.
	InfoLevel = int(logrus.InfoLevel) - logrusrDiff

	// DebugLevel is the converted logging level from logrus to go-logr for
	// debug level logging.
	DebugLevel = int(logrus.DebugLevel) - logrusrDiff

	// TraceLevel is the converted logging level from logrus to go-logr for
	// trace level logging.
	TraceLevel = int(logrus.TraceLevel) - logrusrDiff
)

// ToLogrusLevel converts a go-logr verbosity into the logrus level the logrusr
// middleware would log it with.
func ToLogrusLevel(v int) logrus.Level {
	if v < InfoLevel {
		v = InfoLevel
	}
	if v > TraceLevel {
		v = TraceLevel
	}
	return logrus.Level(v + logrusrDiff)
}
