package pkg

import (
	"github.com/bombsimon/logrusr/v3"
	"github.com/go-logr/logr"
	"github.com/sirupsen/logrus"

	"github.com/kong/kubernetes-testreport/pkg/log"
)

// DefaultLogger returns a logrus backed logger enabled up to the provided
// verbosity, see log.InfoLevel and friends.
func DefaultLogger(verbosity int) logr.Logger {
	l := logrus.New()
	l.SetLevel(log.ToLogrusLevel(verbosity))
	return logrusr.New(l)
}
