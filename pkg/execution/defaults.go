package execution

import (
	"github.com/go-logr/logr"

	"github.com/kong/kubernetes-testreport/pkg"
	"github.com/kong/kubernetes-testreport/pkg/log"
)

func defaultLogger() logr.Logger {
	return pkg.DefaultLogger(log.InfoLevel)
}
