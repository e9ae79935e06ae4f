package log

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestToLogrusLevel(t *testing.T) {
	require.Equal(t, logrus.InfoLevel, ToLogrusLevel(InfoLevel))
	require.Equal(t, logrus.DebugLevel, ToLogrusLevel(DebugLevel))
	require.Equal(t, logrus.TraceLevel, ToLogrusLevel(TraceLevel))
	require.Equal(t, logrus.TraceLevel, ToLogrusLevel(10))
	require.Equal(t, logrus.InfoLevel, ToLogrusLevel(-3))
}
