package common

import (
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerIsPackageDefault(t *testing.T) {
	l := Logger()
	assert.Same(t, l, log.Default(), "package level log calls share the level")

	require.NoError(t, SetLogLevel("debug"))
	defer SetLogLevel("info")
	assert.Equal(t, log.DebugLevel, log.GetLevel())
	assert.Error(t, SetLogLevel("chatty"))
}
