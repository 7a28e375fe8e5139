package debug

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDebugOutputIsGated(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	prev := SetLogger(zap.New(core))
	defer SetLogger(prev.Desugar())

	DebugOutput(false, "hidden %d", 1)
	DebugOutput(true, "shown %d", 2)

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "shown 2", entries[0].Message)
	}
}

func TestDebugTiming(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	prev := SetLogger(zap.New(core))
	defer SetLogger(prev.Desugar())

	DebugTiming(false, "skipped")()
	assert.Equal(t, 0, logs.Len())

	done := DebugTiming(true, "resolve")
	done()
	assert.Equal(t, 2, logs.FilterField(zap.String("operation", "resolve")).Len())
}
