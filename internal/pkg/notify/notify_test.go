package notify

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNotifyArgs(t *testing.T) {
	args := notifyArgs("tpsync", "input-touchpad", "Touchpad Disabled", "mouse plugged in")
	assert.Equal(t, []interface{}{
		"tpsync", uint32(0), "input-touchpad", "Touchpad Disabled", "mouse plugged in",
		[]string{}, map[string]dbus.Variant{}, int32(-1),
	}, args)
}

func TestLog(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	n := New(BackendLog, "", "", zap.New(core))

	assert.Equal(t, nil, n.Notify("Touchpad Enabled", "last mouse removed"))
	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "Touchpad Enabled: last mouse removed", entries[0].Message)
}
