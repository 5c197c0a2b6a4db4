package coordinator

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gethiox/tpsync/internal/pkg/hotplug"
	"github.com/gethiox/tpsync/internal/pkg/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoSwitchThreshold(t *testing.T) {
	h := newHarness(t, setup{
		ext: map[string]any{
			settings.KeyAutoswitchTouchpad: true,
			settings.KeyMouseCount:         1,
		},
		mice: 2,
	})
	h.start(t)
	assert.True(t, h.ext.Bool(settings.KeyTouchpadEnabled))

	// 2 -> 1, touchpad already enabled
	h.enum.setMice(1)
	h.c.autoSwitch(hotplug.Removed)
	assert.True(t, h.ext.Bool(settings.KeyTouchpadEnabled))
	assert.Empty(t, h.notes.all())

	require.Equal(t, nil, h.ext.SetBool(settings.KeyTouchpadEnabled, false))

	// 1 -> 0 with touchpad disabled
	h.enum.setMice(0)
	h.c.autoSwitch(hotplug.Removed)
	touchpad, sendEvents := h.state()
	assert.True(t, touchpad)
	assert.Equal(t, settings.SendEventsEnabled, sendEvents)
	assert.Equal(t, []string{"Touchpad Indicator: Touchpad Enabled"}, h.notes.all())

	// 0 -> 2, above baseline
	h.enum.setMice(2)
	h.c.autoSwitch(hotplug.Created)
	touchpad, sendEvents = h.state()
	assert.False(t, touchpad)
	assert.Equal(t, settings.SendEventsDisabled, sendEvents)
	assert.Equal(t, []string{
		"Touchpad Indicator: Touchpad Enabled",
		"Touchpad Indicator: Touchpad Disabled",
	}, h.notes.all())

	// removal still above baseline keeps it disabled
	h.c.autoSwitch(hotplug.Removed)
	assert.False(t, h.ext.Bool(settings.KeyTouchpadEnabled))
	assert.Len(t, h.notes.all(), 2)
}

func TestAutoSwitchDisabled(t *testing.T) {
	h := newHarness(t, setup{mice: 3})
	h.start(t)

	h.c.autoSwitch(hotplug.Created)
	assert.True(t, h.ext.Bool(settings.KeyTouchpadEnabled))
	assert.Empty(t, h.notes.all())
}

func TestAutoSwitchWithoutNotifications(t *testing.T) {
	h := newHarness(t, setup{
		ext: map[string]any{
			settings.KeyAutoswitchTouchpad: true,
			settings.KeyShowNotifications:  false,
		},
		mice: 1,
	})
	h.start(t)

	h.c.autoSwitch(hotplug.Created)
	assert.False(t, h.ext.Bool(settings.KeyTouchpadEnabled))
	assert.Empty(t, h.notes.all())
}

func TestAutoSwitchEnumerationFailure(t *testing.T) {
	h := newHarness(t, setup{
		ext:  map[string]any{settings.KeyAutoswitchTouchpad: true},
		mice: 1,
	})
	h.start(t)

	h.enum.err = errors.New("device enumeration failed")
	h.c.autoSwitch(hotplug.Created)
	assert.True(t, h.ext.Bool(settings.KeyTouchpadEnabled))
}

func TestAutoSwitchOnStart(t *testing.T) {
	h := newHarness(t, setup{
		ext: map[string]any{
			settings.KeyAutoswitchTouchpad: true,
			settings.KeyTouchpadEnabled:    false,
		},
		sendEvents: settings.SendEventsDisabled,
	})
	h.start(t)

	touchpad, sendEvents := h.state()
	assert.True(t, touchpad)
	assert.Equal(t, settings.SendEventsEnabled, sendEvents)
	assert.Equal(t, []string{"Touchpad Indicator: Touchpad Enabled"}, h.notes.all())
}

func TestAutoSwitchOnHotplug(t *testing.T) {
	h := newHarness(t, setup{ext: map[string]any{settings.KeyAutoswitchTouchpad: true}})
	h.start(t)
	assert.True(t, h.ext.Bool(settings.KeyTouchpadEnabled))

	h.enum.setMice(1)
	require.Equal(t, nil, os.WriteFile(filepath.Join(h.c.watchDir, "mouse5"), nil, 0644))

	assert.Eventually(t, func() bool {
		h.loop.RunPending()
		return !h.ext.Bool(settings.KeyTouchpadEnabled)
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, settings.SendEventsDisabled, h.sys.String(settings.KeySendEvents))
	assert.Equal(t, []string{"Touchpad Indicator: Touchpad Disabled"}, h.notes.all())

	h.enum.setMice(0)
	require.Equal(t, nil, os.Remove(filepath.Join(h.c.watchDir, "mouse5")))
	assert.Eventually(t, func() bool {
		h.loop.RunPending()
		return h.ext.Bool(settings.KeyTouchpadEnabled)
	}, 2*time.Second, 10*time.Millisecond)

	h.c.Close()
}
