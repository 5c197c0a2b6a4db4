package input

import (
	"fmt"
	"testing"

	"github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"
)

func TestIsPointer(t *testing.T) {
	for i, tc := range []struct {
		caps       map[evdev.EvType][]evdev.EvCode
		deviceType DeviceType
		expected   bool
	}{
		{ // usb mouse
			caps: map[evdev.EvType][]evdev.EvCode{
				evdev.EV_REL: {evdev.REL_X, evdev.REL_Y, evdev.REL_WHEEL},
				evdev.EV_KEY: {evdev.BTN_LEFT, evdev.BTN_RIGHT},
			},
			deviceType: MouseDevice,
			expected:   true,
		},
		{ // keyboard consumer control, wheel only
			caps: map[evdev.EvType][]evdev.EvCode{
				evdev.EV_REL: {evdev.REL_HWHEEL},
				evdev.EV_KEY: {evdev.KEY_VOLUMEUP, evdev.KEY_VOLUMEDOWN},
			},
			deviceType: MouseDevice,
			expected:   false,
		},
		{ // button without motion
			caps:       map[evdev.EvType][]evdev.EvCode{evdev.EV_KEY: {evdev.BTN_LEFT}},
			deviceType: MouseDevice,
			expected:   true,
		},
		{ // touchpad
			caps: map[evdev.EvType][]evdev.EvCode{
				evdev.EV_ABS: {evdev.ABS_X, evdev.ABS_Y},
				evdev.EV_KEY: {evdev.BTN_TOUCH},
			},
			deviceType: TouchpadDevice,
			expected:   true,
		},
		{ // unknown absolute device, e.g. accelerometer
			caps:       map[evdev.EvType][]evdev.EvCode{evdev.EV_ABS: {evdev.ABS_X, evdev.ABS_Y, evdev.ABS_Z}},
			deviceType: MouseDevice,
			expected:   false,
		},
		{ // plain keyboard
			caps:       map[evdev.EvType][]evdev.EvCode{evdev.EV_KEY: {evdev.KEY_A}},
			deviceType: MouseDevice,
			expected:   false,
		},
	} {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			assert.Equal(t, tc.expected, isPointer(tc.caps, tc.deviceType))
		})
	}
}
