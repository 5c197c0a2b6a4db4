package input

// Pointing devices as reported by /proc/bus/input/devices listing

import (
	"fmt"
	"strings"
)

type DeviceType int

const (
	TouchpadDevice DeviceType = iota
	TrackpointDevice
	TouchscreenDevice
	FingertouchDevice
	PenDevice
	OtherDevice
	MouseDevice // default when name matches no keyword
)

func (t DeviceType) String() string {
	switch t {
	case TouchpadDevice:
		return "touchpad"
	case TrackpointDevice:
		return "trackpoint"
	case TouchscreenDevice:
		return "touchscreen"
	case FingertouchDevice:
		return "fingertouch"
	case PenDevice:
		return "pen"
	case OtherDevice:
		return "other"
	case MouseDevice:
		return "mouse"
	default:
		return "unknown"
	}
}

func (t DeviceType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ParseDeviceType is the inverse of DeviceType.String
func ParseDeviceType(s string) (DeviceType, error) {
	for _, t := range []DeviceType{MouseDevice, TouchpadDevice, TrackpointDevice, TouchscreenDevice, FingertouchDevice, PenDevice, OtherDevice} {
		if t.String() == strings.ToLower(s) {
			return t, nil
		}
	}
	return MouseDevice, fmt.Errorf("unknown device type \"%s\"", s)
}

type typeKeywords struct {
	deviceType DeviceType
	keywords   []string
}

// Classification order, first matching type wins. A name matching keywords of two types
// (e.g. touchpad and pen) is always a touchpad.
var classification = []typeKeywords{
	{TouchpadDevice, []string{"touchpad", "glidepoint", "fingersensingpad", "bcm5974", "trackpad", "smartpad"}},
	{TrackpointDevice, []string{"trackpoint", "accu point", "trackstick", "touchstyk", "pointing stick", "dualpoint stick"}},
	{TouchscreenDevice, []string{"touchscreen", "maxtouch", "touch digitizer", "touch system"}},
	{FingertouchDevice, []string{"finger touch"}},
	{PenDevice, []string{"pen stylus", "pen eraser"}},
	{OtherDevice, []string{}},
}

// SwitchableTypes are device types with their own enable switch.
var SwitchableTypes = []DeviceType{TouchpadDevice, TrackpointDevice, TouchscreenDevice, FingertouchDevice, PenDevice}

// Classify returns device type based on device name
func Classify(name string) DeviceType {
	lower := strings.ToLower(name)
	for _, c := range classification {
		for _, k := range c.keywords {
			if strings.Contains(lower, k) {
				return c.deviceType
			}
		}
	}
	return MouseDevice
}

// PointingDevice is one entry of device listing. Phys is a stable identity within one enumeration only.
type PointingDevice struct {
	Name string     `yaml:"name"`
	Phys string     `yaml:"phys"`
	Type DeviceType `yaml:"type"`
}

func (d PointingDevice) String() string {
	return fmt.Sprintf("%s (%s, %s)", d.Name, d.Type, d.Phys)
}

func CountType(devices []PointingDevice, t DeviceType) int {
	var n int
	for _, d := range devices {
		if d.Type == t {
			n++
		}
	}
	return n
}
