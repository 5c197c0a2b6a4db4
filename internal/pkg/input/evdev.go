package input

import (
	"github.com/gethiox/tpsync/internal/pkg/fs"
	"github.com/holoplot/go-evdev"
)

// listEvdev reads pointing devices directly from event nodes.
func listEvdev(dir string) ([]PointingDevice, int, error) {
	if dir == "" {
		dir = "/dev/input"
	}
	entry := fs.NewEntry(dir)
	paths, err := entry.Nodes("event")
	if err != nil {
		return nil, 0, err
	}

	var devices = make([]PointingDevice, 0)
	var skipped int
	for _, path := range paths {
		if !fs.Readable(path) {
			skipped++
			continue
		}
		device, ok := readEvdev(path)
		if !ok {
			continue
		}
		devices = append(devices, device)
	}
	return devices, skipped, nil
}

func readEvdev(path string) (PointingDevice, bool) {
	dev, err := evdev.Open(path)
	if err != nil {
		return PointingDevice{}, false
	}
	defer dev.Close()

	name, err := dev.Name()
	if err != nil {
		return PointingDevice{}, false
	}
	deviceType := Classify(name)

	caps := make(map[evdev.EvType][]evdev.EvCode)
	for _, t := range dev.CapableTypes() {
		caps[t] = dev.CapableEvents(t)
	}
	if !isPointer(caps, deviceType) {
		return PointingDevice{}, false
	}

	phys, _ := dev.PhysicalLocation()

	return PointingDevice{Name: name, Phys: phys, Type: deviceType}, true
}

func hasCode(codes []evdev.EvCode, want ...evdev.EvCode) bool {
	for _, c := range codes {
		for _, w := range want {
			if c == w {
				return true
			}
		}
	}
	return false
}

// isPointer reports whether node capabilities describe a pointing device. Relative nodes need
// X/Y motion or a left button, wheel-only nodes like keyboard consumer controls are skipped.
// Absolute nodes count only when their name matches a known type.
func isPointer(caps map[evdev.EvType][]evdev.EvCode, deviceType DeviceType) bool {
	if hasCode(caps[evdev.EV_REL], evdev.REL_X, evdev.REL_Y) || hasCode(caps[evdev.EV_KEY], evdev.BTN_LEFT) {
		return true
	}
	_, abs := caps[evdev.EV_ABS]
	return abs && deviceType != MouseDevice
}
