package coordinator

import (
	"context"
	"fmt"
	"sync"

	"github.com/gethiox/tpsync/internal/pkg/input"
)

type fakeLowLevel struct {
	usable          bool
	present         map[input.DeviceType]bool
	vanishOnDisable bool // touchpad disappears from the device list once disabled
	calls           []string
}

func (f *fakeLowLevel) Usable() bool { return f.usable }

func (f *fakeLowLevel) Present(t input.DeviceType) bool {
	return f.usable && f.present[t]
}

func (f *fakeLowLevel) EnableAll() {
	f.calls = append(f.calls, "enable-all")
}

func (f *fakeLowLevel) EnableByType(t input.DeviceType) {
	f.calls = append(f.calls, fmt.Sprintf("enable %s", t))
}

func (f *fakeLowLevel) SwitchByType(t input.DeviceType, enabled bool) {
	f.calls = append(f.calls, fmt.Sprintf("switch %s %t", t, enabled))
	if t == input.TouchpadDevice && !enabled && f.vanishOnDisable {
		f.present[t] = false
	}
}

func (f *fakeLowLevel) take() []string {
	c := f.calls
	f.calls = nil
	return c
}

type fakeDriver struct {
	usable bool
	tpdOff bool
	stuck  bool // disabling has no effect
	calls  []string
}

func (f *fakeDriver) Usable() bool { return f.usable }
func (f *fakeDriver) TpdOff() bool { return f.tpdOff }

func (f *fakeDriver) Enable() {
	f.calls = append(f.calls, "enable")
	if f.usable {
		f.tpdOff = false
	}
}

func (f *fakeDriver) Switch(enabled bool) {
	f.calls = append(f.calls, fmt.Sprintf("switch %t", enabled))
	if f.usable && !f.stuck {
		f.tpdOff = !enabled
	}
}

func (f *fakeDriver) take() []string {
	c := f.calls
	f.calls = nil
	return c
}

type fakeEnumerator struct {
	mu      sync.Mutex
	devices []input.PointingDevice
	err     error
}

func (f *fakeEnumerator) Enumerate(_ context.Context) ([]input.PointingDevice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.devices, f.err
}

func (f *fakeEnumerator) setMice(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.devices = []input.PointingDevice{
		{Name: "SynPS/2 Synaptics TouchPad", Phys: "isa0060/serio1/input0", Type: input.TouchpadDevice},
	}
	for i := 0; i < n; i++ {
		f.devices = append(f.devices, input.PointingDevice{
			Name: fmt.Sprintf("USB Optical Mouse %d", i),
			Phys: fmt.Sprintf("usb-0000:00:14.0-%d/input0", i),
			Type: input.MouseDevice,
		})
	}
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeNotifier) Notify(title, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, title+": "+body)
	return nil
}

func (f *fakeNotifier) all() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.messages...)
}
