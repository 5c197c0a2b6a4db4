// Package xinput controls input devices through the xinput tool, device by device.
package xinput

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/gethiox/tpsync/internal/pkg/input"
	"github.com/gethiox/tpsync/internal/pkg/logger"
	"github.com/gethiox/tpsync/internal/pkg/shell"
	"go.uber.org/zap"
)

const DefaultCommand = "xinput"

const queryTimeout = 5 * time.Second

// Device is an xinput slave pointer
type Device struct {
	ID   string
	Name string
	Type input.DeviceType
}

type XInput struct {
	command string
	runner  shell.Runner
	log     *zap.Logger
	usable  bool
	version string
}

// New checks whether the tool runs, unusable instance ignores every request.
func New(command string, runner shell.Runner, log *zap.Logger) *XInput {
	if command == "" {
		command = DefaultCommand
	}
	x := &XInput{command: command, runner: runner, log: log}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	version, err := runner.Output(ctx, x.cmd("--version"))
	if err != nil {
		log.Info(fmt.Sprintf("xinput is not usable: %s", err), logger.Info)
		return x
	}
	x.usable = true
	x.version = firstLine(version)
	log.Info("xinput detected", zap.String("version", x.version), logger.Debug)
	return x
}

func (x *XInput) cmd(args ...string) string {
	return x.command + " " + shell.Join(args...)
}

func (x *XInput) Usable() bool {
	return x.usable
}

// Version is the first line of "xinput --version", empty when the tool is unusable.
func (x *XInput) Version() string {
	return x.version
}

var listLine = regexp.MustCompile(`^[^\p{L}\p{N}]*(.+?)\s+id=(\d+)\s+\[(.+?)\]`)

// parseList parses "xinput --list --short" output, keeping slave pointers only.
func parseList(out string) []Device {
	var devices []Device
	for _, line := range strings.Split(out, "\n") {
		m := listLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		role := strings.Fields(m[3])
		if !contains(role, "slave") || contains(role, "keyboard") {
			continue
		}
		name := strings.TrimSpace(m[1])
		if strings.Contains(strings.ToLower(name), "xtest") {
			continue
		}
		devices = append(devices, Device{ID: m[2], Name: name, Type: input.Classify(name)})
	}
	return devices
}

func contains(list []string, s string) bool {
	for _, l := range list {
		if l == s {
			return true
		}
	}
	return false
}

// Devices returns currently attached pointers.
func (x *XInput) Devices() []Device {
	if !x.usable {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	out, err := x.runner.Output(ctx, x.cmd("--list", "--short"))
	if err != nil {
		x.log.Info(fmt.Sprintf("xinput listing failed: %s", err), logger.Warning)
		return nil
	}
	return parseList(out)
}

func (x *XInput) byType(types ...input.DeviceType) []Device {
	var matched []Device
	for _, d := range x.Devices() {
		for _, t := range types {
			if d.Type == t {
				matched = append(matched, d)
				break
			}
		}
	}
	return matched
}

func (x *XInput) Present(t input.DeviceType) bool {
	return len(x.byType(t)) > 0
}

func (x *XInput) EnableAll() {
	x.switchDevices(x.byType(input.SwitchableTypes...), true)
}

func (x *XInput) EnableByType(t input.DeviceType) {
	x.switchDevices(x.byType(t), true)
}

func (x *XInput) SwitchByType(t input.DeviceType, enabled bool) {
	x.switchDevices(x.byType(t), enabled)
}

func (x *XInput) switchDevices(devices []Device, enabled bool) {
	action := "disable"
	if enabled {
		action = "enable"
	}
	for _, d := range devices {
		x.log.Info(fmt.Sprintf("xinput %s", action), zap.String("device_name", d.Name),
			zap.String("device_type", d.Type.String()), logger.Action)
		x.runner.Start(x.cmd(action, d.ID))
	}
}

func firstLine(s string) string {
	return strings.SplitN(s, "\n", 2)[0]
}
