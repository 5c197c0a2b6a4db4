package coordinator

import (
	"context"
	"errors"
	"fmt"

	"github.com/gethiox/tpsync/internal/pkg/input"
	"github.com/gethiox/tpsync/internal/pkg/logger"
	"github.com/gethiox/tpsync/internal/pkg/settings"
)

var (
	ErrNotSwitchable  = errors.New("device type is not switchable")
	ErrMethodUnusable = errors.New("switch method is not usable")
)

// DeviceKey maps device type to its extension key.
func DeviceKey(t input.DeviceType) (string, error) {
	if t == input.TouchpadDevice {
		return settings.KeyTouchpadEnabled, nil
	}
	for key, kt := range nonTouchpadKeys {
		if kt == t {
			return key, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotSwitchable, t)
}

// Toggle flips touchpad-enabled.
func Toggle(ext *settings.Store) error {
	return ext.SetBool(settings.KeyTouchpadEnabled, !ext.Bool(settings.KeyTouchpadEnabled))
}

func SetDeviceEnabled(ext *settings.Store, t input.DeviceType, enabled bool) error {
	key, err := DeviceKey(t)
	if err != nil {
		return err
	}
	return ext.SetBool(key, enabled)
}

// AvailableMethods lists switch methods whose tool works, gsettings is always available.
func AvailableMethods(lowLevel LowLevelTool, driver DriverTool) []string {
	methods := []string{settings.MethodGSettings}
	if driver.Usable() {
		methods = append(methods, settings.MethodSynclient)
	}
	if lowLevel.Usable() {
		methods = append(methods, settings.MethodXInput)
	}
	return methods
}

// SelectMethod stores switch method, refusing methods whose tool is unusable.
func SelectMethod(ext *settings.Store, method string, lowLevel LowLevelTool, driver DriverTool) error {
	switch {
	case method == settings.MethodSynclient && !driver.Usable(),
		method == settings.MethodXInput && !lowLevel.Usable():
		return fmt.Errorf("%w: %s", ErrMethodUnusable, method)
	}
	return ext.SetString(settings.KeySwitchMethod, method)
}

// Calibrate stores number of currently attached mice as auto-switch baseline.
func Calibrate(ctx context.Context, enumerator Enumerator, ext *settings.Store) (int, error) {
	devices, err := enumerator.Enumerate(ctx)
	if err != nil {
		return 0, fmt.Errorf("calibration failed: %w", err)
	}
	count := input.CountType(devices, input.MouseDevice)
	err = ext.SetInt(settings.KeyMouseCount, count)
	if err != nil {
		return 0, fmt.Errorf("calibration failed: %w", err)
	}
	return count, nil
}

// Toggle flips touchpad state from the event loop, safe to call from any goroutine.
func (c *Coordinator) Toggle() {
	c.loop.Post(func() {
		c.log.Info("toggle touchpad", logger.Action)
		err := Toggle(c.ext)
		if err != nil {
			c.log.Info(err.Error(), logger.Error)
		}
	})
}

// ResetDefaults restores extension settings and enables every device.
func (c *Coordinator) ResetDefaults() {
	c.loop.Post(func() {
		c.log.Info("restoring defaults", logger.Action)
		err := c.ext.ResetAll()
		if err != nil {
			c.log.Info(err.Error(), logger.Error)
		}
		c.resetContract()
	})
}
