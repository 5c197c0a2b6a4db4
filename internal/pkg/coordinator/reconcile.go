package coordinator

import (
	"fmt"

	"github.com/gethiox/tpsync/internal/pkg/input"
	"github.com/gethiox/tpsync/internal/pkg/logger"
	"github.com/gethiox/tpsync/internal/pkg/settings"
	"go.uber.org/zap"
)

func inSync(touchpadEnabled bool, sendEvents string) bool {
	return (touchpadEnabled && sendEvents == settings.SendEventsEnabled) ||
		(!touchpadEnabled && sendEvents == settings.SendEventsDisabled)
}

// sync reconciles settings and devices after change of key.
// It never writes a value which already matches, so nested notifications settle after one round.
func (c *Coordinator) sync(key string) {
	touchpadEnabled := c.ext.Bool(settings.KeyTouchpadEnabled)
	sendEvents := c.sys.String(settings.KeySendEvents)
	synced := inSync(touchpadEnabled, sendEvents)
	deviceType, nonTouchpad := nonTouchpadKeys[key]

	c.log.Info("sync", zap.String("key", key), zap.Bool("touchpad_enabled", touchpadEnabled),
		zap.String("send_events", sendEvents), zap.Bool("in_sync", synced),
		zap.Bool("method_changed", c.methodChanged), logger.Debug)

	if synced && !c.methodChanged && !nonTouchpad {
		// NOTE: pushes into synclient even when key is unrelated to touchpad driver
		if c.method != settings.MethodSynclient {
			c.driver.Switch(touchpadEnabled)
		}
		return
	}

	switch {
	case nonTouchpad:
		c.lowLevel.SwitchByType(deviceType, c.ext.Bool(key))
	case key == settings.KeyTouchpadEnabled:
		c.syncTouchpad(touchpadEnabled, sendEvents, synced)
	default:
		c.onSendEvents(touchpadEnabled, sendEvents)
	}

	c.methodChanged = false
}

func (c *Coordinator) syncTouchpad(touchpadEnabled bool, sendEvents string, synced bool) {
	switch c.method {
	case settings.MethodGSettings:
		c.propagateTouchpad(touchpadEnabled, sendEvents)
	case settings.MethodXInput:
		if !synced {
			c.propagateTouchpad(touchpadEnabled, sendEvents)
		}
		c.lowLevel.SwitchByType(input.TouchpadDevice, touchpadEnabled)
		if !touchpadEnabled && !c.lowLevel.Present(input.TouchpadDevice) {
			c.log.Info("touchpad is gone after disabling, restoring enabled state", logger.Warning)
			c.setBool(settings.KeyTouchpadEnabled, true)
		}
	case settings.MethodSynclient:
		if !synced {
			c.propagateTouchpad(touchpadEnabled, sendEvents)
		}
		c.driver.Switch(touchpadEnabled)
		if !touchpadEnabled && !c.driver.TpdOff() {
			c.log.Info("synclient did not disable touchpad, restoring enabled state", logger.Warning)
			c.setBool(settings.KeyTouchpadEnabled, true)
		}
	}
}

// propagateTouchpad copies touchpad-enabled into send-events.
func (c *Coordinator) propagateTouchpad(touchpadEnabled bool, sendEvents string) {
	switch {
	case touchpadEnabled && sendEvents != settings.SendEventsEnabled:
		c.setSendEvents(settings.SendEventsEnabled)
	case !touchpadEnabled && sendEvents != settings.SendEventsDisabled:
		c.setSendEvents(settings.SendEventsDisabled)
	}
}

// onSendEvents copies send-events into touchpad-enabled.
func (c *Coordinator) onSendEvents(touchpadEnabled bool, sendEvents string) {
	if sendEvents != settings.SendEventsEnabled && touchpadEnabled {
		c.setBool(settings.KeyTouchpadEnabled, false)
		return
	}
	if sendEvents == settings.SendEventsEnabled && !touchpadEnabled {
		// touchpad enabled by the desktop, drop device level overrides
		if c.method != settings.MethodGSettings {
			c.lowLevel.EnableByType(input.TouchpadDevice)
			c.driver.Enable()
		}
		c.setBool(settings.KeyTouchpadEnabled, true)
	}
}

func (c *Coordinator) syncSwitchMethod() {
	old := c.method
	c.resolveMethod()
	c.methodChanged = true
	c.log.Info(fmt.Sprintf("switch method changed from %s to %s", old, c.method), logger.Info)

	if c.method != settings.MethodXInput {
		c.lowLevel.EnableByType(input.TouchpadDevice)
	}
	if c.method != settings.MethodSynclient {
		c.driver.Enable()
	}

	c.loop.Post(func() {
		c.sync(settings.KeyTouchpadEnabled)
	})
}
