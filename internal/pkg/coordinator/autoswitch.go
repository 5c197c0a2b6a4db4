package coordinator

import (
	"context"
	"fmt"
	"time"

	"github.com/gethiox/tpsync/internal/pkg/hotplug"
	"github.com/gethiox/tpsync/internal/pkg/input"
	"github.com/gethiox/tpsync/internal/pkg/logger"
	"github.com/gethiox/tpsync/internal/pkg/settings"
	"go.uber.org/zap"
)

const (
	enumerateTimeout  = 5 * time.Second
	notificationTitle = "Touchpad Indicator"
)

// autoSwitch flips touchpad when number of mice crosses calibrated baseline.
func (c *Coordinator) autoSwitch(kind hotplug.Kind) {
	if !c.ext.Bool(settings.KeyAutoswitchTouchpad) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), enumerateTimeout)
	defer cancel()
	devices, err := c.enumerator.Enumerate(ctx)
	if err != nil {
		c.log.Info(fmt.Sprintf("auto-switch skipped: %s", err), logger.Warning)
		return
	}

	mice := input.CountType(devices, input.MouseDevice)
	baseline := c.ext.Int(settings.KeyMouseCount)
	touchpadEnabled := c.ext.Bool(settings.KeyTouchpadEnabled)
	c.log.Info(fmt.Sprintf("mouse %s", kind), zap.Int("mouse_count", mice), zap.Int("baseline", baseline), logger.Debug)

	switch {
	case kind == hotplug.Removed && mice <= baseline && !touchpadEnabled:
		c.setBool(settings.KeyTouchpadEnabled, true)
		c.notifyTouchpad()
	case kind == hotplug.Created && mice > baseline && touchpadEnabled:
		c.setBool(settings.KeyTouchpadEnabled, false)
		c.notifyTouchpad()
	}
}

func (c *Coordinator) notifyTouchpad() {
	if !c.ext.Bool(settings.KeyShowNotifications) {
		return
	}
	state := "Disabled"
	if c.ext.Bool(settings.KeyTouchpadEnabled) && c.sys.String(settings.KeySendEvents) == settings.SendEventsEnabled {
		state = "Enabled"
	}
	err := c.notifier.Notify(notificationTitle, "Touchpad "+state)
	if err != nil {
		c.log.Info(err.Error(), logger.Warning)
	}
}
