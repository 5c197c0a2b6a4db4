package coordinator

import (
	"github.com/gethiox/tpsync/internal/pkg/logger"
	"github.com/gethiox/tpsync/internal/pkg/settings"
	"go.uber.org/zap"
)

const (
	IconEnabled  = "input-touchpad-symbolic"
	IconDisabled = "touchpad-disabled-symbolic"
)

type Status struct {
	Visible         bool            `yaml:"visible"`
	Icon            string          `yaml:"icon"`
	Method          string          `yaml:"switch_method"`
	TouchpadEnabled bool            `yaml:"touchpad_enabled"`
	SendEvents      string          `yaml:"send_events"`
	Devices         map[string]bool `yaml:"devices"`
}

// ComputeStatus derives indicator state, it is visible when show-panel-icon is set
// or any of deviceKeys is switched off.
func ComputeStatus(ext, sys *settings.Store, deviceKeys []string) Status {
	s := Status{
		Visible:         ext.Bool(settings.KeyShowPanelIcon),
		Icon:            IconDisabled,
		Method:          ext.String(settings.KeySwitchMethod),
		TouchpadEnabled: ext.Bool(settings.KeyTouchpadEnabled),
		SendEvents:      sys.String(settings.KeySendEvents),
		Devices:         make(map[string]bool, len(deviceKeys)),
	}
	if s.TouchpadEnabled {
		s.Icon = IconEnabled
	}
	for _, key := range deviceKeys {
		enabled := ext.Bool(key)
		s.Devices[key] = enabled
		if !enabled {
			s.Visible = true
		}
	}
	return s
}

func (c *Coordinator) updateStatus() {
	s := ComputeStatus(c.ext, c.sys, c.deviceKeys)
	s.Method = c.method

	c.statusMu.Lock()
	changed := s.Visible != c.status.Visible || s.Icon != c.status.Icon
	c.status = s
	c.statusMu.Unlock()

	if changed {
		c.log.Info("indicator changed", zap.Bool("visible", s.Visible), zap.String("icon", s.Icon), logger.Info)
	}
}

// currentStatus returns indicator state as of the last recomputation.
func (c *Coordinator) currentStatus() Status {
	c.statusMu.Lock()
	defer c.statusMu.Unlock()
	return c.status
}
