package settings

import (
	"fmt"
	"math"
)

const (
	ExtensionSchemaID = "org.gnome.shell.extensions.touchpad-indicator"
	TouchpadSchemaID  = "org.gnome.desktop.peripherals.touchpad"
)

// Extension keys
const (
	KeyTouchpadEnabled      = "touchpad-enabled"
	KeyTrackpointEnabled    = "trackpoint-enabled"
	KeyTouchscreenEnabled   = "touchscreen-enabled"
	KeyFingertouchEnabled   = "fingertouch-enabled"
	KeyPenEnabled           = "pen-enabled"
	KeyAutoswitchTouchpad   = "autoswitch-touchpad"
	KeyAutoswitchTrackpoint = "autoswitch-trackpoint"
	KeyShowPanelIcon        = "show-panel-icon"
	KeyShowNotifications    = "show-notifications"
	KeySwitchMethod         = "switch-method"
	KeyMouseCount           = "mouse-count"
	KeyToggleTouchpad       = "toggle-touchpad"
	KeyDebug                = "debug"
	KeyDebugToFile          = "debug-to-file"
)

// System keys
const (
	KeySendEvents = "send-events"
)

// send-events values
const (
	SendEventsEnabled                 = "enabled"
	SendEventsDisabled                = "disabled"
	SendEventsDisabledOnExternalMouse = "disabled-on-external-mouse"
)

type Key struct {
	Name    string
	Default any
	Choices []string // allowed values of string keys, empty allows any
}

type Schema struct {
	ID   string
	Keys []Key
}

func (s Schema) Key(name string) (Key, bool) {
	for _, k := range s.Keys {
		if k.Name == name {
			return k, true
		}
	}
	return Key{}, false
}

// normalize converts v into the type of the key default.
func (k Key) normalize(v any) (any, error) {
	switch k.Default.(type) {
	case bool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects bool, got %T", ErrType, k.Name, v)
		}
		return b, nil
	case string:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects string, got %T", ErrType, k.Name, v)
		}
		if len(k.Choices) > 0 && !contains(k.Choices, s) {
			return nil, fmt.Errorf("%w: %s does not accept \"%s\"", ErrInvalidValue, k.Name, s)
		}
		return s, nil
	case int:
		switch i := v.(type) {
		case int:
			return i, nil
		case int64:
			return int(i), nil
		case uint32:
			return int(i), nil
		case float64:
			if i != math.Trunc(i) {
				return nil, fmt.Errorf("%w: %s expects integer, got %v", ErrType, k.Name, i)
			}
			return int(i), nil
		}
		return nil, fmt.Errorf("%w: %s expects integer, got %T", ErrType, k.Name, v)
	case []string:
		switch l := v.(type) {
		case []string:
			return append([]string{}, l...), nil
		case []any:
			var strv = make([]string, 0, len(l))
			for _, e := range l {
				s, ok := e.(string)
				if !ok {
					return nil, fmt.Errorf("%w: %s expects string list, got %T element", ErrType, k.Name, e)
				}
				strv = append(strv, s)
			}
			return strv, nil
		}
		return nil, fmt.Errorf("%w: %s expects string list, got %T", ErrType, k.Name, v)
	}
	return nil, fmt.Errorf("%w: %s has unsupported default %T", ErrType, k.Name, k.Default)
}

func contains(list []string, s string) bool {
	for _, l := range list {
		if l == s {
			return true
		}
	}
	return false
}

// Switch method names
const (
	MethodGSettings = "gsettings"
	MethodSynclient = "synclient"
	MethodXInput    = "xinput"
)

func ExtensionSchema() Schema {
	return Schema{
		ID: ExtensionSchemaID,
		Keys: []Key{
			{Name: KeyTouchpadEnabled, Default: true},
			{Name: KeyTrackpointEnabled, Default: true},
			{Name: KeyTouchscreenEnabled, Default: true},
			{Name: KeyFingertouchEnabled, Default: true},
			{Name: KeyPenEnabled, Default: true},
			{Name: KeyAutoswitchTouchpad, Default: false},
			{Name: KeyAutoswitchTrackpoint, Default: false},
			{Name: KeyShowPanelIcon, Default: true},
			{Name: KeyShowNotifications, Default: true},
			{Name: KeySwitchMethod, Default: MethodGSettings, Choices: []string{MethodGSettings, MethodSynclient, MethodXInput}},
			{Name: KeyMouseCount, Default: 0},
			{Name: KeyToggleTouchpad, Default: []string{"<Super>F9"}},
			{Name: KeyDebug, Default: false},
			{Name: KeyDebugToFile, Default: false},
		},
	}
}

// TouchpadSchema describes the single system key the daemon shares with the desktop.
func TouchpadSchema(id string) Schema {
	if id == "" {
		id = TouchpadSchemaID
	}
	return Schema{
		ID: id,
		Keys: []Key{
			{Name: KeySendEvents, Default: SendEventsEnabled, Choices: []string{
				SendEventsEnabled, SendEventsDisabled, SendEventsDisabledOnExternalMouse,
			}},
		},
	}
}
