// Package notify shows desktop notifications.
package notify

import (
	"fmt"

	"github.com/gethiox/tpsync/internal/pkg/logger"
	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"
)

const (
	DefaultAppName = "tpsync"
	DefaultIcon    = "input-touchpad"
)

const (
	BackendDBus = "dbus"
	BackendLog  = "log"
)

const (
	busName       = "org.freedesktop.Notifications"
	busPath       = "/org/freedesktop/Notifications"
	notifyMethod  = busName + ".Notify"
	expireDefault = int32(-1)
)

type Notifier interface {
	Notify(title, body string) error
}

// DBus sends notifications to the notification server of the session bus.
type DBus struct {
	conn    *dbus.Conn
	appName string
	icon    string
	log     *zap.Logger
}

func NewDBus(appName, icon string, log *zap.Logger) (*DBus, error) {
	if appName == "" {
		appName = DefaultAppName
	}
	if icon == "" {
		icon = DefaultIcon
	}
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("cannot connect to session bus: %w", err)
	}
	return &DBus{conn: conn, appName: appName, icon: icon, log: log}, nil
}

// notifyArgs matches org.freedesktop.Notifications.Notify signature (susssasa{sv}i).
func notifyArgs(appName, icon, title, body string) []interface{} {
	return []interface{}{
		appName,
		uint32(0),
		icon,
		title,
		body,
		[]string{},
		map[string]dbus.Variant{},
		expireDefault,
	}
}

func (d *DBus) Notify(title, body string) error {
	d.log.Info("notification", zap.String("title", title), zap.String("body", body), logger.Debug)
	obj := d.conn.Object(busName, busPath)
	call := obj.Call(notifyMethod, 0, notifyArgs(d.appName, d.icon, title, body)...)
	if call.Err != nil {
		return fmt.Errorf("notification failed: %w", call.Err)
	}
	return nil
}

func (d *DBus) Close() error {
	return d.conn.Close()
}

// Log prints notifications as regular log entries, for hosts without notification server.
type Log struct {
	log *zap.Logger
}

func NewLog(log *zap.Logger) *Log {
	return &Log{log: log}
}

func (l *Log) Notify(title, body string) error {
	l.log.Info(fmt.Sprintf("%s: %s", title, body), logger.Info)
	return nil
}

// New picks the notifier for backend, dbus falls back to log when the bus is unreachable.
func New(backend, appName, icon string, log *zap.Logger) Notifier {
	if backend == BackendLog {
		return NewLog(log)
	}
	d, err := NewDBus(appName, icon, log)
	if err != nil {
		log.Info(fmt.Sprintf("desktop notifications unavailable: %s", err), logger.Warning)
		return NewLog(log)
	}
	return d
}
