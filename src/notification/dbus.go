package notification

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	notifyDest   = "org.freedesktop.Notifications"
	notifyPath   = "/org/freedesktop/Notifications"
	notifyMethod = "org.freedesktop.Notifications.Notify"
	defaultSound = "message-new-instant"
)

// DBus delivers notifications through org.freedesktop.Notifications.
type DBus struct {
	appName string
	obj     dbus.BusObject
}

func NewDBus(appName string) (*DBus, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	return &DBus{appName: appName, obj: conn.Object(notifyDest, dbus.ObjectPath(notifyPath))}, nil
}

func (d *DBus) Notify(title, body string, withSound bool) error {
	call := d.obj.Call(notifyMethod, 0,
		d.appName,
		uint32(0), // replaces_id
		"",        // app_icon
		title,
		body,
		[]string{},
		notifyHints(withSound),
		int32(-1), // server default expiry
	)
	if call.Err != nil {
		return fmt.Errorf("notify: %w", call.Err)
	}
	return nil
}

func notifyHints(withSound bool) map[string]dbus.Variant {
	hints := map[string]dbus.Variant{}
	if withSound {
		hints["sound-name"] = dbus.MakeVariant(defaultSound)
	} else {
		hints["suppress-sound"] = dbus.MakeVariant(true)
	}
	return hints
}
