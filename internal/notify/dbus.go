//go:build linux

package notify

import (
	"github.com/godbus/dbus/v5"
)

const (
	dbusNotifyDest      = "org.freedesktop.Notifications"
	dbusNotifyPath      = "/org/freedesktop/Notifications"
	dbusNotifyInterface = "org.freedesktop.Notifications"
)

// dbusNotifier talks to the org.freedesktop.Notifications service.
type dbusNotifier struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// New connects to the session bus and returns a Notifier. onAction, when
// non-nil, receives ActionInvoked signals as (notification id, action key).
// Without a session bus the returned notifier silently drops everything.
func New(onAction func(id uint32, key string)) (Notifier, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return &stubNotifier{}, nil //nolint:nilerr // headless hosts get the silent fallback
	}

	n := &dbusNotifier{
		conn: conn,
		obj:  conn.Object(dbusNotifyDest, dbusNotifyPath),
	}

	if onAction != nil {
		if err := conn.AddMatchSignal(
			dbus.WithMatchInterface(dbusNotifyInterface),
			dbus.WithMatchMember("ActionInvoked"),
		); err == nil {
			ch := make(chan *dbus.Signal, 8)
			conn.Signal(ch)
			go dispatchActions(ch, onAction)
		}
	}

	return n, nil
}

// dispatchActions forwards ActionInvoked signals to the callback. The
// channel closes with the bus connection.
func dispatchActions(ch <-chan *dbus.Signal, onAction func(id uint32, key string)) {
	for sig := range ch {
		if sig.Name != dbusNotifyInterface+".ActionInvoked" || len(sig.Body) < 2 {
			continue
		}
		id, ok := sig.Body[0].(uint32)
		if !ok {
			continue
		}
		key, ok := sig.Body[1].(string)
		if !ok {
			continue
		}
		onAction(id, key)
	}
}

// Notify posts the notification and returns the id assigned by the server.
func (n *dbusNotifier) Notify(notif Notification) (uint32, error) {
	hints := map[string]dbus.Variant{
		"urgency":       dbus.MakeVariant(byte(notif.Urgency)),
		"desktop-entry": dbus.MakeVariant("pulse"),
	}

	// Notify(app_name, replaces_id, icon, summary, body, actions, hints, timeout) -> id
	call := n.obj.Call(
		dbusNotifyInterface+".Notify",
		0,
		"Pulse",
		notif.ReplacesID,
		notif.Icon,
		notif.Title,
		notif.Body,
		notif.actionList(),
		hints,
		notif.Timeout,
	)
	if call.Err != nil {
		return 0, call.Err
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// Close dismisses a notification by id.
func (n *dbusNotifier) Close(id uint32) error {
	return n.obj.Call(dbusNotifyInterface+".CloseNotification", 0, id).Err
}

// stubNotifier stands in when the session bus cannot be reached.
type stubNotifier struct{}

func (s *stubNotifier) Notify(_ Notification) (uint32, error) {
	return 0, nil
}

func (s *stubNotifier) Close(_ uint32) error {
	return nil
}
