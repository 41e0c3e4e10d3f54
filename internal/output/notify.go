package output

import (
	"context"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/hashicorp/go-multierror"

	"github.com/bryanchriswhite/swayshot/internal/command"
	"github.com/bryanchriswhite/swayshot/internal/logger"
)

// Freedesktop notification D-Bus constants
const (
	notificationsService   = "org.freedesktop.Notifications"
	notificationsPath      = "/org/freedesktop/Notifications"
	notificationsInterface = "org.freedesktop.Notifications"
)

// AppName is reported to the notification daemon.
const AppName = "swayshot"

// notifyCaller is the part of dbus.BusObject the notifier needs.
type notifyCaller interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// DBusNotifier talks to the notification daemon over the session bus.
type DBusNotifier struct {
	mu      sync.Mutex
	conn    *dbus.Conn
	obj     notifyCaller
	Timeout int32
}

// NewDBusNotifier creates a notifier; the bus connection is opened on first use.
func NewDBusNotifier() *DBusNotifier {
	return &DBusNotifier{Timeout: -1}
}

// Name returns the notifier name
func (n *DBusNotifier) Name() string {
	return "dbus"
}

func (n *DBusNotifier) object() (notifyCaller, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.obj != nil {
		return n.obj, nil
	}
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	n.conn = conn
	n.obj = conn.Object(notificationsService, notificationsPath)
	return n.obj, nil
}

// Notify sends org.freedesktop.Notifications.Notify
func (n *DBusNotifier) Notify(ctx context.Context, title, body string) error {
	obj, err := n.object()
	if err != nil {
		return err
	}

	call := obj.CallWithContext(ctx, notificationsInterface+".Notify", 0,
		AppName,
		uint32(0),
		"",
		title,
		body,
		[]string{},
		map[string]dbus.Variant{},
		n.Timeout,
	)
	if call.Err != nil {
		return fmt.Errorf("notification call failed: %w", call.Err)
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return fmt.Errorf("failed to read notification id: %w", err)
	}
	logger.WithComponent("notifier").Debug().Uint32("id", id).Msg("Notification sent over D-Bus")
	return nil
}

// Close releases the bus connection
func (n *DBusNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.obj = nil
	if n.conn == nil {
		return nil
	}
	err := n.conn.Close()
	n.conn = nil
	return err
}

// CommandNotifier runs notify-send(1) style commands: `cmd [args...] title body`.
type CommandNotifier struct {
	runner  command.Runner
	command string
	args    []string
}

// NewCommandNotifier creates a command-backed notifier
func NewCommandNotifier(runner command.Runner, cmd string, args []string) *CommandNotifier {
	if cmd == "" {
		cmd = "notify-send"
	}
	return &CommandNotifier{runner: runner, command: cmd, args: args}
}

// Name returns the notifier command
func (n *CommandNotifier) Name() string {
	return n.command
}

// Notify runs the notification command
func (n *CommandNotifier) Notify(ctx context.Context, title, body string) error {
	args := make([]string, 0, len(n.args)+2)
	args = append(args, n.args...)
	args = append(args, title, body)
	if _, err := n.runner.Run(ctx, nil, n.command, args...); err != nil {
		return fmt.Errorf("%s failed: %w", n.command, err)
	}
	return nil
}

// FallbackNotifier tries each notifier in order until one succeeds.
type FallbackNotifier struct {
	Notifiers []Notifier
}

// Name returns the notifier name
func (f *FallbackNotifier) Name() string {
	return NotifierAuto
}

// Notify returns nil on the first success, otherwise every failure combined.
func (f *FallbackNotifier) Notify(ctx context.Context, title, body string) error {
	var result *multierror.Error
	for _, n := range f.Notifiers {
		err := n.Notify(ctx, title, body)
		if err == nil {
			return nil
		}
		logger.WithComponent("notifier").Debug().Str("notifier", n.Name()).Err(err).Msg("Notifier failed, trying next")
		result = multierror.Append(result, fmt.Errorf("%s: %w", n.Name(), err))
	}
	return result.ErrorOrNil()
}
