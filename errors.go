package echoez

import (
	"github.com/godbus/dbus/v5"
	"github.com/pkg/errors"
)

// D-Bus faults returned to BlueZ. BlueZ maps each of them onto the ATT error
// it sends to the remote device and aborts the operation.
var (
	ErrInvalidArgs  = dbus.NewError("org.freedesktop.DBus.Error.InvalidArgs", nil)
	ErrNotSupported = dbus.NewError("org.bluez.Error.NotSupported", nil)
	ErrNotPermitted = dbus.NewError("org.bluez.Error.NotPermitted", nil)
	ErrRejected     = dbus.NewError("org.bluez.Error.Rejected", nil)
	ErrFailed       = dbus.NewError("org.bluez.Error.Failed", nil)
)

var (
	// ErrInvalidName is returned when an application or agent name contains
	// anything but ASCII letters. The name ends up in D-Bus object paths.
	ErrInvalidName = errors.New("echoez: name must be alphabetical only")

	ErrAdapterNotFound = errors.New("echoez: could not find " + GattManagerInterface)
)

func rejected(msg string) *dbus.Error {
	return dbus.NewError(ErrRejected.Name, []interface{}{msg})
}

func failed(err error) *dbus.Error {
	return dbus.NewError(ErrFailed.Name, []interface{}{err.Error()})
}
