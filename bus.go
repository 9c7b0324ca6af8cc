package echoez

import (
	"context"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"
	"github.com/pkg/errors"
)

// Bus is the part of a D-Bus connection the peripheral needs: exporting its
// own objects and calling into BlueZ. SystemBus returns the real one; tests
// use a recording fake.
type Bus interface {
	Emitter

	// ExportMethods exports methods under iface at path.
	ExportMethods(path dbus.ObjectPath, iface string, methods map[string]interface{}) error

	// ExportProperties serves org.freedesktop.DBus.Properties for props at
	// path.
	ExportProperties(path dbus.ObjectPath, props prop.Map) error

	// ExportIntrospection serves org.freedesktop.DBus.Introspectable at the
	// node's path.
	ExportIntrospection(node *introspect.Node) error

	// Call invokes method on the BlueZ object at path and waits for the
	// reply.
	Call(ctx context.Context, path dbus.ObjectPath, method string, args ...interface{}) *dbus.Call

	// Go invokes method on the BlueZ object at path without waiting. The
	// completed call is sent on ch.
	Go(path dbus.ObjectPath, method string, ch chan *dbus.Call, args ...interface{}) *dbus.Call

	Close() error
}

type systemBus struct {
	conn *dbus.Conn
}

// SystemBus opens a private connection to the D-Bus system bus, where BlueZ
// lives. Closing the Bus closes the connection.
func SystemBus() (Bus, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, errors.Wrap(err, "could not connect to the system bus")
	}
	return &systemBus{conn: conn}, nil
}

func (b *systemBus) Emit(path dbus.ObjectPath, name string, values ...interface{}) error {
	return b.conn.Emit(path, name, values...)
}

func (b *systemBus) ExportMethods(path dbus.ObjectPath, iface string, methods map[string]interface{}) error {
	return b.conn.ExportMethodTable(methods, path, iface)
}

func (b *systemBus) ExportProperties(path dbus.ObjectPath, props prop.Map) error {
	_, err := prop.Export(b.conn, path, props)
	return err
}

func (b *systemBus) ExportIntrospection(node *introspect.Node) error {
	return b.conn.Export(introspect.NewIntrospectable(node), dbus.ObjectPath(node.Name), IntrospectInterface)
}

func (b *systemBus) Call(ctx context.Context, path dbus.ObjectPath, method string, args ...interface{}) *dbus.Call {
	return b.conn.Object(BluezServiceName, path).CallWithContext(ctx, method, 0, args...)
}

func (b *systemBus) Go(path dbus.ObjectPath, method string, ch chan *dbus.Call, args ...interface{}) *dbus.Call {
	return b.conn.Object(BluezServiceName, path).Go(method, 0, ch, args...)
}

func (b *systemBus) Close() error {
	return b.conn.Close()
}
