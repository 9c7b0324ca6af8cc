package echoez

import (
	"reflect"
	"sort"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/pkg/errors"
)

// exportable is an object with a fixed path and a static table of the D-Bus
// methods it serves, keyed by interface name.
type exportable interface {
	Path() dbus.ObjectPath
	methodTables() map[string]map[string]interface{}
}

var (
	dbusErrorType = reflect.TypeOf((*dbus.Error)(nil))
	senderType    = reflect.TypeOf(dbus.Sender(""))
	messageType   = reflect.TypeOf(dbus.Message{})
)

var propertiesChangedIntrospection = introspect.Signal{
	Name: "PropertiesChanged",
	Args: []introspect.Arg{
		{Name: "interface", Type: "s"},
		{Name: "changed_properties", Type: "a{sv}"},
		{Name: "invalidated_properties", Type: "as"},
	},
}

// export exports every method table of obj on bus, followed by the
// introspection data describing them.
func export(bus Bus, obj exportable) error {
	tables := obj.methodTables()
	ifaces := make([]string, 0, len(tables))
	for iface := range tables {
		ifaces = append(ifaces, iface)
	}
	sort.Strings(ifaces)

	node := &introspect.Node{
		Name:       string(obj.Path()),
		Interfaces: []introspect.Interface{introspect.IntrospectData},
	}
	for _, iface := range ifaces {
		methods := tables[iface]
		if len(methods) > 0 {
			if err := bus.ExportMethods(obj.Path(), iface, methods); err != nil {
				return errors.Wrapf(err, "could not export %s at %s", iface, obj.Path())
			}
		}
		node.Interfaces = append(node.Interfaces, introspectInterface(iface, methods))
	}
	if x, ok := obj.(interface {
		introspection() []introspect.Interface
	}); ok {
		node.Interfaces = append(node.Interfaces, x.introspection()...)
	}
	if err := bus.ExportIntrospection(node); err != nil {
		return errors.Wrapf(err, "could not export introspection data at %s", obj.Path())
	}
	return nil
}

// introspectInterface describes a method table the way godbus dispatches
// it: a trailing *dbus.Error is the error reply, and dbus.Sender and
// dbus.Message parameters are filled in by godbus rather than the caller.
func introspectInterface(iface string, methods map[string]interface{}) introspect.Interface {
	names := make([]string, 0, len(methods))
	for name := range methods {
		names = append(names, name)
	}
	sort.Strings(names)

	out := introspect.Interface{Name: iface}
	for _, name := range names {
		t := reflect.TypeOf(methods[name])
		m := introspect.Method{Name: name}
		for i := 0; i < t.NumIn(); i++ {
			in := t.In(i)
			if in == senderType || in == messageType {
				continue
			}
			m.Args = append(m.Args, introspect.Arg{
				Type:      dbus.SignatureOfType(in).String(),
				Direction: "in",
			})
		}
		for i := 0; i < t.NumOut(); i++ {
			o := t.Out(i)
			if o == dbusErrorType {
				continue
			}
			m.Args = append(m.Args, introspect.Arg{
				Type:      dbus.SignatureOfType(o).String(),
				Direction: "out",
			})
		}
		out.Methods = append(out.Methods, m)
	}
	if iface == PropertiesInterface {
		out.Signals = append(out.Signals, propertiesChangedIntrospection)
	}
	return out
}
