package echoez

// Some documentation for the BlueZ D-Bus interface:
// https://git.kernel.org/pub/scm/bluetooth/bluez.git/tree/doc

import (
	"context"
	"path"
	"sort"

	"github.com/godbus/dbus/v5"
	"github.com/pkg/errors"
)

// Adapter is a BlueZ adapter, such as /org/bluez/hci0, that implements
// org.bluez.GattManager1.
type Adapter struct {
	path dbus.ObjectPath
	bus  Bus
}

// FindAdapter asks BlueZ for its managed objects and returns the first
// adapter, in path order, offering a GATT manager. When id is not empty only
// /org/bluez/<id> is considered. ErrAdapterNotFound is returned when nothing
// matches.
func FindAdapter(ctx context.Context, bus Bus, id string) (*Adapter, error) {
	var objects ManagedObjects
	err := bus.Call(ctx, "/", getManagedObjectsMethod).Store(&objects)
	if err != nil {
		return nil, errors.Wrap(err, "could not list BlueZ objects")
	}

	paths := make([]string, 0, len(objects))
	for p := range objects {
		paths = append(paths, string(p))
	}
	sort.Strings(paths)
	for _, p := range paths {
		if id != "" && p != BluezPath+"/"+id {
			continue
		}
		if _, ok := objects[dbus.ObjectPath(p)][GattManagerInterface]; ok {
			return &Adapter{path: dbus.ObjectPath(p), bus: bus}, nil
		}
	}
	return nil, ErrAdapterNotFound
}

// Path returns the object path of this adapter.
func (a *Adapter) Path() dbus.ObjectPath {
	return a.path
}

// ID returns the adapter id, such as hci0.
func (a *Adapter) ID() string {
	return path.Base(string(a.path))
}

// SetPowered switches the adapter on or off.
func (a *Adapter) SetPowered(ctx context.Context, powered bool) error {
	err := a.bus.Call(ctx, a.path, setPropertyMethod, AdapterInterface, "Powered", dbus.MakeVariant(powered)).Err
	return errors.Wrapf(err, "could not set %s powered=%v", a.path, powered)
}
