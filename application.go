package echoez

import (
	"github.com/godbus/dbus/v5"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ManagedObjects is the reply of org.freedesktop.DBus.ObjectManager
// GetManagedObjects: object path to interface name to properties.
type ManagedObjects = map[dbus.ObjectPath]map[string]map[string]dbus.Variant

// Application is the root of the GATT object tree registered with
// org.bluez.GattManager1. BlueZ discovers the tree through the ObjectManager
// interface exported at the application path.
type Application struct {
	path     dbus.ObjectPath
	services []*Service
	log      logrus.FieldLogger
}

// NewApplication creates the echo application. The name must consist of
// ASCII letters only; ErrInvalidName is returned otherwise.
func NewApplication(name string, log logrus.FieldLogger) (*Application, error) {
	if !isAlpha(name) {
		return nil, errors.Wrapf(ErrInvalidName, "%q is invalid", name)
	}
	if log == nil {
		log = discardLogger()
	}
	app := &Application{
		path: "/",
		log:  log,
	}
	app.addService(NewEchoService(echoServiceIndex, log))
	return app, nil
}

func (app *Application) addService(s *Service) {
	app.services = append(app.services, s)
}

// Path returns the object path of the application root.
func (app *Application) Path() dbus.ObjectPath {
	return app.path
}

// Services returns the services of this application.
func (app *Application) Services() []*Service {
	return app.services
}

// GetManagedObjects implements org.freedesktop.DBus.ObjectManager. It walks
// the whole tree, so the reply always reflects the current state.
func (app *Application) GetManagedObjects() (ManagedObjects, *dbus.Error) {
	app.log.Debug("GetManagedObjects")
	response := make(ManagedObjects)
	app.walk(func(path dbus.ObjectPath, props propertyTable) {
		ifaces := make(map[string]map[string]dbus.Variant, len(props))
		for iface, get := range props {
			ifaces[iface] = get()
		}
		response[path] = ifaces
	})
	return response, nil
}

// walk visits every object below the root, depth first: each service, then
// its characteristics, then their descriptors.
func (app *Application) walk(fn func(path dbus.ObjectPath, props propertyTable)) {
	for _, s := range app.services {
		fn(s.path, s.props)
		for _, c := range s.characteristics {
			fn(c.path, c.props)
			for _, d := range c.descriptors {
				fn(d.path, d.props)
			}
		}
	}
}

func (app *Application) methodTables() map[string]map[string]interface{} {
	return map[string]map[string]interface{}{
		ObjectManagerInterface: {
			"GetManagedObjects": app.GetManagedObjects,
		},
	}
}
