package echoez

import (
	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/prop"
)

// propertyTable maps an interface name to the function producing that
// interface's properties. Every exported object builds one at construction
// time and serves org.freedesktop.DBus.Properties from it.
type propertyTable map[string]func() map[string]dbus.Variant

// GetAll returns all properties of iface.
func (t propertyTable) GetAll(iface string) (map[string]dbus.Variant, *dbus.Error) {
	get, ok := t[iface]
	if !ok {
		return nil, ErrInvalidArgs
	}
	return get(), nil
}

// Get returns a single property of iface.
func (t propertyTable) Get(iface, name string) (dbus.Variant, *dbus.Error) {
	props, err := t.GetAll(iface)
	if err != nil {
		return dbus.Variant{}, err
	}
	v, ok := props[name]
	if !ok {
		return dbus.Variant{}, prop.ErrPropNotFound
	}
	return v, nil
}

// Set always fails: the tree is fixed once it has been registered.
func (t propertyTable) Set(iface, name string, value dbus.Variant) *dbus.Error {
	if _, ok := t[iface]; !ok {
		return ErrInvalidArgs
	}
	return prop.ErrReadOnly
}

func (t propertyTable) methods() map[string]interface{} {
	return map[string]interface{}{
		"GetAll": t.GetAll,
		"Get":    t.Get,
		"Set":    t.Set,
	}
}

// isAlpha reports whether name is non-empty and made only of ASCII letters.
// Names end up as D-Bus object path elements, which allow nothing wider.
func isAlpha(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}
