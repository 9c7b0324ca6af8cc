package echoez

import (
	"strconv"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"
	"github.com/muka/go-bluetooth/bluez/profile/advertising"
	"github.com/sirupsen/logrus"
)

// includeTxPower asks BlueZ to add the TX power level to the advertising
// data.
const includeTxPower = "tx-power"

// Advertisement is a BLE advertisement exported as org.bluez.LEAdvertisement1
// and registered with org.bluez.LEAdvertisingManager1.
type Advertisement struct {
	path       dbus.ObjectPath
	properties *advertising.LEAdvertisement1Properties
	log        logrus.FieldLogger
}

// NewAdvertisement creates a connectable advertisement with the given index.
// It announces localName and the UUIDs of services.
func NewAdvertisement(index int, localName string, services []*Service, log logrus.FieldLogger) *Advertisement {
	if log == nil {
		log = discardLogger()
	}
	a := &Advertisement{
		path: dbus.ObjectPath(advertisementPathBase + strconv.Itoa(index)),
		properties: &advertising.LEAdvertisement1Properties{
			Type:      advertising.AdvertisementTypePeripheral,
			LocalName: localName,
			Includes:  []string{includeTxPower},
		},
	}
	for _, s := range services {
		a.properties.ServiceUUIDs = append(a.properties.ServiceUUIDs, s.uuid.bluezString())
	}
	a.log = log.WithField("path", a.path)
	return a
}

// Path returns the object path of this advertisement.
func (a *Advertisement) Path() dbus.ObjectPath {
	return a.path
}

// Properties returns the org.bluez.LEAdvertisement1 properties BlueZ reads
// when the advertisement is registered.
func (a *Advertisement) Properties() map[string]dbus.Variant {
	props := map[string]dbus.Variant{
		"Type": dbus.MakeVariant(a.properties.Type),
	}
	if len(a.properties.Includes) > 0 {
		props["Includes"] = dbus.MakeVariant(a.properties.Includes)
	}
	if len(a.properties.ServiceUUIDs) > 0 {
		props["ServiceUUIDs"] = dbus.MakeVariant(a.properties.ServiceUUIDs)
	}
	if a.properties.LocalName != "" {
		props["LocalName"] = dbus.MakeVariant(a.properties.LocalName)
	}
	return props
}

func (a *Advertisement) propMap() prop.Map {
	props := make(map[string]*prop.Prop)
	for name, v := range a.Properties() {
		props[name] = &prop.Prop{Value: v.Value(), Emit: prop.EmitFalse}
	}
	return prop.Map{AdvertisementInterface: props}
}

// Release implements org.bluez.LEAdvertisement1.Release. BlueZ calls it when
// it drops the advertisement.
func (a *Advertisement) Release() *dbus.Error {
	a.log.Info("advertisement released")
	return nil
}

func (a *Advertisement) introspection() []introspect.Interface {
	return []introspect.Interface{prop.IntrospectData}
}

func (a *Advertisement) methodTables() map[string]map[string]interface{} {
	return map[string]map[string]interface{}{
		AdvertisementInterface: {
			"Release": a.Release,
		},
	}
}
