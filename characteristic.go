package echoez

import (
	"strconv"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/muka/go-bluetooth/bluez/profile/gatt"
	"github.com/sirupsen/logrus"
)

// Emitter sends D-Bus signals. *dbus.Conn implements it.
type Emitter interface {
	Emit(path dbus.ObjectPath, name string, values ...interface{}) error
}

// Characteristic is a GATT characteristic exported as
// org.bluez.GattCharacteristic1. It owns its descriptors.
type Characteristic struct {
	path        dbus.ObjectPath
	uuid        UUID
	flags       []string
	service     dbus.ObjectPath
	descriptors []*Descriptor
	value       valueHandler
	props       propertyTable
	log         logrus.FieldLogger

	emitMu  sync.Mutex
	emitter Emitter
}

func newCharacteristic(svc *Service, index int, uuid UUID, flags []string, value valueHandler) *Characteristic {
	if value == nil {
		value = unsupportedValue{}
	}
	c := &Characteristic{
		path:    svc.path + dbus.ObjectPath("/char"+strconv.Itoa(index)),
		uuid:    uuid,
		flags:   flags,
		service: svc.path,
		value:   value,
	}
	c.log = svc.log.WithField("path", c.path)
	c.props = propertyTable{GattCharacteristicInterface: c.properties}
	return c
}

// newEchoCharacteristic creates the plain echo characteristic. Anything
// written to it is read back. Its user description is writable.
func newEchoCharacteristic(svc *Service, index int) *Characteristic {
	c := newCharacteristic(svc, index, EchoCharacteristicUUID, []string{
		gatt.FlagCharacteristicRead,
		gatt.FlagCharacteristicWrite,
		gatt.FlagCharacteristicWritableAuxiliaries,
	}, &bufferValue{})
	c.addDescriptor(newEchoDescriptor(c, 0))
	c.addDescriptor(newUserDescriptionDescriptor(c, 1))
	return c
}

// newEchoEncryptCharacteristic creates an echo characteristic that BlueZ only
// serves over an encrypted link.
func newEchoEncryptCharacteristic(svc *Service, index int) *Characteristic {
	c := newCharacteristic(svc, index, EchoEncryptCharacteristicUUID, []string{
		gatt.FlagCharacteristicEncryptRead,
		gatt.FlagCharacteristicEncryptWrite,
	}, &bufferValue{})
	c.addDescriptor(newEchoEncryptDescriptor(c, 2))
	c.addDescriptor(newUserDescriptionDescriptor(c, 3))
	return c
}

// newEchoSecureCharacteristic creates an echo characteristic that BlueZ only
// serves over a secure connection.
func newEchoSecureCharacteristic(svc *Service, index int) *Characteristic {
	c := newCharacteristic(svc, index, EchoSecureCharacteristicUUID, []string{
		gatt.FlagCharacteristicSecureRead,
		gatt.FlagCharacteristicSecureWrite,
	}, &bufferValue{})
	c.addDescriptor(newEchoSecureDescriptor(c, 2))
	c.addDescriptor(newUserDescriptionDescriptor(c, 3))
	return c
}

func (c *Characteristic) addDescriptor(d *Descriptor) {
	c.descriptors = append(c.descriptors, d)
}

func (c *Characteristic) hasFlag(flag string) bool {
	for _, f := range c.flags {
		if f == flag {
			return true
		}
	}
	return false
}

// Path returns the object path of this characteristic.
func (c *Characteristic) Path() dbus.ObjectPath {
	return c.path
}

// UUID returns the UUID of this characteristic.
func (c *Characteristic) UUID() UUID {
	return c.uuid
}

// Descriptors returns the descriptors of this characteristic, in path order.
func (c *Characteristic) Descriptors() []*Descriptor {
	return c.descriptors
}

func (c *Characteristic) descriptorPaths() []dbus.ObjectPath {
	paths := make([]dbus.ObjectPath, 0, len(c.descriptors))
	for _, d := range c.descriptors {
		paths = append(paths, d.path)
	}
	return paths
}

func (c *Characteristic) properties() map[string]dbus.Variant {
	return map[string]dbus.Variant{
		"Service":     dbus.MakeVariant(c.service),
		"UUID":        dbus.MakeVariant(c.uuid.bluezString()),
		"Flags":       dbus.MakeVariant(c.flags),
		"Descriptors": dbus.MakeVariant(c.descriptorPaths()),
	}
}

// GetAll implements org.freedesktop.DBus.Properties.GetAll.
func (c *Characteristic) GetAll(iface string) (map[string]dbus.Variant, *dbus.Error) {
	return c.props.GetAll(iface)
}

// ReadValue implements org.bluez.GattCharacteristic1.ReadValue.
func (c *Characteristic) ReadValue(options map[string]dbus.Variant) ([]byte, *dbus.Error) {
	value, err := c.value.ReadValue(options)
	if err != nil {
		c.log.WithError(err).Debug("ReadValue failed")
		return nil, err
	}
	c.log.WithField("value", value).Info("Read")
	return value, nil
}

// WriteValue implements org.bluez.GattCharacteristic1.WriteValue. A
// successful write is announced with a PropertiesChanged signal.
func (c *Characteristic) WriteValue(value []byte, options map[string]dbus.Variant) *dbus.Error {
	if err := c.value.WriteValue(value, options); err != nil {
		c.log.WithError(err).Debug("WriteValue failed")
		return err
	}
	c.log.WithField("value", value).Info("Write")
	changed := map[string]dbus.Variant{"Value": dbus.MakeVariant(value)}
	if err := c.PropertiesChanged(GattCharacteristicInterface, changed, []string{}); err != nil {
		c.log.WithError(err).Debug("could not emit PropertiesChanged")
	}
	return nil
}

// StartNotify implements org.bluez.GattCharacteristic1.StartNotify.
// Notifications are not supported.
func (c *Characteristic) StartNotify() *dbus.Error {
	c.log.Debug("StartNotify called, returning error")
	return ErrNotSupported
}

// StopNotify implements org.bluez.GattCharacteristic1.StopNotify.
func (c *Characteristic) StopNotify() *dbus.Error {
	c.log.Debug("StopNotify called, returning error")
	return ErrNotSupported
}

// PropertiesChanged emits org.freedesktop.DBus.Properties.PropertiesChanged
// for this characteristic. It does nothing until the characteristic has been
// exported.
func (c *Characteristic) PropertiesChanged(iface string, changed map[string]dbus.Variant, invalidated []string) error {
	c.emitMu.Lock()
	emitter := c.emitter
	c.emitMu.Unlock()
	if emitter == nil {
		return nil
	}
	return emitter.Emit(c.path, propertiesChangedSignal, iface, changed, invalidated)
}

func (c *Characteristic) setEmitter(e Emitter) {
	c.emitMu.Lock()
	c.emitter = e
	c.emitMu.Unlock()
}

func (c *Characteristic) methodTables() map[string]map[string]interface{} {
	return map[string]map[string]interface{}{
		GattCharacteristicInterface: {
			"ReadValue":   c.ReadValue,
			"WriteValue":  c.WriteValue,
			"StartNotify": c.StartNotify,
			"StopNotify":  c.StopNotify,
		},
		PropertiesInterface: c.props.methods(),
	}
}
