package echoez

import (
	"strconv"

	"github.com/godbus/dbus/v5"
	"github.com/muka/go-bluetooth/bluez/profile/gatt"
	"github.com/sirupsen/logrus"
)

// echoValue is what every echo descriptor reads back, whatever its security
// tier. BlueZ enforces the tier from the descriptor flags.
var echoValue = staticValue("Echo")

const userDescription = "This is a characteristic for testing"

// Descriptor is a GATT descriptor exported as org.bluez.GattDescriptor1.
type Descriptor struct {
	path           dbus.ObjectPath
	uuid           UUID
	flags          []string
	characteristic dbus.ObjectPath
	value          valueHandler
	props          propertyTable
	log            logrus.FieldLogger
}

// newDescriptor creates the descriptor with the given index below chrc. A nil
// value falls back to the default handler that supports neither reads nor
// writes.
func newDescriptor(chrc *Characteristic, index int, uuid UUID, flags []string, value valueHandler) *Descriptor {
	if value == nil {
		value = unsupportedValue{}
	}
	d := &Descriptor{
		path:           chrc.path + dbus.ObjectPath("/desc"+strconv.Itoa(index)),
		uuid:           uuid,
		flags:          flags,
		characteristic: chrc.path,
		value:          value,
	}
	d.log = chrc.log.WithField("path", d.path)
	d.props = propertyTable{GattDescriptorInterface: d.properties}
	return d
}

func newEchoDescriptor(chrc *Characteristic, index int) *Descriptor {
	return newDescriptor(chrc, index, EchoDescriptorUUID,
		[]string{gatt.FlagDescriptorRead, gatt.FlagDescriptorWrite}, echoValue)
}

func newEchoEncryptDescriptor(chrc *Characteristic, index int) *Descriptor {
	return newDescriptor(chrc, index, EchoEncryptDescriptorUUID,
		[]string{gatt.FlagDescriptorEncryptRead, gatt.FlagDescriptorEncryptWrite}, echoValue)
}

func newEchoSecureDescriptor(chrc *Characteristic, index int) *Descriptor {
	return newDescriptor(chrc, index, EchoSecureDescriptorUUID,
		[]string{gatt.FlagDescriptorSecureRead, gatt.FlagDescriptorSecureWrite}, echoValue)
}

// newUserDescriptionDescriptor creates a Characteristic User Description
// descriptor. It accepts writes only when the owning characteristic was
// created with the writable-auxiliaries flag.
func newUserDescriptionDescriptor(chrc *Characteristic, index int) *Descriptor {
	value := &guardedValue{writable: chrc.hasFlag(gatt.FlagCharacteristicWritableAuxiliaries)}
	value.value = []byte(userDescription)
	return newDescriptor(chrc, index, CharacteristicUserDescriptionUUID,
		[]string{gatt.FlagDescriptorRead, gatt.FlagDescriptorWrite}, value)
}

// Path returns the object path of this descriptor.
func (d *Descriptor) Path() dbus.ObjectPath {
	return d.path
}

// UUID returns the UUID of this descriptor.
func (d *Descriptor) UUID() UUID {
	return d.uuid
}

func (d *Descriptor) properties() map[string]dbus.Variant {
	return map[string]dbus.Variant{
		"Characteristic": dbus.MakeVariant(d.characteristic),
		"UUID":           dbus.MakeVariant(d.uuid.bluezString()),
		"Flags":          dbus.MakeVariant(d.flags),
	}
}

// GetAll implements org.freedesktop.DBus.Properties.GetAll.
func (d *Descriptor) GetAll(iface string) (map[string]dbus.Variant, *dbus.Error) {
	return d.props.GetAll(iface)
}

// ReadValue implements org.bluez.GattDescriptor1.ReadValue.
func (d *Descriptor) ReadValue(options map[string]dbus.Variant) ([]byte, *dbus.Error) {
	value, err := d.value.ReadValue(options)
	if err != nil {
		d.log.WithError(err).Debug("ReadValue failed")
		return nil, err
	}
	d.log.WithField("value", value).Debug("ReadValue")
	return value, nil
}

// WriteValue implements org.bluez.GattDescriptor1.WriteValue.
func (d *Descriptor) WriteValue(value []byte, options map[string]dbus.Variant) *dbus.Error {
	if err := d.value.WriteValue(value, options); err != nil {
		d.log.WithError(err).Debug("WriteValue failed")
		return err
	}
	d.log.WithField("value", value).Debug("WriteValue")
	return nil
}

func (d *Descriptor) methodTables() map[string]map[string]interface{} {
	return map[string]map[string]interface{}{
		GattDescriptorInterface: {
			"ReadValue":  d.ReadValue,
			"WriteValue": d.WriteValue,
		},
		PropertiesInterface: d.props.methods(),
	}
}
