package echoez

import (
	"strconv"

	"github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"
)

// echoServiceIndex is the index the echo service is registered under, giving
// it the path /org/bluez/example/service2.
const echoServiceIndex = 2

// Service is a GATT service exported as org.bluez.GattService1. It owns its
// characteristics.
type Service struct {
	path            dbus.ObjectPath
	uuid            UUID
	primary         bool
	characteristics []*Characteristic
	props           propertyTable
	log             logrus.FieldLogger
}

func newService(index int, uuid UUID, primary bool, log logrus.FieldLogger) *Service {
	s := &Service{
		path:    dbus.ObjectPath(servicePathBase + strconv.Itoa(index)),
		uuid:    uuid,
		primary: primary,
	}
	s.log = log.WithField("path", s.path)
	s.props = propertyTable{GattServiceInterface: s.properties}
	return s
}

// NewEchoService creates the primary echo service with its three echo
// characteristics: plain, encrypted and secure.
func NewEchoService(index int, log logrus.FieldLogger) *Service {
	if log == nil {
		log = discardLogger()
	}
	s := newService(index, EchoServiceUUID, true, log)
	s.addCharacteristic(newEchoCharacteristic(s, 0))
	s.addCharacteristic(newEchoEncryptCharacteristic(s, 1))
	s.addCharacteristic(newEchoSecureCharacteristic(s, 2))
	return s
}

func (s *Service) addCharacteristic(c *Characteristic) {
	s.characteristics = append(s.characteristics, c)
}

// Path returns the object path of this service.
func (s *Service) Path() dbus.ObjectPath {
	return s.path
}

// UUID returns the UUID of this service.
func (s *Service) UUID() UUID {
	return s.uuid
}

// Characteristics returns the characteristics of this service, in path order.
func (s *Service) Characteristics() []*Characteristic {
	return s.characteristics
}

func (s *Service) properties() map[string]dbus.Variant {
	paths := make([]dbus.ObjectPath, 0, len(s.characteristics))
	for _, c := range s.characteristics {
		paths = append(paths, c.path)
	}
	return map[string]dbus.Variant{
		"UUID":            dbus.MakeVariant(s.uuid.bluezString()),
		"Primary":         dbus.MakeVariant(s.primary),
		"Characteristics": dbus.MakeVariant(paths),
	}
}

// GetAll implements org.freedesktop.DBus.Properties.GetAll.
func (s *Service) GetAll(iface string) (map[string]dbus.Variant, *dbus.Error) {
	return s.props.GetAll(iface)
}

func (s *Service) methodTables() map[string]map[string]interface{} {
	return map[string]map[string]interface{}{
		GattServiceInterface: {},
		PropertiesInterface:  s.props.methods(),
	}
}
