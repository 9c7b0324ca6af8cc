package echoez

// Some documentation for the BlueZ D-Bus interface:
// https://git.kernel.org/pub/scm/bluetooth/bluez.git/tree/doc

const (
	BluezServiceName = "org.bluez"
	BluezPath        = "/org/bluez"

	GattManagerInterface        = "org.bluez.GattManager1"
	GattServiceInterface        = "org.bluez.GattService1"
	GattCharacteristicInterface = "org.bluez.GattCharacteristic1"
	GattDescriptorInterface     = "org.bluez.GattDescriptor1"

	ObjectManagerInterface = "org.freedesktop.DBus.ObjectManager"
	PropertiesInterface    = "org.freedesktop.DBus.Properties"
	IntrospectInterface    = "org.freedesktop.DBus.Introspectable"

	AdvertisementInterface        = "org.bluez.LEAdvertisement1"
	AdvertisingManagerInterface   = "org.bluez.LEAdvertisingManager1"
	AgentInterface                = "org.bluez.Agent1"
	AgentManagerInterface         = "org.bluez.AgentManager1"
	AdapterInterface              = "org.bluez.Adapter1"
	DeviceInterface               = "org.bluez.Device1"
	propertiesChangedSignal       = PropertiesInterface + ".PropertiesChanged"
	getManagedObjectsMethod       = ObjectManagerInterface + ".GetManagedObjects"
	setPropertyMethod             = PropertiesInterface + ".Set"
	registerApplicationMethod     = GattManagerInterface + ".RegisterApplication"
	registerAdvertisementMethod   = AdvertisingManagerInterface + ".RegisterAdvertisement"
	unregisterAdvertisementMethod = AdvertisingManagerInterface + ".UnregisterAdvertisement"
	registerAgentMethod           = AgentManagerInterface + ".RegisterAgent"
	requestDefaultAgentMethod     = AgentManagerInterface + ".RequestDefaultAgent"
)

// Object path prefixes. Children derive their path from the parent path and
// their index, so every path in the tree is deterministic.
const (
	servicePathBase       = "/org/bluez/example/service"
	advertisementPathBase = "/org/bluez/example/advertisement"
	agentPathBase         = "/com/mdegans"
)
