package echoez

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/muka/go-bluetooth/bluez/profile/gatt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc := NewEchoService(echoServiceIndex, nil)
	require.Len(t, svc.Characteristics(), 3)
	return svc
}

func TestDescriptorGetAll(t *testing.T) {
	d := newTestService(t).Characteristics()[0].Descriptors()[0]

	props, err := d.GetAll(GattDescriptorInterface)
	require.Nil(t, err)
	assert.Len(t, props, 3)
	assert.Equal(t, dbus.ObjectPath("/org/bluez/example/service2/char0"), props["Characteristic"].Value())
	assert.Equal(t, EchoDescriptorUUID.String(), props["UUID"].Value())
	assert.Equal(t, []string{gatt.FlagDescriptorRead, gatt.FlagDescriptorWrite}, props["Flags"].Value())

	_, err = d.GetAll(GattCharacteristicInterface)
	require.NotNil(t, err)
	assert.Equal(t, ErrInvalidArgs.Name, err.Name)
}

func TestDescriptorGetSet(t *testing.T) {
	d := newTestService(t).Characteristics()[0].Descriptors()[0]

	v, err := d.props.Get(GattDescriptorInterface, "UUID")
	require.Nil(t, err)
	assert.Equal(t, EchoDescriptorUUID.String(), v.Value())

	_, err = d.props.Get(GattDescriptorInterface, "Value")
	require.NotNil(t, err)

	err = d.props.Set(GattDescriptorInterface, "UUID", dbus.MakeVariant("nope"))
	require.NotNil(t, err)
	err = d.props.Set(GattServiceInterface, "UUID", dbus.MakeVariant("nope"))
	require.NotNil(t, err)
	assert.Equal(t, ErrInvalidArgs.Name, err.Name)
}

func TestEchoDescriptors(t *testing.T) {
	chars := newTestService(t).Characteristics()
	tests := []struct {
		chrc  *Characteristic
		uuid  UUID
		flags []string
		path  dbus.ObjectPath
	}{
		{chars[0], EchoDescriptorUUID, []string{gatt.FlagDescriptorRead, gatt.FlagDescriptorWrite},
			"/org/bluez/example/service2/char0/desc0"},
		{chars[1], EchoEncryptDescriptorUUID, []string{gatt.FlagDescriptorEncryptRead, gatt.FlagDescriptorEncryptWrite},
			"/org/bluez/example/service2/char1/desc2"},
		{chars[2], EchoSecureDescriptorUUID, []string{gatt.FlagDescriptorSecureRead, gatt.FlagDescriptorSecureWrite},
			"/org/bluez/example/service2/char2/desc2"},
	}
	for _, tc := range tests {
		d := tc.chrc.Descriptors()[0]
		assert.Equal(t, tc.path, d.Path())
		assert.Equal(t, tc.uuid, d.UUID())
		assert.Equal(t, tc.flags, d.flags)

		value, err := d.ReadValue(nil)
		require.Nil(t, err)
		assert.Equal(t, []byte("Echo"), value)

		err = d.WriteValue([]byte("changed"), nil)
		require.NotNil(t, err)
		assert.Equal(t, ErrNotSupported.Name, err.Name)

		value, err = d.ReadValue(nil)
		require.Nil(t, err)
		assert.Equal(t, []byte("Echo"), value, "%s must stay constant", d.Path())
	}
}

func TestEchoDescriptorReadIsACopy(t *testing.T) {
	d := newTestService(t).Characteristics()[0].Descriptors()[0]
	value, err := d.ReadValue(nil)
	require.Nil(t, err)
	value[0] = 'X'

	value, err = d.ReadValue(nil)
	require.Nil(t, err)
	assert.Equal(t, []byte("Echo"), value)
}

func TestUserDescriptionDescriptor(t *testing.T) {
	chars := newTestService(t).Characteristics()

	// Only the plain echo characteristic has writable auxiliaries.
	d := chars[0].Descriptors()[1]
	assert.Equal(t, CharacteristicUserDescriptionUUID, d.UUID())
	props, perr := d.GetAll(GattDescriptorInterface)
	require.Nil(t, perr)
	assert.Equal(t, "2901", props["UUID"].Value())
	value, err := d.ReadValue(nil)
	require.Nil(t, err)
	assert.Equal(t, []byte(userDescription), value)

	require.Nil(t, d.WriteValue([]byte("renamed"), nil))
	value, err = d.ReadValue(nil)
	require.Nil(t, err)
	assert.Equal(t, []byte("renamed"), value)

	for _, c := range chars[1:] {
		d := c.Descriptors()[1]
		assert.Equal(t, c.Path()+"/desc3", d.Path())
		err := d.WriteValue([]byte("renamed"), nil)
		require.NotNil(t, err)
		assert.Equal(t, ErrNotPermitted.Name, err.Name)

		value, rerr := d.ReadValue(nil)
		require.Nil(t, rerr)
		assert.Equal(t, []byte(userDescription), value)
	}
}
