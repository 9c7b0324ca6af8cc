package echoez

import (
	"context"
	"io"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testDevice = dbus.ObjectPath("/org/bluez/hci0/dev_AA_BB_CC_DD_EE_FF")

type mockPrompter struct {
	mock.Mock
}

func (m *mockPrompter) Ask(prompt string) (string, error) {
	args := m.Called(prompt)
	return args.String(0), args.Error(1)
}

func (m *mockPrompter) AskSecret(prompt string) (string, error) {
	args := m.Called(prompt)
	return args.String(0), args.Error(1)
}

func newTestAgent(t *testing.T, prompter Prompter) (*Agent, *fakeBus) {
	t.Helper()
	bus := newFakeBus(withAdapter())
	rt := NewRuntime(DefaultConfig(), bus, prompter, nil)
	a, err := NewAgent("echoez", rt, nil)
	require.NoError(t, err)
	return a, bus
}

func trusted(bus *fakeBus) []dbus.ObjectPath {
	var paths []dbus.ObjectPath
	for _, c := range bus.callsTo(setPropertyMethod) {
		if c.args[0] == DeviceInterface && c.args[1] == "Trusted" {
			paths = append(paths, c.path)
		}
	}
	return paths
}

func TestNewAgent(t *testing.T) {
	rt := NewRuntime(DefaultConfig(), newFakeBus(nil), nil, nil)
	a, err := NewAgent("echoez", rt, nil)
	require.NoError(t, err)
	assert.Equal(t, dbus.ObjectPath("/com/mdegans/echoez/agent"), a.Path())

	for _, name := range []string{"echo_ez", "héllo", ""} {
		_, err = NewAgent(name, rt, nil)
		assert.Equal(t, ErrInvalidName, errors.Cause(err), name)
	}
}

func TestAgentAuthorizeService(t *testing.T) {
	p := new(mockPrompter)
	a, _ := newTestAgent(t, p)

	p.On("Ask", "Authorize connection (yes/no): ").Return("yes", nil).Once()
	assert.Nil(t, a.AuthorizeService(testDevice, EchoServiceUUID.String()))

	p.On("Ask", "Authorize connection (yes/no): ").Return("y", nil).Once()
	err := a.AuthorizeService(testDevice, EchoServiceUUID.String())
	require.NotNil(t, err)
	assert.Equal(t, ErrRejected.Name, err.Name)
	assert.Equal(t, []interface{}{"Connection rejected by user"}, err.Body)
	p.AssertExpectations(t)
}

func TestAgentRequestAuthorization(t *testing.T) {
	p := new(mockPrompter)
	a, bus := newTestAgent(t, p)

	p.On("Ask", "Authorize? (yes/no): ").Return("no", nil).Once()
	err := a.RequestAuthorization(testDevice)
	require.NotNil(t, err)
	assert.Equal(t, []interface{}{"Pairing rejected"}, err.Body)

	p.On("Ask", "Authorize? (yes/no): ").Return("yes", nil).Once()
	assert.Nil(t, a.RequestAuthorization(testDevice))
	assert.Empty(t, trusted(bus))
	p.AssertExpectations(t)
}

func TestAgentRequestConfirmation(t *testing.T) {
	p := new(mockPrompter)
	a, bus := newTestAgent(t, p)

	p.On("Ask", "Confirm passkey (yes/no): ").Return("no", nil).Once()
	err := a.RequestConfirmation(testDevice, 123456)
	require.NotNil(t, err)
	assert.Equal(t, ErrRejected.Name, err.Name)
	assert.Equal(t, []interface{}{"Passkey doesn't match"}, err.Body)
	assert.Empty(t, trusted(bus))

	p.On("Ask", "Confirm passkey (yes/no): ").Return("yes", nil).Once()
	assert.Nil(t, a.RequestConfirmation(testDevice, 123456))
	assert.Equal(t, []dbus.ObjectPath{testDevice}, trusted(bus))
	p.AssertExpectations(t)
}

func TestAgentRequestPinCode(t *testing.T) {
	p := new(mockPrompter)
	a, bus := newTestAgent(t, p)

	p.On("AskSecret", "Enter PIN Code: ").Return("0000", nil).Once()
	pin, err := a.RequestPinCode(testDevice)
	require.Nil(t, err)
	assert.Equal(t, "0000", pin)
	assert.Equal(t, []dbus.ObjectPath{testDevice}, trusted(bus))
	p.AssertExpectations(t)
}

func TestAgentRequestPasskey(t *testing.T) {
	tests := []struct {
		answer  string
		passkey uint32
		ok      bool
	}{
		{"123456", 123456, true},
		{"0", 0, true},
		{"999999", 999999, true},
		{"1000000", 0, false},
		{"-1", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tc := range tests {
		p := new(mockPrompter)
		a, bus := newTestAgent(t, p)
		p.On("AskSecret", "Enter passkey: ").Return(tc.answer, nil).Once()

		passkey, err := a.RequestPasskey(testDevice)
		if tc.ok {
			require.Nil(t, err, tc.answer)
			assert.Equal(t, tc.passkey, passkey, tc.answer)
		} else {
			require.NotNil(t, err, tc.answer)
			assert.Equal(t, ErrRejected.Name, err.Name)
			assert.Equal(t, []interface{}{"Invalid passkey"}, err.Body)
		}
		// The device is trusted before the passkey is asked for.
		assert.Equal(t, []dbus.ObjectPath{testDevice}, trusted(bus))
		p.AssertExpectations(t)
	}
}

func TestAgentPromptFailure(t *testing.T) {
	p := new(mockPrompter)
	a, _ := newTestAgent(t, p)

	p.On("Ask", mock.Anything).Return("", io.EOF)
	p.On("AskSecret", mock.Anything).Return("", io.EOF)

	err := a.AuthorizeService(testDevice, "")
	require.NotNil(t, err)
	assert.Equal(t, ErrFailed.Name, err.Name)

	_, err = a.RequestPasskey(testDevice)
	require.NotNil(t, err)
	assert.Equal(t, ErrFailed.Name, err.Name)

	_, err = a.RequestPinCode(testDevice)
	require.NotNil(t, err)
	assert.Equal(t, ErrFailed.Name, err.Name)
}

func TestAgentWithoutPrompter(t *testing.T) {
	a, _ := newTestAgent(t, nil)
	err := a.RequestAuthorization(testDevice)
	require.NotNil(t, err)
	assert.Equal(t, ErrFailed.Name, err.Name)
}

func TestAgentTrustFailureIgnored(t *testing.T) {
	p := new(mockPrompter)
	a, bus := newTestAgent(t, p)
	bus.fail(setPropertyMethod, dbus.NewError("org.bluez.Error.Failed", nil))

	p.On("AskSecret", "Enter PIN Code: ").Return("1234", nil).Once()
	pin, err := a.RequestPinCode(testDevice)
	require.Nil(t, err)
	assert.Equal(t, "1234", pin)
}

func TestAgentDisplayAndCancel(t *testing.T) {
	p := new(mockPrompter)
	a, bus := newTestAgent(t, p)
	assert.Nil(t, a.DisplayPasskey(testDevice, 42, 3))
	assert.Nil(t, a.DisplayPinCode(testDevice, "1234"))
	assert.Nil(t, a.Cancel())
	assert.Empty(t, bus.methodNames())
	p.AssertNotCalled(t, "Ask", mock.Anything)
}

func TestAgentRelease(t *testing.T) {
	loop := NewMainLoop(context.Background())
	rt := NewRuntime(DefaultConfig(), newFakeBus(nil), nil, nil)
	a, err := NewAgent("echoez", rt, loop)
	require.NoError(t, err)

	require.Nil(t, a.Release())
	select {
	case <-loop.Done():
	default:
		t.Fatal("Release did not stop the main loop")
	}

	// Without a loop Release is a no-op.
	a, err = NewAgent("echoez", rt, nil)
	require.NoError(t, err)
	assert.Nil(t, a.Release())
}
