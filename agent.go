package echoez

import (
	"context"
	"strconv"

	"github.com/godbus/dbus/v5"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// maxPasskey is the largest passkey BlueZ accepts: six decimal digits.
const maxPasskey = 999999

var errNoPrompter = errors.New("echoez: no prompter configured")

// Agent is a pairing agent exported as org.bluez.Agent1. BlueZ calls into it
// while a remote device pairs, to get authorisation and credentials from the
// local user.
type Agent struct {
	path     dbus.ObjectPath
	bus      Bus
	prompter Prompter
	loop     *MainLoop
	log      logrus.FieldLogger
}

// NewAgent creates the agent for the application called name. The name must
// consist of ASCII letters only; ErrInvalidName is returned otherwise. When loop is
// not nil, a Release from BlueZ stops it.
func NewAgent(name string, rt *Runtime, loop *MainLoop) (*Agent, error) {
	if !isAlpha(name) {
		return nil, errors.Wrapf(ErrInvalidName, "%q is invalid", name)
	}
	a := &Agent{
		path:     dbus.ObjectPath(agentPathBase + "/" + name + "/agent"),
		bus:      rt.Bus,
		prompter: rt.Prompter,
		loop:     loop,
	}
	if !a.path.IsValid() {
		return nil, errors.Wrapf(ErrInvalidName, "%s is not a valid object path", a.path)
	}
	a.log = rt.Log.WithField("path", a.path)
	return a, nil
}

// Path returns the object path of this agent.
func (a *Agent) Path() dbus.ObjectPath {
	return a.path
}

func (a *Agent) ask(prompt string) (string, error) {
	if a.prompter == nil {
		return "", errNoPrompter
	}
	return a.prompter.Ask(prompt)
}

func (a *Agent) askSecret(prompt string) (string, error) {
	if a.prompter == nil {
		return "", errNoPrompter
	}
	return a.prompter.AskSecret(prompt)
}

// confirm asks a yes/no question. Only "yes" counts as yes.
func (a *Agent) confirm(prompt string) (bool, *dbus.Error) {
	answer, err := a.ask(prompt)
	if err != nil {
		a.log.WithError(err).Error("could not read answer")
		return false, failed(err)
	}
	return answer == "yes", nil
}

// setTrusted marks device as trusted so later connections skip the agent.
// Failure is logged and otherwise ignored: pairing can go on without it.
func (a *Agent) setTrusted(device dbus.ObjectPath) {
	err := a.bus.Call(context.Background(), device, setPropertyMethod,
		DeviceInterface, "Trusted", dbus.MakeVariant(true)).Err
	if err != nil {
		a.log.WithError(err).WithField("device", deviceName(device)).Warn("could not trust device")
	}
}

func (a *Agent) deviceLog(device dbus.ObjectPath) logrus.FieldLogger {
	return a.log.WithField("device", deviceName(device))
}

// Release implements org.bluez.Agent1.Release.
func (a *Agent) Release() *dbus.Error {
	a.log.Info("Release")
	if a.loop != nil {
		a.log.Info("quitting main loop")
		a.loop.Quit()
	}
	return nil
}

// AuthorizeService implements org.bluez.Agent1.AuthorizeService.
func (a *Agent) AuthorizeService(device dbus.ObjectPath, uuid string) *dbus.Error {
	a.deviceLog(device).WithField("uuid", uuid).Info("AuthorizeService")
	ok, err := a.confirm("Authorize connection (yes/no): ")
	if err != nil {
		return err
	}
	if !ok {
		return rejected("Connection rejected by user")
	}
	return nil
}

// RequestPinCode implements org.bluez.Agent1.RequestPinCode.
func (a *Agent) RequestPinCode(device dbus.ObjectPath) (string, *dbus.Error) {
	a.deviceLog(device).Info("RequestPinCode")
	a.setTrusted(device)
	pin, err := a.askSecret("Enter PIN Code: ")
	if err != nil {
		a.log.WithError(err).Error("could not read PIN code")
		return "", failed(err)
	}
	return pin, nil
}

// RequestPasskey implements org.bluez.Agent1.RequestPasskey.
func (a *Agent) RequestPasskey(device dbus.ObjectPath) (uint32, *dbus.Error) {
	a.deviceLog(device).Info("RequestPasskey")
	a.setTrusted(device)
	answer, err := a.askSecret("Enter passkey: ")
	if err != nil {
		a.log.WithError(err).Error("could not read passkey")
		return 0, failed(err)
	}
	passkey, err := strconv.ParseUint(answer, 10, 32)
	if err != nil || passkey > maxPasskey {
		return 0, rejected("Invalid passkey")
	}
	return uint32(passkey), nil
}

// DisplayPasskey implements org.bluez.Agent1.DisplayPasskey.
func (a *Agent) DisplayPasskey(device dbus.ObjectPath, passkey uint32, entered uint16) *dbus.Error {
	a.deviceLog(device).Infof("DisplayPasskey (%06d entered %d)", passkey, entered)
	return nil
}

// DisplayPinCode implements org.bluez.Agent1.DisplayPinCode.
func (a *Agent) DisplayPinCode(device dbus.ObjectPath, pincode string) *dbus.Error {
	a.deviceLog(device).Infof("DisplayPinCode (%s)", pincode)
	return nil
}

// RequestConfirmation implements org.bluez.Agent1.RequestConfirmation. The
// device is trusted once the user confirms.
func (a *Agent) RequestConfirmation(device dbus.ObjectPath, passkey uint32) *dbus.Error {
	a.deviceLog(device).Infof("RequestConfirmation (%06d)", passkey)
	ok, err := a.confirm("Confirm passkey (yes/no): ")
	if err != nil {
		return err
	}
	if !ok {
		return rejected("Passkey doesn't match")
	}
	a.setTrusted(device)
	return nil
}

// RequestAuthorization implements org.bluez.Agent1.RequestAuthorization.
func (a *Agent) RequestAuthorization(device dbus.ObjectPath) *dbus.Error {
	a.deviceLog(device).Info("RequestAuthorization")
	ok, err := a.confirm("Authorize? (yes/no): ")
	if err != nil {
		return err
	}
	if !ok {
		return rejected("Pairing rejected")
	}
	return nil
}

// Cancel implements org.bluez.Agent1.Cancel.
func (a *Agent) Cancel() *dbus.Error {
	a.log.Info("Cancel")
	return nil
}

func (a *Agent) methodTables() map[string]map[string]interface{} {
	return map[string]map[string]interface{}{
		AgentInterface: {
			"Release":              a.Release,
			"AuthorizeService":     a.AuthorizeService,
			"RequestPinCode":       a.RequestPinCode,
			"RequestPasskey":       a.RequestPasskey,
			"DisplayPasskey":       a.DisplayPasskey,
			"DisplayPinCode":       a.DisplayPinCode,
			"RequestConfirmation":  a.RequestConfirmation,
			"RequestAuthorization": a.RequestAuthorization,
			"Cancel":               a.Cancel,
		},
	}
}
