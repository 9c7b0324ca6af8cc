package echoez

import (
	"context"

	"github.com/godbus/dbus/v5"
	"github.com/pkg/errors"
)

// Exit statuses returned by Start.
const (
	StatusOK              = 0
	StatusAdapterNotFound = -1
	StatusCleanupFailed   = 1
	StatusInvalidConfig   = 2
	StatusExportFailed    = 3
)

// Start runs the echo peripheral until ctx is done, a registration fails or
// BlueZ releases the agent. It returns StatusAdapterNotFound, without
// registering anything, when no adapter offers a GATT manager, and
// StatusInvalidConfig when rt.Config does not validate. StatusExportFailed is
// returned, after cleanup, when the object tree could not be exported.
func Start(ctx context.Context, rt *Runtime) int {
	log := rt.Log
	cfg := rt.Config
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Error("invalid configuration")
		return StatusInvalidConfig
	}
	loop := NewMainLoop(ctx)
	defer loop.Quit()

	app, err := NewApplication(cfg.Name, log)
	if err != nil {
		log.WithError(err).Error("could not create application")
		return StatusInvalidConfig
	}
	adv := NewAdvertisement(0, cfg.Name, app.Services(), log)
	agent, err := NewAgent(cfg.Name, rt, loop)
	if err != nil {
		log.WithError(err).Error("could not create agent")
		return StatusInvalidConfig
	}

	adapter, err := FindAdapter(ctx, rt.Bus, cfg.Adapter)
	if err != nil {
		log.WithError(err).Errorf("Could not find %s", GattManagerInterface)
		return StatusAdapterNotFound
	}
	log = log.WithField("adapter", adapter.ID())

	if err := adapter.SetPowered(ctx, true); err != nil {
		log.WithError(err).Error("could not power adapter on")
	}

	status := StatusOK
	if err := exportAll(rt.Bus, app, adv, agent); err != nil {
		log.WithError(err).Error("could not export objects")
		status = StatusExportFailed
		loop.Quit()
	} else {
		log.Info("Registering GATT application...")
		register(rt, loop, "application", adapter.path, registerApplicationMethod,
			app.Path(), map[string]dbus.Variant{})

		log.Info("Registering GATT advertisement...")
		register(rt, loop, "advertisement", adapter.path, registerAdvertisementMethod,
			adv.Path(), map[string]dbus.Variant{})

		if err := registerAgent(ctx, rt.Bus, agent, cfg.AgentCapability); err != nil {
			log.WithError(err).Error("could not register agent")
			loop.Quit()
		}
	}

	loop.Run()
	log.Info("quitting")

	// The loop's context is gone by now; cleanup calls use their own.
	cleanup := context.Background()
	err = rt.Bus.Call(cleanup, adapter.path, unregisterAdvertisementMethod, adv.Path()).Err
	switch {
	case err == nil:
		log.Info("Advertisement unregistered")
	case cfg.StrictCleanup:
		log.WithError(err).Error("could not unregister advertisement")
		if status == StatusOK {
			status = StatusCleanupFailed
		}
	default:
		log.WithError(err).Debug("could not unregister advertisement")
	}

	if err := adapter.SetPowered(cleanup, false); err != nil {
		log.WithError(err).Warn("could not power adapter off")
	}
	return status
}

// exportAll puts the whole object tree, the advertisement and the agent on
// the bus.
func exportAll(bus Bus, app *Application, adv *Advertisement, agent *Agent) error {
	objects := []exportable{app}
	for _, s := range app.services {
		objects = append(objects, s)
		for _, c := range s.characteristics {
			c.setEmitter(bus)
			objects = append(objects, c)
			for _, d := range c.descriptors {
				objects = append(objects, d)
			}
		}
	}
	objects = append(objects, adv, agent)
	for _, obj := range objects {
		if err := export(bus, obj); err != nil {
			return err
		}
	}
	return errors.Wrapf(bus.ExportProperties(adv.path, adv.propMap()),
		"could not export properties at %s", adv.path)
}

// register calls a BlueZ registration method without blocking. The reply is
// logged when it arrives; a failure stops loop.
func register(rt *Runtime, loop *MainLoop, thing string, path dbus.ObjectPath, method string, args ...interface{}) {
	ch := make(chan *dbus.Call, 1)
	rt.Bus.Go(path, method, ch, args...)
	go func() {
		select {
		case call := <-ch:
			if call.Err != nil {
				rt.Log.Errorf("Failed to register %s because: %v", thing, call.Err)
				loop.Quit()
				return
			}
			rt.Log.Infof("GATT %s registered", thing)
		case <-loop.Done():
		}
	}()
}

func registerAgent(ctx context.Context, bus Bus, agent *Agent, capability string) error {
	if err := bus.Call(ctx, BluezPath, registerAgentMethod, agent.Path(), capability).Err; err != nil {
		return errors.Wrap(err, "RegisterAgent")
	}
	if err := bus.Call(ctx, BluezPath, requestDefaultAgentMethod, agent.Path()).Err; err != nil {
		return errors.Wrap(err, "RequestDefaultAgent")
	}
	return nil
}
