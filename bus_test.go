package echoez

import (
	"context"
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"
	"github.com/pkg/errors"
)

type fakeCall struct {
	path   dbus.ObjectPath
	method string
	args   []interface{}
}

type fakeSignal struct {
	path   dbus.ObjectPath
	name   string
	values []interface{}
}

// fakeBus records everything the peripheral does on the bus. BlueZ is
// simulated by objects, the reply to GetManagedObjects, and errs, the error
// returned for a given method.
type fakeBus struct {
	mu      sync.Mutex
	objects ManagedObjects
	errs    map[string]*dbus.Error
	calls   []fakeCall
	methods map[dbus.ObjectPath]map[string]map[string]interface{}
	props   map[dbus.ObjectPath]prop.Map
	nodes   map[dbus.ObjectPath]*introspect.Node
	signals []fakeSignal
	closed  bool

	// exportErr, when set, is returned by every export.
	exportErr error
}

func newFakeBus(objects ManagedObjects) *fakeBus {
	if objects == nil {
		objects = ManagedObjects{}
	}
	return &fakeBus{
		objects: objects,
		errs:    make(map[string]*dbus.Error),
		methods: make(map[dbus.ObjectPath]map[string]map[string]interface{}),
		props:   make(map[dbus.ObjectPath]prop.Map),
		nodes:   make(map[dbus.ObjectPath]*introspect.Node),
	}
}

// withAdapter returns BlueZ objects holding one adapter with a GATT manager.
func withAdapter() ManagedObjects {
	return ManagedObjects{
		"/org/bluez": {
			AgentManagerInterface: {},
		},
		"/org/bluez/hci0": {
			AdapterInterface:            {"Powered": dbus.MakeVariant(false)},
			GattManagerInterface:        {},
			AdvertisingManagerInterface: {},
		},
	}
}

func (b *fakeBus) fail(method string, err *dbus.Error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.errs[method] = err
}

func (b *fakeBus) Emit(path dbus.ObjectPath, name string, values ...interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.signals = append(b.signals, fakeSignal{path: path, name: name, values: values})
	return nil
}

// checkExport fails like godbus does for a malformed path. b.mu must be held.
func (b *fakeBus) checkExport(path dbus.ObjectPath) error {
	if b.exportErr != nil {
		return b.exportErr
	}
	if !path.IsValid() {
		return errors.Errorf("invalid object path %q", path)
	}
	return nil
}

func (b *fakeBus) ExportMethods(path dbus.ObjectPath, iface string, methods map[string]interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkExport(path); err != nil {
		return err
	}
	if b.methods[path] == nil {
		b.methods[path] = make(map[string]map[string]interface{})
	}
	b.methods[path][iface] = methods
	return nil
}

func (b *fakeBus) ExportProperties(path dbus.ObjectPath, props prop.Map) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkExport(path); err != nil {
		return err
	}
	b.props[path] = props
	return nil
}

func (b *fakeBus) ExportIntrospection(node *introspect.Node) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkExport(dbus.ObjectPath(node.Name)); err != nil {
		return err
	}
	b.nodes[dbus.ObjectPath(node.Name)] = node
	return nil
}

func (b *fakeBus) reply(path dbus.ObjectPath, method string, args []interface{}) *dbus.Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, fakeCall{path: path, method: method, args: args})
	call := &dbus.Call{Path: path, Method: method, Args: args}
	if err := b.errs[method]; err != nil {
		call.Err = err
		return call
	}
	if method == getManagedObjectsMethod {
		call.Body = []interface{}{b.objects}
	}
	return call
}

func (b *fakeBus) Call(ctx context.Context, path dbus.ObjectPath, method string, args ...interface{}) *dbus.Call {
	return b.reply(path, method, args)
}

func (b *fakeBus) Go(path dbus.ObjectPath, method string, ch chan *dbus.Call, args ...interface{}) *dbus.Call {
	call := b.reply(path, method, args)
	call.Done = ch
	ch <- call
	return call
}

func (b *fakeBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// methodNames lists the methods called on BlueZ, in order.
func (b *fakeBus) methodNames() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, 0, len(b.calls))
	for _, c := range b.calls {
		names = append(names, c.method)
	}
	return names
}

func (b *fakeBus) called(method string) bool {
	for _, name := range b.methodNames() {
		if name == method {
			return true
		}
	}
	return false
}

func (b *fakeBus) callsTo(method string) []fakeCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	var calls []fakeCall
	for _, c := range b.calls {
		if c.method == method {
			calls = append(calls, c)
		}
	}
	return calls
}

func (b *fakeBus) method(path dbus.ObjectPath, iface, name string) interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.methods[path][iface][name]
}

func (b *fakeBus) emitted() []fakeSignal {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]fakeSignal(nil), b.signals...)
}
