package echoez

import (
	"sync"

	"github.com/godbus/dbus/v5"
)

// valueHandler is the ReadValue/WriteValue behaviour behind a characteristic
// or descriptor. godbus dispatches every incoming call on its own goroutine,
// so implementations holding state must lock it.
type valueHandler interface {
	ReadValue(options map[string]dbus.Variant) ([]byte, *dbus.Error)
	WriteValue(value []byte, options map[string]dbus.Variant) *dbus.Error
}

// unsupportedValue is the default: neither reads nor writes are implemented.
type unsupportedValue struct{}

func (unsupportedValue) ReadValue(map[string]dbus.Variant) ([]byte, *dbus.Error) {
	return nil, ErrNotSupported
}

func (unsupportedValue) WriteValue([]byte, map[string]dbus.Variant) *dbus.Error {
	return ErrNotSupported
}

// staticValue always reads back the same bytes and refuses writes.
type staticValue []byte

func (v staticValue) ReadValue(map[string]dbus.Variant) ([]byte, *dbus.Error) {
	return append([]byte{}, v...), nil
}

func (staticValue) WriteValue([]byte, map[string]dbus.Variant) *dbus.Error {
	return ErrNotSupported
}

// bufferValue stores whatever was last written.
type bufferValue struct {
	mu    sync.Mutex
	value []byte
}

func (b *bufferValue) ReadValue(map[string]dbus.Variant) ([]byte, *dbus.Error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte{}, b.value...), nil
}

func (b *bufferValue) WriteValue(value []byte, _ map[string]dbus.Variant) *dbus.Error {
	b.mu.Lock()
	b.value = append([]byte{}, value...)
	b.mu.Unlock()
	return nil
}

// guardedValue is a bufferValue that only accepts writes when writable is
// set. The flag is fixed at construction.
type guardedValue struct {
	bufferValue
	writable bool
}

func (g *guardedValue) WriteValue(value []byte, options map[string]dbus.Variant) *dbus.Error {
	if !g.writable {
		return ErrNotPermitted
	}
	return g.bufferValue.WriteValue(value, options)
}
