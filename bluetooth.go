// Package echoez implements a Bluetooth Low Energy GATT "echo" peripheral on
// top of the BlueZ D-Bus API.
//
// The package builds the object tree BlueZ expects (an application root
// holding a service, its characteristics and their descriptors), exports it on
// the system bus together with an advertisement and a pairing agent, and
// answers the property and value callbacks BlueZ makes while a central talks
// to the adapter. Everything else (advertising, pairing, encryption) is done
// by BlueZ itself.
package echoez // import "github.com/mdegans/echoez"
