package echoez

// This file implements 16-bit and 128-bit UUIDs as defined in the Bluetooth
// specification.

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// UUID is a single UUID as used in the Bluetooth stack. It is represented as a
// [4]uint32 with the most significant word last, so that the 16-bit short form
// lives in the low half of uuid[3].
type UUID [4]uint32

var errInvalidUUID = errors.New("echoez: failed to parse UUID")

// Fixed UUIDs of the echo service tree.
var (
	EchoServiceUUID                   = mustParseUUID("8e89af16-c001-11eb-aa4c-c3c6adc0b74b")
	EchoCharacteristicUUID            = mustParseUUID("12345678-1234-5678-1234-56789abcdef1")
	EchoDescriptorUUID                = mustParseUUID("12345678-1234-5678-1234-56789abcdef2")
	EchoEncryptCharacteristicUUID     = mustParseUUID("12345678-1234-5678-1234-56789abcdef3")
	EchoEncryptDescriptorUUID         = mustParseUUID("12345678-1234-5678-1234-56789abcdef4")
	EchoSecureCharacteristicUUID      = mustParseUUID("12345678-1234-5678-1234-56789abcdef5")
	EchoSecureDescriptorUUID          = mustParseUUID("12345678-1234-5678-1234-56789abcdef6")
	CharacteristicUserDescriptionUUID = New16BitUUID(0x2901)
)

// New16BitUUID returns a new 128-bit UUID based on a 16-bit UUID.
//
// Note: only use registered UUIDs. See
// https://www.bluetooth.com/specifications/gatt/services/ for a list.
func New16BitUUID(shortUUID uint16) UUID {
	// https://stackoverflow.com/questions/36212020/how-can-i-convert-a-bluetooth-16-bit-service-uuid-into-a-128-bit-uuid
	var u UUID
	u[0] = 0x5F9B34FB
	u[1] = 0x80000080
	u[2] = 0x00001000
	u[3] = uint32(shortUUID)
	return u
}

// ParseUUID parses a UUID in the canonical 36-character form, in either case,
// or a 16-bit short UUID written as four hex digits (for example "2901").
func ParseUUID(s string) (UUID, error) {
	if len(s) == 4 {
		var short [2]byte
		for i := 0; i < 4; i++ {
			n, ok := hexNibble(s[i])
			if !ok {
				return UUID{}, errInvalidUUID
			}
			short[i/2] |= n << (4 * uint(1-i%2))
		}
		return New16BitUUID(binary.BigEndian.Uint16(short[:])), nil
	}
	if len(s) != 36 {
		return UUID{}, errInvalidUUID
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return UUID{}, errInvalidUUID
	}
	var u UUID
	for i := 0; i < 4; i++ {
		u[3-i] = binary.BigEndian.Uint32(parsed[i*4:])
	}
	return u, nil
}

func mustParseUUID(s string) UUID {
	u, err := ParseUUID(s)
	if err != nil {
		panic("echoez: invalid UUID " + s)
	}
	return u
}

func hexNibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 0xA, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 0xA, true
	}
	return 0, false
}

// Is16Bit returns whether this UUID is a 16-bit BLE UUID.
func (u UUID) Is16Bit() bool {
	return u.Is32Bit() && u[3] == uint32(uint16(u[3]))
}

// Is32Bit returns whether this UUID is a 32-bit BLE UUID.
func (u UUID) Is32Bit() bool {
	return u[0] == 0x5F9B34FB && u[1] == 0x80000080 && u[2] == 0x00001000
}

// Get16Bit returns the 16-bit short form of this UUID. It is only meaningful
// when Is16Bit returns true.
func (u UUID) Get16Bit() uint16 {
	return uint16(u[3])
}

// Bytes returns the UUID in big endian (network) order.
func (u UUID) Bytes() [16]byte {
	var b [16]byte
	for i := 0; i < 4; i++ {
		binary.BigEndian.PutUint32(b[i*4:], u[3-i])
	}
	return b
}

// String returns the human-readable version of this UUID, for example
// 00002901-0000-1000-8000-00805f9b34fb.
func (u UUID) String() string {
	return uuid.UUID(u.Bytes()).String()
}

// bluezString is the form used in exported properties: four hex digits for a
// 16-bit UUID such as 2901, the full form otherwise.
func (u UUID) bluezString() string {
	if u.Is16Bit() {
		return fmt.Sprintf("%04x", u.Get16Bit())
	}
	return u.String()
}
