package echoez

import (
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/pkg/errors"
)

// MAC represents a MAC address, in little endian format.
type MAC [6]byte

var errInvalidMAC = errors.New("echoez: failed to parse MAC address")

// ParseMAC parses the given MAC address, which must be in 11:22:33:AA:BB:CC
// format. BlueZ object paths spell the same address as 11_22_33_AA_BB_CC,
// which is accepted too. If it cannot be parsed, an error is returned.
func ParseMAC(s string) (mac MAC, err error) {
	macIndex := 11
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ':' || c == '_' {
			continue
		}
		nibble, ok := hexNibble(c)
		if !ok || macIndex < 0 {
			return MAC{}, errInvalidMAC
		}
		if macIndex%2 == 0 {
			mac[macIndex/2] |= nibble
		} else {
			mac[macIndex/2] |= nibble << 4
		}
		macIndex--
	}
	if macIndex != -1 {
		return MAC{}, errInvalidMAC
	}
	return mac, nil
}

// String returns a human-readable version of this MAC address, such as
// 11:22:33:AA:BB:CC.
func (mac MAC) String() string {
	const digits = "0123456789ABCDEF"
	var sb strings.Builder
	sb.Grow(17)
	for i := 5; i >= 0; i-- {
		if i != 5 {
			sb.WriteByte(':')
		}
		sb.WriteByte(digits[mac[i]>>4])
		sb.WriteByte(digits[mac[i]&0x0f])
	}
	return sb.String()
}

// deviceAddress extracts the device address from a BlueZ device object path
// such as /org/bluez/hci0/dev_11_22_33_AA_BB_CC.
func deviceAddress(device dbus.ObjectPath) (MAC, error) {
	p := string(device)
	i := strings.LastIndex(p, "/dev_")
	if i < 0 {
		return MAC{}, errors.Wrapf(errInvalidMAC, "%s is not a device path", p)
	}
	return ParseMAC(p[i+len("/dev_"):])
}

// deviceName is the device address when it can be parsed, or the raw object
// path otherwise. It is used to label log entries.
func deviceName(device dbus.ObjectPath) string {
	if mac, err := deviceAddress(device); err == nil {
		return mac.String()
	}
	return string(device)
}
