package types

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// AddressLength is the size of an account address in bytes.
const AddressLength = 32

// Address is an on-chain account address.
type Address [AddressLength]byte

// Well-known addresses.
var (
	ZeroAddress      = Address{}
	FrameworkAddress = MustParseAddress("0x1")
)

// BytesToAddress returns the address with the given bytes right-aligned.  Longer
// inputs are truncated from the left.
func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

// ParseAddress parses a hex address, with or without the 0x prefix.  Short forms
// such as "0x1" are left-padded with zeros.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimPrefix(s, "0x")
	if len(s) == 0 || len(s) > 2*AddressLength {
		return Address{}, fmt.Errorf("invalid address length: %d", len(s))
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return BytesToAddress(b), nil
}

// MustParseAddress is ParseAddress which panics on error.  Only use with
// constants.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Address) Bytes() []byte {
	return a[:]
}

// Hex returns the full, zero-padded hex form of the address.
func (a Address) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

// String returns the short hex form of the address, e.g. 0x1.
func (a Address) String() string {
	s := strings.TrimLeft(hex.EncodeToString(a[:]), "0")
	if s == "" {
		s = "0"
	}
	return "0x" + s
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
