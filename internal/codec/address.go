package codec

import (
	"bytes"
	"errors"
	"fmt"

	"stacks-wallet-core/internal/domain"
)

// Address version bytes for single-signature accounts.
const (
	AddressVersionMainnet byte = 22 // 'P' prefix
	AddressVersionTestnet byte = 26 // 'T' prefix
)

// ErrInvalidAddress reports a principal that fails c32check decoding.
var ErrInvalidAddress = errors.New("invalid stacks address")

// Address is a decoded Stacks principal.
type Address struct {
	Version byte
	Hash160 [20]byte
}

// EncodeAddress renders a version byte and hash160 as a c32check principal.
func EncodeAddress(version byte, hash160 [20]byte) string {
	checksum := c32Checksum(version, hash160[:])
	payload := make([]byte, 0, 24)
	payload = append(payload, hash160[:]...)
	payload = append(payload, checksum...)
	return "S" + string(c32Alphabet[version]) + c32Encode(payload)
}

// DecodeAddress parses and checksum-verifies a c32check principal.
func DecodeAddress(addr string) (Address, error) {
	if len(addr) < 7 || addr[0] != 'S' {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	version, ok := c32Lookup[addr[1]]
	if !ok {
		return Address{}, fmt.Errorf("%w: bad version character in %q", ErrInvalidAddress, addr)
	}

	payload, err := c32Decode(addr[2:], 24)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}

	var hash160 [20]byte
	copy(hash160[:], payload[:20])
	if !bytes.Equal(payload[20:], c32Checksum(byte(version), payload[:20])) {
		return Address{}, fmt.Errorf("%w: checksum mismatch in %q", ErrInvalidAddress, addr)
	}

	return Address{Version: byte(version), Hash160: hash160}, nil
}

// ValidateStacksAddress reports whether addr is a well-formed c32check
// principal. Syntactic validity only; it says nothing about the account
// existing on chain.
func ValidateStacksAddress(addr string) bool {
	_, err := DecodeAddress(addr)
	return err == nil
}

// AddressVersionFor returns the single-sig address version byte for a
// transaction version.
func AddressVersionFor(version domain.TransactionVersion) byte {
	if version == domain.TransactionVersionMainnet {
		return AddressVersionMainnet
	}
	return AddressVersionTestnet
}
