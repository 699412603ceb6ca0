package codec

import (
	"strings"
	"testing"

	"stacks-wallet-core/internal/domain"
)

var testHash160 = [20]byte{
	0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a,
	0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10, 0x11, 0x12, 0x13, 0x14,
}

func TestAddressRoundTrip(t *testing.T) {
	for _, version := range []byte{AddressVersionMainnet, AddressVersionTestnet} {
		encoded := EncodeAddress(version, testHash160)
		if !strings.HasPrefix(encoded, "S") {
			t.Fatalf("address %q does not start with S", encoded)
		}

		decoded, err := DecodeAddress(encoded)
		if err != nil {
			t.Fatalf("decode %q: %v", encoded, err)
		}
		if decoded.Version != version {
			t.Errorf("version: expected %d, got %d", version, decoded.Version)
		}
		if decoded.Hash160 != testHash160 {
			t.Errorf("hash160 mangled in round trip of %q", encoded)
		}
	}
}

func TestAddressRoundTrip_LeadingZeroHash(t *testing.T) {
	var hash [20]byte // all zeros: worst case for base conversion
	encoded := EncodeAddress(AddressVersionMainnet, hash)
	decoded, err := DecodeAddress(encoded)
	if err != nil {
		t.Fatalf("decode %q: %v", encoded, err)
	}
	if decoded.Hash160 != hash {
		t.Errorf("zero hash mangled in round trip of %q", encoded)
	}
}

func TestValidateStacksAddress(t *testing.T) {
	valid := EncodeAddress(AddressVersionMainnet, testHash160)
	if !ValidateStacksAddress(valid) {
		t.Errorf("expected %q to validate", valid)
	}

	// Flip one character: checksum must catch it. Pick a replacement that
	// stays inside the alphabet so only the checksum rejects it.
	corrupted := []byte(valid)
	last := corrupted[len(corrupted)-1]
	if last == '7' {
		corrupted[len(corrupted)-1] = '8'
	} else {
		corrupted[len(corrupted)-1] = '7'
	}
	if ValidateStacksAddress(string(corrupted)) {
		t.Errorf("expected corrupted address %q to fail validation", corrupted)
	}

	for _, bad := range []string{"", "S", "X" + valid[1:], "not-an-address", valid + "I"} {
		if ValidateStacksAddress(bad) {
			t.Errorf("expected %q to fail validation", bad)
		}
	}
}

func TestAddressVersionFor(t *testing.T) {
	if AddressVersionFor(domain.TransactionVersionMainnet) != AddressVersionMainnet {
		t.Error("mainnet tx version must map to mainnet address version")
	}
	if AddressVersionFor(domain.TransactionVersionTestnet) != AddressVersionTestnet {
		t.Error("testnet tx version must map to testnet address version")
	}
}
