// Package codec implements the transaction wire encoding: c32check
// principals, transaction payloads and the unsigned transaction envelope
// handed to the signer.
package codec

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// Crockford base32 alphabet used by c32check. No I, L, O or U.
const c32Alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

var c32Lookup = func() map[byte]int {
	m := make(map[byte]int, len(c32Alphabet))
	for i := 0; i < len(c32Alphabet); i++ {
		m[c32Alphabet[i]] = i
	}
	return m
}()

var errInvalidC32 = errors.New("invalid c32 string")

// c32Encode encodes data as Crockford base32. Leading zero bytes are
// preserved as leading '0' characters, mirroring the reference encoding.
func c32Encode(data []byte) string {
	zeros := 0
	for zeros < len(data) && data[zeros] == 0 {
		zeros++
	}

	num := new(big.Int).SetBytes(data)
	base := big.NewInt(32)
	mod := new(big.Int)

	var digits []byte
	for num.Sign() > 0 {
		num.DivMod(num, base, mod)
		digits = append(digits, c32Alphabet[mod.Int64()])
	}
	for i := 0; i < zeros; i++ {
		digits = append(digits, '0')
	}

	// digits were produced least significant first
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	return string(digits)
}

// c32Decode decodes a Crockford base32 string into size bytes. The fixed
// output size restores leading zero bytes dropped by integer conversion.
func c32Decode(encoded string, size int) ([]byte, error) {
	encoded = strings.ToUpper(encoded)
	num := big.NewInt(0)
	base := big.NewInt(32)
	for i := 0; i < len(encoded); i++ {
		v, ok := c32Lookup[encoded[i]]
		if !ok {
			return nil, fmt.Errorf("%w: character %q", errInvalidC32, encoded[i])
		}
		num.Mul(num, base)
		num.Add(num, big.NewInt(int64(v)))
	}

	raw := num.Bytes()
	if len(raw) > size {
		return nil, fmt.Errorf("%w: value overflows %d bytes", errInvalidC32, size)
	}
	out := make([]byte, size)
	copy(out[size-len(raw):], raw)
	return out, nil
}

// c32Checksum is the first four bytes of a double sha256 over the version
// byte followed by the payload.
func c32Checksum(version byte, payload []byte) []byte {
	buf := make([]byte, 0, len(payload)+1)
	buf = append(buf, version)
	buf = append(buf, payload...)
	first := sha256.Sum256(buf)
	second := sha256.Sum256(first[:])
	return second[:4]
}
