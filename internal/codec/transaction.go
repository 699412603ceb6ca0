package codec

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/ripemd160"

	"stacks-wallet-core/internal/domain"
)

// AuthType identifies who pays the transaction fee.
type AuthType byte

const (
	AuthTypeStandard  AuthType = 0x04
	AuthTypeSponsored AuthType = 0x05
)

// Spending condition constants for single-sig accounts.
const (
	hashModeP2PKH         byte = 0x00
	anchorModeAny         byte = 0x03
	postConditionModeDeny byte = 0x02

	// Placeholder sizes for the not-yet-signed fields.
	keyEncodingCompressed byte = 0x00
	signatureLength            = 65
)

// Transaction is an unsigned transaction: everything but the signature.
type Transaction struct {
	Version        domain.TransactionVersion
	ChainID        domain.ChainID
	Auth           AuthType
	SignerHash160  [20]byte
	Nonce          uint64
	FeeMicroSTX    uint64
	PostConditions [][]byte
	Payload        Payload
}

// BuildUnsignedTransaction assembles a transaction from the resolved draft
// inputs. publicKeyHex must be a 33-byte compressed secp256k1 public key.
func BuildUnsignedTransaction(payload Payload, fee, nonce uint64, publicKeyHex string, network domain.Network) (*Transaction, error) {
	signer, err := publicKeyHash160(publicKeyHex)
	if err != nil {
		return nil, err
	}
	return &Transaction{
		Version:       network.Version,
		ChainID:       network.ChainID,
		Auth:          AuthTypeStandard,
		SignerHash160: signer,
		Nonce:         nonce,
		FeeMicroSTX:   fee,
		Payload:       payload,
	}, nil
}

// Serialize renders the wire form of the transaction. The signature slot is
// zero-filled; signing overwrites it without changing the length, so the
// serialized size here equals the broadcast size and is valid input for fee
// estimation.
func (t *Transaction) Serialize() ([]byte, error) {
	if t.Payload == nil {
		return nil, fmt.Errorf("transaction has no payload")
	}

	var buf bytes.Buffer
	buf.WriteByte(byte(t.Version))

	var chainID [4]byte
	binary.BigEndian.PutUint32(chainID[:], uint32(t.ChainID))
	buf.Write(chainID[:])

	buf.WriteByte(byte(t.Auth))
	buf.WriteByte(hashModeP2PKH)
	buf.Write(t.SignerHash160[:])

	var nonce [8]byte
	binary.BigEndian.PutUint64(nonce[:], t.Nonce)
	buf.Write(nonce[:])

	var fee [8]byte
	binary.BigEndian.PutUint64(fee[:], t.FeeMicroSTX)
	buf.Write(fee[:])

	buf.WriteByte(keyEncodingCompressed)
	buf.Write(make([]byte, signatureLength))

	buf.WriteByte(anchorModeAny)
	buf.WriteByte(postConditionModeDeny)

	var pcCount [4]byte
	binary.BigEndian.PutUint32(pcCount[:], uint32(len(t.PostConditions)))
	buf.Write(pcCount[:])
	for _, pc := range t.PostConditions {
		buf.Write(pc)
	}

	if err := t.Payload.Serialize(&buf); err != nil {
		return nil, fmt.Errorf("serialize payload: %w", err)
	}
	return buf.Bytes(), nil
}

// SerializeHex renders the wire form as lowercase hex.
func (t *Transaction) SerializeHex() (string, error) {
	raw, err := t.Serialize()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// SerializePayloadHex renders only the payload wire form as hex, the input
// the fee estimator expects.
func (t *Transaction) SerializePayloadHex() (string, error) {
	var buf bytes.Buffer
	if err := t.Payload.Serialize(&buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf.Bytes()), nil
}

// Fee returns the fee in microSTX.
func (t *Transaction) Fee() uint64 { return t.FeeMicroSTX }

// NonceValue returns the spending condition nonce.
func (t *Transaction) NonceValue() uint64 { return t.Nonce }

// AuthKind returns the authorization type.
func (t *Transaction) AuthKind() AuthType { return t.Auth }

// IsSponsored reports whether a third party pays the fee.
func (t *Transaction) IsSponsored() bool { return t.Auth == AuthTypeSponsored }

// TxID is the sha256 of the serialized transaction, hex encoded.
func (t *Transaction) TxID() (string, error) {
	raw, err := t.Serialize()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// publicKeyHash160 parses a compressed public key and returns
// ripemd160(sha256(key)), the signer commitment in the spending condition.
func publicKeyHash160(publicKeyHex string) ([20]byte, error) {
	var out [20]byte
	raw, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return out, fmt.Errorf("decode public key: %w", err)
	}
	pub, err := secp256k1.ParsePubKey(raw)
	if err != nil {
		return out, fmt.Errorf("parse public key: %w", err)
	}
	sha := sha256.Sum256(pub.SerializeCompressed())
	ripe := ripemd160.New()
	ripe.Write(sha[:])
	copy(out[:], ripe.Sum(nil))
	return out, nil
}

// PublicKeyHex returns the compressed hex form of a secp256k1 public key
// derived from a 32-byte private key. Used by the CLIs; key custody itself
// lives outside this module.
func PublicKeyHex(privateKey []byte) (string, error) {
	if len(privateKey) != 32 {
		return "", fmt.Errorf("private key must be 32 bytes, got %d", len(privateKey))
	}
	priv := secp256k1.PrivKeyFromBytes(privateKey)
	return hex.EncodeToString(priv.PubKey().SerializeCompressed()), nil
}
