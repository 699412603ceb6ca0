package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Payload type bytes on the wire.
const (
	payloadTypeTokenTransfer byte = 0x00
	payloadTypeContractCall  byte = 0x02
)

// Principal clarity type bytes.
const (
	principalStandard byte = 0x05
	principalContract byte = 0x06
)

// MemoMaxLength is the fixed memo field size; shorter memos are
// zero-padded, longer ones are rejected at validation time.
const MemoMaxLength = 34

// Payload is a serializable transaction payload.
type Payload interface {
	// Serialize appends the wire form of the payload to buf.
	Serialize(buf *bytes.Buffer) error
}

// TokenTransferPayload moves STX or a fungible token to a recipient.
type TokenTransferPayload struct {
	Recipient string // c32check principal
	Amount    uint64 // chain base units
	Memo      string
}

// Serialize writes the payload in wire order: type, recipient principal,
// amount, fixed-size memo.
func (p *TokenTransferPayload) Serialize(buf *bytes.Buffer) error {
	if len(p.Memo) > MemoMaxLength {
		return fmt.Errorf("memo exceeds %d bytes", MemoMaxLength)
	}
	addr, err := DecodeAddress(p.Recipient)
	if err != nil {
		return err
	}

	buf.WriteByte(payloadTypeTokenTransfer)
	buf.WriteByte(principalStandard)
	buf.WriteByte(addr.Version)
	buf.Write(addr.Hash160[:])

	var amount [8]byte
	binary.BigEndian.PutUint64(amount[:], p.Amount)
	buf.Write(amount[:])

	var memo [MemoMaxLength]byte
	copy(memo[:], p.Memo)
	buf.Write(memo[:])
	return nil
}

// ContractCallPayload invokes a public function of a deployed contract.
type ContractCallPayload struct {
	ContractAddress string
	ContractName    string
	FunctionName    string
	FunctionArgs    [][]byte // pre-serialized clarity values
}

// Serialize writes the payload in wire order: type, contract principal,
// function name, argument list.
func (p *ContractCallPayload) Serialize(buf *bytes.Buffer) error {
	addr, err := DecodeAddress(p.ContractAddress)
	if err != nil {
		return err
	}

	buf.WriteByte(payloadTypeContractCall)
	buf.WriteByte(addr.Version)
	buf.Write(addr.Hash160[:])
	if err := writeName(buf, p.ContractName); err != nil {
		return err
	}
	if err := writeName(buf, p.FunctionName); err != nil {
		return err
	}

	var count [4]byte
	binary.BigEndian.PutUint32(count[:], uint32(len(p.FunctionArgs)))
	buf.Write(count[:])
	for _, arg := range p.FunctionArgs {
		buf.Write(arg)
	}
	return nil
}

// writeName writes a length-prefixed contract or function name. Names are
// capped at 128 bytes on the wire.
func writeName(buf *bytes.Buffer, name string) error {
	if name == "" || len(name) > 128 {
		return fmt.Errorf("invalid name length %d", len(name))
	}
	buf.WriteByte(byte(len(name)))
	buf.WriteString(name)
	return nil
}
