package codec

import (
	"bytes"
	"testing"

	"stacks-wallet-core/internal/domain"
)

// Compressed generator point: a syntactically valid secp256k1 public key.
const testPublicKey = "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"

func testRecipient() string {
	return EncodeAddress(AddressVersionMainnet, testHash160)
}

func buildTestTransaction(t *testing.T, fee, nonce uint64) *Transaction {
	t.Helper()
	payload := &TokenTransferPayload{
		Recipient: testRecipient(),
		Amount:    1_000_000,
		Memo:      "coffee",
	}
	tx, err := BuildUnsignedTransaction(payload, fee, nonce, testPublicKey, domain.Mainnet())
	if err != nil {
		t.Fatalf("build transaction: %v", err)
	}
	return tx
}

func TestTokenTransferPayloadSerialize(t *testing.T) {
	payload := &TokenTransferPayload{
		Recipient: testRecipient(),
		Amount:    42,
		Memo:      "hi",
	}
	var buf bytes.Buffer
	if err := payload.Serialize(&buf); err != nil {
		t.Fatalf("serialize: %v", err)
	}

	// type(1) + principal type(1) + version(1) + hash160(20) + amount(8) + memo(34)
	if buf.Len() != 65 {
		t.Errorf("expected 65 payload bytes, got %d", buf.Len())
	}
	raw := buf.Bytes()
	if raw[0] != payloadTypeTokenTransfer {
		t.Errorf("expected token transfer type byte, got %#x", raw[0])
	}
	// amount is big-endian at offset 23
	if raw[30] != 42 {
		t.Errorf("expected amount byte 42 at tail of amount field, got %d", raw[30])
	}
}

func TestTokenTransferPayload_MemoTooLong(t *testing.T) {
	payload := &TokenTransferPayload{
		Recipient: testRecipient(),
		Amount:    1,
		Memo:      string(make([]byte, MemoMaxLength+1)),
	}
	var buf bytes.Buffer
	if err := payload.Serialize(&buf); err == nil {
		t.Error("expected error for oversized memo")
	}
}

func TestTokenTransferPayload_InvalidRecipient(t *testing.T) {
	payload := &TokenTransferPayload{Recipient: "not-an-address", Amount: 1}
	var buf bytes.Buffer
	if err := payload.Serialize(&buf); err == nil {
		t.Error("expected error for invalid recipient")
	}
}

func TestContractCallPayloadSerialize(t *testing.T) {
	payload := &ContractCallPayload{
		ContractAddress: testRecipient(),
		ContractName:    "token-contract",
		FunctionName:    "transfer",
	}
	var buf bytes.Buffer
	if err := payload.Serialize(&buf); err != nil {
		t.Fatalf("serialize: %v", err)
	}
	raw := buf.Bytes()
	if raw[0] != payloadTypeContractCall {
		t.Errorf("expected contract call type byte, got %#x", raw[0])
	}
	// type(1) + version(1) + hash160(20) + name(1+14) + fn(1+8) + argc(4)
	if buf.Len() != 50 {
		t.Errorf("expected 50 payload bytes, got %d", buf.Len())
	}
}

func TestTransactionSerialize_SizeIsStable(t *testing.T) {
	tx := buildTestTransaction(t, 180, 7)
	raw, err := tx.Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	// envelope(115, signature slot zero-filled) + token transfer payload(65)
	if len(raw) != 180 {
		t.Errorf("expected 180 bytes, got %d", len(raw))
	}

	again, err := tx.Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if !bytes.Equal(raw, again) {
		t.Error("serialization is not deterministic")
	}
}

func TestTransactionAccessors(t *testing.T) {
	tx := buildTestTransaction(t, 250, 9)
	if tx.Fee() != 250 {
		t.Errorf("expected fee 250, got %d", tx.Fee())
	}
	if tx.NonceValue() != 9 {
		t.Errorf("expected nonce 9, got %d", tx.NonceValue())
	}
	if tx.AuthKind() != AuthTypeStandard {
		t.Errorf("expected standard auth, got %#x", tx.AuthKind())
	}
	if tx.IsSponsored() {
		t.Error("standard transaction must not report sponsored")
	}

	tx.Auth = AuthTypeSponsored
	if !tx.IsSponsored() {
		t.Error("sponsored auth type must report sponsored")
	}
}

func TestBuildUnsignedTransaction_BadPublicKey(t *testing.T) {
	payload := &TokenTransferPayload{Recipient: testRecipient(), Amount: 1}
	if _, err := BuildUnsignedTransaction(payload, 1, 1, "zz", domain.Mainnet()); err == nil {
		t.Error("expected error for undecodable public key")
	}
	if _, err := BuildUnsignedTransaction(payload, 1, 1, "00", domain.Mainnet()); err == nil {
		t.Error("expected error for short public key")
	}
}

func TestSerializePayloadHexMatchesPayloadBytes(t *testing.T) {
	tx := buildTestTransaction(t, 1, 1)
	payloadHex, err := tx.SerializePayloadHex()
	if err != nil {
		t.Fatalf("serialize payload: %v", err)
	}
	// token transfer payload is 65 bytes
	if len(payloadHex) != 130 {
		t.Errorf("expected 130 hex chars, got %d", len(payloadHex))
	}
}
