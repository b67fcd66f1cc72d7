package drive

import (
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

func TestEncodeDecodeSharePointerRoundTrip(t *testing.T) {
	kind := KindDrive
	p := &SharePointer{
		EventID: strings.Repeat("ab", 32),
		Relays:  []string{"wss://relay.one", "wss://relay.two"},
		Author:  strings.Repeat("cd", 32),
		Kind:    &kind,
	}

	encoded, err := EncodeSharePointer(p)
	if err != nil {
		t.Fatalf("EncodeSharePointer: %v", err)
	}
	if !strings.HasPrefix(encoded, "nevent1") {
		t.Fatalf("expected nevent1 prefix, got %q", encoded)
	}

	decoded, err := DecodeSharePointer(encoded)
	if err != nil {
		t.Fatalf("DecodeSharePointer: %v", err)
	}
	if decoded.EventID != p.EventID {
		t.Errorf("EventID = %q, want %q", decoded.EventID, p.EventID)
	}
	if decoded.Author != p.Author {
		t.Errorf("Author = %q, want %q", decoded.Author, p.Author)
	}
	if decoded.Kind == nil || *decoded.Kind != kind {
		t.Errorf("Kind = %v, want %d", decoded.Kind, kind)
	}
	if len(decoded.Relays) != 2 || decoded.Relays[0] != p.Relays[0] || decoded.Relays[1] != p.Relays[1] {
		t.Errorf("Relays = %v, want %v", decoded.Relays, p.Relays)
	}
}

func TestEncodeSharePointerRequiresValidEventID(t *testing.T) {
	_, err := EncodeSharePointer(&SharePointer{EventID: "not-hex"})
	if err == nil {
		t.Fatal("expected error for malformed event id")
	}
}

func TestDecodeSharePointerRejectsWrongHRP(t *testing.T) {
	raw := []byte{tlvTypeSpecial, 32}
	raw = append(raw, []byte(strings.Repeat("x", 32))...)
	fiveBit, err := bech32.ConvertBits(raw, 8, 5, true)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	npub, err := bech32.Encode("npub", fiveBit)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, err := DecodeSharePointer(npub); err == nil {
		t.Fatal("expected error for wrong HRP")
	}
}

func TestDecodeSharePointerRequiresSpecialTLV(t *testing.T) {
	// An nevent-HRP payload with only a relay TLV and no type-0 id.
	raw := []byte{tlvTypeRelay, 4, 'w', 's', 's', ':'}
	fiveBit, err := bech32.ConvertBits(raw, 8, 5, true)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	encoded, err := bech32.Encode(hrpEvent, fiveBit)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, err := DecodeSharePointer(encoded); err == nil {
		t.Fatal("expected error for missing type-0 TLV")
	}
}
