package nostrcrypto

import (
	"strings"
	"testing"
)

func TestKeyGeneratorGenerateAndPublicKeyAgree(t *testing.T) {
	gen := KeyGenerator{}
	sk, pk, err := gen.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	derived, err := gen.PublicKey(sk)
	if err != nil {
		t.Fatalf("PublicKey: %v", err)
	}
	if derived != pk {
		t.Errorf("PublicKey(sk) = %q, want %q", derived, pk)
	}
}

func TestEncodeDecodePublicKeyRoundTrip(t *testing.T) {
	_, pk, err := KeyGenerator{}.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	npub, err := EncodePublicKey(pk)
	if err != nil {
		t.Fatalf("EncodePublicKey: %v", err)
	}
	if !strings.HasPrefix(npub, "npub1") {
		t.Fatalf("expected npub1 prefix, got %q", npub)
	}

	decoded, err := DecodePublicKey(npub)
	if err != nil {
		t.Fatalf("DecodePublicKey: %v", err)
	}
	if decoded != pk {
		t.Errorf("decoded = %q, want %q", decoded, pk)
	}
}

func TestDecodePublicKeyRejectsWrongHRP(t *testing.T) {
	sk, _, err := KeyGenerator{}.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	nsec, err := ShareKeyCodec{}.EncodePlain(sk)
	if err != nil {
		t.Fatalf("EncodePlain: %v", err)
	}
	if _, err := DecodePublicKey(nsec); err == nil {
		t.Fatal("expected error decoding an nsec envelope as a public key")
	}
}

func TestShareKeyCodecEncodePlainRoundTrip(t *testing.T) {
	sk, _, err := KeyGenerator{}.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	encoded, err := ShareKeyCodec{}.EncodePlain(sk)
	if err != nil {
		t.Fatalf("EncodePlain: %v", err)
	}
	if !strings.HasPrefix(encoded, "nsec1") {
		t.Fatalf("expected nsec1 prefix, got %q", encoded)
	}

	decoded, err := ShareKeyCodec{}.Decode(encoded, "")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded != sk {
		t.Errorf("decoded = %q, want %q", decoded, sk)
	}
}

func TestShareKeyCodecEncodePasswordRoundTrip(t *testing.T) {
	sk, _, err := KeyGenerator{}.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	encoded, err := ShareKeyCodec{}.EncodePassword(sk, "correct horse battery staple")
	if err != nil {
		t.Fatalf("EncodePassword: %v", err)
	}
	if !strings.HasPrefix(encoded, "ncryptsec1") {
		t.Fatalf("expected ncryptsec1 prefix, got %q", encoded)
	}

	decoded, err := ShareKeyCodec{}.Decode(encoded, "correct horse battery staple")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded != sk {
		t.Errorf("decoded = %q, want %q", decoded, sk)
	}
}

func TestShareKeyCodecDecodeRejectsWrongPassword(t *testing.T) {
	sk, _, err := KeyGenerator{}.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	encoded, err := ShareKeyCodec{}.EncodePassword(sk, "right-password")
	if err != nil {
		t.Fatalf("EncodePassword: %v", err)
	}
	if _, err := (ShareKeyCodec{}).Decode(encoded, "wrong-password"); err == nil {
		t.Fatal("expected Decode to fail with the wrong password")
	}
}

func TestShareKeyCodecDecodeRejectsMalformedEnvelope(t *testing.T) {
	if _, err := (ShareKeyCodec{}).Decode("not-a-bech32-string", ""); err == nil {
		t.Fatal("expected error decoding a malformed envelope")
	}
}
