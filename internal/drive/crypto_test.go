package drive

import "testing"

func TestEncryptDecryptRoundTrip(t *testing.T) {
	plaintext := []byte("the quick brown fox jumps over the lazy dog")

	enc, err := Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if len(enc.Key) != aesKeySize {
		t.Fatalf("key length = %d, want %d", len(enc.Key), aesKeySize)
	}
	if len(enc.Nonce) != gcmNonceSize {
		t.Fatalf("nonce length = %d, want %d", len(enc.Nonce), gcmNonceSize)
	}

	got, err := Decrypt(enc.Blob, enc.Key, enc.Nonce)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if string(got) != string(plaintext) {
		t.Errorf("Decrypt = %q, want %q", got, plaintext)
	}
}

func TestDecryptRejectsTamperedBlob(t *testing.T) {
	enc, err := Encrypt([]byte("secret"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	tampered := append([]byte{}, enc.Blob...)
	tampered[0] ^= 0xFF

	if _, err := Decrypt(tampered, enc.Key, enc.Nonce); err == nil {
		t.Fatal("expected tag verification failure for tampered blob")
	}
}

func TestValidateEncryptionInfoRoundTrip(t *testing.T) {
	enc, err := Encrypt([]byte("secret"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	info := EncodeEncryptionInfo(enc.Key, enc.Nonce)

	key, nonce, err := ValidateEncryptionInfo(info)
	if err != nil {
		t.Fatalf("ValidateEncryptionInfo: %v", err)
	}
	if string(key) != string(enc.Key) || string(nonce) != string(enc.Nonce) {
		t.Error("round-tripped key/nonce do not match originals")
	}
}

func TestValidateEncryptionInfoRejectsUnsupportedAlgorithm(t *testing.T) {
	info := &EncryptionInfo{Algorithm: "rot13", Key: "x", Nonce: "y"}
	if _, _, err := ValidateEncryptionInfo(info); err == nil {
		t.Fatal("expected error for unsupported algorithm")
	}
}

func TestValidateEncryptionInfoRejectsWrongLengths(t *testing.T) {
	info := EncodeEncryptionInfo([]byte("tooshort"), make([]byte, gcmNonceSize))
	if _, _, err := ValidateEncryptionInfo(info); err == nil {
		t.Fatal("expected error for short key")
	}
}
