package drive

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"strings"
)

const (
	aesKeySize   = 32 // AES-256
	gcmNonceSize = 12 // 96-bit nonce
	gcmTagSize   = 16 // 128-bit tag
)

// EncryptedContent is the result of Encrypt: ciphertext with the GCM tag
// appended, plus the randomly generated key and nonce used to produce it.
type EncryptedContent struct {
	Blob  []byte // ciphertext ‖ tag
	Key   []byte // 32 random bytes
	Nonce []byte // 12 random bytes
}

// Encrypt performs authenticated AES-256-GCM encryption of plaintext with
// a freshly generated key and nonce, both drawn from a cryptographic RNG.
func Encrypt(plaintext []byte) (*EncryptedContent, error) {
	key := make([]byte, aesKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, NewCryptoFailed("generating key: %v", err)
	}
	nonce := make([]byte, gcmNonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, NewCryptoFailed("generating nonce: %v", err)
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	blob := gcm.Seal(nil, nonce, plaintext, nil)
	return &EncryptedContent{Blob: blob, Key: key, Nonce: nonce}, nil
}

// Decrypt splits the trailing GCM tag off blob and verifies it against
// key/nonce, returning the plaintext on success. A failed tag check
// returns a CryptoFailedError and no plaintext.
func Decrypt(blob, key, nonce []byte) ([]byte, error) {
	if len(blob) < gcmTagSize {
		return nil, NewCryptoFailed("ciphertext shorter than tag size: %d bytes", len(blob))
	}
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	plaintext, err := gcm.Open(nil, nonce, blob, nil)
	if err != nil {
		return nil, NewCryptoFailed("tag verification failed: %v", err)
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != aesKeySize {
		return nil, NewCryptoFailed("key must be %d bytes, got %d", aesKeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, NewCryptoFailed("constructing AES cipher: %v", err)
	}
	gcm, err := cipher.NewGCMWithTagSize(block, gcmTagSize)
	if err != nil {
		return nil, NewCryptoFailed("constructing GCM: %v", err)
	}
	return gcm, nil
}

// ValidateEncryptionInfo rejects untrusted key/nonce/algorithm material —
// from a share link or an inbound share event — before it is used for
// decryption. It returns the decoded key and nonce bytes on success.
func ValidateEncryptionInfo(info *EncryptionInfo) (key, nonce []byte, err error) {
	if info == nil {
		return nil, nil, NewInvalidArgument("missing encryption info")
	}
	if !strings.EqualFold(info.Algorithm, "aes-gcm") {
		return nil, nil, NewInvalidArgument("unsupported encryption algorithm: %q", info.Algorithm)
	}

	key, err = base64.StdEncoding.DecodeString(info.Key)
	if err != nil {
		return nil, nil, NewInvalidArgument("decoding key base64: %v", err)
	}
	if len(key) != aesKeySize {
		return nil, nil, NewInvalidArgument("key must decode to %d bytes, got %d", aesKeySize, len(key))
	}

	nonce, err = base64.StdEncoding.DecodeString(info.Nonce)
	if err != nil {
		return nil, nil, NewInvalidArgument("decoding nonce base64: %v", err)
	}
	if len(nonce) != gcmNonceSize {
		return nil, nil, NewInvalidArgument("nonce must decode to %d bytes, got %d", gcmNonceSize, len(nonce))
	}

	return key, nonce, nil
}

// EncodeEncryptionInfo base64-encodes key/nonce into an EncryptionInfo
// record suitable for embedding in a DriveContent.
func EncodeEncryptionInfo(key, nonce []byte) *EncryptionInfo {
	return &EncryptionInfo{
		Algorithm: "aes-gcm",
		Key:       base64.StdEncoding.EncodeToString(key),
		Nonce:     base64.StdEncoding.EncodeToString(nonce),
	}
}
