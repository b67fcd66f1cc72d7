package testutil

import (
	"encoding/hex"
	"fmt"
	"strings"

	"nostrdrive/internal/drive"
)

// StubSigner is a deterministic, insecure Signer/Verifier: "signing" a
// digest is just hex-encoding it, and verification recomputes the same
// encoding. It exists so sync/service tests can exercise the real event
// pipeline without depending on actual secp256k1 arithmetic.
type StubSigner struct {
	pubkey string
}

// NewStubSigner wraps pubkeyHex as a stub identity. Any 64-hex-char
// string works; tests typically use "alice", "bob" etc. padded by
// FakePubKey.
func NewStubSigner(pubkeyHex string) *StubSigner {
	return &StubSigner{pubkey: pubkeyHex}
}

func (s *StubSigner) PubKey() string { return s.pubkey }

func (s *StubSigner) Sign(digest [32]byte) (string, error) {
	return hex.EncodeToString(digest[:]), nil
}

// FakePubKey deterministically expands a short label into a 64-hex-char
// string shaped like a real x-only secp256k1 public key.
func FakePubKey(label string) string {
	padded := strings.Repeat("0", 64)
	b := []byte(padded)
	copy(b, hex.EncodeToString([]byte(label)))
	return string(b)
}

// StubVerifier matches StubSigner's "signature is the hex digest" scheme.
type StubVerifier struct{}

func (StubVerifier) Verify(pubkeyHex string, digest [32]byte, sigHex string) (bool, error) {
	return sigHex == hex.EncodeToString(digest[:]), nil
}

// StubSealer is an insecure Sealer: Seal base64-free "encryption" is
// just a tagged passthrough, so tests can assert on plaintext content
// without real NIP-44 arithmetic. Open refuses envelopes not produced by
// Seal, so a test that forgets to seal a field fails loudly.
type StubSealer struct{}

func NewStubSealer() *StubSealer { return &StubSealer{} }

const stubSealPrefix = "stub-sealed:"

func (StubSealer) Seal(plaintext []byte, recipientPubKey string) (string, error) {
	return stubSealPrefix + hex.EncodeToString(plaintext), nil
}

func (StubSealer) Open(envelope string, senderPubKey string) ([]byte, error) {
	rest, ok := strings.CutPrefix(envelope, stubSealPrefix)
	if !ok {
		return nil, fmt.Errorf("not a stub-sealed envelope")
	}
	return hex.DecodeString(rest)
}

// StubSealerFactory always returns the same StubSealer regardless of
// key, matching the "opaque oracle" contract for tests that exercise
// access_shared_file without real ECDH.
type StubSealerFactory struct{}

func (StubSealerFactory) ForKey(privateKeyHex string) (drive.Sealer, error) {
	return NewStubSealer(), nil
}

var _ drive.Signer = (*StubSigner)(nil)
var _ drive.Verifier = StubVerifier{}
var _ drive.Sealer = StubSealer{}
var _ drive.SealerFactory = StubSealerFactory{}
