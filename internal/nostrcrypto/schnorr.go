// Package nostrcrypto implements the host ecosystem's out-of-scope
// collaborators: a Schnorr signer over secp256k1, a NIP-44 authenticated
// encryption sealer, and bech32 key envelopes (npub/nsec/ncryptsec).
package nostrcrypto

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"

	"nostrdrive/internal/drive"
)

// Identity owns a secp256k1 keypair and implements drive.Signer over it
// using BIP-340 Schnorr signatures, the host ecosystem's signature
// scheme.
type Identity struct {
	priv   *btcec.PrivateKey
	pubHex string
}

// NewIdentity wraps a 32-byte hex-encoded private key.
func NewIdentity(privateKeyHex string) (*Identity, error) {
	raw, err := hex.DecodeString(privateKeyHex)
	if err != nil || len(raw) != 32 {
		return nil, fmt.Errorf("private key must be 32 bytes hex")
	}
	priv, pub := btcec.PrivKeyFromBytes(raw)
	return &Identity{priv: priv, pubHex: hex.EncodeToString(xOnly(pub))}, nil
}

// GenerateIdentity creates a fresh random identity.
func GenerateIdentity() (*Identity, error) {
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generating private key: %w", err)
	}
	return &Identity{priv: priv, pubHex: hex.EncodeToString(xOnly(priv.PubKey()))}, nil
}

// PrivateKeyHex returns the raw 32-byte private key, hex encoded. Used
// only by callers persisting the identity (e.g. under age encryption).
func (id *Identity) PrivateKeyHex() string {
	return hex.EncodeToString(id.priv.Serialize())
}

// PubKey implements drive.Signer.
func (id *Identity) PubKey() string { return id.pubHex }

// Sign implements drive.Signer.
func (id *Identity) Sign(digest [32]byte) (string, error) {
	sig, err := schnorr.Sign(id.priv, digest[:])
	if err != nil {
		return "", fmt.Errorf("signing digest: %w", err)
	}
	return hex.EncodeToString(sig.Serialize()), nil
}

// Verifier checks Schnorr signatures against x-only public keys.
type Verifier struct{}

func (Verifier) Verify(pubkeyHex string, digest [32]byte, sigHex string) (bool, error) {
	pubBytes, err := hex.DecodeString(pubkeyHex)
	if err != nil || len(pubBytes) != 32 {
		return false, fmt.Errorf("public key must be 32 bytes hex")
	}
	pub, err := schnorr.ParsePubKey(pubBytes)
	if err != nil {
		return false, fmt.Errorf("parsing public key: %w", err)
	}

	sigBytes, err := hex.DecodeString(sigHex)
	if err != nil {
		return false, fmt.Errorf("decoding signature: %w", err)
	}
	sig, err := schnorr.ParseSignature(sigBytes)
	if err != nil {
		return false, fmt.Errorf("parsing signature: %w", err)
	}

	return sig.Verify(digest[:], pub), nil
}

// xOnly returns the 32-byte x-coordinate of pub, the host ecosystem's
// public key encoding (no sign/parity byte).
func xOnly(pub *btcec.PublicKey) []byte {
	full := pub.SerializeCompressed()
	return full[1:]
}

// parseXOnlyPubKey parses a 32-byte hex x-only public key into a full
// btcec.PublicKey, assuming the conventional even-y representative.
func parseXOnlyPubKey(pubkeyHex string) (*btcec.PublicKey, error) {
	raw, err := hex.DecodeString(pubkeyHex)
	if err != nil || len(raw) != 32 {
		return nil, fmt.Errorf("public key must be 32 bytes hex")
	}
	compressed := append([]byte{0x02}, raw...)
	return btcec.ParsePubKey(compressed)
}

var _ drive.Signer = (*Identity)(nil)
var _ drive.Verifier = Verifier{}
