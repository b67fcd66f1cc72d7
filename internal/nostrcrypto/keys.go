package nostrcrypto

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"nostrdrive/internal/drive"
)

const (
	hrpPublicKey  = "npub"
	hrpPrivateKey = "nsec"
	hrpEncrypted  = "ncryptsec"

	ncryptsecVersion = 0x02
	ncryptsecLogN    = 16 // scrypt N = 2^16, matching the host ecosystem's default cost
	scryptR          = 8
	scryptP          = 1
)

// KeyGenerator implements drive.KeyGenerator over fresh secp256k1
// identities.
type KeyGenerator struct{}

func (KeyGenerator) Generate() (privateKeyHex, publicKeyHex string, err error) {
	id, err := GenerateIdentity()
	if err != nil {
		return "", "", err
	}
	return id.PrivateKeyHex(), id.PubKey(), nil
}

func (KeyGenerator) PublicKey(privateKeyHex string) (string, error) {
	id, err := NewIdentity(privateKeyHex)
	if err != nil {
		return "", err
	}
	return id.PubKey(), nil
}

// EncodePublicKey wraps a hex public key as a bech32 "npub1..." string.
func EncodePublicKey(pubkeyHex string) (string, error) {
	return encodeBech32Hex(hrpPublicKey, pubkeyHex)
}

// DecodePublicKey is the inverse of EncodePublicKey.
func DecodePublicKey(npub string) (string, error) {
	return decodeBech32Hex(hrpPublicKey, npub)
}

func encodeBech32Hex(hrp, dataHex string) (string, error) {
	raw, err := hex.DecodeString(dataHex)
	if err != nil {
		return "", drive.NewInvalidArgument("decoding hex: %v", err)
	}
	fiveBit, err := bech32.ConvertBits(raw, 8, 5, true)
	if err != nil {
		return "", drive.NewInvalidArgument("bit conversion: %v", err)
	}
	return bech32.Encode(hrp, fiveBit)
}

func decodeBech32Hex(wantHRP, encoded string) (string, error) {
	hrp, fiveBit, err := bech32.DecodeNoLimit(encoded)
	if err != nil {
		return "", drive.NewInvalidArgument("bech32 decoding: %v", err)
	}
	if hrp != wantHRP {
		return "", drive.NewInvalidArgument("unexpected HRP %q, want %q", hrp, wantHRP)
	}
	raw, err := bech32.ConvertBits(fiveBit, 5, 8, false)
	if err != nil {
		return "", drive.NewInvalidArgument("bit conversion: %v", err)
	}
	return hex.EncodeToString(raw), nil
}

// ShareKeyCodec implements drive.ShareKeyCodec: a plain bech32 "nsec1"
// envelope, or a scrypt-derived, XChaCha20-Poly1305-sealed "ncryptsec1"
// envelope for password-protected share links.
type ShareKeyCodec struct{}

func (ShareKeyCodec) EncodePlain(privateKeyHex string) (string, error) {
	return encodeBech32Hex(hrpPrivateKey, privateKeyHex)
}

func (ShareKeyCodec) EncodePassword(privateKeyHex, password string) (string, error) {
	privBytes, err := hex.DecodeString(privateKeyHex)
	if err != nil || len(privBytes) != 32 {
		return "", drive.NewInvalidArgument("private key must be 32 bytes hex")
	}

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", drive.NewCryptoFailed("generating salt: %v", err)
	}

	key, err := scrypt.Key([]byte(password), salt, 1<<ncryptsecLogN, scryptR, scryptP, chacha20poly1305.KeySize)
	if err != nil {
		return "", drive.NewCryptoFailed("deriving scrypt key: %v", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", drive.NewCryptoFailed("constructing AEAD: %v", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", drive.NewCryptoFailed("generating nonce: %v", err)
	}

	sealed := aead.Seal(nil, nonce, privBytes, nil)

	raw := make([]byte, 0, 2+len(salt)+len(nonce)+len(sealed))
	raw = append(raw, ncryptsecVersion, ncryptsecLogN)
	raw = append(raw, salt...)
	raw = append(raw, nonce...)
	raw = append(raw, sealed...)

	fiveBit, err := bech32.ConvertBits(raw, 8, 5, true)
	if err != nil {
		return "", drive.NewInvalidArgument("bit conversion: %v", err)
	}
	return bech32.Encode(hrpEncrypted, fiveBit)
}

func (ShareKeyCodec) Decode(encoded string, password string) (string, error) {
	if strings.HasPrefix(encoded, hrpEncrypted+"1") {
		return decodeNcryptsec(encoded, password)
	}
	return decodeBech32Hex(hrpPrivateKey, encoded)
}

func decodeNcryptsec(encoded, password string) (string, error) {
	hrp, fiveBit, err := bech32.DecodeNoLimit(encoded)
	if err != nil {
		return "", drive.NewInvalidArgument("bech32 decoding: %v", err)
	}
	if hrp != hrpEncrypted {
		return "", drive.NewInvalidArgument("unexpected HRP %q, want %q", hrp, hrpEncrypted)
	}
	raw, err := bech32.ConvertBits(fiveBit, 5, 8, false)
	if err != nil {
		return "", drive.NewInvalidArgument("bit conversion: %v", err)
	}

	if len(raw) < 2+16+24 {
		return "", drive.NewInvalidArgument("ncryptsec payload too short")
	}
	logN := raw[1]
	salt := raw[2:18]
	nonce := raw[18:42]
	sealed := raw[42:]

	key, err := scrypt.Key([]byte(password), salt, 1<<logN, scryptR, scryptP, chacha20poly1305.KeySize)
	if err != nil {
		return "", drive.NewCryptoFailed("deriving scrypt key: %v", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", drive.NewCryptoFailed("constructing AEAD: %v", err)
	}

	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", drive.NewCryptoFailed("wrong password or corrupted envelope: %v", err)
	}

	return hex.EncodeToString(plaintext), nil
}

var _ drive.KeyGenerator = KeyGenerator{}
var _ drive.ShareKeyCodec = ShareKeyCodec{}
