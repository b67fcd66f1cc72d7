package nostrcrypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"math/bits"

	"github.com/btcsuite/btcd/btcec/v2"
	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/hkdf"

	"nostrdrive/internal/drive"
)

const (
	nip44Version    = 0x02
	nip44Salt       = "nip44-v2"
	minPlaintextLen = 1
	maxPlaintextLen = 65535
)

// Sealer implements drive.Sealer as the host ecosystem's NIP-44
// authenticated encryption: an HKDF-derived conversation key over an
// ECDH shared secret, ChaCha20 for confidentiality, and HMAC-SHA256 for
// authentication.
type Sealer struct {
	priv *btcec.PrivateKey
}

// NewSealer builds a Sealer bound to the given identity's private key.
func NewSealer(id *Identity) *Sealer {
	return &Sealer{priv: id.priv}
}

// SealerFactory implements drive.SealerFactory for scratch decryption of
// share events under an arbitrary (non-identity) private key.
type SealerFactory struct{}

func (SealerFactory) ForKey(privateKeyHex string) (drive.Sealer, error) {
	id, err := NewIdentity(privateKeyHex)
	if err != nil {
		return nil, err
	}
	return NewSealer(id), nil
}

func conversationKey(priv *btcec.PrivateKey, theirPubHex string) ([]byte, error) {
	pub, err := parseXOnlyPubKey(theirPubHex)
	if err != nil {
		return nil, fmt.Errorf("parsing counterparty public key: %w", err)
	}

	var point, shared btcec.JacobianPoint
	pub.AsJacobian(&point)
	btcec.ScalarMultNonConst(&priv.Key, &point, &shared)
	shared.ToAffine()
	sharedX := shared.X.Bytes()

	extracted := hkdf.Extract(sha256.New, sharedX[:], []byte(nip44Salt))
	return extracted, nil
}

func messageKeys(convKey, nonce []byte) (chachaKey, chachaNonce, hmacKey []byte, err error) {
	reader := hkdf.Expand(sha256.New, convKey, nonce)
	buf := make([]byte, 76)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return nil, nil, nil, err
	}
	return buf[0:32], buf[32:44], buf[44:76], nil
}

// calcPaddedLen implements the host ecosystem's length-bucketing padding
// scheme: short messages round up to 32 bytes, longer ones to a fraction
// of the next power of two, so ciphertext length reveals only a coarse
// size bucket rather than the exact plaintext length.
func calcPaddedLen(unpaddedLen int) int {
	if unpaddedLen <= 32 {
		return 32
	}
	nextPower := 1 << bits.Len(uint(unpaddedLen-1))
	chunk := 32
	if nextPower > 256 {
		chunk = nextPower / 8
	}
	return chunk * ((unpaddedLen-1)/chunk + 1)
}

func pad(plaintext []byte) []byte {
	padded := make([]byte, 2+calcPaddedLen(len(plaintext)))
	binary.BigEndian.PutUint16(padded[0:2], uint16(len(plaintext)))
	copy(padded[2:], plaintext)
	return padded
}

func unpad(padded []byte) ([]byte, error) {
	if len(padded) < 2 {
		return nil, fmt.Errorf("padded plaintext too short")
	}
	length := int(binary.BigEndian.Uint16(padded[0:2]))
	if length < minPlaintextLen || length > maxPlaintextLen || 2+length > len(padded) {
		return nil, fmt.Errorf("invalid padded length prefix")
	}
	return padded[2 : 2+length], nil
}

// Seal implements drive.Sealer.Seal.
func (s *Sealer) Seal(plaintext []byte, recipientPubKey string) (string, error) {
	if len(plaintext) < minPlaintextLen || len(plaintext) > maxPlaintextLen {
		return "", drive.NewInvalidArgument("plaintext length %d out of bounds", len(plaintext))
	}

	convKey, err := conversationKey(s.priv, recipientPubKey)
	if err != nil {
		return "", drive.NewCryptoFailed("deriving conversation key: %v", err)
	}

	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return "", drive.NewCryptoFailed("generating nonce: %v", err)
	}

	chachaKey, chachaNonce, hmacKey, err := messageKeys(convKey, nonce)
	if err != nil {
		return "", drive.NewCryptoFailed("deriving message keys: %v", err)
	}

	cipher, err := chacha20.NewUnauthenticatedCipher(chachaKey, chachaNonce)
	if err != nil {
		return "", drive.NewCryptoFailed("constructing cipher: %v", err)
	}

	padded := pad(plaintext)
	ciphertext := make([]byte, len(padded))
	cipher.XORKeyStream(ciphertext, padded)

	mac := hmac.New(sha256.New, hmacKey)
	mac.Write(nonce)
	mac.Write(ciphertext)
	tag := mac.Sum(nil)

	payload := make([]byte, 0, 1+len(nonce)+len(ciphertext)+len(tag))
	payload = append(payload, nip44Version)
	payload = append(payload, nonce...)
	payload = append(payload, ciphertext...)
	payload = append(payload, tag...)

	return base64.StdEncoding.EncodeToString(payload), nil
}

// Open implements drive.Sealer.Open.
func (s *Sealer) Open(envelope string, senderPubKey string) ([]byte, error) {
	payload, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil {
		return nil, drive.NewCryptoFailed("decoding envelope base64: %v", err)
	}
	if len(payload) < 1+32+32 {
		return nil, drive.NewCryptoFailed("envelope too short")
	}
	if payload[0] != nip44Version {
		return nil, drive.NewCryptoFailed("unsupported envelope version %d", payload[0])
	}

	nonce := payload[1:33]
	tag := payload[len(payload)-32:]
	ciphertext := payload[33 : len(payload)-32]

	convKey, err := conversationKey(s.priv, senderPubKey)
	if err != nil {
		return nil, drive.NewCryptoFailed("deriving conversation key: %v", err)
	}

	chachaKey, chachaNonce, hmacKey, err := messageKeys(convKey, nonce)
	if err != nil {
		return nil, drive.NewCryptoFailed("deriving message keys: %v", err)
	}

	mac := hmac.New(sha256.New, hmacKey)
	mac.Write(nonce)
	mac.Write(ciphertext)
	expected := mac.Sum(nil)
	if !hmac.Equal(expected, tag) {
		return nil, drive.NewCryptoFailed("hmac verification failed")
	}

	cipher, err := chacha20.NewUnauthenticatedCipher(chachaKey, chachaNonce)
	if err != nil {
		return nil, drive.NewCryptoFailed("constructing cipher: %v", err)
	}
	padded := make([]byte, len(ciphertext))
	cipher.XORKeyStream(padded, ciphertext)

	plaintext, err := unpad(padded)
	if err != nil {
		return nil, drive.NewCryptoFailed("unpadding plaintext: %v", err)
	}
	return plaintext, nil
}

var _ drive.Sealer = (*Sealer)(nil)
var _ drive.SealerFactory = SealerFactory{}
