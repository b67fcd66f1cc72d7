package drive

// KeyGenerator produces fresh secp256k1 keypairs for per-share ephemeral
// identities, and derives a public key from a private key for the
// access_shared_file path.
type KeyGenerator interface {
	// Generate returns a fresh hex-encoded (privateKey, publicKey) pair.
	Generate() (privateKeyHex, publicKeyHex string, err error)

	// PublicKey derives the hex-encoded public key for privateKeyHex.
	PublicKey(privateKeyHex string) (publicKeyHex string, err error)
}

// ShareKeyCodec bech32-encodes and decodes the private-key segment of a
// share link: a plain "nsec1" envelope, or a password-protected
// "ncryptsec1" envelope per the host ecosystem's scrypt-based scheme.
type ShareKeyCodec interface {
	EncodePlain(privateKeyHex string) (string, error)
	EncodePassword(privateKeyHex, password string) (string, error)

	// Decode accepts either envelope; password is ignored for a plain
	// nsec1 envelope and required for ncryptsec1 (CryptoFailed on
	// mismatch).
	Decode(encoded string, password string) (privateKeyHex string, err error)
}
