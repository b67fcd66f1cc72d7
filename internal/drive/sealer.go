package drive

// Sealer is the out-of-scope NIP-44 payload encryptor, treated here as an
// opaque oracle: encrypt(plain, to_pubkey) / decrypt(cipher, from_pubkey)
// given the local signer's private key. The content crypto module never
// inspects the envelope it produces.
type Sealer interface {
	// Seal encrypts plaintext for recipientPubKey using the local
	// signer's private key and ECDH. Sealing to the signer's own pubkey
	// is how "self" metadata is protected.
	Seal(plaintext []byte, recipientPubKey string) (string, error)

	// Open decrypts an envelope produced by Seal, given the sender's
	// pubkey and the local signer's private key.
	Open(envelope string, senderPubKey string) ([]byte, error)
}

// SealerFactory produces a Sealer bound to an arbitrary private key
// rather than the logged-in identity's. access_shared_file uses this to
// open a share event under the share's own ephemeral key, without ever
// touching the main identity's Sealer.
type SealerFactory interface {
	ForKey(privateKeyHex string) (Sealer, error)
}
