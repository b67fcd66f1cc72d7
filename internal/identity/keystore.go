// Package identity persists the local user's Nostr secret key at rest,
// encrypted with a passphrase so the key never touches disk in plaintext.
package identity

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"filippo.io/age"
)

// KeyStore holds the on-disk path to a single passphrase-encrypted
// secret key file. Unlike the teacher's AgeEncryptor, which splits a
// plaintext public key file from an encrypted private key file for
// asymmetric content encryption, a drive identity has only one secret
// worth protecting: the signing/decryption private key itself.
type KeyStore struct {
	path string
}

// NewKeyStore wraps the file at path.
func NewKeyStore(path string) *KeyStore {
	return &KeyStore{path: path}
}

// Setup encrypts privateKeyHex with passphrase and writes it to disk,
// overwriting any existing key file.
func (k *KeyStore) Setup(privateKeyHex, passphrase string) error {
	if err := os.MkdirAll(filepath.Dir(k.path), 0700); err != nil {
		return fmt.Errorf("creating key directory: %w", err)
	}

	f, err := os.OpenFile(k.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating key file: %w", err)
	}
	defer f.Close()

	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return fmt.Errorf("creating scrypt recipient: %w", err)
	}

	w, err := age.Encrypt(f, recipient)
	if err != nil {
		return fmt.Errorf("creating encrypted writer: %w", err)
	}

	if _, err := io.WriteString(w, privateKeyHex+"\n"); err != nil {
		return fmt.Errorf("writing encrypted key: %w", err)
	}

	return w.Close()
}

// Unlock decrypts the stored private key with passphrase.
func (k *KeyStore) Unlock(passphrase string) (string, error) {
	sealed, err := os.ReadFile(k.path)
	if err != nil {
		return "", fmt.Errorf("reading key file: %w", err)
	}

	ident, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return "", fmt.Errorf("creating scrypt identity: %w", err)
	}

	r, err := age.Decrypt(bytes.NewReader(sealed), ident)
	if err != nil {
		return "", fmt.Errorf("decrypting key: %w", err)
	}

	plain, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading decrypted key: %w", err)
	}

	return string(bytes.TrimSpace(plain)), nil
}

// IsConfigured reports whether a key file already exists.
func (k *KeyStore) IsConfigured() bool {
	_, err := os.Stat(k.path)
	return err == nil
}
