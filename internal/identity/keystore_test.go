package identity

import (
	"path/filepath"
	"testing"
)

func TestKeyStoreSetupUnlockRoundTrip(t *testing.T) {
	ks := NewKeyStore(filepath.Join(t.TempDir(), "nostrdrive.key"))

	const sk = "1111111111111111111111111111111111111111111111111111111111111111"
	if err := ks.Setup(sk, "correct horse battery staple"); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	got, err := ks.Unlock("correct horse battery staple")
	if err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if got != sk {
		t.Errorf("Unlock = %q, want %q", got, sk)
	}
}

func TestKeyStoreUnlockRejectsWrongPassphrase(t *testing.T) {
	ks := NewKeyStore(filepath.Join(t.TempDir(), "nostrdrive.key"))

	if err := ks.Setup("deadbeef", "right-passphrase"); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	if _, err := ks.Unlock("wrong-passphrase"); err == nil {
		t.Fatal("expected Unlock to fail with the wrong passphrase")
	}
}

func TestKeyStoreSetupOverwritesExistingKey(t *testing.T) {
	ks := NewKeyStore(filepath.Join(t.TempDir(), "nostrdrive.key"))

	if err := ks.Setup("aaaa", "pass1"); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := ks.Setup("bbbb", "pass2"); err != nil {
		t.Fatalf("Setup (again): %v", err)
	}

	if _, err := ks.Unlock("pass1"); err == nil {
		t.Fatal("expected the old passphrase to no longer unlock the key")
	}
	got, err := ks.Unlock("pass2")
	if err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if got != "bbbb" {
		t.Errorf("Unlock = %q, want %q", got, "bbbb")
	}
}

func TestKeyStoreIsConfiguredBeforeAndAfterSetup(t *testing.T) {
	ks := NewKeyStore(filepath.Join(t.TempDir(), "nested", "nostrdrive.key"))

	if ks.IsConfigured() {
		t.Fatal("IsConfigured = true before Setup")
	}
	if err := ks.Setup("deadbeef", "passphrase"); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if !ks.IsConfigured() {
		t.Fatal("IsConfigured = false after Setup")
	}
}

func TestKeyStoreUnlockWithoutSetupFails(t *testing.T) {
	ks := NewKeyStore(filepath.Join(t.TempDir(), "missing.key"))
	if _, err := ks.Unlock("whatever"); err == nil {
		t.Fatal("expected Unlock to fail when no key file exists")
	}
}
