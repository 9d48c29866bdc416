package crypto

import (
	"bytes"
	"crypto/rand"
	"testing"

	werrors "solwallet/internal/errors"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}
	return key
}

func TestSealOpenRoundTrip(t *testing.T) {
	key := testKey(t)
	seed := make([]byte, SeedSize)
	if _, err := rand.Read(seed); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}

	nonce, ciphertext, err := Seal(key, seed)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if len(nonce) != NonceSize {
		t.Fatalf("nonce length = %d; want %d", len(nonce), NonceSize)
	}
	if len(ciphertext) != SeedSize+16 {
		t.Fatalf("ciphertext length = %d; want %d", len(ciphertext), SeedSize+16)
	}

	got, err := Open(key, nonce, ciphertext)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !bytes.Equal(got, seed) {
		t.Error("Open did not return the original seed")
	}
}

func TestOpenWrongKeyFails(t *testing.T) {
	key := testKey(t)
	wrongKey := testKey(t)
	seed := make([]byte, SeedSize)
	rand.Read(seed)

	nonce, ciphertext, err := Seal(key, seed)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	_, err = Open(wrongKey, nonce, ciphertext)
	if !werrors.Is(err, werrors.ErrAuthFailed) {
		t.Fatalf("Open with wrong key: err = %v; want ErrAuthFailed", err)
	}
}

func TestOpenTamperedCiphertextFails(t *testing.T) {
	key := testKey(t)
	seed := make([]byte, SeedSize)
	rand.Read(seed)

	nonce, ciphertext, err := Seal(key, seed)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	ciphertext[0] ^= 0xFF

	if _, err := Open(key, nonce, ciphertext); !werrors.Is(err, werrors.ErrAuthFailed) {
		t.Fatalf("Open tampered ciphertext: err = %v; want ErrAuthFailed", err)
	}
}

func TestSealRejectsWrongSeedLength(t *testing.T) {
	key := testKey(t)
	if _, _, err := Seal(key, make([]byte, 31)); err == nil {
		t.Error("Seal should reject a seed that is not 32 bytes")
	}
}

func TestSealNoncesAreUnique(t *testing.T) {
	key := testKey(t)
	seed := make([]byte, SeedSize)
	rand.Read(seed)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		nonce, _, err := Seal(key, seed)
		if err != nil {
			t.Fatalf("Seal: %v", err)
		}
		s := string(nonce)
		if seen[s] {
			t.Fatalf("nonce reused across writes: %x", nonce)
		}
		seen[s] = true
	}
}
