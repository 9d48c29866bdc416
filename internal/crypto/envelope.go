package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"

	werrors "solwallet/internal/errors"
)

// NonceSize is the length in bytes of the AES-GCM nonce stored alongside
// each record (spec: 12-byte value, unique per record per master-key
// epoch).
const NonceSize = 12

// SeedSize is the length in bytes of an Ed25519 seed, the only plaintext
// this envelope ever protects.
const SeedSize = 32

// Seal encrypts a 32-byte Ed25519 seed under key (the 32-byte master
// key) with a freshly drawn random nonce. Associated data is empty in
// this schema version, matching spec §4.4. Returns the nonce and the
// ciphertext-with-tag (seed length + 16-byte GCM tag).
func Seal(key, seed []byte) (nonce, ciphertext []byte, err error) {
	if len(seed) != SeedSize {
		return nil, nil, werrors.NewCryptoError("seal", werrors.NewValidationError("seed", "must be 32 bytes"))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, werrors.NewCryptoError("seal", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, NonceSize)
	if err != nil {
		return nil, nil, werrors.NewCryptoError("seal", err)
	}

	nonce = make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, werrors.NewCryptoError("seal", err)
	}

	ciphertext = gcm.Seal(nil, nonce, seed, nil)
	return nonce, ciphertext, nil
}

// Open decrypts a ciphertext-with-tag produced by Seal, returning the
// original 32-byte seed. A tag mismatch (wrong master key, corrupted or
// tampered ciphertext) surfaces as werrors.ErrAuthFailed.
func Open(key, nonce, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, werrors.NewCryptoError("open", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, NonceSize)
	if err != nil {
		return nil, werrors.NewCryptoError("open", err)
	}

	seed, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, werrors.ErrAuthFailed
	}
	return seed, nil
}
