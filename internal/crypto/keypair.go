package crypto

import (
	"crypto/ed25519"
	stdrand "crypto/rand"

	werrors "solwallet/internal/errors"
)

// Keypair holds a 32-byte Ed25519 seed and its derived 32-byte public
// key. The seed is the only secret; call Close to zero it once the
// keypair is no longer needed.
type Keypair struct {
	seed   *KeyMaterial
	Public [32]byte
}

// NewKeypair generates a fresh Ed25519 keypair from a CSPRNG.
func NewKeypair() (*Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(stdrand.Reader)
	if err != nil {
		return nil, werrors.NewCryptoError("rand", err)
	}
	kp := &Keypair{seed: NewKeyMaterial(priv.Seed())}
	copy(kp.Public[:], pub)
	return kp, nil
}

// KeypairFromSeed derives the public key for a given 32-byte seed and
// returns a Keypair wrapping both.
func KeypairFromSeed(seed []byte) (*Keypair, error) {
	if len(seed) != SeedSize {
		return nil, werrors.NewValidationError("seed", "must be 32 bytes")
	}
	priv := ed25519.NewKeyFromSeed(seed)
	kp := &Keypair{seed: NewKeyMaterial(seed)}
	copy(kp.Public[:], priv.Public().(ed25519.PublicKey))
	return kp, nil
}

// Seed returns the 32-byte seed. Returns nil once Close has been
// called.
func (k *Keypair) Seed() []byte {
	return k.seed.Bytes()
}

// Close zeros the seed material. Idempotent.
func (k *Keypair) Close() {
	k.seed.Close()
}

// DerivePublic returns the Ed25519 public key corresponding to seed,
// without retaining any reference to seed.
func DerivePublic(seed []byte) [32]byte {
	priv := ed25519.NewKeyFromSeed(seed)
	var pub [32]byte
	copy(pub[:], priv.Public().(ed25519.PublicKey))
	return pub
}
