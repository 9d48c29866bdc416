package wallet

import (
	"crypto/ed25519"

	wcrypto "solwallet/internal/crypto"
)

// Signer is a capability object holding a decrypted seed for the
// narrowest scope possible: it cannot be copied through the exported
// API (no exported constructor, no Clone) and its secret material is
// zeroized on Close.
type Signer struct {
	seed    *wcrypto.KeyMaterial
	private ed25519.PrivateKey
	public  [32]byte
}

func newSigner(seed []byte) (*Signer, error) {
	km := wcrypto.NewKeyMaterial(seed)
	priv := ed25519.NewKeyFromSeed(km.Bytes())
	return &Signer{
		seed:    km,
		private: priv,
		public:  wcrypto.DerivePublic(km.Bytes()),
	}, nil
}

// Public returns the signer's Ed25519 public key.
func (s *Signer) Public() [32]byte {
	return s.public
}

// Sign returns the Ed25519 signature of msg. Sign panics if called
// after Close, matching the narrowest-scope contract: a closed Signer
// is not a usable capability.
func (s *Signer) Sign(msg []byte) []byte {
	if s.seed.IsClosed() {
		panic("wallet: Sign called on a closed Signer")
	}
	return ed25519.Sign(s.private, msg)
}

// Close zeroizes the decrypted seed, including the expanded private
// key material ed25519.NewKeyFromSeed derived from it. Safe to call
// more than once.
func (s *Signer) Close() {
	s.seed.Close()
	wcrypto.SecureZero(s.private)
}
