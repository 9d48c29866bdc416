// Package wallet is the thin CRUD orchestration layer over the
// keypair validator, encrypted store, and signer capability: the
// narrow surface the shell calls, including to store vanity-search
// results.
package wallet

import (
	wcrypto "solwallet/internal/crypto"
	werrors "solwallet/internal/errors"
	"solwallet/internal/store"
	"solwallet/internal/validator"
)

// Manager is the high-level wallet CRUD surface, backed by a single
// encrypted store.
type Manager struct {
	store *store.Store
}

// New returns a Manager backed by s.
func New(s *store.Store) *Manager {
	return &Manager{store: s}
}

// Import validates the keypair file at path and inserts it under id.
// Fails with ErrDuplicateID, ErrInvalidKeypair, ErrParseError, or a
// *FileError, matching whichever layer rejected it first.
func (m *Manager) Import(path, id string) (store.Record, error) {
	result, err := validator.Validate(path)
	if err != nil {
		return store.Record{}, err
	}
	defer result.Close()

	return m.store.Insert(id, result.Seed())
}

// CreateRandom generates a fresh Ed25519 keypair from a CSPRNG and
// inserts it under id.
func (m *Manager) CreateRandom(id string) (store.Record, error) {
	kp, err := wcrypto.NewKeypair()
	if err != nil {
		return store.Record{}, werrors.NewCryptoError("generate", err)
	}
	defer kp.Close()

	return m.store.Insert(id, kp.Seed())
}

// AdoptKeypair inserts an already-generated keypair under id — the
// path the shell uses to flow a winning vanity (C6) search result into
// the store without re-deriving or re-validating it.
func (m *Manager) AdoptKeypair(id string, kp *wcrypto.Keypair) (store.Record, error) {
	return m.store.Insert(id, kp.Seed())
}

// Delete removes id from the store.
func (m *Manager) Delete(id string) error {
	return m.store.Remove(id)
}

// List returns every wallet's (id, public_key_base58) pair without
// touching any secret material.
func (m *Manager) List() ([]store.Record, error) {
	return m.store.List()
}

// Signer decrypts id's seed and returns a capability that can sign
// messages on its behalf. The caller must Close the Signer once done
// to zeroize the decrypted seed promptly.
func (m *Manager) Signer(id string) (*Signer, error) {
	seed, err := m.store.Reveal(id)
	if err != nil {
		return nil, err
	}
	defer wcrypto.SecureZero(seed)
	return newSigner(seed)
}
