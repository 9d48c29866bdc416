// Package store implements the encrypted wallet store: a single JSON
// envelope file mapping wallet id to an AES-256-GCM-sealed seed, with a
// process-local exclusive lock and an atomic-rewrite persistence
// algorithm (temp file + fsync + rename + directory fsync).
package store

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mr-tron/base58"
	"github.com/nightlyone/lockfile"

	wcrypto "solwallet/internal/crypto"
	werrors "solwallet/internal/errors"
	wlog "solwallet/internal/log"
)

// schemaVersion is the on-disk envelope's version tag.
const schemaVersion = 1

// Record is a wallet entry as surfaced to callers outside the store:
// never contains plaintext secret material.
type Record struct {
	ID        string
	PublicKey string // Base58
	CreatedAt time.Time
}

// envelope is the on-disk file shape.
type envelope struct {
	Version int                 `json:"version"`
	Records map[string]onDisk `json:"records"`
}

type onDisk struct {
	PublicKey         string    `json:"public_key"`
	Nonce             string    `json:"nonce"`
	CiphertextWithTag string    `json:"ciphertext_with_tag"`
	CreatedAt         time.Time `json:"created_at"`
}

// Store is a single process's handle on the envelope file at Path. All
// mutating operations serialize on lock: an in-process mutex covering
// the whole critical section, plus a process-local lockfile guarding
// against a second process sharing the same path (cross-process
// concurrent access is otherwise unsupported, per spec).
type Store struct {
	path      string
	masterKey []byte

	mu sync.Mutex
}

// Open returns a Store bound to path, using masterKey to seal and open
// record secrets. masterKey is not copied defensively by this package;
// callers own its lifetime (typically via credential.Custodian).
func Open(path string, masterKey []byte) *Store {
	return &Store{path: path, masterKey: masterKey}
}

// Insert seals seed under the store's master key and persists a new
// record under id. Fails with ErrDuplicateID if id is already present.
func (s *Store) Insert(id string, seed []byte) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	public := wcrypto.DerivePublic(seed)
	pubB58 := base58.Encode(public[:])

	nonce, ciphertext, err := wcrypto.Seal(s.masterKey, seed)
	if err != nil {
		return Record{}, werrors.NewStoreError("insert", id, err)
	}

	now := timeNow()
	rec := onDisk{
		PublicKey:         pubB58,
		Nonce:             hex.EncodeToString(nonce),
		CiphertextWithTag: hex.EncodeToString(ciphertext),
		CreatedAt:         now,
	}

	err = s.withLock(func(env *envelope) (bool, error) {
		if _, exists := env.Records[id]; exists {
			return false, werrors.NewStoreError("insert", id, werrors.ErrDuplicateID)
		}
		env.Records[id] = rec
		return true, nil
	})
	if err != nil {
		return Record{}, err
	}

	wlog.Info("store: inserted record", wlog.String("id", id), wlog.String("public_key", pubB58))
	return Record{ID: id, PublicKey: pubB58, CreatedAt: now}, nil
}

// Remove deletes id. Fails with ErrNotFound if absent.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.withLock(func(env *envelope) (bool, error) {
		if _, exists := env.Records[id]; !exists {
			return false, werrors.NewStoreError("remove", id, werrors.ErrNotFound)
		}
		delete(env.Records, id)
		return true, nil
	})
	if err != nil {
		return err
	}
	wlog.Info("store: removed record", wlog.String("id", id))
	return nil
}

// List returns every record's metadata, without decrypting any secret.
func (s *Store) List() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	env, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(env.Records))
	for id, rec := range env.Records {
		out = append(out, Record{ID: id, PublicKey: rec.PublicKey, CreatedAt: rec.CreatedAt})
	}
	return out, nil
}

// Reveal decrypts and returns the plaintext seed for id. Fails with
// ErrNotFound, ErrAuthFailed (tag mismatch: wrong master key or
// tampered ciphertext), or a *StoreError wrapping an I/O failure.
func (s *Store) Reveal(id string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	env, err := s.load()
	if err != nil {
		return nil, err
	}
	rec, exists := env.Records[id]
	if !exists {
		return nil, werrors.NewStoreError("reveal", id, werrors.ErrNotFound)
	}

	nonce, err := hex.DecodeString(rec.Nonce)
	if err != nil {
		return nil, werrors.NewStoreError("reveal", id, werrors.Wrap(werrors.ErrStoreCorrupt, err.Error()))
	}
	ciphertext, err := hex.DecodeString(rec.CiphertextWithTag)
	if err != nil {
		return nil, werrors.NewStoreError("reveal", id, werrors.Wrap(werrors.ErrStoreCorrupt, err.Error()))
	}

	seed, err := wcrypto.Open(s.masterKey, nonce, ciphertext)
	if err != nil {
		return nil, werrors.NewStoreError("reveal", id, err)
	}

	derived := wcrypto.DerivePublic(seed)
	if base58.Encode(derived[:]) != rec.PublicKey {
		wcrypto.SecureZero(seed)
		return nil, werrors.NewStoreError("reveal", id, werrors.ErrInvalidKeypair)
	}
	return seed, nil
}

// withLock runs mutate against the envelope currently on disk (loading
// it first, or starting empty if absent) and persists the result via
// the atomic-rewrite algorithm if mutate reports a change. mutate
// itself reports whether the envelope was modified; false means no
// write is needed (the operation still failed or was a no-op read).
func (s *Store) withLock(mutate func(env *envelope) (changed bool, err error)) error {
	lock, err := s.acquireLock()
	if err != nil {
		return err
	}
	defer lock.Unlock()

	env, err := s.readEnvelope()
	if err != nil {
		return err
	}

	changed, err := mutate(env)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return s.persist(env)
}

// load reads the envelope without taking the exclusive lock — callers
// already hold s.mu, and a read-only pass does not need to coordinate
// against this process's own writers beyond that.
func (s *Store) load() (*envelope, error) {
	return s.readEnvelope()
}

func (s *Store) readEnvelope() (*envelope, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &envelope{Version: schemaVersion, Records: map[string]onDisk{}}, nil
		}
		return nil, werrors.NewStoreError("load", "", werrors.Wrap(werrors.ErrStoreIO, err.Error()))
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, werrors.NewStoreError("load", "", werrors.Wrap(werrors.ErrStoreCorrupt, err.Error()))
	}
	if env.Records == nil {
		env.Records = map[string]onDisk{}
	}
	return &env, nil
}

// persist writes env via: serialize to a sibling temp file, fsync the
// temp file, rename onto the target path, fsync the containing
// directory. The caller must already hold the process-local lock.
func (s *Store) persist(env *envelope) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return werrors.NewStoreError("persist", "", werrors.Wrap(werrors.ErrStoreIO, err.Error()))
	}

	body, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return werrors.NewStoreError("persist", "", werrors.Wrap(werrors.ErrStoreIO, err.Error()))
	}

	tmp, err := os.CreateTemp(dir, ".solwallet-store-*.tmp")
	if err != nil {
		return werrors.NewStoreError("persist", "", werrors.Wrap(werrors.ErrStoreIO, err.Error()))
	}
	tmpPath := tmp.Name()
	cleanup := true
	defer func() {
		if cleanup {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return werrors.NewStoreError("persist", "", werrors.Wrap(werrors.ErrStoreIO, err.Error()))
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return werrors.NewStoreError("persist", "", werrors.Wrap(werrors.ErrStoreIO, err.Error()))
	}
	if err := tmp.Close(); err != nil {
		return werrors.NewStoreError("persist", "", werrors.Wrap(werrors.ErrStoreIO, err.Error()))
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return werrors.NewStoreError("persist", "", werrors.Wrap(werrors.ErrStoreIO, err.Error()))
	}
	cleanup = false

	if dirFile, err := os.Open(dir); err == nil {
		dirFile.Sync()
		dirFile.Close()
	}
	return nil
}

// acquireLock takes the process-local exclusive lock on s.path's
// sibling .lock file, retrying briefly against transient contention
// from a concurrent operation in this same process's lifetime.
func (s *Store) acquireLock() (lockfile.Lockfile, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return "", werrors.NewStoreError("lock", "", werrors.Wrap(werrors.ErrStoreIO, err.Error()))
	}

	lock, err := lockfile.New(s.path + ".lock")
	if err != nil {
		return "", werrors.NewStoreError("lock", "", werrors.Wrap(werrors.ErrStoreIO, err.Error()))
	}

	var lastErr error
	for attempt := 0; attempt < 50; attempt++ {
		if err := lock.TryLock(); err == nil {
			return lock, nil
		} else {
			lastErr = err
		}
		time.Sleep(10 * time.Millisecond)
	}
	return "", werrors.NewStoreError("lock", "", werrors.Wrap(werrors.ErrStoreIO, lastErr.Error()))
}

func timeNow() time.Time {
	return time.Now().UTC()
}
