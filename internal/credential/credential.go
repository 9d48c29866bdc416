// Package credential owns the 32-byte master key and binds it to the
// operating system's credential service (macOS Keychain, Linux Secret
// Service, Windows Credential Manager) through zalando/go-keyring.
package credential

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"sync"

	"github.com/zalando/go-keyring"

	werrors "solwallet/internal/errors"
	wlog "solwallet/internal/log"
)

const (
	// defaultService is the namespaced credential-service identifier.
	// Override with SOLWALLET_KEYRING_SERVICE for test isolation.
	defaultService = "solwallet"
	serviceEnvVar  = "SOLWALLET_KEYRING_SERVICE"

	// account is the single logical account under the service; this
	// package owns exactly one master key per service name.
	account = "master-key"

	keySize = 32
)

// acquireMu serializes Acquire and Reset across every Custodian in the
// process, so two Custodians bound to the same service cannot both miss
// on Get and each keep their own freshly generated key.
var acquireMu sync.Mutex

// Custodian owns the master key's lifecycle against the OS credential
// service. It is safe for concurrent use within a process. Across
// processes, the re-Get after Set narrows, but does not close, the
// window in which two first-time acquirers each read back their own key.
type Custodian struct {
	service string
}

// New returns a Custodian bound to the service name resolved from
// SOLWALLET_KEYRING_SERVICE, falling back to the package default.
func New() *Custodian {
	service := os.Getenv(serviceEnvVar)
	if service == "" {
		service = defaultService
	}
	return &Custodian{service: service}
}

// NewWithService returns a Custodian bound to an explicit service name,
// bypassing the environment override. Intended for tests that need
// several independent custodians in one process.
func NewWithService(service string) *Custodian {
	return &Custodian{service: service}
}

// Acquire returns the master key, generating and persisting one through
// the OS credential service on first use. Concurrent first-time
// acquisitions within one process converge to the same key: they
// serialize on acquireMu, and the later one finds the earlier one's key
// on Get.
func (c *Custodian) Acquire() ([]byte, error) {
	acquireMu.Lock()
	defer acquireMu.Unlock()

	existing, err := keyring.Get(c.service, account)
	if err == nil {
		return decodeKey(existing)
	}
	if err != keyring.ErrNotFound {
		wlog.Error("credential: keyring Get failed", wlog.String("service", c.service), wlog.Err(err))
		return nil, werrors.Wrap(werrors.ErrCredentialUnavailable, err.Error())
	}

	generated := make([]byte, keySize)
	if _, err := rand.Read(generated); err != nil {
		return nil, werrors.NewCryptoError("rand", err)
	}

	if err := keyring.Set(c.service, account, hex.EncodeToString(generated)); err != nil {
		wlog.Error("credential: keyring Set failed", wlog.String("service", c.service), wlog.Err(err))
		return nil, werrors.Wrap(werrors.ErrCredentialUnavailable, err.Error())
	}

	// Re-Get: a concurrent first-time acquirer (another process) may
	// have set its own key between our Get and our Set. Whatever reads
	// back now is authoritative; ours is discarded if it lost the race.
	authoritative, err := keyring.Get(c.service, account)
	if err != nil {
		wlog.Error("credential: keyring re-Get failed", wlog.String("service", c.service), wlog.Err(err))
		return nil, werrors.Wrap(werrors.ErrCredentialUnavailable, err.Error())
	}
	return decodeKey(authoritative)
}

// Reset deletes the master key entry. Every record in every store bound
// to this service becomes undecryptable once this returns.
func (c *Custodian) Reset() error {
	acquireMu.Lock()
	defer acquireMu.Unlock()

	err := keyring.Delete(c.service, account)
	if err != nil && err != keyring.ErrNotFound {
		return werrors.Wrap(werrors.ErrCredentialUnavailable, err.Error())
	}
	return nil
}

func decodeKey(s string) ([]byte, error) {
	if len(s) != keySize*2 {
		return nil, werrors.Wrap(werrors.ErrCredentialUnavailable, "stored master key has unexpected length")
	}
	out, err := hex.DecodeString(s)
	if err != nil {
		return nil, werrors.Wrap(werrors.ErrCredentialUnavailable, "stored master key is not valid hex")
	}
	return out, nil
}
