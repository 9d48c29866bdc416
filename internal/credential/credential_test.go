package credential

import (
	"encoding/hex"
	"sync"
	"testing"

	"github.com/zalando/go-keyring"

	werrors "solwallet/internal/errors"
)

func TestMain(m *testing.M) {
	keyring.MockInit()
	m.Run()
}

func TestAcquireGeneratesOnFirstUse(t *testing.T) {
	c := NewWithService("solwallet-test-acquire")
	defer c.Reset()

	key, err := c.Acquire()
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if len(key) != keySize {
		t.Fatalf("got key length %d, want %d", len(key), keySize)
	}
}

func TestAcquireIsIdempotent(t *testing.T) {
	c := NewWithService("solwallet-test-idempotent")
	defer c.Reset()

	k1, err := c.Acquire()
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	k2, err := c.Acquire()
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if string(k1) != string(k2) {
		t.Error("second Acquire returned a different key than the first")
	}
}

func TestTwoCustodiansConvergeOnSameService(t *testing.T) {
	a := NewWithService("solwallet-test-converge")
	b := NewWithService("solwallet-test-converge")
	defer a.Reset()

	var wg sync.WaitGroup
	keys := make([][]byte, 2)
	wg.Add(2)
	go func() { defer wg.Done(); keys[0], _ = a.Acquire() }()
	go func() { defer wg.Done(); keys[1], _ = b.Acquire() }()
	wg.Wait()

	if string(keys[0]) != string(keys[1]) {
		t.Error("concurrent first-time acquisitions did not converge to the same key")
	}
}

func TestResetThenAcquireGeneratesFreshKey(t *testing.T) {
	c := NewWithService("solwallet-test-reset")
	defer c.Reset()

	k1, err := c.Acquire()
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if err := c.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	k2, err := c.Acquire()
	if err != nil {
		t.Fatalf("Acquire after Reset: %v", err)
	}
	if string(k1) == string(k2) {
		t.Error("Acquire after Reset returned the same key; expected a fresh one")
	}
}

func TestResetOnAbsentEntryIsNotAnError(t *testing.T) {
	c := NewWithService("solwallet-test-reset-absent")
	if err := c.Reset(); err != nil {
		t.Fatalf("Reset on absent entry: %v", err)
	}
}

func TestNewReadsServiceOverrideFromEnv(t *testing.T) {
	t.Setenv(serviceEnvVar, "solwallet-test-env-override")
	c := New()
	if c.service != "solwallet-test-env-override" {
		t.Errorf("service = %q, want env override", c.service)
	}
}

func TestDecodeKeyRejectsWrongLength(t *testing.T) {
	if _, err := decodeKey("abcd"); !werrors.Is(err, werrors.ErrCredentialUnavailable) {
		t.Errorf("err = %v; want ErrCredentialUnavailable", err)
	}
}

func TestDecodeKeyRejectsNonHex(t *testing.T) {
	bad := make([]byte, keySize*2)
	for i := range bad {
		bad[i] = 'z'
	}
	if _, err := decodeKey(string(bad)); !werrors.Is(err, werrors.ErrCredentialUnavailable) {
		t.Errorf("err = %v; want ErrCredentialUnavailable", err)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	orig := make([]byte, keySize)
	for i := range orig {
		orig[i] = byte(i)
	}
	decoded, err := decodeKey(hex.EncodeToString(orig))
	if err != nil {
		t.Fatalf("decodeKey: %v", err)
	}
	if string(decoded) != string(orig) {
		t.Error("encode/decode round trip did not preserve key bytes")
	}
}
