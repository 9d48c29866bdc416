// Package crypto provides the cryptographic primitives for solwallet: the
// AES-256-GCM per-record envelope (envelope.go), Ed25519 keypair
// generation/derivation (keypair.go), and the memory zeroing utilities
// below for cleaning up secret seeds once they leave the store.
package crypto

import (
	"crypto/subtle"
)

// SecureZero overwrites a byte slice with zeros to prevent sensitive data
// from persisting in memory. This helps mitigate memory dump attacks and
// reduces the window during which seeds are recoverable from RAM.
//
// Due to Go's garbage collector and potential compiler optimizations,
// this function cannot guarantee complete erasure. However, it
// significantly reduces the attack surface compared to no cleanup.
//
// The function uses subtle.ConstantTimeCopy to prevent the compiler from
// optimizing away the zeroing operation.
func SecureZero(b []byte) {
	if len(b) == 0 {
		return
	}
	zeros := make([]byte, len(b))
	subtle.ConstantTimeCopy(1, b, zeros)
}

// SecureZeroMultiple zeros multiple byte slices in a single call.
func SecureZeroMultiple(slices ...[]byte) {
	for _, s := range slices {
		SecureZero(s)
	}
}

// KeyMaterial wraps sensitive key data (a 32-byte master key or Ed25519
// seed) with automatic zeroing on Close. Use this for any secret that
// must live only within the narrowest possible scope.
//
// Example:
//
//	km := NewKeyMaterial(seed)
//	defer km.Close()
//	// ... use km.Bytes() ...
type KeyMaterial struct {
	data   []byte
	closed bool
}

// NewKeyMaterial creates a new KeyMaterial wrapper.
// The data is copied to prevent modification of the original slice.
func NewKeyMaterial(data []byte) *KeyMaterial {
	if data == nil {
		return &KeyMaterial{}
	}
	copied := make([]byte, len(data))
	copy(copied, data)
	return &KeyMaterial{data: copied}
}

// Bytes returns the underlying key data.
// Returns nil if the KeyMaterial has been closed.
func (km *KeyMaterial) Bytes() []byte {
	if km.closed {
		return nil
	}
	return km.data
}

// Len returns the length of the key data.
func (km *KeyMaterial) Len() int {
	if km.closed || km.data == nil {
		return 0
	}
	return len(km.data)
}

// Close securely zeros the key data and marks it as closed.
// This method is idempotent - multiple calls are safe.
func (km *KeyMaterial) Close() {
	if km.closed || km.data == nil {
		return
	}
	SecureZero(km.data)
	km.data = nil
	km.closed = true
}

// IsClosed returns whether the KeyMaterial has been closed.
func (km *KeyMaterial) IsClosed() bool {
	return km.closed
}
