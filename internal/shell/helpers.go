package shell

import (
	"errors"

	"github.com/mr-tron/base58"

	"solwallet/internal/store"
)

var (
	errInvalidRecipient = errors.New("recipient must be a base58-encoded public key")
	errInvalidAmount    = errors.New("amount must be a non-negative integer (lamports)")
)

// publicFromRecord decodes a record's Base58 public key back to raw
// bytes for the external chain client. A malformed stored public key
// (which should never happen given store.Insert's own round-trip
// check) degrades to the zero key rather than panicking the shell.
func publicFromRecord(rec store.Record) [32]byte {
	var out [32]byte
	decoded, err := base58.Decode(rec.PublicKey)
	if err != nil || len(decoded) != 32 {
		return out
	}
	copy(out[:], decoded)
	return out
}
