// Package validator parses and checks candidate Solana-style keypair
// files: a UTF-8 JSON document whose top-level value is a 64-element
// array of integers in [0,255] — the first 32 bytes are an Ed25519
// seed, the last 32 the claimed public key.
package validator

import (
	"bytes"
	"encoding/json"
	"os"

	wcrypto "solwallet/internal/crypto"
	werrors "solwallet/internal/errors"
)

// keypairLength is the exact byte length a valid keypair file encodes:
// 32-byte seed followed by 32-byte public key.
const keypairLength = 64

// Result holds a validated keypair. The embedded *wcrypto.Keypair owns
// the seed's zeroing; callers that discard a Result without handing it
// to the wallet manager should call Close to scrub the seed promptly.
type Result struct {
	*wcrypto.Keypair
}

// Validate reads path, parses it as a 64-byte keypair, and verifies
// that the derived public key matches the last 32 bytes.
//
// Validate is pure with respect to the filesystem: it performs no
// writes, never logs the seed bytes, and returns no buffer that aliases
// its own temporaries once the keypair's seed has been copied into the
// returned Result.
func Validate(path string) (*Result, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, werrors.NewFileError("read", path, err)
	}

	var ints []int
	if err := json.Unmarshal(raw, &ints); err != nil {
		return nil, werrors.Wrap(werrors.ErrParseError, err.Error())
	}
	if len(ints) != keypairLength {
		return nil, werrors.Wrap(werrors.ErrParseError, "expected exactly 64 integers")
	}

	raw32 := make([]byte, keypairLength)
	for i, v := range ints {
		if v < 0 || v > 255 {
			return nil, werrors.Wrap(werrors.ErrParseError, "integer out of byte range")
		}
		raw32[i] = byte(v)
	}

	seed := raw32[:32]
	claimedPublic := raw32[32:]

	derived := wcrypto.DerivePublic(seed)
	if !bytes.Equal(derived[:], claimedPublic) {
		return nil, werrors.ErrInvalidKeypair
	}

	kp, err := wcrypto.KeypairFromSeed(seed)
	if err != nil {
		return nil, err
	}
	return &Result{Keypair: kp}, nil
}
