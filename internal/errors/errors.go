// Package errors provides typed errors for solwallet operations.
// This enables callers to use errors.Is() and errors.As() for specific error handling.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the error taxonomy used across the validator,
// scanner, custodian, store, and vanity engine.
// Use errors.Is(err, errors.ErrCancelled) to check for specific errors.
var (
	// Operation outcomes
	ErrCancelled  = errors.New("operation cancelled")
	ErrTimedOut   = errors.New("operation timed out")
	ErrAuthFailed = errors.New("authentication failed")

	// Store membership
	ErrDuplicateID = errors.New("wallet id already exists")
	ErrNotFound    = errors.New("wallet not found")

	// File / data validity
	ErrParseError     = errors.New("keypair file malformed")
	ErrInvalidKeypair = errors.New("public key does not match derived key")
	ErrStoreCorrupt   = errors.New("wallet store corrupt")
	ErrStoreIO        = errors.New("wallet store I/O failure")

	// Vanity engine
	ErrInvalidPrefix = errors.New("vanity prefix is not valid base58")

	// Credential service
	ErrCredentialUnavailable = errors.New("credential service unavailable")

	// Chain client (external collaborator): RPC-level failures that
	// retrying the same request will not fix.
	ErrChainTerminal = errors.New("chain request rejected")
)

// CryptoError represents an error during cryptographic operations
// (key derivation, sealing, opening the per-record envelope).
type CryptoError struct {
	Op  string // Operation name: "seal", "open", "derive", "rand"
	Err error  // Underlying error
}

func (e *CryptoError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("crypto %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("crypto %s failed", e.Op)
}

func (e *CryptoError) Unwrap() error {
	return e.Err
}

// NewCryptoError creates a new CryptoError.
func NewCryptoError(op string, err error) *CryptoError {
	return &CryptoError{Op: op, Err: err}
}

// FileError represents an error during file operations.
type FileError struct {
	Op   string // Operation: "open", "read", "write", "stat", "rename", "fsync"
	Path string // File path
	Err  error  // Underlying error
}

func (e *FileError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s failed", e.Op, e.Path)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// NewFileError creates a new FileError.
func NewFileError(op, path string, err error) *FileError {
	return &FileError{Op: op, Path: path, Err: err}
}

// ValidationError represents an input validation error. Its message
// never contains secret material, so it is safe to surface verbatim on
// the shell's status line.
type ValidationError struct {
	Field   string // Field name that failed validation
	Message string // Human-readable error message
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// StoreError represents a failure in the encrypted store's persistence
// or lookup path, with the wallet id attached when relevant.
type StoreError struct {
	Op  string // Operation: "insert", "remove", "list", "reveal", "load", "persist"
	ID  string // wallet id involved, if any
	Err error
}

func (e *StoreError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("store %s %q: %v", e.Op, e.ID, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s failed", e.Op)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps a store-layer failure with operation context.
func NewStoreError(op, id string, err error) *StoreError {
	return &StoreError{Op: op, ID: id, Err: err}
}

// Is checks if target matches any of our sentinel errors.
// This is a convenience function for common error checks.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsCancelled checks if the error indicates a cancelled operation.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

// IsAuthFailed checks if the error indicates authentication failure.
func IsAuthFailed(err error) bool {
	return errors.Is(err, ErrAuthFailed)
}

// IsCorrupt checks if the error indicates store corruption.
func IsCorrupt(err error) bool {
	return errors.Is(err, ErrStoreCorrupt)
}
