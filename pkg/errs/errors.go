package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Category names reported by Category.
const (
	CategoryConfiguration = "configuration"
	CategorySerialization = "serialization"
	CategoryEncryption    = "encryption"
	CategoryIntegrity     = "integrity"
	CategoryIO            = "io"
	CategoryStorage       = "storage"
	CategoryUnknown       = "unknown"
)

// DomainError is a SaveVault error with a structured code.
type DomainError struct {
	Code    string // Error code (e.g., "SV-SER-4001")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Details != "" {
		b.WriteString(": ")
		b.WriteString(e.Details)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new DomainError with the given code and message.
func New(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithDetailsf is WithDetails with fmt formatting.
func (e *DomainError) WithDetailsf(format string, args ...any) *DomainError {
	return e.WithDetails(fmt.Sprintf(format, args...))
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// Wrap wraps an error with this domain error as the cause.
func (e *DomainError) Wrap(cause error) *DomainError {
	return e.WithCause(cause)
}

// Category returns the error family derived from the code.
func (e *DomainError) Category() string {
	parts := strings.SplitN(e.Code, "-", 3)
	if len(parts) < 3 {
		return CategoryUnknown
	}
	switch parts[1] {
	case "CONF":
		return CategoryConfiguration
	case "SER":
		return CategorySerialization
	case "ENC":
		return CategoryEncryption
	case "INT":
		return CategoryIntegrity
	case "IO":
		return CategoryIO
	case "STOR":
		return CategoryStorage
	default:
		return CategoryUnknown
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Category returns the category of err, or CategoryUnknown when err carries
// no DomainError.
func Category(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Category()
	}
	return CategoryUnknown
}

// ============================================================================
// Configuration Errors (CONF)
// ============================================================================

var (
	// ErrInvalidConfig indicates a configuration value failed validation.
	ErrInvalidConfig = New("SV-CONF-4000", "invalid configuration")

	// ErrInvalidKeySize indicates an unsupported cipher key size.
	ErrInvalidKeySize = New("SV-CONF-4001", "invalid key size")

	// ErrInvalidIVSize indicates an unsupported IV size.
	ErrInvalidIVSize = New("SV-CONF-4002", "invalid iv size")

	// ErrEmptyPassphrase indicates the encryption pass-phrase is empty.
	ErrEmptyPassphrase = New("SV-CONF-4003", "encryption passphrase is empty")

	// ErrEmptySalt indicates the integrity salt is empty.
	ErrEmptySalt = New("SV-CONF-4004", "integrity salt is empty")

	// ErrInvalidInterval indicates a non-positive auto-save interval.
	ErrInvalidInterval = New("SV-CONF-4005", "auto-save interval must be positive")

	// ErrUnknownFormat indicates an unknown serialization format.
	ErrUnknownFormat = New("SV-CONF-4006", "unknown serialization format")

	// ErrUnknownAlgorithm indicates an unknown cipher algorithm.
	ErrUnknownAlgorithm = New("SV-CONF-4007", "unknown cipher algorithm")

	// ErrUnknownKDF indicates an unknown key derivation function.
	ErrUnknownKDF = New("SV-CONF-4008", "unknown key derivation function")

	// ErrUnknownManifest indicates an unknown manifest backend.
	ErrUnknownManifest = New("SV-CONF-4009", "unknown manifest backend")
)

// ============================================================================
// Serialization Errors (SER)
// ============================================================================

var (
	// ErrUnsupportedShape indicates a value or discriminator outside the closed shape set.
	ErrUnsupportedShape = New("SV-SER-4001", "unsupported shape")

	// ErrMalformedData indicates the encoded bytes are truncated or corrupt.
	ErrMalformedData = New("SV-SER-4002", "malformed data")

	// ErrShapeMismatch indicates the encoded shape does not fit the target.
	ErrShapeMismatch = New("SV-SER-4003", "shape mismatch")

	// ErrPanic indicates a value's own methods panicked while being encoded
	// or decoded.
	ErrPanic = New("SV-SER-5001", "serialization panicked")
)

// ============================================================================
// Encryption Errors (ENC)
// ============================================================================

var (
	// ErrCiphertextTooShort indicates the ciphertext is shorter than its IV.
	ErrCiphertextTooShort = New("SV-ENC-4001", "ciphertext too short")

	// ErrDecryptionFailed indicates authentication or padding failure.
	ErrDecryptionFailed = New("SV-ENC-4002", "decryption failed")

	// ErrEncryptionFailed indicates the plaintext could not be encrypted.
	ErrEncryptionFailed = New("SV-ENC-5001", "encryption failed")

	// ErrKeyDerivation indicates the cipher key could not be derived.
	ErrKeyDerivation = New("SV-ENC-4003", "key derivation failed")
)

// ============================================================================
// Integrity Errors (INT)
// ============================================================================

var (
	// ErrIntegrityMismatch indicates the sidecar hash does not match the record.
	ErrIntegrityMismatch = New("SV-INT-4001", "integrity check failed")
)

// ============================================================================
// IO Errors (IO)
// ============================================================================

var (
	// ErrIO indicates a filesystem operation failed.
	ErrIO = New("SV-IO-5001", "filesystem error")

	// ErrRecordTooLarge indicates a record exceeds the configured read limit.
	ErrRecordTooLarge = New("SV-IO-4131", "record too large")
)

// ============================================================================
// Storage Errors (STOR)
// ============================================================================

var (
	// ErrNotFound indicates no record exists for the key.
	ErrNotFound = New("SV-STOR-4040", "record not found")

	// ErrInvalidKey indicates an empty or otherwise unusable storage key.
	ErrInvalidKey = New("SV-STOR-4000", "invalid storage key")

	// ErrClosed indicates the provider has been closed.
	ErrClosed = New("SV-STOR-5030", "provider closed")
)
