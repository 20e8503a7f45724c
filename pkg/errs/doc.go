// Package errs defines the coded error taxonomy shared by every SaveVault
// component.
//
// Each error carries a code of the form "SV-<CATEGORY>-<NNNN>". The category
// segment groups errors into the families the facade reports when it logs a
// contained failure:
//
//   - CONF: configuration problems
//   - SER:  serialization (unsupported shape, malformed data)
//   - ENC:  encryption and key derivation
//   - INT:  integrity (hash mismatch)
//   - IO:   filesystem failures
//   - STOR: storage semantics (not found, invalid key)
//
// Errors compare with errors.Is by code, so a wrapped copy carrying details or
// a cause still matches its sentinel.
package errs
