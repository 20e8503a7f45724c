// Package logger builds the slog loggers used across SaveVault.
//
//   - logger.go: handler construction, dynamic level, process default
//   - redact.go: masking of secret-looking attributes
//   - context.go: carrying a logger through a context
//
// Loggers are plain *slog.Logger values so components can accept one in
// their options and fall back to slog.Default().
package logger
