// Package logger provides structured logging for relaychat.
//
// It wraps the standard library log/slog to provide structured JSON or
// text logging with automatic sensitive data redaction.
//
// Features:
//
//   - JSON structured logging (default) or text for interactive use
//   - Automatic redaction of token and secret attributes
//   - Optional safe mode that also redacts client addresses
//   - Dynamic log level adjustment
//   - Context-aware logger propagation
package logger
