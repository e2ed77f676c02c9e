// Package logger provides structured logging for relaychat.
package logger

import (
	"log/slog"
	"strings"
	"sync/atomic"
)

// Sensitive key patterns that are always redacted. The access token
// must never reach a log sink in the clear.
var sensitiveKeyPatterns = []string{
	"token",
	"secret",
	"password",
	"credential",
}

// Address key patterns redacted only in safe mode.
var addressKeyPatterns = []string{
	"remote_addr",
	"remote_ip",
	"peer_addr",
}

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// safeMode additionally hides client addresses, for operators who
// publish or share their logs.
var safeMode atomic.Bool

// SetSafeMode toggles address redaction at runtime.
func SetSafeMode(on bool) {
	safeMode.Store(on)
}

// SafeMode reports whether address redaction is active.
func SafeMode() bool {
	return safeMode.Load()
}

// redactSensitive checks if an attribute contains sensitive data
// and redacts it if necessary.
func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString {
		if a.Value.String() == "" {
			return a
		}
		if IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
		if safeMode.Load() && isAddressKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
	}

	// Handle nested groups recursively.
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	return a
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

func isAddressKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range addressKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}
