package logger

import (
	"fmt"
	"log/slog"
	"strings"
)

const redactedValue = "***REDACTED***"

// Fragments of attribute names that carry secrets. Storage keys are logged
// under "key", so plain "key" is not one of them.
var sensitiveKeyPatterns = []string{
	"passphrase",
	"password",
	"secret",
	"salt",
	"credential",
	"encryption_key",
}

// IsSensitiveKey reports whether an attribute name suggests secret content.
func IsSensitiveKey(name string) bool {
	name = strings.ToLower(name)
	for _, p := range sensitiveKeyPatterns {
		if strings.Contains(name, p) {
			return true
		}
	}
	return false
}

// redactSensitive masks non-empty strings under sensitive names and
// replaces raw byte slices, which hold record contents, by their length.
// Groups are walked recursively.
func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		if a.Value.String() != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
	case slog.KindAny:
		if b, ok := a.Value.Any().([]byte); ok {
			return slog.String(a.Key, fmt.Sprintf("<%d bytes>", len(b)))
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i := range attrs {
			out[i] = redactSensitive(attrs[i])
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	return a
}
