package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestRedactSensitive(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		redacted bool
	}{
		{"passphrase", "passphrase", "hunter2", true},
		{"salt", "integrity_salt", "pepper", true},
		{"secret", "client_secret", "s3cr3t", true},
		{"password uppercase", "PASSWORD", "pw", true},
		{"encryption key", "encryption_key", "abcd", true},
		{"storage key", "key", "player_profile", false},
		{"file id", "file_id", "0123abcd", false},
		{"empty secret", "passphrase", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := redactSensitive(slog.String(tt.key, tt.value))
			isRedacted := got.Value.String() == redactedValue
			if isRedacted != tt.redacted {
				t.Errorf("redactSensitive(%q=%q) = %q, redacted=%v want %v",
					tt.key, tt.value, got.Value.String(), isRedacted, tt.redacted)
			}
		})
	}
}

func TestRedactSensitive_Group(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.Info("config loaded",
		slog.Group("encryption",
			slog.String("algorithm", "aes-cbc"),
			slog.String("passphrase", "do-not-print"),
		),
	)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON log: %v", err)
	}
	group, ok := entry["encryption"].(map[string]any)
	if !ok {
		t.Fatalf("encryption group missing: %v", entry)
	}
	if group["passphrase"] != redactedValue {
		t.Errorf("passphrase = %v, want redacted", group["passphrase"])
	}
	if group["algorithm"] != "aes-cbc" {
		t.Errorf("algorithm = %v, want aes-cbc", group["algorithm"])
	}
}

func TestRedactSensitive_NonString(t *testing.T) {
	a := slog.Int("salt_length", 16)
	if got := redactSensitive(a); got.Value.Int64() != 16 {
		t.Errorf("non-string attribute changed: %v", got)
	}
}

func TestIsSensitiveKey(t *testing.T) {
	if !IsSensitiveKey("Passphrase") {
		t.Error("Passphrase should be sensitive")
	}
	if IsSensitiveKey("key") {
		t.Error("plain key should not be sensitive")
	}
}

func TestRedactSensitive_Bytes(t *testing.T) {
	got := redactSensitive(slog.Any("record", []byte{1, 2, 3}))
	if got.Value.String() != "<3 bytes>" {
		t.Errorf("byte slice attribute = %q, want <3 bytes>", got.Value.String())
	}
}
