package buildinfo

import (
	"runtime"
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()

	for name, v := range map[string]string{
		"Version":   info.Version,
		"Commit":    info.Commit,
		"BuildTime": info.BuildTime,
		"GoVersion": info.GoVersion,
	} {
		if v == "" {
			t.Errorf("%s is empty", name)
		}
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", info.GoVersion, runtime.Version())
	}
}

func TestGet_LdflagsWin(t *testing.T) {
	oldCommit, oldTime := Commit, BuildTime
	t.Cleanup(func() { Commit, BuildTime = oldCommit, oldTime })

	Commit = "0123456789abcdef0123"
	BuildTime = "2025-01-02T03:04:05Z"

	info := Get()
	if info.Commit != Commit || info.BuildTime != BuildTime {
		t.Errorf("Get() = %+v, want ldflags values", info)
	}

	s := String()
	if !strings.Contains(s, "(0123456789ab)") {
		t.Errorf("String() = %q, want short commit", s)
	}
	if !strings.HasSuffix(s, "built at 2025-01-02T03:04:05Z") {
		t.Errorf("String() = %q", s)
	}
}

func TestShortCommit(t *testing.T) {
	tests := []struct{ in, want string }{
		{"abc", "abc"},
		{"0123456789abcdef", "0123456789ab"},
		{"unknown", "unknown"},
	}
	for _, tt := range tests {
		if got := shortCommit(tt.in); got != tt.want {
			t.Errorf("shortCommit(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
