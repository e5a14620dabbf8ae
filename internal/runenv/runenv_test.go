package runenv

import (
	"testing"
	"time"
)

func TestWatchDebounce(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Duration
	}{
		{"", 250 * time.Millisecond},
		{"2s", 2 * time.Second},
		{"40", 40 * time.Millisecond},
		{"nope", 250 * time.Millisecond},
		{"-3", 250 * time.Millisecond},
		{"0s", 250 * time.Millisecond},
	}
	for _, tc := range cases {
		t.Setenv(WatchDebounceEnv, tc.raw)
		if got := WatchDebounce(); got != tc.want {
			t.Fatalf("WatchDebounce(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestNoSave(t *testing.T) {
	for raw, want := range map[string]bool{"": false, "1": true, "yes": true, "off": false, "FALSE": false} {
		t.Setenv(NoSaveEnv, raw)
		if got := NoSave(); got != want {
			t.Fatalf("NoSave(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestTrimmedOverrides(t *testing.T) {
	t.Setenv(ProfileEnv, "  work ")
	t.Setenv(ConfigPathEnv, " /tmp/p.yml")
	if got := Profile(); got != "work" {
		t.Fatalf("Profile() = %q, want work", got)
	}
	if got := ConfigPath(); got != "/tmp/p.yml" {
		t.Fatalf("ConfigPath() = %q, want /tmp/p.yml", got)
	}
}
