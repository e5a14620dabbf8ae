package userpath

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandUser(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("cannot get home dir: %v", err)
	}
	cases := map[string]string{
		"":                    "",
		"~":                   home,
		"~/.config/panestore": filepath.Join(home, ".config/panestore"),
		"/etc/panestore.yml":  "/etc/panestore.yml",
		"relative/config.yml": "relative/config.yml",
		"~someone/config.yml": "~someone/config.yml",
		"/srv/~cache/layouts": "/srv/~cache/layouts",
	}
	for in, want := range cases {
		if got := ExpandUser(in); got != want {
			t.Fatalf("ExpandUser(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestShortenUserWholeComponents(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("cannot get home dir: %v", err)
	}
	cases := map[string]string{
		"":                         "",
		home:                       "~",
		filepath.Join(home, "src"): "~/src",
		home + "extra":             home + "extra",
		"/usr/local/bin":           "/usr/local/bin",
	}
	for in, want := range cases {
		if got := ShortenUser(in); got != want {
			t.Fatalf("ShortenUser(%q) = %q, want %q", in, got, want)
		}
	}
	for _, p := range []string{"~", "~/work/logs"} {
		if got := ShortenUser(ExpandUser(p)); got != p {
			t.Fatalf("round trip %q -> %q", p, got)
		}
	}
}
