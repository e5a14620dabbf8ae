package plugins

import (
	"io"
	"log/slog"
	"slices"
	"testing"

	"github.com/regenrek/panestore/internal/store"
	"github.com/regenrek/panestore/internal/value"
)

func TestNamesMergesEnabledAndStored(t *testing.T) {
	st := store.New(store.Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	st.SetPluginTree("Alpha", value.Map{"color": value.String("red")})
	got := names(st)
	if !slices.IsSorted(got) {
		t.Fatalf("names not sorted: %v", got)
	}
	for _, want := range []string{"Alpha", "APTURLHandler", "LaunchpadBugURLHandler"} {
		if !slices.Contains(got, want) {
			t.Fatalf("names = %v, missing %q", got, want)
		}
	}

	info := settings(st, "Alpha", enabledPlugins(st))
	if info.Enabled || info.Settings["color"] != "red" {
		t.Fatalf("settings = %+v", info)
	}
	if !settings(st, "APTURLHandler", enabledPlugins(st)).Enabled {
		t.Fatalf("enabled plugin reported disabled")
	}
}
