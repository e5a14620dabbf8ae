package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func resetLogEvery(t *testing.T, maxKeys int) {
	t.Helper()
	logEveryMu.Lock()
	orig, origMax := logEveryLast, maxLogEveryKeys
	logEveryLast = map[string]time.Time{}
	maxLogEveryKeys = maxKeys
	logEveryMu.Unlock()
	t.Cleanup(func() {
		logEveryMu.Lock()
		logEveryLast, maxLogEveryKeys = orig, origMax
		logEveryMu.Unlock()
	})
}

func TestLogEveryThrottlesPerKey(t *testing.T) {
	resetLogEvery(t, 16)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	for range 3 {
		LogEvery(context.Background(), logger, "watch.reload", time.Hour, slog.LevelWarn, "reload failed")
	}
	LogEvery(context.Background(), logger, "watch.stat", time.Hour, slog.LevelWarn, "stat failed")
	if got := strings.Count(buf.String(), "reload failed"); got != 1 {
		t.Fatalf("reload logged %d times, want 1", got)
	}
	if !strings.Contains(buf.String(), "stat failed") {
		t.Fatalf("second key not logged: %q", buf.String())
	}
}

func TestLogEveryPrunesOldKeys(t *testing.T) {
	resetLogEvery(t, 3)
	logEveryMu.Lock()
	logEveryLast["a"] = time.Unix(1, 0)
	logEveryLast["b"] = time.Unix(2, 0)
	logEveryLast["c"] = time.Unix(3, 0)
	logEveryMu.Unlock()

	if !claimLogEvery("d", time.Millisecond, time.Unix(4, 0)) {
		t.Fatalf("expected new key to be claimed")
	}
	logEveryMu.Lock()
	defer logEveryMu.Unlock()
	if len(logEveryLast) != 3 {
		t.Fatalf("map size = %d, want 3", len(logEveryLast))
	}
	if _, ok := logEveryLast["a"]; ok {
		t.Fatalf("expected oldest key pruned")
	}
}

func TestLogEverySkipsWhenDisabled(t *testing.T) {
	resetLogEvery(t, 16)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn}))
	LogEvery(context.Background(), logger, "key", time.Minute, slog.LevelInfo, "msg")
	logEveryMu.Lock()
	defer logEveryMu.Unlock()
	if len(logEveryLast) != 0 {
		t.Fatalf("expected no entries when level disabled, got %d", len(logEveryLast))
	}
}
