package logging

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"
)

var (
	logEveryMu      sync.Mutex
	logEveryLast    = map[string]time.Time{}
	maxLogEveryKeys = 256
)

// LogEvery emits a log entry at most once per interval for a key. A nil
// logger uses slog.Default().
func LogEvery(ctx context.Context, logger *slog.Logger, key string, interval time.Duration, level slog.Level, msg string, attrs ...slog.Attr) {
	if logger == nil {
		logger = slog.Default()
	}
	if !logger.Enabled(ctx, level) {
		return
	}
	if key != "" && interval > 0 && !claimLogEvery(key, interval, time.Now()) {
		return
	}
	logger.LogAttrs(ctx, level, msg, attrs...)
}

func claimLogEvery(key string, interval time.Duration, now time.Time) bool {
	logEveryMu.Lock()
	defer logEveryMu.Unlock()
	if last, ok := logEveryLast[key]; ok && now.Sub(last) < interval {
		return false
	}
	logEveryLast[key] = now
	if len(logEveryLast) > maxLogEveryKeys {
		pruneLogEvery()
	}
	return true
}

// pruneLogEvery drops the oldest keys. Caller holds logEveryMu.
func pruneLogEvery() {
	keys := make([]string, 0, len(logEveryLast))
	for key := range logEveryLast {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b string) int {
		return logEveryLast[a].Compare(logEveryLast[b])
	})
	for _, key := range keys[:len(keys)-maxLogEveryKeys] {
		delete(logEveryLast, key)
	}
}
