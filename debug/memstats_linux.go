//go:build linux

package debug

// Memory/RSS periodic logger enabled when config.Debug is true.
// Logs peak RSS along with Go heap stats to correlate native vs heap growth.

import (
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sys/unix"
)

// StartMemLogger launches a goroutine that logs memory stats every interval.
// It is best-effort; failures to query RSS are logged once and suppressed.
func StartMemLogger(interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		var rssErrLogged bool
		for range ticker.C {
			var ms runtime.MemStats
			runtime.ReadMemStats(&ms)
			var ru unix.Rusage
			maxRSS := uint64(0)
			if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err == nil {
				maxRSS = uint64(ru.Maxrss) * 1024 // kilobytes on linux
			} else if !rssErrLogged {
				logger.Warn("memlog: getrusage failed", slog.String("err", err.Error()))
				rssErrLogged = true
			}
			logger.Info("memstats",
				slog.Int("goroutines", runtime.NumGoroutine()),
				slog.Uint64("heap_alloc", ms.HeapAlloc),
				slog.Uint64("heap_inuse", ms.HeapInuse),
				slog.Uint64("heap_sys", ms.HeapSys),
				slog.Uint64("next_gc", ms.NextGC),
				slog.Uint64("max_rss", maxRSS),
				slog.Uint64("num_gc", uint64(ms.NumGC)),
			)
		}
	}()
}
