package debug

// Debug resource logger. Started only with -debug. Each capture track runs
// its own goroutine, so goroutines that keep climbing while the live handle
// count stays flat point at a track that was never stopped.

import (
	"log/slog"
	"runtime"
	"runtime/metrics"
	"sync"
	"time"
)

// HandleCounter reports how many capture handles are live.
type HandleCounter interface {
	Len() int
}

// One camera and one screen handle.
const maxLiveHandles = 2

type resourceSample struct {
	handles    int
	goroutines uint64
	stackInuse uint64
	heapAlloc  uint64
}

func readResources(handles HandleCounter, samples []metrics.Sample) resourceSample {
	metrics.Read(samples)
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return resourceSample{
		handles:    handles.Len(),
		goroutines: samples[0].Value.Uint64(),
		stackInuse: ms.StackInuse,
		heapAlloc:  ms.HeapAlloc,
	}
}

// StartResourceLogger logs live capture handles next to goroutine count and
// stack usage at interval. A line is written only when the handle or
// goroutine count changed; a handle count above one per capture kind is
// logged as a warning.
func StartResourceLogger(interval time.Duration, logger *slog.Logger, handles HandleCounter) (stop func()) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	done := make(chan struct{})
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		samples := []metrics.Sample{{Name: "/sched/goroutines:goroutines"}}
		last := resourceSample{handles: -1}
		for {
			select {
			case <-done:
				return
			case <-t.C:
			}
			s := readResources(handles, samples)
			if s.handles == last.handles && s.goroutines == last.goroutines {
				continue
			}
			last = s
			attrs := []any{
				slog.Int("live", s.handles),
				slog.Uint64("goroutines", s.goroutines),
				slog.Uint64("stack_inuse", s.stackInuse),
				slog.Uint64("heap_alloc", s.heapAlloc),
			}
			if s.handles > maxLiveHandles {
				logger.Warn("capture handles above limit", append(attrs, slog.Int("limit", maxLiveHandles))...)
				continue
			}
			logger.Info("capture resources", attrs...)
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}
