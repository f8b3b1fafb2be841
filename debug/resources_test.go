package debug

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type counter struct{ n atomic.Int64 }

func (c *counter) Len() int { return int(c.n.Load()) }

func TestStartResourceLogger_WarnsAboveLimit(t *testing.T) {
	out := &syncBuffer{}
	logger := slog.New(slog.NewTextHandler(out, nil))
	c := &counter{}
	c.n.Store(3)
	stop := StartResourceLogger(5*time.Millisecond, logger, c)
	defer stop()

	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(out.String(), "capture handles above limit") {
		if time.Now().After(deadline) {
			t.Fatalf("no leak warning logged: %s", out.String())
		}
		time.Sleep(5 * time.Millisecond)
	}
	stop()
	stop()
}

func TestStartResourceLogger_ReportsGoroutinesWithHandles(t *testing.T) {
	out := &syncBuffer{}
	logger := slog.New(slog.NewTextHandler(out, nil))
	c := &counter{}
	c.n.Store(1)
	stop := StartResourceLogger(5*time.Millisecond, logger, c)
	defer stop()

	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(out.String(), "capture resources") {
		if time.Now().After(deadline) {
			t.Fatalf("no resource line logged: %s", out.String())
		}
		time.Sleep(5 * time.Millisecond)
	}
	got := out.String()
	for _, key := range []string{"live=1", "goroutines=", "stack_inuse=", "heap_alloc="} {
		if !strings.Contains(got, key) {
			t.Fatalf("missing %q in %s", key, got)
		}
	}
	if strings.Contains(got, "above limit") {
		t.Fatalf("one handle logged as a leak: %s", got)
	}
}
