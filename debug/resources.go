// Package debug logs process resource usage while an automation runs.
// Started only when config.Debug is true.
package debug

import (
	"context"
	"log/slog"
	"runtime"
	"runtime/metrics"
	"time"
)

// Snapshot is one resource sample.
type Snapshot struct {
	Goroutines uint64
	HeapAlloc  uint64
	StackInuse uint64
	NumGC      uint32
	RSS        uint64 // 0 when the platform query failed
	GDIObjects uint64 // 0 off Windows
}

// Sample reads the current resource usage.
func Sample() (Snapshot, error) {
	samples := []metrics.Sample{{Name: "/sched/goroutines:goroutines"}}
	metrics.Read(samples)
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	s := Snapshot{
		HeapAlloc:  ms.HeapAlloc,
		StackInuse: ms.StackInuse,
		NumGC:      ms.NumGC,
	}
	if samples[0].Value.Kind() == metrics.KindUint64 {
		s.Goroutines = samples[0].Value.Uint64()
	}
	var err error
	s.RSS, s.GDIObjects, err = processCounters()
	return s, err
}

// Watch logs a Snapshot every interval until ctx is done. A growing
// gdi_objects value points at a leaked DC or bitmap in screen capture.
func Watch(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		var errLogged bool
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
			s, err := Sample()
			if err != nil && !errLogged {
				logger.Warn("resource query failed", "error", err)
				errLogged = true
			}
			logger.Debug("resources",
				slog.Uint64("goroutines", s.Goroutines),
				slog.Uint64("heap_alloc", s.HeapAlloc),
				slog.Uint64("stack_inuse", s.StackInuse),
				slog.Uint64("num_gc", uint64(s.NumGC)),
				slog.Uint64("rss", s.RSS),
				slog.Uint64("gdi_objects", s.GDIObjects),
			)
		}
	}()
}
