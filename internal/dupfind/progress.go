package dupfind

import (
	"context"
	"sync/atomic"
	"time"
)

// DefaultProgressInterval is the default interval for progress updates.
const DefaultProgressInterval = 500 * time.Millisecond

// Progress is a snapshot of a running scan.
type Progress struct {
	// Files is the number of files discovered so far.
	Files int64
	// Hashed is the number of files hashed so far.
	Hashed int64
	// Bytes is the number of bytes hashed so far.
	Bytes int64
}

// counters are updated from walker and hashing goroutines.
type counters struct {
	discovered  atomic.Int64
	sent        atomic.Int64
	candidates  atomic.Int64
	hashed      atomic.Int64
	bytesHashed atomic.Int64
	errors      atomic.Int64
}

func (c *counters) progress() Progress {
	return Progress{
		Files:  c.discovered.Load(),
		Hashed: c.hashed.Load(),
		Bytes:  c.bytesHashed.Load(),
	}
}

func (c *counters) stats() Stats {
	return Stats{
		FilesScanned: c.discovered.Load(),
		Candidates:   c.candidates.Load(),
		FilesHashed:  c.hashed.Load(),
		BytesHashed:  c.bytesHashed.Load(),
		ErrorCount:   c.errors.Load(),
	}
}

// startProgressReporter invokes hook on each tick until ctx is done.
func startProgressReporter(ctx context.Context, c *counters, hook func(Progress), interval time.Duration) {
	if hook == nil {
		return
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				hook(c.progress())
			case <-ctx.Done():
				return
			}
		}
	}()
}
