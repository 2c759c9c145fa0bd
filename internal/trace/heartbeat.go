package trace

import (
	"fmt"
	"sync"
	"time"
)

// Heartbeat emits a run-scoped event every interval so a stuck batch can be
// told apart from a slow one. Each beat carries the time since the start.
type Heartbeat struct {
	tracer Tracer
	start  time.Time
	done   chan struct{}
	stop   sync.Once
	wg     sync.WaitGroup
}

// StartHeartbeat returns nil when tracing is off or interval is not positive.
func StartHeartbeat(tracer Tracer, interval time.Duration) *Heartbeat {
	if tracer == nil || !tracer.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{tracer: tracer, start: time.Now(), done: make(chan struct{})}
	h.wg.Add(1)
	go h.loop(interval)
	return h
}

func (h *Heartbeat) loop(interval time.Duration) {
	defer h.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for beat := 1; ; beat++ {
		select {
		case now := <-ticker.C:
			h.tracer.Emit(&Event{
				Time:   now,
				Kind:   KindHeartbeat,
				Scope:  ScopeRun,
				GID:    getGoroutineID(),
				Name:   "heartbeat",
				Detail: fmt.Sprintf("#%d +%s", beat, now.Sub(h.start).Round(time.Millisecond)),
			})
		case <-h.done:
			return
		}
	}
}

// Stop ends the heartbeat and waits for its goroutine. Safe on nil and
// safe to call twice.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.stop.Do(func() { close(h.done) })
	h.wg.Wait()
}
