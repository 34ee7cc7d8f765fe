package scout

import "sync"

// Phase is the scan state machine's current state.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseInitializing Phase = "initializing"
	PhaseComputing    Phase = "computing"
	PhaseComplete     Phase = "complete"
	PhaseError        Phase = "error"
)

// ScanProgress is one progress event. Processed never decreases within a
// scan, and exactly one terminal event (complete, error, or idle after a
// cancel) is delivered.
type ScanProgress struct {
	Phase           Phase
	Processed       int
	Total           int
	PercentComplete float64
}

// ProgressFunc receives progress events. Callers choose the delivery
// mechanism; the engine only promises ordering and a single terminal call.
type ProgressFunc func(ScanProgress)

// progressTracker throttles computing-phase emissions to roughly one per
// percent of the candidate set and enforces monotonicity across concurrent
// workers.
type progressTracker struct {
	fn       ProgressFunc
	total    int
	interval int

	mu          sync.Mutex
	processed   int
	lastEmitted int
	terminal    bool
}

func newProgressTracker(fn ProgressFunc, total int) *progressTracker {
	interval := total / 100
	if interval < 1 {
		interval = 1
	}
	return &progressTracker{fn: fn, total: total, interval: interval}
}

// phase emits a non-computing phase event immediately.
func (t *progressTracker) phase(p Phase) {
	if t == nil || t.fn == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.terminal {
		return
	}
	event := ScanProgress{Phase: p, Processed: t.processed, Total: t.total, PercentComplete: t.percentLocked()}
	switch p {
	case PhaseComplete, PhaseError, PhaseIdle:
		t.terminal = true
		if p == PhaseComplete {
			event.Processed = t.total
			event.PercentComplete = 100
		}
	}
	t.fn(event)
}

// add records n more processed candidates and emits a computing event when
// the interval has elapsed since the last emission.
func (t *progressTracker) add(n int) {
	if t == nil {
		return
	}
	// The callback runs under the lock so concurrent workers can never
	// deliver events with decreasing processed counts.
	t.mu.Lock()
	defer t.mu.Unlock()
	t.processed += n
	if t.fn == nil || t.terminal || t.processed-t.lastEmitted < t.interval {
		return
	}
	t.lastEmitted = t.processed
	t.fn(ScanProgress{
		Phase:           PhaseComputing,
		Processed:       t.processed,
		Total:           t.total,
		PercentComplete: t.percentLocked(),
	})
}

func (t *progressTracker) percentLocked() float64 {
	if t.total == 0 {
		return 0
	}
	return 100 * float64(t.processed) / float64(t.total)
}
