package session

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval is the pause between two reveals.
const DefaultInterval = 50 * time.Millisecond

// Ticker delivers reveal ticks.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates a Ticker firing every d.
type TickerFactory func(d time.Duration) Ticker

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// NewRealTicker wraps time.NewTicker.
func NewRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// Target receives revealed text.
type Target interface {
	// Append adds piece to the end of the content. Every piece after the
	// first starts with a single space.
	Append(piece string)
	// Complete marks the content final. It is called exactly once.
	Complete()
}

// Outcome says how an emission ended.
type Outcome int

const (
	OutcomeCompleted Outcome = iota
	OutcomeCancelled
)

func (o Outcome) String() string {
	if o == OutcomeCancelled {
		return "cancelled"
	}
	return "completed"
}

// Emitter replays pre-split units into a Target at a fixed cadence.
type Emitter struct {
	newTicker TickerFactory
	logger    *slog.Logger
}

// NewEmitter creates an Emitter. A nil factory uses real time.
func NewEmitter(newTicker TickerFactory, logger *slog.Logger) *Emitter {
	if newTicker == nil {
		newTicker = NewRealTicker
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{newTicker: newTicker, logger: logger}
}

// Handle controls one running emission.
type Handle struct {
	mu     sync.Mutex
	closed bool // stopped or fully revealed; no reveal happens once set
	target Target

	stop chan struct{}
	done chan struct{}
}

// Stop halts the emission. Content revealed so far stays and the target is
// completed before Stop returns. It reports whether this call did the
// stopping; later calls and calls after natural completion return false.
func (h *Handle) Stop() bool {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return false
	}
	h.closed = true
	h.mu.Unlock()

	h.target.Complete()
	close(h.stop)
	return true
}

// Done is closed once the emission goroutine has exited and its callbacks
// have returned.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Start reveals units into target, one per interval. onUnit receives the
// number of units revealed so far after every reveal. onDone receives the
// outcome once. Either callback may be nil. A non-positive interval uses
// DefaultInterval.
func (e *Emitter) Start(units []string, target Target, interval time.Duration, onUnit func(revealed int), onDone func(Outcome)) *Handle {
	if interval <= 0 {
		interval = DefaultInterval
	}
	h := &Handle{
		target: target,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	units = append([]string(nil), units...)

	e.logger.Debug("stream started", "units", len(units), "interval", interval)
	go e.run(h, units, interval, onUnit, onDone)
	return h
}

func (e *Emitter) run(h *Handle, units []string, interval time.Duration, onUnit func(int), onDone func(Outcome)) {
	defer close(h.done)

	finish := func(o Outcome, revealed int) {
		e.logger.Debug("stream finished", "outcome", o.String(), "revealed", revealed, "units", len(units))
		if onDone != nil {
			onDone(o)
		}
	}

	if len(units) == 0 {
		if e.markFinished(h) {
			finish(OutcomeCompleted, 0)
			return
		}
		<-h.stop
		finish(OutcomeCancelled, 0)
		return
	}

	ticker := e.newTicker(interval)
	defer ticker.Stop()

	revealed := 0
	for {
		select {
		case <-h.stop:
			finish(OutcomeCancelled, revealed)
			return
		case <-ticker.C():
		}

		h.mu.Lock()
		if h.closed {
			// Stop won the race; its close(h.stop) is imminent.
			h.mu.Unlock()
			continue
		}
		piece := units[revealed]
		if revealed > 0 {
			piece = " " + piece
		}
		h.target.Append(piece)
		revealed++
		last := revealed == len(units)
		if last {
			h.closed = true
			h.target.Complete()
		}
		h.mu.Unlock()

		if onUnit != nil {
			onUnit(revealed)
		}
		if last {
			finish(OutcomeCompleted, revealed)
			return
		}
	}
}

// markFinished completes the target unless Stop already did.
func (e *Emitter) markFinished(h *Handle) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.closed = true
	h.target.Complete()
	return true
}
