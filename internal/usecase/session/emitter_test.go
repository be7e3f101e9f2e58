package session

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualTicker fires only when the test calls tick.
type manualTicker struct {
	interval time.Duration
	ch       chan time.Time
	stopped  chan struct{}
	once     sync.Once
}

func (m *manualTicker) C() <-chan time.Time { return m.ch }
func (m *manualTicker) Stop()               { m.once.Do(func() { close(m.stopped) }) }

// tick blocks until the emitter has received the tick.
func (m *manualTicker) tick(t *testing.T) {
	t.Helper()
	select {
	case m.ch <- time.Now():
	case <-time.After(2 * time.Second):
		t.Fatal("emitter did not take the tick")
	}
}

// assertIgnored checks nothing is listening for ticks anymore.
func (m *manualTicker) assertIgnored(t *testing.T) {
	t.Helper()
	select {
	case m.ch <- time.Now():
		t.Fatal("tick consumed after the emission ended")
	case <-time.After(30 * time.Millisecond):
	}
}

type manualTickers struct {
	created chan *manualTicker
}

func newManualTickers() *manualTickers {
	return &manualTickers{created: make(chan *manualTicker, 8)}
}

func (f *manualTickers) factory(d time.Duration) Ticker {
	tk := &manualTicker{interval: d, ch: make(chan time.Time), stopped: make(chan struct{})}
	f.created <- tk
	return tk
}

func (f *manualTickers) next(t *testing.T) *manualTicker {
	t.Helper()
	select {
	case tk := <-f.created:
		return tk
	case <-time.After(2 * time.Second):
		t.Fatal("no ticker created")
		return nil
	}
}

type recordingTarget struct {
	mu        sync.Mutex
	content   strings.Builder
	completed int
}

func (r *recordingTarget) Append(piece string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.content.WriteString(piece)
}

func (r *recordingTarget) Complete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed++
}

func (r *recordingTarget) state() (string, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.content.String(), r.completed
}

type emission struct {
	handle   *Handle
	ticker   *manualTicker
	target   *recordingTarget
	revealed chan int
	outcome  chan Outcome
}

func startEmission(t *testing.T, units []string) *emission {
	t.Helper()
	tickers := newManualTickers()
	e := NewEmitter(tickers.factory, newTestLogger())
	em := &emission{
		target:   &recordingTarget{},
		revealed: make(chan int, len(units)+1),
		outcome:  make(chan Outcome, 1),
	}
	em.handle = e.Start(units, em.target, DefaultInterval,
		func(n int) { em.revealed <- n },
		func(o Outcome) { em.outcome <- o },
	)
	em.ticker = tickers.next(t)
	return em
}

func (em *emission) reveal(t *testing.T, want int) {
	t.Helper()
	em.ticker.tick(t)
	select {
	case n := <-em.revealed:
		require.Equal(t, want, n)
	case <-time.After(2 * time.Second):
		t.Fatalf("reveal %d not reported", want)
	}
}

func (em *emission) waitOutcome(t *testing.T) Outcome {
	t.Helper()
	select {
	case o := <-em.outcome:
		select {
		case <-em.handle.Done():
		case <-time.After(2 * time.Second):
			t.Fatal("Done not closed after onDone")
		}
		return o
	case <-time.After(2 * time.Second):
		t.Fatal("onDone not called")
		return 0
	}
}

func TestEmitterRevealsOneUnitPerTick(t *testing.T) {
	units := []string{"ایک", "دن", "کی", "بات"}
	em := startEmission(t, units)

	content, completed := em.target.state()
	assert.Empty(t, content, "nothing is revealed before the first tick")
	assert.Zero(t, completed)

	for k := 1; k <= len(units); k++ {
		em.reveal(t, k)
		content, _ := em.target.state()
		assert.Equal(t, strings.Join(units[:k], " "), content, "after %d ticks", k)
	}

	assert.Equal(t, OutcomeCompleted, em.waitOutcome(t))
	content, completed = em.target.state()
	assert.Equal(t, "ایک دن کی بات", content)
	assert.Equal(t, 1, completed)

	select {
	case <-em.ticker.stopped:
	default:
		t.Error("ticker not stopped after completion")
	}
	assert.False(t, em.handle.Stop(), "Stop after completion is a no-op")
	_, completed = em.target.state()
	assert.Equal(t, 1, completed)
}

func TestEmitterStopKeepsPartialContent(t *testing.T) {
	units := []string{"a", "b", "c", "d"}
	em := startEmission(t, units)

	em.reveal(t, 1)
	em.reveal(t, 2)

	require.True(t, em.handle.Stop())
	content, completed := em.target.state()
	assert.Equal(t, "a b", content)
	assert.Equal(t, 1, completed, "Stop completes the target before returning")

	assert.Equal(t, OutcomeCancelled, em.waitOutcome(t))
	em.ticker.assertIgnored(t)

	content, completed = em.target.state()
	assert.Equal(t, "a b", content, "no reveal after Stop")
	assert.Equal(t, 1, completed)
}

func TestEmitterStopIsIdempotent(t *testing.T) {
	em := startEmission(t, []string{"a", "b"})

	assert.True(t, em.handle.Stop())
	assert.False(t, em.handle.Stop())
	assert.False(t, em.handle.Stop())

	assert.Equal(t, OutcomeCancelled, em.waitOutcome(t))
	content, completed := em.target.state()
	assert.Empty(t, content)
	assert.Equal(t, 1, completed)
}

func TestEmitterStopConcurrentWithTicks(t *testing.T) {
	units := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	e := NewEmitter(func(time.Duration) Ticker { return NewRealTicker(time.Millisecond) }, newTestLogger())
	target := &recordingTarget{}
	h := e.Start(units, target, time.Millisecond, nil, nil)

	time.Sleep(3 * time.Millisecond)
	stopped := h.Stop()
	before, _ := target.state()
	<-h.Done()

	after, completed := target.state()
	assert.Equal(t, before, after, "content must not change after Stop returns")
	assert.Equal(t, 1, completed)
	if stopped {
		assert.True(t, strings.HasPrefix(strings.Join(units, " "), after))
	} else {
		assert.Equal(t, strings.Join(units, " "), after)
	}
}

func TestEmitterEmptyUnitsCompleteImmediately(t *testing.T) {
	tickers := newManualTickers()
	e := NewEmitter(tickers.factory, newTestLogger())
	target := &recordingTarget{}
	outcome := make(chan Outcome, 1)

	h := e.Start(nil, target, DefaultInterval, nil, func(o Outcome) { outcome <- o })

	select {
	case o := <-outcome:
		assert.Equal(t, OutcomeCompleted, o)
	case <-time.After(2 * time.Second):
		t.Fatal("onDone not called")
	}
	<-h.Done()
	_, completed := target.state()
	assert.Equal(t, 1, completed)
	assert.Empty(t, tickers.created, "no ticker needed for zero units")
}

func TestEmitterDefaultsInterval(t *testing.T) {
	tickers := newManualTickers()
	e := NewEmitter(tickers.factory, newTestLogger())
	h := e.Start([]string{"x"}, &recordingTarget{}, 0, nil, nil)
	tk := tickers.next(t)
	assert.Equal(t, DefaultInterval, tk.interval)
	h.Stop()
	<-h.Done()
}

func TestEmitterCopiesUnits(t *testing.T) {
	units := []string{"a", "b"}
	em := startEmission(t, units)
	units[0] = "mutated"

	em.reveal(t, 1)
	em.reveal(t, 2)
	em.waitOutcome(t)
	content, _ := em.target.state()
	assert.Equal(t, "a b", content)
}

func TestEmitterWithRealTicker(t *testing.T) {
	e := NewEmitter(nil, nil)
	target := &recordingTarget{}
	h := e.Start([]string{"روز", "رات"}, target, time.Millisecond, nil, nil)

	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("emission did not finish")
	}
	content, completed := target.state()
	assert.Equal(t, "روز رات", content)
	assert.Equal(t, 1, completed)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "completed", OutcomeCompleted.String())
	assert.Equal(t, "cancelled", OutcomeCancelled.String())
}
