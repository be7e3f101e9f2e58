package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"textgen/internal/domain"
)

// Deps bundles the Controller's collaborators.
type Deps struct {
	Generator domain.Generator
	Emitter   *Emitter      // nil: real-time emitter
	Interval  time.Duration // 0: DefaultInterval
	Text      Text          // zero: UrduText
	Logger    *slog.Logger
	// OnChange receives a snapshot after every state change. It is called
	// without the controller lock held, possibly from background goroutines,
	// so snapshots can arrive out of order: compare Version.
	OnChange func(domain.Snapshot)
	Now      func() time.Time
	NewID    func(time.Time) string
}

// Controller owns one conversation and runs at most one generation at a time.
// All methods are safe for concurrent use.
type Controller struct {
	gen      domain.Generator
	emitter  *Emitter
	text     Text
	logger   *slog.Logger
	onChange func(domain.Snapshot)
	now      func() time.Time
	newID    func(time.Time) string

	mu       sync.Mutex
	interval time.Duration
	messages []domain.Message
	phase    domain.Phase
	lastErr  *domain.ErrorInfo
	version  uint64

	// seq identifies the active request or stream. Results and reveals
	// carrying an older seq are stale and dropped.
	seq       uint64
	cancelReq context.CancelFunc
	stream    *Handle
	closed    bool

	wg sync.WaitGroup
}

// NewController creates an idle Controller with an empty log.
func NewController(deps Deps) *Controller {
	c := &Controller{
		gen:      deps.Generator,
		emitter:  deps.Emitter,
		interval: deps.Interval,
		text:     deps.Text,
		logger:   deps.Logger,
		onChange: deps.OnChange,
		now:      deps.Now,
		newID:    deps.NewID,
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.emitter == nil {
		c.emitter = NewEmitter(nil, c.logger)
	}
	if c.interval <= 0 {
		c.interval = DefaultInterval
	}
	if c.text == (Text{}) {
		c.text = UrduText
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.newID == nil {
		c.newID = newIDSource(c.now())
	}
	return c
}

// Submit starts a generation for params. It is ignored, returning false,
// unless the controller is idle. Out-of-range parameters are clamped.
func (c *Controller) Submit(params domain.GenerationParams) bool {
	c.mu.Lock()
	if c.closed || c.phase != domain.PhaseIdle {
		phase := c.phase
		c.mu.Unlock()
		c.logger.Debug("submit ignored", "phase", phase.String())
		return false
	}

	params = params.Clamp()
	params.Prefix = strings.TrimSpace(params.Prefix)
	content := params.Prefix
	if content == "" {
		content = c.text.EmptyPrompt
	}
	c.appendLocked(domain.RoleUser, content, domain.StatusComplete)

	c.lastErr = nil
	c.phase = domain.PhaseAwaitingResponse
	c.seq++
	seq := c.seq
	ctx, cancel := context.WithCancel(context.Background())
	c.cancelReq = cancel
	c.wg.Add(1)
	snap := c.changedLocked()
	c.mu.Unlock()

	c.logger.Debug("submit accepted",
		"seq", seq,
		"prefix_len", len(params.Prefix),
		"max_length", params.MaxLength,
		"temperature", params.Temperature,
	)
	c.notify(snap)

	go c.request(ctx, seq, params)
	return true
}

func (c *Controller) request(ctx context.Context, seq uint64, params domain.GenerationParams) {
	defer c.wg.Done()
	text, err := c.gen.Generate(ctx, params)
	c.resolve(seq, text, err)
}

// resolve applies a finished request unless it has been superseded.
func (c *Controller) resolve(seq uint64, text string, err error) {
	c.mu.Lock()
	if seq != c.seq || c.phase != domain.PhaseAwaitingResponse {
		c.mu.Unlock()
		c.logger.Debug("stale result discarded", "seq", seq)
		return
	}
	c.cancelReq()
	c.cancelReq = nil

	if err != nil {
		c.failLocked(err)
		snap := c.changedLocked()
		c.mu.Unlock()
		c.logger.Warn("generation failed", "seq", seq, "kind", snap.LastError.Kind, "error", err)
		c.notify(snap)
		return
	}

	units := Chunk(text)
	if len(units) == 0 {
		c.failLocked(domain.NewRequestError(domain.KindEmptyResult, nil))
		snap := c.changedLocked()
		c.mu.Unlock()
		c.logger.Warn("generation returned no displayable text", "seq", seq, "chars", len(text))
		c.notify(snap)
		return
	}

	c.appendLocked(domain.RoleAssistant, "", domain.StatusStreaming)
	c.phase = domain.PhaseStreaming
	target := &streamTarget{c: c, seq: seq}
	total := len(units)
	onUnit := func(revealed int) {
		c.logger.Debug("stream progress", "seq", seq, "revealed", revealed, "units", total)
	}
	c.stream = c.emitter.Start(units, target, c.interval, onUnit, func(o Outcome) {
		c.logger.Debug("stream ended", "seq", seq, "outcome", o.String())
	})
	snap := c.changedLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// Cancel aborts the pending request or stops the running stream. Revealed
// text is kept. It returns false when there is nothing to cancel.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}

	switch c.phase {
	case domain.PhaseAwaitingResponse:
		cancel := c.cancelReq
		c.cancelReq = nil
		c.seq++
		c.lastErr = &domain.ErrorInfo{
			Kind:    domain.KindCancelled,
			Message: c.text.Cancelled,
			At:      c.now(),
		}
		c.phase = domain.PhaseIdle
		snap := c.changedLocked()
		c.mu.Unlock()

		cancel()
		c.logger.Debug("request cancelled")
		c.notify(snap)
		return true

	case domain.PhaseStreaming:
		h := c.stream
		c.stream = nil
		c.seq++
		c.finishStreamLocked()
		snap := c.changedLocked()
		c.mu.Unlock()

		h.Stop()
		c.logger.Debug("stream cancelled")
		c.notify(snap)
		return true

	default:
		c.mu.Unlock()
		return false
	}
}

// Clear empties the log and the last error. Only allowed while idle.
func (c *Controller) Clear() bool {
	c.mu.Lock()
	if c.closed || c.phase != domain.PhaseIdle {
		c.mu.Unlock()
		return false
	}
	c.messages = nil
	c.lastErr = nil
	snap := c.changedLocked()
	c.mu.Unlock()

	c.notify(snap)
	return true
}

// DismissError clears the last error in any phase.
func (c *Controller) DismissError() bool {
	c.mu.Lock()
	if c.closed || c.lastErr == nil {
		c.mu.Unlock()
		return false
	}
	c.lastErr = nil
	snap := c.changedLocked()
	c.mu.Unlock()

	c.notify(snap)
	return true
}

// SetInterval changes the reveal cadence for later streams. Only allowed
// while idle.
func (c *Controller) SetInterval(d time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || d <= 0 || c.phase != domain.PhaseIdle {
		return false
	}
	c.interval = d
	return true
}

// Interval returns the current reveal cadence.
func (c *Controller) Interval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interval
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Close aborts any pending request, stops any stream and waits for background
// work to finish. Afterwards every operation is a no-op and OnChange is no
// longer called.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.seq++
	cancel := c.cancelReq
	c.cancelReq = nil
	h := c.stream
	c.stream = nil
	if c.phase == domain.PhaseStreaming {
		c.finishStreamLocked()
	}
	c.phase = domain.PhaseIdle
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if h != nil {
		h.Stop()
		<-h.Done()
	}
	c.wg.Wait()
	c.logger.Debug("session closed")
}

// streamTarget feeds reveals for one stream back into the controller.
type streamTarget struct {
	c   *Controller
	seq uint64
}

func (t *streamTarget) Append(piece string) {
	c := t.c
	c.mu.Lock()
	if t.seq != c.seq || c.phase != domain.PhaseStreaming {
		c.mu.Unlock()
		return
	}
	last := &c.messages[len(c.messages)-1]
	last.Content += piece
	snap := c.changedLocked()
	c.mu.Unlock()

	c.notify(snap)
}

func (t *streamTarget) Complete() {
	c := t.c
	c.mu.Lock()
	if t.seq != c.seq || c.phase != domain.PhaseStreaming {
		c.mu.Unlock()
		return
	}
	c.stream = nil
	c.finishStreamLocked()
	snap := c.changedLocked()
	c.mu.Unlock()

	c.notify(snap)
}

// finishStreamLocked completes the streaming message and returns to idle.
func (c *Controller) finishStreamLocked() {
	if n := len(c.messages); n > 0 && c.messages[n-1].IsStreaming() {
		c.messages[n-1].Status = domain.StatusComplete
	}
	c.phase = domain.PhaseIdle
}

func (c *Controller) failLocked(err error) {
	kind, msg := c.text.Describe(err)
	c.lastErr = &domain.ErrorInfo{Kind: kind, Message: msg, At: c.now()}
	c.phase = domain.PhaseIdle
}

func (c *Controller) appendLocked(role domain.Role, content string, status domain.MessageStatus) {
	now := c.now()
	c.messages = append(c.messages, domain.Message{
		ID:        c.newID(now),
		Role:      role,
		Content:   content,
		CreatedAt: now,
		Status:    status,
	})
}

func (c *Controller) changedLocked() domain.Snapshot {
	c.version++
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() domain.Snapshot {
	snap := domain.Snapshot{
		Version:  c.version,
		Messages: append([]domain.Message(nil), c.messages...),
		Phase:    c.phase,
	}
	if c.lastErr != nil {
		e := *c.lastErr
		snap.LastError = &e
	}
	return snap
}

func (c *Controller) notify(snap domain.Snapshot) {
	if c.onChange != nil {
		c.onChange(snap)
	}
}
