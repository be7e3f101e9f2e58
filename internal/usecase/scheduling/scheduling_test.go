package scheduling

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSchedulerStartStop(t *testing.T) {
	s := NewScheduler(newTestLogger())

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestSchedulerActionFires(t *testing.T) {
	var count atomic.Int32

	s := NewScheduler(newTestLogger())
	s.RegisterAction(ActionHealthProbe, func(ctx context.Context) error {
		count.Add(1)
		return nil
	})
	if err := s.AddTask(ScheduledTask{
		Name: "test-task", Schedule: "50ms", Action: ActionHealthProbe,
	}); err != nil {
		t.Fatalf("AddTask: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	time.Sleep(200 * time.Millisecond)
	s.Stop()

	if c := count.Load(); c < 1 {
		t.Errorf("action fired %d times, expected at least 1", c)
	}
}

func TestSchedulerRunOnStart(t *testing.T) {
	ran := make(chan struct{}, 1)

	s := NewScheduler(newTestLogger())
	s.RegisterAction(ActionHealthProbe, func(ctx context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})
	if err := s.AddTask(ScheduledTask{
		Name: "eager", Schedule: "1h", Action: ActionHealthProbe, RunOnStart: true,
	}); err != nil {
		t.Fatalf("AddTask: %v", err)
	}

	s.Start(context.Background())
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("RunOnStart task did not run")
	}
}

func TestSchedulerTaskTimeout(t *testing.T) {
	deadline := make(chan time.Duration, 1)

	s := NewScheduler(newTestLogger())
	s.RegisterAction(ActionHealthProbe, func(ctx context.Context) error {
		d, ok := ctx.Deadline()
		if !ok {
			return fmt.Errorf("no deadline")
		}
		select {
		case deadline <- time.Until(d):
		default:
		}
		return nil
	})
	s.AddTask(ScheduledTask{
		Name: "bounded", Schedule: "1h", Action: ActionHealthProbe,
		Timeout: 3 * time.Second, RunOnStart: true,
	})
	s.Start(context.Background())
	defer s.Stop()

	select {
	case d := <-deadline:
		if d <= 0 || d > 3*time.Second {
			t.Errorf("task deadline in %v, want within 3s", d)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run")
	}
}

func TestSchedulerUnknownAction(t *testing.T) {
	s := NewScheduler(newTestLogger())

	err := s.AddTask(ScheduledTask{
		Name: "unknown", Schedule: "100ms", Action: "does_not_exist",
	})
	if err == nil {
		t.Error("expected error for unknown action")
	}
}

func TestSchedulerInvalidSchedule(t *testing.T) {
	s := NewScheduler(newTestLogger())
	s.RegisterAction(ActionHealthProbe, func(ctx context.Context) error { return nil })

	err := s.AddTask(ScheduledTask{Name: "bad", Schedule: "sometimes", Action: ActionHealthProbe})
	if err == nil {
		t.Error("expected error for invalid schedule")
	}
}

func TestSchedulerContextCancellation(t *testing.T) {
	var count atomic.Int32

	s := NewScheduler(newTestLogger())
	s.RegisterAction(ActionHealthProbe, func(ctx context.Context) error {
		count.Add(1)
		return nil
	})
	s.AddTask(ScheduledTask{
		Name: "ctx-task", Schedule: "50ms", Action: ActionHealthProbe,
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	time.Sleep(150 * time.Millisecond)
	cancel()
	s.Stop()

	countAfterCancel := count.Load()
	time.Sleep(100 * time.Millisecond)

	if count.Load() != countAfterCancel {
		t.Error("task continued after context cancellation")
	}
}

func TestSchedulerActionError(t *testing.T) {
	s := NewScheduler(newTestLogger())
	s.RegisterAction(ActionHealthProbe, func(ctx context.Context) error {
		return fmt.Errorf("simulated error")
	})
	s.AddTask(ScheduledTask{Name: "failing", Schedule: "50ms", Action: ActionHealthProbe})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	time.Sleep(150 * time.Millisecond)

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestSchedulerDoubleStop(t *testing.T) {
	s := NewScheduler(newTestLogger())
	s.Start(context.Background())

	if err := s.Stop(); err != nil {
		t.Fatalf("first Stop: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
}

func TestSchedulerStopWithoutStart(t *testing.T) {
	s := NewScheduler(newTestLogger())
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop without start: %v", err)
	}
}

func TestParseSchedule(t *testing.T) {
	valid := []string{"*/5 * * * *", "@every 30m", "@hourly", "30m", "100ms"}
	for _, sched := range valid {
		got, err := parseSchedule(sched)
		if err != nil {
			t.Errorf("parseSchedule(%q): %v", sched, err)
			continue
		}
		if got == nil {
			t.Errorf("parseSchedule(%q) returned nil schedule", sched)
		}
	}

	invalid := []string{"", "not-a-schedule", "-5m", "0s"}
	for _, sched := range invalid {
		if _, err := parseSchedule(sched); err == nil {
			t.Errorf("parseSchedule(%q): expected error", sched)
		}
	}
}

func TestConstantDelayNext(t *testing.T) {
	sched, err := parseSchedule("250ms")
	if err != nil {
		t.Fatalf("parseSchedule: %v", err)
	}
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	if got := sched.Next(now); !got.Equal(now.Add(250 * time.Millisecond)) {
		t.Errorf("Next = %v, want %v", got, now.Add(250*time.Millisecond))
	}
}
