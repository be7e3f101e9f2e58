package chat

import "time"

// StreamSpeed names a reveal interval preset.
type StreamSpeed int

const (
	StreamNormal StreamSpeed = iota // 50ms per word (default)
	StreamFast                      // 20ms per word
	StreamSlow                      // 100ms per word
	StreamCustom                    // interval set in config
)

// String returns a human-readable label for the speed.
func (s StreamSpeed) String() string {
	switch s {
	case StreamNormal:
		return "normal"
	case StreamFast:
		return "fast"
	case StreamSlow:
		return "slow"
	case StreamCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// Interval returns the reveal interval for the preset. StreamCustom has none.
func (s StreamSpeed) Interval() time.Duration {
	switch s {
	case StreamFast:
		return 20 * time.Millisecond
	case StreamSlow:
		return 100 * time.Millisecond
	case StreamNormal:
		return 50 * time.Millisecond
	default:
		return 0
	}
}

// SpeedForInterval maps an interval back to its preset.
func SpeedForInterval(d time.Duration) StreamSpeed {
	for _, s := range []StreamSpeed{StreamNormal, StreamFast, StreamSlow} {
		if s.Interval() == d {
			return s
		}
	}
	return StreamCustom
}

// CycleStreamSpeed cycles: normal → fast → slow → normal.
func CycleStreamSpeed(current StreamSpeed) StreamSpeed {
	switch current {
	case StreamNormal:
		return StreamFast
	case StreamFast:
		return StreamSlow
	default:
		return StreamNormal
	}
}
