package domain

import "time"

// Phase is the coarse-grained state of a generation session.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAwaitingResponse
	PhaseStreaming
)

// String returns a human-readable label for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAwaitingResponse:
		return "awaiting_response"
	case PhaseStreaming:
		return "streaming"
	default:
		return "unknown"
	}
}

// Busy reports whether a request or stream is active.
func (p Phase) Busy() bool { return p != PhaseIdle }

// ErrorInfo is the user-facing description of the last failed attempt.
type ErrorInfo struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Snapshot is a copy of session state handed to the presentation layer.
// Version increases with every state change.
type Snapshot struct {
	Version   uint64
	Messages  []Message
	Phase     Phase
	LastError *ErrorInfo
}

// Streaming returns the message currently being revealed, if any.
func (s Snapshot) Streaming() (Message, bool) {
	if n := len(s.Messages); n > 0 && s.Messages[n-1].IsStreaming() {
		return s.Messages[n-1], true
	}
	return Message{}, false
}
