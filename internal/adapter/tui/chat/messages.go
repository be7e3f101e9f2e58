// Package chat implements the Bubble Tea front end of a generation session.
package chat

import (
	"textgen/internal/domain"
	"textgen/internal/usecase/scheduling"
)

// SnapshotMsg carries a session snapshot into the update loop. Snapshots older
// than the last one applied are discarded.
type SnapshotMsg struct {
	Snapshot domain.Snapshot
}

// HealthMsg carries the outcome of a service health probe.
type HealthMsg struct {
	Report scheduling.HealthReport
}

// mailboxMsg is the coalesced content of the channel's mailbox.
type mailboxMsg struct {
	snapshot *domain.Snapshot
	health   *scheduling.HealthReport
}

// QuitMsg signals the program to exit.
type QuitMsg struct{}
