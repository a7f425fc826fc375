package player

import (
	"context"
	"time"
)

// what the engine reported
type EventKind int

const (
	// a seek finished and frames at the target are ready
	EventSeeked EventKind = iota
	// playback position update at the engine's native tick
	EventPosition
	// the file ran out before the segment boundary
	EventEnded
	// the engine failed; playback is dead until the next seek
	EventError
)

type Event struct {
	Kind     EventKind
	Position time.Duration
	Err      error
}

// Engine drives the actual video surface. Commands return as soon as they
// are accepted; completion and progress arrive on Events. The channel closes
// when the engine shuts down.
type Engine interface {
	Load(ctx context.Context, videoPath string) error
	Seek(pos time.Duration) error
	Pause() error
	Resume() error
	Events() <-chan Event
	Close() error
}
