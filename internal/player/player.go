package player

import (
	"errors"
	"fmt"

	"github.com/ulasonat/EnglishLearningApp/internal/segment"
)

// reported when the engine cannot seek, resume, or keeps failing mid-segment
var ErrPlayback = errors.New("playback failed")

// playback lifecycle of one segment
type State int

const (
	StateIdle State = iota
	StateSeeking
	StatePlaying
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSeeking:
		return "seeking"
	case StatePlaying:
		return "playing"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Player enforces segment boundaries over a raw engine: seek to the segment
// start, resume once the seek lands, pause when the position crosses the
// segment end. It is not safe for concurrent use; the owning loop calls Play
// and Stop between events and feeds every engine event to HandleEvent.
type Player struct {
	engine Engine
	state  State
	seg    segment.Segment
	err    error
}

func New(engine Engine) *Player {
	return &Player{engine: engine, state: StateIdle}
}

func (p *Player) State() State {
	return p.state
}

func (p *Player) Segment() segment.Segment {
	return p.seg
}

// terminal error of the last playback, nil unless state is Stopped on failure
func (p *Player) Err() error {
	return p.err
}

// Play starts bounded playback of seg, superseding whatever was in flight.
// The previous segment's pending events no longer apply once Play returns.
func (p *Player) Play(seg segment.Segment) error {
	if p.state == StatePlaying {
		if err := p.engine.Pause(); err != nil {
			return p.fail(fmt.Errorf("pause before seek: %v", err))
		}
	}

	p.seg = seg
	p.err = nil

	if err := p.engine.Seek(seg.Start); err != nil {
		return p.fail(fmt.Errorf("seek to %v: %v", seg.Start, err))
	}
	p.state = StateSeeking
	return nil
}

// Stop pauses the engine and parks the player. Safe in any state.
func (p *Player) Stop() {
	if p.state == StateSeeking || p.state == StatePlaying {
		_ = p.engine.Pause()
	}
	p.state = StateStopped
}

// HandleEvent advances the state machine with one engine event.
func (p *Player) HandleEvent(ev Event) {
	switch ev.Kind {
	case EventSeeked:
		// completions for superseded seeks arrive outside Seeking; drop them
		if p.state != StateSeeking {
			return
		}
		if err := p.engine.Resume(); err != nil {
			_ = p.fail(fmt.Errorf("resume after seek: %v", err))
			return
		}
		p.state = StatePlaying

	case EventPosition:
		// the boundary check only applies to live playback; position noise
		// from before a retargeted seek must not stop the new segment
		if p.state != StatePlaying {
			return
		}
		if ev.Position >= p.seg.End {
			if err := p.engine.Pause(); err != nil {
				_ = p.fail(fmt.Errorf("pause at segment end: %v", err))
				return
			}
			p.state = StateStopped
		}

	case EventEnded:
		if p.state == StateSeeking || p.state == StatePlaying {
			p.state = StateStopped
		}

	case EventError:
		cause := ev.Err
		if cause == nil {
			cause = errors.New("engine reported an unspecified failure")
		}
		p.err = fmt.Errorf("%w: %v", ErrPlayback, cause)
		p.state = StateStopped
	}
}

func (p *Player) fail(cause error) error {
	p.err = fmt.Errorf("%w: %v", ErrPlayback, cause)
	p.state = StateStopped
	return p.err
}
