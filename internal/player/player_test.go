package player

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ulasonat/EnglishLearningApp/internal/segment"
)

// scripted in-memory engine recording every command
type fakeEngine struct {
	events  chan Event
	seeks   []time.Duration
	pauses  int
	resumes int

	seekErr   error
	pauseErr  error
	resumeErr error
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{events: make(chan Event, 16)}
}

func (f *fakeEngine) Load(ctx context.Context, videoPath string) error { return nil }

func (f *fakeEngine) Seek(pos time.Duration) error {
	if f.seekErr != nil {
		return f.seekErr
	}
	f.seeks = append(f.seeks, pos)
	return nil
}

func (f *fakeEngine) Pause() error {
	if f.pauseErr != nil {
		return f.pauseErr
	}
	f.pauses++
	return nil
}

func (f *fakeEngine) Resume() error {
	if f.resumeErr != nil {
		return f.resumeErr
	}
	f.resumes++
	return nil
}

func (f *fakeEngine) Events() <-chan Event { return f.events }

func (f *fakeEngine) Close() error { return nil }

func seg(start, end time.Duration) segment.Segment {
	return segment.Segment{Start: start, End: end}
}

func TestPlayerStartsIdle(t *testing.T) {
	p := New(newFakeEngine())
	if p.State() != StateIdle {
		t.Errorf("expected Idle, got %s", p.State())
	}
}

func TestPlaySeeksToSegmentStart(t *testing.T) {
	engine := newFakeEngine()
	p := New(engine)

	if err := p.Play(seg(9500*time.Millisecond, 12500*time.Millisecond)); err != nil {
		t.Fatalf("Play error: %v", err)
	}

	if p.State() != StateSeeking {
		t.Errorf("expected Seeking, got %s", p.State())
	}
	if len(engine.seeks) != 1 || engine.seeks[0] != 9500*time.Millisecond {
		t.Errorf("expected seek to 9.5s, got %v", engine.seeks)
	}
	if engine.resumes != 0 {
		t.Error("engine must not resume before the seek completes")
	}
}

func TestSeekCompletionStartsPlayback(t *testing.T) {
	engine := newFakeEngine()
	p := New(engine)

	_ = p.Play(seg(time.Second, 3*time.Second))
	p.HandleEvent(Event{Kind: EventSeeked})

	if p.State() != StatePlaying {
		t.Errorf("expected Playing, got %s", p.State())
	}
	if engine.resumes != 1 {
		t.Errorf("expected 1 resume, got %d", engine.resumes)
	}
}

func TestPositionEventsIgnoredWhileSeeking(t *testing.T) {
	engine := newFakeEngine()
	p := New(engine)

	_ = p.Play(seg(10*time.Second, 12*time.Second))

	// stale position from before the seek, already past the boundary
	p.HandleEvent(Event{Kind: EventPosition, Position: 55 * time.Second})

	if p.State() != StateSeeking {
		t.Errorf("stale position must not leave Seeking, got %s", p.State())
	}
	if engine.pauses != 0 {
		t.Error("stale position must not pause the engine")
	}
}

func TestBoundaryStopsPlayback(t *testing.T) {
	engine := newFakeEngine()
	p := New(engine)

	_ = p.Play(seg(10*time.Second, 12*time.Second))
	p.HandleEvent(Event{Kind: EventSeeked})

	p.HandleEvent(Event{Kind: EventPosition, Position: 11 * time.Second})
	if p.State() != StatePlaying {
		t.Fatalf("expected Playing inside segment, got %s", p.State())
	}

	p.HandleEvent(Event{Kind: EventPosition, Position: 12 * time.Second})
	if p.State() != StateStopped {
		t.Errorf("expected Stopped at boundary, got %s", p.State())
	}
	if engine.pauses != 1 {
		t.Errorf("expected 1 pause at boundary, got %d", engine.pauses)
	}
	if p.Err() != nil {
		t.Errorf("boundary stop is not an error, got: %v", p.Err())
	}
}

func TestPlayWhilePlayingRetargets(t *testing.T) {
	engine := newFakeEngine()
	p := New(engine)

	_ = p.Play(seg(10*time.Second, 12*time.Second))
	p.HandleEvent(Event{Kind: EventSeeked})

	if err := p.Play(seg(20*time.Second, 22*time.Second)); err != nil {
		t.Fatalf("Play error: %v", err)
	}

	if p.State() != StateSeeking {
		t.Errorf("expected Seeking after retarget, got %s", p.State())
	}
	if engine.pauses != 1 {
		t.Errorf("expected pause before retarget seek, got %d", engine.pauses)
	}
	if len(engine.seeks) != 2 || engine.seeks[1] != 20*time.Second {
		t.Errorf("expected second seek to 20s, got %v", engine.seeks)
	}

	// the new segment's boundary applies after the seek lands
	p.HandleEvent(Event{Kind: EventSeeked})
	p.HandleEvent(Event{Kind: EventPosition, Position: 21 * time.Second})
	if p.State() != StatePlaying {
		t.Errorf("expected Playing inside new segment, got %s", p.State())
	}
	p.HandleEvent(Event{Kind: EventPosition, Position: 22 * time.Second})
	if p.State() != StateStopped {
		t.Errorf("expected Stopped at new boundary, got %s", p.State())
	}
}

func TestStaleSeekCompletionIgnoredWhilePlaying(t *testing.T) {
	engine := newFakeEngine()
	p := New(engine)

	_ = p.Play(seg(time.Second, 5*time.Second))
	p.HandleEvent(Event{Kind: EventSeeked})
	p.HandleEvent(Event{Kind: EventSeeked})

	if engine.resumes != 1 {
		t.Errorf("duplicate seek completion resumed again: %d resumes", engine.resumes)
	}
	if p.State() != StatePlaying {
		t.Errorf("expected Playing, got %s", p.State())
	}
}

func TestEngineErrorLandsInStopped(t *testing.T) {
	engine := newFakeEngine()
	p := New(engine)

	_ = p.Play(seg(time.Second, 3*time.Second))
	p.HandleEvent(Event{Kind: EventError, Err: errors.New("decoder crashed")})

	if p.State() != StateStopped {
		t.Errorf("expected Stopped after engine error, got %s", p.State())
	}
	if !errors.Is(p.Err(), ErrPlayback) {
		t.Errorf("expected ErrPlayback, got: %v", p.Err())
	}
	if len(engine.seeks) != 1 {
		t.Error("an engine error must not trigger a retry seek")
	}
}

func TestSeekFailureStops(t *testing.T) {
	engine := newFakeEngine()
	engine.seekErr = errors.New("ipc gone")
	p := New(engine)

	err := p.Play(seg(time.Second, 3*time.Second))
	if !errors.Is(err, ErrPlayback) {
		t.Errorf("expected ErrPlayback from Play, got: %v", err)
	}
	if p.State() != StateStopped {
		t.Errorf("expected Stopped, got %s", p.State())
	}
}

func TestResumeFailureStops(t *testing.T) {
	engine := newFakeEngine()
	engine.resumeErr = errors.New("ipc gone")
	p := New(engine)

	_ = p.Play(seg(time.Second, 3*time.Second))
	p.HandleEvent(Event{Kind: EventSeeked})

	if p.State() != StateStopped {
		t.Errorf("expected Stopped, got %s", p.State())
	}
	if !errors.Is(p.Err(), ErrPlayback) {
		t.Errorf("expected ErrPlayback, got: %v", p.Err())
	}
}

func TestReplayAfterStopped(t *testing.T) {
	engine := newFakeEngine()
	p := New(engine)
	window := seg(10*time.Second, 12*time.Second)

	_ = p.Play(window)
	p.HandleEvent(Event{Kind: EventSeeked})
	p.HandleEvent(Event{Kind: EventPosition, Position: 12 * time.Second})
	if p.State() != StateStopped {
		t.Fatalf("expected Stopped, got %s", p.State())
	}

	if err := p.Play(window); err != nil {
		t.Fatalf("replay error: %v", err)
	}
	if p.State() != StateSeeking {
		t.Errorf("expected Seeking on replay, got %s", p.State())
	}
	if len(engine.seeks) != 2 {
		t.Errorf("expected 2 seeks, got %d", len(engine.seeks))
	}
}

func TestStopPausesEngine(t *testing.T) {
	engine := newFakeEngine()
	p := New(engine)

	_ = p.Play(seg(time.Second, 3*time.Second))
	p.HandleEvent(Event{Kind: EventSeeked})
	p.Stop()

	if p.State() != StateStopped {
		t.Errorf("expected Stopped, got %s", p.State())
	}
	if engine.pauses != 1 {
		t.Errorf("expected 1 pause, got %d", engine.pauses)
	}
}

func TestEndOfFileStopsPlayback(t *testing.T) {
	engine := newFakeEngine()
	p := New(engine)

	_ = p.Play(seg(58*time.Second, 60*time.Second))
	p.HandleEvent(Event{Kind: EventSeeked})
	p.HandleEvent(Event{Kind: EventEnded})

	if p.State() != StateStopped {
		t.Errorf("expected Stopped at end of file, got %s", p.State())
	}
	if p.Err() != nil {
		t.Errorf("end of file is not an error, got: %v", p.Err())
	}
}

func TestZeroLengthSegmentStopsImmediately(t *testing.T) {
	engine := newFakeEngine()
	p := New(engine)

	_ = p.Play(seg(5*time.Second, 5*time.Second))
	p.HandleEvent(Event{Kind: EventSeeked})
	p.HandleEvent(Event{Kind: EventPosition, Position: 5 * time.Second})

	if p.State() != StateStopped {
		t.Errorf("expected Stopped for zero-length segment, got %s", p.State())
	}
}
