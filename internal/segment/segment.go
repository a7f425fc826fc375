package segment

import (
	"errors"
	"time"
)

// reported when no subtitle cue can be tied to a vocabulary entry
var ErrNoMatch = errors.New("no matching subtitle cue")

// padding added to each side of a resolved cue range
const DefaultMargin = 500 * time.Millisecond

// Segment is a bounded playback window within the video.
type Segment struct {
	Start time.Duration
	End   time.Duration
}

func (s Segment) IsZero() bool {
	return s.Start == 0 && s.End == 0
}

func (s Segment) Duration() time.Duration {
	return s.End - s.Start
}

// settings shared by all resolution strategies
type Options struct {
	Margin        time.Duration // padding per side; <= 0 means DefaultMargin
	VideoDuration time.Duration // upper clamp bound; 0 when unknown
}

func (o Options) margin() time.Duration {
	if o.Margin <= 0 {
		return DefaultMargin
	}
	return o.Margin
}

// pads the raw cue range by the margin and clamps it to the video bounds
func (o Options) bound(start, end time.Duration) Segment {
	start -= o.margin()
	end += o.margin()

	if start < 0 {
		start = 0
	}
	if o.VideoDuration > 0 {
		if end > o.VideoDuration {
			end = o.VideoDuration
		}
		if start > o.VideoDuration {
			start = o.VideoDuration
		}
	}
	if end < start {
		end = start
	}

	return Segment{Start: start, End: end}
}
