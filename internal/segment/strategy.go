package segment

import (
	"fmt"
	"strings"
	"time"

	"github.com/ulasonat/EnglishLearningApp/internal/subtitle"
	"github.com/ulasonat/EnglishLearningApp/internal/vocab"
)

// Strategy resolves where in the video a vocabulary entry should play.
// A session picks one strategy at start and uses it for every entry.
type Strategy interface {
	Resolve(entry vocab.Entry, cues []subtitle.Cue) (Segment, error)
}

// strategy names accepted on the command line and in config files
const (
	StrategyAuto  = "auto"
	StrategyIndex = "index"
	StrategyText  = "text"
)

// creates a Strategy by name; an empty name selects auto
func New(name string, opts Options) (Strategy, error) {
	switch name {
	case "", StrategyAuto:
		return &AutoStrategy{opts: opts}, nil
	case StrategyIndex:
		return &IndexStrategy{opts: opts}, nil
	case StrategyText:
		return &TextStrategy{opts: opts}, nil
	default:
		return nil, fmt.Errorf("unsupported matching strategy: %s", name)
	}
}

// IndexStrategy matches the entry's numeric subtitle_ref values against cue
// numbers. Entries without numeric refs do not resolve.
type IndexStrategy struct {
	opts Options
}

func NewIndexStrategy(opts Options) *IndexStrategy {
	return &IndexStrategy{opts: opts}
}

func (s *IndexStrategy) Resolve(
	entry vocab.Entry,
	cues []subtitle.Cue,
) (Segment, error) {
	if entry.Ref == nil || len(entry.Ref.Indices) == 0 {
		return Segment{}, fmt.Errorf(
			"%w: entry %q has no cue numbers",
			ErrNoMatch,
			entry.Word,
		)
	}

	wanted := make(map[int]bool, len(entry.Ref.Indices))
	for _, index := range entry.Ref.Indices {
		wanted[index] = true
	}

	var matched []subtitle.Cue
	for _, cue := range cues {
		if wanted[cue.Index] {
			matched = append(matched, cue)
		}
	}
	if len(matched) == 0 {
		return Segment{}, fmt.Errorf(
			"%w: entry %q references cues %v",
			ErrNoMatch,
			entry.Word,
			entry.Ref.Indices,
		)
	}

	return s.opts.bound(span(matched)), nil
}

// TextStrategy matches cue text case-insensitively against the entry's text
// reference, falling back to the word itself. The first matching cue wins,
// which keeps resolution deterministic for words that appear many times.
type TextStrategy struct {
	opts Options
}

func NewTextStrategy(opts Options) *TextStrategy {
	return &TextStrategy{opts: opts}
}

func (s *TextStrategy) Resolve(
	entry vocab.Entry,
	cues []subtitle.Cue,
) (Segment, error) {
	needle := entry.Word
	if entry.Ref != nil && entry.Ref.Text != "" {
		needle = entry.Ref.Text
	}
	needle = strings.ToLower(strings.TrimSpace(needle))
	if needle == "" {
		return Segment{}, fmt.Errorf(
			"%w: entry %q has no text to match",
			ErrNoMatch,
			entry.Word,
		)
	}

	for _, cue := range cues {
		if strings.Contains(strings.ToLower(cue.Text), needle) {
			return s.opts.bound(cue.Start, cue.End), nil
		}
	}

	return Segment{}, fmt.Errorf(
		"%w: no cue text contains %q",
		ErrNoMatch,
		needle,
	)
}

// AutoStrategy picks the resolution source from what the entry carries, in a
// fixed order: an explicit begin/end window wins, then numeric cue refs, then
// text matching. The source is chosen by field presence, so an entry with
// unmatched cue numbers fails rather than silently degrading to text search.
type AutoStrategy struct {
	opts Options
}

func NewAutoStrategy(opts Options) *AutoStrategy {
	return &AutoStrategy{opts: opts}
}

func (s *AutoStrategy) Resolve(
	entry vocab.Entry,
	cues []subtitle.Cue,
) (Segment, error) {
	if start, end, ok := entry.Window(); ok {
		return s.opts.bound(start, end), nil
	}
	if entry.Ref != nil && len(entry.Ref.Indices) > 0 {
		return NewIndexStrategy(s.opts).Resolve(entry, cues)
	}
	return NewTextStrategy(s.opts).Resolve(entry, cues)
}

// minimal range covering all matched cues
func span(cues []subtitle.Cue) (start, end time.Duration) {
	start = cues[0].Start
	end = cues[0].End
	for _, cue := range cues[1:] {
		if cue.Start < start {
			start = cue.Start
		}
		if cue.End > end {
			end = cue.End
		}
	}
	return start, end
}
