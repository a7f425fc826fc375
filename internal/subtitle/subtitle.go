package subtitle

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// reported when a subtitle file cannot be parsed
var ErrFormat = errors.New("invalid subtitle format")

// single timed cue
type Cue struct {
	Index int
	Start time.Duration
	End   time.Duration
	Text  string
}

// complete cue track of one subtitle file
type Track struct {
	Cues   []Cue
	Format Format
}

// supported subtitle formats
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
)

// interface for writing cue tracks to files
type Writer interface {
	Write(track *Track, path string) error
}

var clockRegexp = regexp.MustCompile(`^(\d{2,}):(\d{2}):(\d{2})[,.](\d{3})$`)

// ParseTimestamp parses a single SubRip style timestamp (HH:MM:SS,mmm).
// A dot separator before the milliseconds is accepted too.
func ParseTimestamp(s string) (time.Duration, error) {
	matches := clockRegexp.FindStringSubmatch(strings.TrimSpace(s))
	if len(matches) != 5 {
		return 0, fmt.Errorf("invalid timestamp %q", s)
	}
	return parseClock(matches[1], matches[2], matches[3], matches[4])
}

// SubRip timestamp for a duration: 01:02:03,456
func FormatTimestamp(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}

func parseClock(hours, minutes, seconds, millis string) (time.Duration, error) {
	h, err := strconv.Atoi(hours)
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(minutes)
	if err != nil {
		return 0, err
	}
	s, err := strconv.Atoi(seconds)
	if err != nil {
		return 0, err
	}
	ms, err := strconv.Atoi(millis)
	if err != nil {
		return 0, err
	}

	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(ms)*time.Millisecond, nil
}
