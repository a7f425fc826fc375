package vocab

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ulasonat/EnglishLearningApp/internal/subtitle"
)

// reported when the vocabulary payload is not the expected shape
var ErrFormat = errors.New("invalid vocabulary format")

// single vocabulary entry under review
type Entry struct {
	Word        string   `json:"word"`
	Definition  string   `json:"definition"`
	Translation string   `json:"translation,omitempty"`
	Examples    []string `json:"examples,omitempty"`
	Ref         *CueRef  `json:"subtitle_ref,omitempty"`
	Begin       string   `json:"begin,omitempty"`
	End         string   `json:"end,omitempty"`
	Known       bool     `json:"known,omitempty"`
}

// explicit cue window carried by the entry itself, if any
func (e Entry) Window() (start, end time.Duration, ok bool) {
	if e.Begin == "" || e.End == "" {
		return 0, 0, false
	}
	start, err := subtitle.ParseTimestamp(e.Begin)
	if err != nil {
		return 0, 0, false
	}
	end, err = subtitle.ParseTimestamp(e.End)
	if err != nil {
		return 0, 0, false
	}
	return start, end, true
}

// CueRef points an entry at its subtitle cues: a single cue number, a list of
// cue numbers, or a fragment of cue text. The JSON form round-trips unchanged.
type CueRef struct {
	Indices []int
	Text    string
}

func (r *CueRef) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		r.Text = s
		return nil
	case '[':
		var indices []int
		if err := json.Unmarshal(data, &indices); err != nil {
			return fmt.Errorf("subtitle_ref list must contain integers: %w", err)
		}
		r.Indices = indices
		return nil
	default:
		var index int
		if err := json.Unmarshal(data, &index); err != nil {
			return fmt.Errorf("subtitle_ref must be an integer, a list of integers, or a string: %w", err)
		}
		r.Indices = []int{index}
		return nil
	}
}

func (r CueRef) MarshalJSON() ([]byte, error) {
	switch {
	case r.Text != "":
		return json.Marshal(r.Text)
	case len(r.Indices) == 1:
		return json.Marshal(r.Indices[0])
	case len(r.Indices) > 1:
		return json.Marshal(r.Indices)
	default:
		return []byte("null"), nil
	}
}

// ordered vocabulary list for one review session
type List struct {
	Entries []Entry
}

// Parse decodes a vocabulary payload. The payload must be a JSON array of
// objects, each with non-empty word and definition fields; anything else
// reports ErrFormat.
func Parse(data []byte) (*List, error) {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	for i, entry := range entries {
		if strings.TrimSpace(entry.Word) == "" {
			return nil, fmt.Errorf("%w: entry %d is missing a word", ErrFormat, i)
		}
		if strings.TrimSpace(entry.Definition) == "" {
			return nil, fmt.Errorf(
				"%w: entry %d (%s) is missing a definition",
				ErrFormat,
				i,
				entry.Word,
			)
		}
		if err := validateWindow(entry); err != nil {
			return nil, fmt.Errorf("%w: entry %d (%s): %v", ErrFormat, i, entry.Word, err)
		}
	}

	return &List{Entries: entries}, nil
}

// reads and decodes a vocabulary file
func Load(path string) (*List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file: %w", err)
	}
	return Parse(data)
}

// begin/end timestamps come as a pair and must parse as SubRip times
func validateWindow(entry Entry) error {
	if entry.Begin == "" && entry.End == "" {
		return nil
	}
	if entry.Begin == "" || entry.End == "" {
		return fmt.Errorf("begin and end timestamps must both be set")
	}
	begin, err := subtitle.ParseTimestamp(entry.Begin)
	if err != nil {
		return err
	}
	end, err := subtitle.ParseTimestamp(entry.End)
	if err != nil {
		return err
	}
	if end < begin {
		return fmt.Errorf("end timestamp %s precedes begin %s", entry.End, entry.Begin)
	}
	return nil
}

func (l *List) Len() int {
	return len(l.Entries)
}

// records the reviewer's verdict for one entry
func (l *List) Mark(index int, known bool) error {
	if index < 0 || index >= len(l.Entries) {
		return fmt.Errorf(
			"index %d out of range (0-%d)",
			index,
			len(l.Entries)-1,
		)
	}
	l.Entries[index].Known = known
	return nil
}

// Filtered returns the entries still unknown, in their original order.
// Entries never marked count as unknown.
func (l *List) Filtered() []Entry {
	var out []Entry
	for _, entry := range l.Entries {
		if !entry.Known {
			out = append(out, entry)
		}
	}
	return out
}
