package subtitle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SubRip format
type SRTWriter struct{}

// WebVTT format
type VTTWriter struct{}

func NewWriter(format Format) (Writer, error) {
	switch format {
	case FormatSRT:
		return &SRTWriter{}, nil
	case FormatVTT:
		return &VTTWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// writes the track to an SRT file
func (w *SRTWriter) Write(track *Track, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	var sb strings.Builder
	for i, cue := range track.Cues {
		// cue number (1-based)
		sb.WriteString(fmt.Sprintf("%d\n", i+1))

		sb.WriteString(fmt.Sprintf("%s --> %s\n",
			FormatTimestamp(cue.Start),
			FormatTimestamp(cue.End)))

		sb.WriteString(cue.Text)
		sb.WriteString("\n\n")
	}

	return os.WriteFile(path, []byte(sb.String()), 0644)
}

// writes the track to a VTT file
func (w *VTTWriter) Write(track *Track, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString("WEBVTT\n\n")

	for i, cue := range track.Cues {
		sb.WriteString(fmt.Sprintf("%d\n", i+1))

		sb.WriteString(fmt.Sprintf("%s --> %s\n",
			formatVTTTime(cue.Start),
			formatVTTTime(cue.End)))

		sb.WriteString(cue.Text)
		sb.WriteString("\n\n")
	}

	return os.WriteFile(path, []byte(sb.String()), 0644)
}

func formatVTTTime(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, millis)
}

// Retime shifts every cue so that offset becomes time zero, clamping at zero.
// Used when cutting a clip out of the full video: the clip's subtitles must
// restart from the clip boundary.
func Retime(cues []Cue, offset time.Duration) []Cue {
	out := make([]Cue, len(cues))
	for i, cue := range cues {
		start := cue.Start - offset
		if start < 0 {
			start = 0
		}
		end := cue.End - offset
		if end < 0 {
			end = 0
		}
		out[i] = Cue{Index: i + 1, Start: start, End: end, Text: cue.Text}
	}
	return out
}

// Between returns the cues overlapping the [start, end) window, in order.
func Between(cues []Cue, start, end time.Duration) []Cue {
	var out []Cue
	for _, cue := range cues {
		if cue.End <= start || cue.Start >= end {
			continue
		}
		out = append(out, cue)
	}
	return out
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0755)
}

// subtitle format based on file extension
func GetFormatFromExtension(path string) Format {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".vtt":
		return FormatVTT
	default:
		return FormatSRT
	}
}

// file extension for a format
func GetExtensionForFormat(format Format) string {
	switch format {
	case FormatVTT:
		return ".vtt"
	default:
		return ".srt"
	}
}
