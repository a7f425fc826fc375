package subtitle

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	vttTimingRegexp = regexp.MustCompile(
		`(\d{2,}):(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(\d{2,}):(\d{2}):(\d{2})\.(\d{3})`,
	)
	vttShortTimingRegexp = regexp.MustCompile(
		`(\d{2}):(\d{2})\.(\d{3})\s*-->\s*(\d{2}):(\d{2})\.(\d{3})`,
	)
)

// parseVTTFile reads a WebVTT file. Cue identifiers are optional per the
// format, so cues are numbered in file order. NOTE and STYLE blocks are
// skipped. A missing WEBVTT header reports ErrFormat.
func parseVTTFile(path string) (*Track, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open VTT file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	var cues []Cue
	var current *Cue
	var textLines []string

	scanner := bufio.NewScanner(file)
	lineNum := 0
	headerSeen := false
	cueNumber := 0

	flush := func() {
		if current == nil {
			return
		}
		current.Text = strings.Join(textLines, "\n")
		cues = append(cues, *current)
		current = nil
		textLines = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
			if !strings.HasPrefix(strings.TrimSpace(line), "WEBVTT") {
				return nil, fmt.Errorf("%w: missing WEBVTT header", ErrFormat)
			}
			headerSeen = true
			continue
		}
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "NOTE") || strings.HasPrefix(trimmed, "STYLE") {
			for scanner.Scan() {
				lineNum++
				if strings.TrimSpace(scanner.Text()) == "" {
					break
				}
			}
			continue
		}

		if trimmed == "" {
			flush()
			continue
		}

		if matches := vttTimingRegexp.FindStringSubmatch(line); len(matches) == 9 {
			flush()
			start, err := parseClock(matches[1], matches[2], matches[3], matches[4])
			if err != nil {
				return nil, fmt.Errorf(
					"%w: invalid start timestamp at line %d: %v",
					ErrFormat,
					lineNum,
					err,
				)
			}
			end, err := parseClock(matches[5], matches[6], matches[7], matches[8])
			if err != nil {
				return nil, fmt.Errorf(
					"%w: invalid end timestamp at line %d: %v",
					ErrFormat,
					lineNum,
					err,
				)
			}
			cueNumber++
			current = &Cue{Index: cueNumber, Start: start, End: end}
			continue
		}

		if matches := vttShortTimingRegexp.FindStringSubmatch(line); len(matches) == 7 {
			flush()
			start, err := parseClock("00", matches[1], matches[2], matches[3])
			if err != nil {
				return nil, fmt.Errorf(
					"%w: invalid start timestamp at line %d: %v",
					ErrFormat,
					lineNum,
					err,
				)
			}
			end, err := parseClock("00", matches[4], matches[5], matches[6])
			if err != nil {
				return nil, fmt.Errorf(
					"%w: invalid end timestamp at line %d: %v",
					ErrFormat,
					lineNum,
					err,
				)
			}
			cueNumber++
			current = &Cue{Index: cueNumber, Start: start, End: end}
			continue
		}

		// cue identifier lines land here while no cue is open; drop them
		if current != nil {
			textLines = append(textLines, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading VTT file: %w", err)
	}
	if !headerSeen {
		return nil, fmt.Errorf("%w: empty VTT file", ErrFormat)
	}
	flush()

	return &Track{Cues: cues, Format: FormatVTT}, nil
}
