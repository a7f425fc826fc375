package subtitle

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

var srtTimingRegexp = regexp.MustCompile(
	`(\d{2,}):(\d{2}):(\d{2}),(\d{3})\s*-->\s*(\d{2,}):(\d{2}):(\d{2}),(\d{3})`,
)

// parser states for one SubRip block
const (
	srtExpectIndex = iota
	srtExpectTiming
	srtCollectText
)

// parseSRTFile reads a SubRip file block by block. Each block must carry a
// cue number line, a timing line, then text lines up to a blank separator;
// a block breaking that shape reports ErrFormat with the offending line.
func parseSRTFile(path string) (*Track, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SRT file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	var cues []Cue
	var current Cue
	var textLines []string

	scanner := bufio.NewScanner(file)
	state := srtExpectIndex
	lineNum := 0

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		trimmed := strings.TrimSpace(line)

		switch state {
		case srtExpectIndex:
			if trimmed == "" {
				continue
			}
			index, err := strconv.Atoi(trimmed)
			if err != nil {
				return nil, fmt.Errorf(
					"%w: expected cue number at line %d, got %q",
					ErrFormat,
					lineNum,
					trimmed,
				)
			}
			current = Cue{Index: index}
			state = srtExpectTiming

		case srtExpectTiming:
			matches := srtTimingRegexp.FindStringSubmatch(line)
			if len(matches) != 9 {
				return nil, fmt.Errorf(
					"%w: malformed timing at line %d: %q",
					ErrFormat,
					lineNum,
					trimmed,
				)
			}
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
			current.Start = start
			current.End = end
			state = srtCollectText

		case srtCollectText:
			if trimmed == "" {
				current.Text = strings.Join(textLines, "\n")
				cues = append(cues, current)
				textLines = nil
				state = srtExpectIndex
				continue
			}
			textLines = append(textLines, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading SRT file: %w", err)
	}

	switch state {
	case srtExpectTiming:
		return nil, fmt.Errorf(
			"%w: file ends before the timing line of cue %d",
			ErrFormat,
			current.Index,
		)
	case srtCollectText:
		current.Text = strings.Join(textLines, "\n")
		cues = append(cues, current)
	}

	return &Track{Cues: cues, Format: FormatSRT}, nil
}
