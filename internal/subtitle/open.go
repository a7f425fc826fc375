package subtitle

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Open parses the subtitle file at path, picking the parser from the file
// extension. SubRip (.srt) and WebVTT (.vtt) are supported.
func Open(path string) (*Track, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".srt":
		return parseSRTFile(path)
	case ".vtt":
		return parseVTTFile(path)
	default:
		return nil, fmt.Errorf("unsupported subtitle format: %s", ext)
	}
}
