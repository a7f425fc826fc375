package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/ulasonat/EnglishLearningApp/internal/ffmpeg"
	"github.com/ulasonat/EnglishLearningApp/internal/segment"
)

// extracted clip info
type ClipInfo struct {
	Path  string
	Index int
	Word  string
	Start time.Duration
	End   time.Duration
}

// a single clip to cut
type ClipJob struct {
	Index   int
	Word    string
	Segment segment.Segment
}

// JSON output from ffprobe
type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// duration of a video file
func Probe(filePath string) (time.Duration, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return 0, fmt.Errorf("file not found: %s", filePath)
	}

	ffprobePath, err := ffmpegbin.FFprobePath()
	if err != nil {
		return 0, err
	}

	cmd := exec.Command(ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		filePath,
	)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probe ffprobeOutput
	if err := json.Unmarshal(out.Bytes(), &probe); err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	var seconds float64
	if _, err := fmt.Sscanf(probe.Format.Duration, "%f", &seconds); err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}

	return time.Duration(seconds * float64(time.Second)), nil
}

// cuts one segment out of the video without re-encoding
func ExtractClip(
	ctx context.Context,
	videoPath, outputPath string,
	seg segment.Segment,
) error {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("video file not found: %s", videoPath)
	}
	if seg.Duration() <= 0 {
		return fmt.Errorf("segment must be positive, got %v", seg.Duration())
	}

	outputDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return err
	}

	kwargs := ffmpeg.KwArgs{
		"ss": seg.Start.Seconds(),
		"t":  seg.Duration().Seconds(),
		"y":  "",
		"c":  "copy", // Copy codec for speed
	}

	err = ffmpeg.Input(videoPath).
		Output(outputPath, kwargs).
		OverWriteOutput().
		SetFfmpegPath(ffmpegPath).
		Run()

	if err != nil {
		return fmt.Errorf("ffmpeg clip extraction failed: %w", err)
	}

	return nil
}

// ExtractClips cuts every job's segment with configurable concurrency.
// If concurrency is 0 or negative, it defaults to 4 concurrent workers.
func ExtractClips(
	ctx context.Context,
	videoPath, outputDir string,
	jobs []ClipJob,
	concurrency int,
) ([]ClipInfo, error) {
	if concurrency <= 0 {
		concurrency = 4
	}

	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("video file not found: %s", videoPath)
	}

	if len(jobs) == 0 {
		return nil, nil
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	ext := filepath.Ext(videoPath)

	ffmpegPath, err := ffmpegbin.FFmpegPath()
	if err != nil {
		return nil, err
	}

	var (
		mu       sync.Mutex
		clips    []ClipInfo
		firstErr error
		wg       sync.WaitGroup
	)

	// Create a semaphore to limit concurrency
	sem := make(chan struct{}, concurrency)

	for _, job := range jobs {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		mu.Lock()
		hasErr := firstErr != nil
		mu.Unlock()
		if hasErr {
			break
		}

		wg.Add(1)
		go func(j ClipJob) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			select {
			case <-ctx.Done():
				return
			default:
			}

			mu.Lock()
			hasErr := firstErr != nil
			mu.Unlock()
			if hasErr {
				return
			}

			clipPath := filepath.Join(
				outputDir,
				fmt.Sprintf("%03d_%s%s", j.Index+1, Slug(j.Word), ext),
			)

			kwargs := ffmpeg.KwArgs{
				"ss": j.Segment.Start.Seconds(),
				"t":  j.Segment.Duration().Seconds(),
				"y":  "",
				"c":  "copy", // Copy codec for speed
			}

			err := ffmpeg.Input(videoPath).
				Output(clipPath, kwargs).
				OverWriteOutput().
				SetFfmpegPath(ffmpegPath).
				Run()

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf(
						"failed to cut clip %d (%s): %w",
						j.Index,
						j.Word,
						err,
					)
				}
				return
			}

			clips = append(clips, ClipInfo{
				Path:  clipPath,
				Index: j.Index,
				Word:  j.Word,
				Start: j.Segment.Start,
				End:   j.Segment.End,
			})
		}(job)
	}

	wg.Wait()

	if firstErr != nil {
		return clips, firstErr
	}

	// sort clips by index to maintain order
	sort.Slice(clips, func(i, j int) bool {
		return clips[i].Index < clips[j].Index
	})

	return clips, nil
}

// checks if the file is a video based on extension
func IsVideoFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	videoExts := map[string]bool{
		".mp4":  true,
		".mkv":  true,
		".avi":  true,
		".mov":  true,
		".wmv":  true,
		".flv":  true,
		".webm": true,
		".m4v":  true,
		".mpeg": true,
		".mpg":  true,
		".3gp":  true,
	}
	return videoExts[ext]
}

// Slug turns a word into a safe filename fragment.
func Slug(word string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(word)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "clip"
	}
	return b.String()
}

// removes all clip files
func CleanupClips(clips []ClipInfo) error {
	var lastErr error
	for _, clip := range clips {
		if err := os.Remove(clip.Path); err != nil && !os.IsNotExist(err) {
			lastErr = err
		}
	}
	return lastErr
}
