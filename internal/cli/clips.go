package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ulasonat/EnglishLearningApp/internal/config"
	"github.com/ulasonat/EnglishLearningApp/internal/segment"
	"github.com/ulasonat/EnglishLearningApp/internal/subtitle"
	"github.com/ulasonat/EnglishLearningApp/internal/video"
	"github.com/ulasonat/EnglishLearningApp/internal/vocab"
)

var clipsCmd = &cobra.Command{
	Use:   "clips [video_file] [subtitle_file] [vocab_file]",
	Short: "Cut a video clip for every vocabulary entry",
	Long: `Cut a short video clip for every entry in the vocabulary list.

Each entry is matched to its subtitle cue like in review, and the
matched window is cut out of the video without re-encoding. Every clip
gets a re-timed subtitle file next to it, and a clips.json manifest
ties the words to their files.

Entries that don't match any cue are skipped and listed at the end.

Examples:
  vocab clips movie.mp4 movie.srt words.json
  vocab clips movie.mkv movie.vtt words.json --clip-dir scenes
  vocab clips movie.mp4 movie.srt words.json --margin-ms 1000 --concurrency 8`,
	Args: cobra.ExactArgs(3),
	RunE: runClips,
}

// one manifest row per extracted clip
type manifestEntry struct {
	Word       string `json:"word"`
	Definition string `json:"definition,omitempty"`
	Clip       string `json:"clip"`
	Subtitles  string `json:"subtitles,omitempty"`
	Start      string `json:"start"`
	End        string `json:"end"`
}

func init() {
	rootCmd.AddCommand(clipsCmd)

	clipsCmd.Flags().
		String("clip-dir", "", "Directory for the extracted clips")
	clipsCmd.Flags().
		Int("concurrency", 0, "Number of parallel ffmpeg workers")
	clipsCmd.Flags().
		StringP("strategy", "s", "", "Cue matching strategy (auto, index, text)")
	clipsCmd.Flags().
		Int("margin-ms", 0, "Extra margin around each cue in milliseconds")
}

func runClips(cmd *cobra.Command, args []string) error {
	videoPath := args[0]
	subtitlePath := args[1]
	vocabPath := args[2]
	ctx := context.Background()

	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("clip-dir") {
		cfg.ClipDir, _ = cmd.Flags().GetString("clip-dir")
	}
	if cmd.Flags().Changed("concurrency") {
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		if concurrency <= 0 {
			return fmt.Errorf("concurrency must be positive, got %d", concurrency)
		}
		cfg.Concurrency = concurrency
	}
	if cmd.Flags().Changed("strategy") {
		value, _ := cmd.Flags().GetString("strategy")
		cfg.Strategy = strings.ToLower(strings.TrimSpace(value))
	}
	if cmd.Flags().Changed("margin-ms") {
		margin, _ := cmd.Flags().GetInt("margin-ms")
		if margin <= 0 {
			return fmt.Errorf("margin-ms must be positive, got %d", margin)
		}
		cfg.MarginMS = margin
	}

	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("video file not found: %s", videoPath)
	}
	if !video.IsVideoFile(videoPath) {
		return fmt.Errorf(
			"unsupported file type: %s (expected a video file)",
			filepath.Ext(videoPath),
		)
	}

	list, err := vocab.Load(vocabPath)
	if err != nil {
		return fmt.Errorf("failed to load vocabulary: %w", err)
	}

	track, err := subtitle.Open(subtitlePath)
	if err != nil {
		return fmt.Errorf("failed to parse subtitle file: %w", err)
	}

	duration, err := video.Probe(videoPath)
	if err != nil {
		return fmt.Errorf("failed to read video duration: %w", err)
	}

	strategy, err := segment.New(cfg.Strategy, segment.Options{
		Margin:        time.Duration(cfg.MarginMS) * time.Millisecond,
		VideoDuration: duration,
	})
	if err != nil {
		return err
	}

	logger.Infow("Starting clip extraction",
		"video", videoPath,
		"subtitles", subtitlePath,
		"vocabulary", vocabPath,
		"entries", list.Len(),
		"clip_dir", cfg.ClipDir,
		"concurrency", cfg.Concurrency,
	)

	var jobs []video.ClipJob
	var skipped []string
	for i, entry := range list.Entries {
		seg, err := strategy.Resolve(entry, track.Cues)
		if err != nil {
			logger.Warnw("Skipping entry with no match",
				"word", entry.Word,
				"error", err,
			)
			skipped = append(skipped, entry.Word)
			continue
		}
		jobs = append(jobs, video.ClipJob{
			Index:   i,
			Word:    entry.Word,
			Segment: seg,
		})
	}
	if len(jobs) == 0 {
		return fmt.Errorf("no vocabulary entry matched a subtitle cue")
	}

	logger.Infow("Cutting clips",
		"count", len(jobs),
	)

	clips, err := video.ExtractClips(ctx, videoPath, cfg.ClipDir, jobs, cfg.Concurrency)
	if err != nil {
		if cleanupErr := video.CleanupClips(clips); cleanupErr != nil {
			logger.Warnw("Failed to clean up partial clips", "error", cleanupErr)
		}
		return fmt.Errorf("clip extraction failed: %w", err)
	}

	writer, err := subtitle.NewWriter(track.Format)
	if err != nil {
		return fmt.Errorf("failed to create subtitle writer: %w", err)
	}

	manifest := make([]manifestEntry, 0, len(clips))
	for _, clip := range clips {
		row := manifestEntry{
			Word:       clip.Word,
			Definition: list.Entries[clip.Index].Definition,
			Clip:       filepath.Base(clip.Path),
			Start:      subtitle.FormatTimestamp(clip.Start),
			End:        subtitle.FormatTimestamp(clip.End),
		}

		cues := subtitle.Between(track.Cues, clip.Start, clip.End)
		if len(cues) > 0 {
			sidecarPath := strings.TrimSuffix(clip.Path, filepath.Ext(clip.Path)) +
				subtitle.GetExtensionForFormat(track.Format)
			sidecar := &subtitle.Track{
				Cues:   subtitle.Retime(cues, clip.Start),
				Format: track.Format,
			}
			if err := writer.Write(sidecar, sidecarPath); err != nil {
				return fmt.Errorf(
					"failed to write subtitles for clip %q: %w",
					clip.Word,
					err,
				)
			}
			row.Subtitles = filepath.Base(sidecarPath)
		}

		manifest = append(manifest, row)
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	data = append(data, '\n')

	manifestPath := filepath.Join(cfg.ClipDir, "clips.json")
	if err := os.WriteFile(manifestPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	absDir, _ := filepath.Abs(cfg.ClipDir)
	fmt.Printf("Clips extracted successfully: %s\n", absDir)
	fmt.Printf("  Clips: %d\n", len(clips))
	fmt.Printf("  Manifest: %s\n", filepath.Join(absDir, "clips.json"))
	if len(skipped) > 0 {
		fmt.Printf("  Skipped (no match): %s\n", strings.Join(skipped, ", "))
	}

	return nil
}
