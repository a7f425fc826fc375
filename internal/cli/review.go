package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ulasonat/EnglishLearningApp/internal/clipboard"
	"github.com/ulasonat/EnglishLearningApp/internal/config"
	"github.com/ulasonat/EnglishLearningApp/internal/export"
	"github.com/ulasonat/EnglishLearningApp/internal/player"
	"github.com/ulasonat/EnglishLearningApp/internal/segment"
	"github.com/ulasonat/EnglishLearningApp/internal/session"
	"github.com/ulasonat/EnglishLearningApp/internal/subtitle"
	"github.com/ulasonat/EnglishLearningApp/internal/ui"
	"github.com/ulasonat/EnglishLearningApp/internal/video"
	"github.com/ulasonat/EnglishLearningApp/internal/vocab"
)

var reviewCmd = &cobra.Command{
	Use:   "review [video_file] [subtitle_file] [vocab_file]",
	Short: "Review vocabulary words against the movie scenes they come from",
	Long: `Review a vocabulary list while watching the scene each word appears in.

Each entry is matched to its subtitle cue and the video jumps to that
moment, playing just the matched lines plus a small margin. Mark words
known or unknown as you go; finishing writes the words you still don't
know to <vocab_file>_filtered.json next to the input.

The vocabulary file is a JSON array of objects with 'word', 'definition',
and optionally 'translation', 'examples', 'subtitle_ref', 'begin', and
'end' fields. With --from-clipboard, the JSON is read from the clipboard
instead of a file.

Requires mpv for playback (https://mpv.io).

Examples:
  vocab review movie.mp4 movie.srt words.json
  vocab review movie.mkv movie.vtt words.json --strategy text
  vocab review movie.mp4 movie.srt --from-clipboard
  vocab review movie.mp4 movie.srt words.json --margin-ms 1000 --overwrite`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)

	reviewCmd.Flags().
		StringP("strategy", "s", "", "Cue matching strategy (auto, index, text)")
	reviewCmd.Flags().
		Int("margin-ms", 0, "Extra playback margin around each cue in milliseconds")
	reviewCmd.Flags().
		String("player", "", "Path to the mpv binary (or set VOCAB_MPV_PATH)")
	reviewCmd.Flags().
		Bool("overwrite", false, "Overwrite an existing export instead of picking a new name")
	reviewCmd.Flags().
		Bool("from-clipboard", false, "Read the vocabulary JSON from the clipboard")
	reviewCmd.Flags().
		Bool("keep-clipboard-file", false, "Keep the imported clipboard file after the session")
}

func runReview(cmd *cobra.Command, args []string) error {
	videoPath := args[0]
	subtitlePath := args[1]
	ctx := context.Background()

	fromClipboard, _ := cmd.Flags().GetBool("from-clipboard")
	keepClipboard, _ := cmd.Flags().GetBool("keep-clipboard-file")
	configPath, _ := cmd.Flags().GetString("config")

	if fromClipboard && len(args) == 3 {
		return fmt.Errorf(
			"--from-clipboard replaces the vocabulary file argument; pass one or the other",
		)
	}
	if !fromClipboard && len(args) < 3 {
		return fmt.Errorf(
			"vocabulary file is required: pass it as the third argument or use --from-clipboard",
		)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
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
	if cmd.Flags().Changed("player") {
		cfg.Player, _ = cmd.Flags().GetString("player")
	}
	if cmd.Flags().Changed("overwrite") {
		cfg.OverwriteExport, _ = cmd.Flags().GetBool("overwrite")
	}
	if keepClipboard {
		cfg.KeepClipboardFile = true
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

	var vocabPath string
	if fromClipboard {
		imported, err := clipboard.Import(".")
		if err != nil {
			return fmt.Errorf("failed to import clipboard: %w", err)
		}
		if cfg.KeepClipboardFile {
			imported.Keep()
		}
		defer func() {
			if err := imported.Remove(); err != nil {
				logger.Warnw("Failed to remove clipboard file", "error", err)
			}
		}()
		vocabPath = imported.Path
	} else {
		vocabPath = args[2]
	}

	list, err := vocab.Load(vocabPath)
	if err != nil {
		return fmt.Errorf("failed to load vocabulary: %w", err)
	}

	track, err := subtitle.Open(subtitlePath)
	if err != nil {
		return fmt.Errorf("failed to parse subtitle file: %w", err)
	}
	if len(track.Cues) == 0 {
		return fmt.Errorf("subtitle file contains no cues")
	}

	logger.Infow("Starting review session",
		"video", videoPath,
		"subtitles", subtitlePath,
		"vocabulary", vocabPath,
		"entries", list.Len(),
		"cues", len(track.Cues),
		"strategy", cfg.Strategy,
		"margin_ms", cfg.MarginMS,
	)

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

	engine, err := player.NewMPV(cfg.Player)
	if err != nil {
		return err
	}
	if err := engine.Load(ctx, videoPath); err != nil {
		return fmt.Errorf("failed to start video player: %w", err)
	}
	defer engine.Close()

	ctrl, err := session.New(session.Config{
		List:     list,
		Cues:     track.Cues,
		Strategy: strategy,
		Player:   player.New(engine),
		Exporter: export.Exporter{Overwrite: cfg.OverwriteExport},
		Source:   vocabPath,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	ctrl.Start()

	program := tea.NewProgram(
		ui.New(ctrl, engine.Events()),
		tea.WithAltScreen(),
	)
	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("review session failed: %w", err)
	}

	model, ok := final.(ui.Model)
	if !ok {
		return fmt.Errorf("expected ui.Model, got %T", final)
	}
	if err := model.ExportErr(); err != nil {
		return err
	}
	if model.Aborted() || model.ExportPath() == "" {
		fmt.Println("Review aborted: nothing was exported")
		return nil
	}

	absOutput, _ := filepath.Abs(model.ExportPath())
	fmt.Printf("Review complete: %s\n", absOutput)
	fmt.Printf("  Reviewed: %d/%d\n", ctrl.Reviewed(), list.Len())
	fmt.Printf("  Known: %d\n", ctrl.KnownCount())
	fmt.Printf("  Unknown: %d\n", list.Len()-ctrl.KnownCount())

	return nil
}
