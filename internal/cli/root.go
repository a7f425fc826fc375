package cli

import (
	"github.com/spf13/cobra"

	"github.com/ulasonat/EnglishLearningApp/internal/logging"
)

var (
	verbose bool
	logger  *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "vocab",
	Short: "Review movie vocabulary with synchronized video playback",
	Long: `Vocab is a CLI tool for learning English vocabulary from movies.

It pairs a vocabulary list with the movie's subtitles, plays the scene
each word appears in, and exports the words you still don't know.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.NewLogger(verbose)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
	rootCmd.PersistentFlags().
		String("config", "", "Config file path (default vocab.yaml if present)")
}
