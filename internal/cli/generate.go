package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ulasonat/EnglishLearningApp/internal/config"
	"github.com/ulasonat/EnglishLearningApp/internal/glossary"
	"github.com/ulasonat/EnglishLearningApp/internal/subtitle"
	"github.com/ulasonat/EnglishLearningApp/internal/vocab"
)

var generateCmd = &cobra.Command{
	Use:   "generate [subtitle_file]",
	Short: "Generate a vocabulary list from a subtitle file using AI",
	Long: `Generate a vocabulary list from the specified subtitle file using AI.

The subtitle cues are sent to the model, which picks the words an
intermediate learner is most likely to find useful and ties each one
back to the cue it appears in. The result is written as JSON ready for
the review command.

Large subtitle files are split into batches and processed in parallel.

Examples:
  vocab generate movie.srt
  vocab generate movie.vtt --count 30 --target-language turkish
  vocab generate movie.srt --provider openai --api-key YOUR_KEY
  vocab generate movie.srt --provider anthropic -o words.json`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().
		StringP("api-key", "k", "", "API key (or set GEMINI_API_KEY/OPENAI_API_KEY/ANTHROPIC_API_KEY env var)")
	generateCmd.Flags().
		String("provider", "", "Generation provider (gemini, openai, anthropic)")
	generateCmd.Flags().
		String("model", "", "Model to use for generation (provider-specific, uses sensible defaults)")
	generateCmd.Flags().
		Bool("model-override", false, "Allow any custom model, bypassing provider model validation")
	generateCmd.Flags().
		IntP("count", "n", 0, "Number of words to pick across the whole file")
	generateCmd.Flags().
		StringP("target-language", "t", "", "Add translations in this language")
	generateCmd.Flags().
		String("prompt", "", "Additional instructions for the model")
	generateCmd.Flags().
		Int("concurrency", 3, "Number of parallel generation workers")
	generateCmd.Flags().
		Int("batch-size", 50, "Number of subtitle cues per API request")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	subtitlePath := args[0]
	ctx := context.Background()

	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	modelOverride, _ := cmd.Flags().GetBool("model-override")
	count, _ := cmd.Flags().GetInt("count")
	targetLang, _ := cmd.Flags().GetString("target-language")
	prompt, _ := cmd.Flags().GetString("prompt")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	outputPath, _ := cmd.Flags().GetString("output")
	configPath, _ := cmd.Flags().GetString("config")

	if _, err := os.Stat(subtitlePath); os.IsNotExist(err) {
		return fmt.Errorf("subtitle file not found: %s", subtitlePath)
	}

	ext := strings.ToLower(filepath.Ext(subtitlePath))
	if ext != ".srt" && ext != ".vtt" {
		return fmt.Errorf("unsupported subtitle format %q: use .srt or .vtt", ext)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	providerStr := cfg.Provider
	if cmd.Flags().Changed("provider") {
		value, _ := cmd.Flags().GetString("provider")
		providerStr = strings.ToLower(strings.TrimSpace(value))
	}
	if model == "" {
		model = cfg.Model
	}
	if count == 0 {
		count = cfg.WordCount
	}
	if targetLang == "" {
		targetLang = cfg.TargetLanguage
	}

	provider := glossary.Provider(providerStr)

	if apiKey == "" {
		switch provider {
		case glossary.ProviderGemini:
			apiKey = os.Getenv("GEMINI_API_KEY")
		case glossary.ProviderOpenAI:
			apiKey = os.Getenv("OPENAI_API_KEY")
		case glossary.ProviderAnthropic:
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
	if apiKey == "" {
		var envVar string
		switch provider {
		case glossary.ProviderGemini:
			envVar = "GEMINI_API_KEY"
		case glossary.ProviderOpenAI:
			envVar = "OPENAI_API_KEY"
		case glossary.ProviderAnthropic:
			envVar = "ANTHROPIC_API_KEY"
		default:
			envVar = "API_KEY"
		}
		return fmt.Errorf(
			"API key is required: use --api-key flag or set %s environment variable",
			envVar,
		)
	}

	if model != "" && !modelOverride {
		switch provider {
		case glossary.ProviderGemini:
			if !isValidGeminiModel(model) {
				return fmt.Errorf(
					"unsupported Gemini model %q: valid models are %s (use --model-override to bypass)",
					model,
					strings.Join(validGeminiModels, ", "),
				)
			}
		case glossary.ProviderOpenAI:
			if !isValidOpenAIModel(model) {
				return fmt.Errorf(
					"unsupported OpenAI model %q: valid models are %s (use --model-override to bypass)",
					model,
					strings.Join(validOpenAIModels, ", "),
				)
			}
		case glossary.ProviderAnthropic:
			if !isValidAnthropicModel(model) {
				return fmt.Errorf(
					"unsupported Anthropic model %q: valid models are %s (use --model-override to bypass)",
					model,
					strings.Join(validAnthropicModels, ", "),
				)
			}
		}
	}

	if count <= 0 {
		return fmt.Errorf("count must be positive, got %d", count)
	}
	if concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}
	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be positive, got %d", batchSize)
	}

	if outputPath == "" {
		baseName := strings.TrimSuffix(subtitlePath, filepath.Ext(subtitlePath))
		outputPath = baseName + "_words.json"
	}

	logger.Infow("Starting vocabulary generation",
		"input", subtitlePath,
		"output", outputPath,
		"provider", providerStr,
		"count", count,
		"target_language", targetLang,
		"concurrency", concurrency,
		"batch_size", batchSize,
	)

	track, err := subtitle.Open(subtitlePath)
	if err != nil {
		return fmt.Errorf("failed to parse subtitle file: %w", err)
	}

	cues := glossary.CuesFromTrack(track.Cues)
	if len(cues) == 0 {
		return fmt.Errorf("subtitle file contains no cues")
	}

	logger.Infow("Parsed subtitle file",
		"cues", len(cues),
		"format", track.Format,
	)

	opts := glossary.Options{
		TargetLanguage: targetLang,
		Model:          model,
		Prompt:         prompt,
		Count:          count,
		BatchSize:      batchSize,
	}

	generator, err := glossary.Factory(ctx, provider, apiKey, opts)
	if err != nil {
		return fmt.Errorf("failed to create generator: %w", err)
	}

	logger.Infow("Generating vocabulary",
		"cues", len(cues),
		"concurrency", concurrency,
	)

	var items []glossary.Item
	if concurrentGenerator, ok := generator.(glossary.ConcurrentGenerator); ok {
		items, err = concurrentGenerator.GenerateWithConcurrency(
			ctx,
			cues,
			concurrency,
		)
	} else {
		items, err = generator.Generate(ctx, cues)
	}
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}
	if len(items) == 0 {
		return fmt.Errorf("the model returned no vocabulary entries")
	}

	logger.Infow("Generation complete",
		"words", len(items),
	)

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode vocabulary: %w", err)
	}
	data = append(data, '\n')

	// a list the review command would reject is a bug worth catching here
	if _, err := vocab.Parse(data); err != nil {
		return fmt.Errorf("generated vocabulary failed validation: %w", err)
	}

	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write vocabulary file: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Vocabulary generated successfully: %s\n", absOutput)
	fmt.Printf("  Words: %d\n", len(items))
	if targetLang != "" {
		fmt.Printf("  Translations: %s\n", targetLang)
	}

	return nil
}
