package glossary

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ulasonat/EnglishLearningApp/internal/subtitle"
)

// subtitle cue handed to the model
type CueItem struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// one generated vocabulary entry; the JSON form matches the review format
type Item struct {
	Word        string   `json:"word"`
	Definition  string   `json:"definition"`
	Translation string   `json:"translation,omitempty"`
	Examples    []string `json:"examples,omitempty"`
	SubtitleRef int      `json:"subtitle_ref"`
}

// interface for vocabulary generation
type Generator interface {
	Generate(
		ctx context.Context,
		cues []CueItem,
	) ([]Item, error)
}

// optional interface for generators that support concurrent batch processing
type ConcurrentGenerator interface {
	Generator
	GenerateWithConcurrency(
		ctx context.Context,
		cues []CueItem,
		concurrency int,
	) ([]Item, error)
}

// vocabulary generation service provider
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

const DefaultCount = 20

type Options struct {
	TargetLanguage string // optional; adds translations in this language
	Model          string
	Prompt         string
	Count          int // words wanted across the whole subtitle file (default 20)
	BatchSize      int // cues per API request (default 50)
}

// creates Generator based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Generator, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiGenerator(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAIGenerator(ctx, apiKey, opts)
	case ProviderAnthropic:
		return NewAnthropicGenerator(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported glossary provider: %s", provider)
	}
}

// CuesFromTrack converts parsed cues into prompt items, dropping empty ones.
func CuesFromTrack(cues []subtitle.Cue) []CueItem {
	out := make([]CueItem, 0, len(cues))
	for _, cue := range cues {
		text := strings.TrimSpace(cue.Text)
		if text == "" {
			continue
		}
		out = append(out, CueItem{Index: cue.Index, Text: text})
	}
	return out
}

// BuildPrompt creates the vocabulary prompt for LLM providers
func BuildPrompt(opts Options, cues []CueItem, count int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(
		"Pick the %d most useful English words or expressions for an "+
			"intermediate learner from the movie subtitle cues below.\n\n",
		count,
	))

	sb.WriteString("IMPORTANT INSTRUCTIONS:\n")
	sb.WriteString(
		"1. Prefer words and idioms a learner is unlikely to know; skip names and filler.\n",
	)
	sb.WriteString("2. Return ONLY a JSON array with one object per word.\n")
	sb.WriteString(
		"3. Each object must have 'word', 'definition', and 'subtitle_ref' fields.\n",
	)
	sb.WriteString("4. 'definition' must be a short plain-English definition.\n")
	sb.WriteString(
		"5. 'subtitle_ref' must be the index of the cue the word appears in.\n",
	)
	sb.WriteString("6. Do not add any explanation or markdown formatting.\n")
	if opts.TargetLanguage != "" {
		sb.WriteString(fmt.Sprintf(
			"7. Each object must also have a 'translation' field with the %s translation of the word.\n",
			opts.TargetLanguage,
		))
	}
	sb.WriteString("\n")

	if opts.Prompt != "" {
		sb.WriteString(
			fmt.Sprintf("Additional instructions: %s\n\n", opts.Prompt),
		)
	}

	sb.WriteString("Subtitle cues JSON:\n")

	inputJSON, _ := json.MarshalIndent(cues, "", "  ")
	sb.Write(inputJSON)

	sb.WriteString("\n\nOutput the vocabulary JSON array only:")

	return sb.String()
}

// mergeItems de-duplicates by word (case-insensitive, first one wins) and
// orders by cue reference. A count > 0 caps the list.
func mergeItems(items []Item, count int) []Item {
	seen := make(map[string]bool, len(items))
	out := make([]Item, 0, len(items))
	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item.Word))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].SubtitleRef < out[j].SubtitleRef
	})

	if count > 0 && len(out) > count {
		out = out[:count]
	}
	return out
}
