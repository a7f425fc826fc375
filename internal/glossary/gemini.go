package glossary

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"google.golang.org/genai"
)

// implements Generator using Google Gemini
type GeminiGenerator struct {
	client  *genai.Client
	model   string
	options Options
}

func NewGeminiGenerator(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &GeminiGenerator{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

const DefaultBatchSize = 50

func (t *GeminiGenerator) batchSize() int {
	if t.options.BatchSize > 0 {
		return t.options.BatchSize
	}
	return DefaultBatchSize
}

func (t *GeminiGenerator) count() int {
	if t.options.Count > 0 {
		return t.options.Count
	}
	return DefaultCount
}

// words asked of each batch so the merged list can still reach the total
func wordQuota(count, batchCount int) int {
	if batchCount <= 0 {
		return count
	}
	quota := (count + batchCount - 1) / batchCount
	if quota < 1 {
		quota = 1
	}
	return quota
}

func (t *GeminiGenerator) Generate(
	ctx context.Context,
	cues []CueItem,
) ([]Item, error) {
	if len(cues) == 0 {
		return []Item{}, nil
	}

	batchSize := t.batchSize()
	count := t.count()
	if len(cues) <= batchSize {
		items, err := t.generateBatch(ctx, cues, count)
		if err != nil {
			return nil, err
		}
		return mergeItems(items, count), nil
	}

	batchCount := (len(cues) + batchSize - 1) / batchSize
	quota := wordQuota(count, batchCount)

	var allItems []Item
	for i := 0; i < len(cues); i += batchSize {
		end := i + batchSize
		if end > len(cues) {
			end = len(cues)
		}

		batch := cues[i:end]
		items, err := t.generateBatch(ctx, batch, quota)
		if err != nil {
			return nil, fmt.Errorf("batch %d failed: %w", i/batchSize, err)
		}
		allItems = append(allItems, items...)
	}

	return mergeItems(allItems, count), nil
}

// Cues are split into batches of BatchSize (default 50). Each batch becomes
// one API request. Workers (up to concurrency) pull batches from a shared queue.
func (t *GeminiGenerator) GenerateWithConcurrency(
	ctx context.Context,
	cues []CueItem,
	concurrency int,
) ([]Item, error) {
	if len(cues) == 0 {
		return []Item{}, nil
	}

	if concurrency <= 0 {
		concurrency = 3
	}

	batchSize := t.batchSize()
	count := t.count()
	var batches [][]CueItem
	for i := 0; i < len(cues); i += batchSize {
		end := i + batchSize
		if end > len(cues) {
			end = len(cues)
		}
		batches = append(batches, cues[i:end])
	}

	if len(batches) == 1 {
		items, err := t.generateBatch(ctx, batches[0], count)
		if err != nil {
			return nil, err
		}
		return mergeItems(items, count), nil
	}

	quota := wordQuota(count, len(batches))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type batchResult struct {
		Index int
		Items []Item
		Error error
	}

	workChan := make(chan int)
	resultChan := make(chan batchResult, len(batches))

	var wg sync.WaitGroup
	for i := 0; i < concurrency && i < len(batches); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case batchIdx, ok := <-workChan:
					if !ok {
						return
					}
					if ctx.Err() != nil {
						return
					}

					items, err := t.generateBatch(ctx, batches[batchIdx], quota)
					if err != nil {
						cancel()
					}
					resultChan <- batchResult{
						Index: batchIdx,
						Items: items,
						Error: err,
					}
				}
			}
		}()
	}

	go func() {
		defer close(workChan)
		for i := range batches {
			select {
			case <-ctx.Done():
				return
			case workChan <- i:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]batchResult, 0, len(batches))
	var firstErr error
	for result := range resultChan {
		if result.Error != nil && firstErr == nil {
			firstErr = fmt.Errorf(
				"batch %d failed: %w",
				result.Index,
				result.Error,
			)
			cancel()
		}
		if result.Error == nil {
			results = append(results, result)
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})

	var allItems []Item
	for _, r := range results {
		allItems = append(allItems, r.Items...)
	}

	return mergeItems(allItems, count), nil
}

func (t *GeminiGenerator) generateBatch(
	ctx context.Context,
	cues []CueItem,
	count int,
) ([]Item, error) {
	prompt := BuildPrompt(t.options, cues, count)

	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := t.client.Models.GenerateContent(ctx, t.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	return t.parseResponse(result)
}

func (t *GeminiGenerator) parseResponse(
	result *genai.GenerateContentResponse,
) ([]Item, error) {
	if result == nil || len(result.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	var responseText string
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				responseText += part.Text
			}
		}
		if responseText != "" {
			break
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("no text in Gemini response")
	}

	responseText = cleanJSONResponse(responseText)

	items, err := extractItems(responseText)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to parse JSON response: %w (response: %s)",
			err,
			truncateString(responseText, 200),
		)
	}

	return items, nil
}

func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)

	jsonBlockRegex := regexp.MustCompile("```(?:json)?\\s*")
	s = jsonBlockRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")

	s = strings.TrimSpace(s)

	return s
}

// fixes invalid JSON escape sequences like \N (SRT newline).
// It replaces \N with \\N so JSON can parse it, preserving the literal \N in the output.
func fixInvalidEscapes(s string) string {
	var result strings.Builder
	result.Grow(len(s))

	i := 0
	for i < len(s) {
		if i < len(s)-1 && s[i] == '\\' {
			next := s[i+1]
			// Valid JSON escape sequences: ", \, /, b, f, n, r, t, u
			switch next {
			case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
				// Valid escape, keep as-is
				result.WriteByte(s[i])
				result.WriteByte(s[i+1])
				i += 2
			default:
				// Invalid escape like \N - escape the backslash
				result.WriteString("\\\\")
				result.WriteByte(next)
				i += 2
			}
		} else {
			result.WriteByte(s[i])
			i++
		}
	}

	return result.String()
}

func extractItems(text string) ([]Item, error) {
	text = fixInvalidEscapes(text)

	for i := 0; i < len(text); i++ {
		if text[i] != '[' && text[i] != '{' {
			continue
		}
		decoder := json.NewDecoder(strings.NewReader(text[i:]))
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			continue
		}
		if items, ok := tryExtractItems(raw); ok && len(items) > 0 {
			return items, nil
		}
	}
	return nil, fmt.Errorf("no valid vocabulary JSON found in response")
}

func tryExtractItems(raw json.RawMessage) ([]Item, bool) {
	var items []Item
	if err := json.Unmarshal(
		raw,
		&items,
	); err == nil &&
		validateItems(items) {
		return keepValid(items), true
	}

	wrapperKeys := []string{"words", "vocabulary", "items", "results", "data"}
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, false
	}

	for _, key := range wrapperKeys {
		if fieldRaw, exists := wrapper[key]; exists {
			var fieldItems []Item
			if err := json.Unmarshal(
				fieldRaw,
				&fieldItems,
			); err == nil && validateItems(fieldItems) {
				return keepValid(fieldItems), true
			}
		}
	}

	for _, fieldRaw := range wrapper {
		var fieldItems []Item
		if err := json.Unmarshal(
			fieldRaw,
			&fieldItems,
		); err == nil && validateItems(fieldItems) {
			return keepValid(fieldItems), true
		}
	}

	return nil, false
}

func validateItems(items []Item) bool {
	for _, item := range items {
		if item.Word != "" && item.Definition != "" {
			return true
		}
	}
	return false
}

// keepValid drops items the model half-filled
func keepValid(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Word) == "" ||
			strings.TrimSpace(item.Definition) == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func (t *GeminiGenerator) Close() error {
	return nil
}
