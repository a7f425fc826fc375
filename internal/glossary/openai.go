package glossary

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// implements Generator using OpenAI Chat Completions
type OpenAIGenerator struct {
	client  openai.Client
	model   string
	options Options
}

func NewOpenAIGenerator(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	model := opts.Model
	if model == "" {
		model = "gpt-5-mini"
	}

	return &OpenAIGenerator{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (t *OpenAIGenerator) batchSize() int {
	if t.options.BatchSize > 0 {
		return t.options.BatchSize
	}
	return DefaultBatchSize
}

func (t *OpenAIGenerator) count() int {
	if t.options.Count > 0 {
		return t.options.Count
	}
	return DefaultCount
}

func (t *OpenAIGenerator) Generate(
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
func (t *OpenAIGenerator) GenerateWithConcurrency(
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

func (t *OpenAIGenerator) generateBatch(
	ctx context.Context,
	cues []CueItem,
	count int,
) ([]Item, error) {
	prompt := BuildPrompt(t.options, cues, count)

	completion, err := t.client.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
			Model: t.model,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	return t.parseResponse(completion)
}

func (t *OpenAIGenerator) parseResponse(
	completion *openai.ChatCompletion,
) ([]Item, error) {
	if completion == nil || len(completion.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	responseText := completion.Choices[0].Message.Content

	if responseText == "" {
		return nil, fmt.Errorf("no text in OpenAI response")
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

func (t *OpenAIGenerator) Close() error {
	return nil
}
