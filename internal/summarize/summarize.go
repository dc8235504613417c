package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// ErrSummarization indicates the summarization capability failed for at
// least one paragraph; the whole run is aborted.
var ErrSummarization = errors.New("summarization failed")

// TokenCounter reports the length of text in the model's token units.
type TokenCounter func(text string) int

// TextSplitter breaks oversize text into pieces that fit the model's input
// limit. langchaingo's textsplitter.TokenSplitter satisfies this.
type TextSplitter interface {
	SplitText(text string) ([]string, error)
}

type Summarizer struct {
	llm        LLM
	bounds     Bounds
	inputLimit int
	counter    TokenCounter
	splitter   TextSplitter
	workers    int
}

type Option func(*Summarizer)

func WithBounds(bounds Bounds) Option {
	return func(s *Summarizer) { s.bounds = bounds }
}

// WithInputLimit enables chunking of paragraphs whose token count exceeds
// limit: each chunk is summarized separately and the chunk summaries are
// joined with a space.
func WithInputLimit(limit int, counter TokenCounter, splitter TextSplitter) Option {
	return func(s *Summarizer) {
		s.inputLimit = limit
		s.counter = counter
		s.splitter = splitter
	}
}

// WithWorkers sets the number of concurrent summarization calls. Output
// order is preserved regardless of completion order.
func WithWorkers(n int) Option {
	return func(s *Summarizer) { s.workers = n }
}

func New(llm LLM, opts ...Option) *Summarizer {
	s := &Summarizer{
		llm:     llm,
		bounds:  Bounds{MaxTokens: DefaultMaxTokens, MinTokens: DefaultMinTokens},
		workers: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.workers < 1 {
		s.workers = 1
	}
	return s
}

// SummarizeAll produces one summary per paragraph, index-aligned with the
// input. Any paragraph failure aborts the run.
func (s *Summarizer) SummarizeAll(ctx context.Context, paragraphs []string) ([]string, error) {
	if len(paragraphs) == 0 {
		return []string{}, nil
	}

	if s.workers <= 1 || len(paragraphs) == 1 {
		summaries := make([]string, len(paragraphs))
		for i, paragraph := range paragraphs {
			summary, err := s.summarizeOne(ctx, paragraph)
			if err != nil {
				return nil, fmt.Errorf("%w: paragraph %d: %w", ErrSummarization, i, err)
			}
			summaries[i] = summary
		}
		return summaries, nil
	}

	return s.summarizeParallel(ctx, paragraphs)
}

func (s *Summarizer) summarizeOne(ctx context.Context, paragraph string) (string, error) {
	if s.inputLimit <= 0 || s.counter == nil || s.counter(paragraph) <= s.inputLimit {
		return s.llm.Summarize(ctx, paragraph, s.bounds)
	}

	if s.splitter == nil {
		return "", fmt.Errorf("paragraph exceeds input limit of %d tokens and no splitter is configured", s.inputLimit)
	}

	chunks, err := s.splitter.SplitText(paragraph)
	if err != nil {
		return "", fmt.Errorf("splitting oversize paragraph: %w", err)
	}

	parts := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		part, err := s.llm.Summarize(ctx, chunk, s.bounds)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, " "), nil
}

type indexedParagraph struct {
	index int
	text  string
}

// summarizeParallel is an indexed scatter/gather: results land in their
// input slot so completion order never reorders the output. The first real
// failure cancels in-flight work.
func (s *Summarizer) summarizeParallel(ctx context.Context, paragraphs []string) ([]string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	queue := make(chan indexedParagraph, len(paragraphs))
	for i, paragraph := range paragraphs {
		queue <- indexedParagraph{index: i, text: paragraph}
	}
	close(queue)

	summaries := make([]string, len(paragraphs))
	failures := make([]error, len(paragraphs))

	workers := min(s.workers, len(paragraphs))

	wg := sync.WaitGroup{}
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()

			for next := range queue {
				if ctx.Err() != nil {
					failures[next.index] = ctx.Err()
					continue
				}

				summary, err := s.summarizeOne(ctx, next.text)
				if err != nil {
					failures[next.index] = err
					cancel()
					continue
				}
				summaries[next.index] = summary
			}
		}()
	}
	wg.Wait()

	// Prefer the underlying failure over cancellations it triggered.
	for i, err := range failures {
		if err != nil && !errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: paragraph %d: %w", ErrSummarization, i, err)
		}
	}
	for i, err := range failures {
		if err != nil {
			return nil, fmt.Errorf("%w: paragraph %d: %w", ErrSummarization, i, err)
		}
	}

	return summaries, nil
}

// NewTokenCounter builds a TokenCounter for the given model, falling back to
// the cl100k_base encoding for models tiktoken does not know.
func NewTokenCounter(model string) (TokenCounter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("loading token encoding: %w", err)
		}
	}
	return func(text string) int {
		return len(enc.Encode(text, nil, nil))
	}, nil
}
