package summarize_test

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"tuneforge-backend/internal/summarize"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	calls     atomic.Int64
	delay     time.Duration
	failOn    string
	summarize func(text string) string
}

func (f *fakeLLM) Summarize(ctx context.Context, text string, bounds summarize.Bounds) (string, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.failOn != "" && strings.Contains(text, f.failOn) {
		return "", fmt.Errorf("model rejected input")
	}
	if f.summarize != nil {
		return f.summarize(text), nil
	}
	return "summary of " + text, nil
}

func TestSummarizeAllPreservesOrderAndCardinality(t *testing.T) {
	llm := &fakeLLM{}
	s := summarize.New(llm)

	paragraphs := []string{"first", "second", "third"}
	summaries, err := s.SummarizeAll(context.Background(), paragraphs)
	require.NoError(t, err)

	require.Len(t, summaries, len(paragraphs))
	for i, paragraph := range paragraphs {
		assert.Equal(t, "summary of "+paragraph, summaries[i])
	}
	assert.Equal(t, int64(3), llm.calls.Load())
}

func TestSummarizeAllEmptyInput(t *testing.T) {
	s := summarize.New(&fakeLLM{})

	summaries, err := s.SummarizeAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestSummarizeAllIsDeterministic(t *testing.T) {
	s := summarize.New(&fakeLLM{})
	paragraphs := []string{"alpha", "beta"}

	first, err := s.SummarizeAll(context.Background(), paragraphs)
	require.NoError(t, err)
	second, err := s.SummarizeAll(context.Background(), paragraphs)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSummarizeAllFailFast(t *testing.T) {
	llm := &fakeLLM{failOn: "poison"}
	s := summarize.New(llm)

	_, err := s.SummarizeAll(context.Background(), []string{"fine", "poison pill", "never reached"})
	require.Error(t, err)
	assert.ErrorIs(t, err, summarize.ErrSummarization)
	assert.Contains(t, err.Error(), "paragraph 1")
	assert.Equal(t, int64(2), llm.calls.Load())
}

func TestSummarizeAllConcurrentPreservesOrder(t *testing.T) {
	llm := &fakeLLM{delay: time.Millisecond}
	s := summarize.New(llm, summarize.WithWorkers(4))

	paragraphs := make([]string, 20)
	for i := range paragraphs {
		paragraphs[i] = fmt.Sprintf("paragraph %d", i)
	}

	summaries, err := s.SummarizeAll(context.Background(), paragraphs)
	require.NoError(t, err)

	require.Len(t, summaries, len(paragraphs))
	for i := range paragraphs {
		assert.Equal(t, fmt.Sprintf("summary of paragraph %d", i), summaries[i])
	}
}

func TestSummarizeAllConcurrentFailFast(t *testing.T) {
	llm := &fakeLLM{failOn: "poison"}
	s := summarize.New(llm, summarize.WithWorkers(4))

	paragraphs := []string{"one", "two", "poison", "four", "five", "six"}
	_, err := s.SummarizeAll(context.Background(), paragraphs)
	require.Error(t, err)
	assert.ErrorIs(t, err, summarize.ErrSummarization)
}

type halvesSplitter struct{}

func (halvesSplitter) SplitText(text string) ([]string, error) {
	words := strings.Fields(text)
	mid := len(words) / 2
	return []string{strings.Join(words[:mid], " "), strings.Join(words[mid:], " ")}, nil
}

func TestSummarizeAllChunksOversizeParagraphs(t *testing.T) {
	llm := &fakeLLM{summarize: func(text string) string { return "<" + text + ">" }}
	wordCounter := func(text string) int { return len(strings.Fields(text)) }

	s := summarize.New(llm, summarize.WithInputLimit(4, wordCounter, halvesSplitter{}))

	summaries, err := s.SummarizeAll(context.Background(), []string{
		"short paragraph",
		"this one has far too many words to fit",
	})
	require.NoError(t, err)

	require.Len(t, summaries, 2)
	assert.Equal(t, "<short paragraph>", summaries[0])
	assert.Equal(t, "<this one has far> <too many words to fit>", summaries[1])
}

func TestSummarizeAllOversizeWithoutSplitter(t *testing.T) {
	wordCounter := func(text string) int { return len(strings.Fields(text)) }
	s := summarize.New(&fakeLLM{}, summarize.WithInputLimit(2, wordCounter, nil))

	_, err := s.SummarizeAll(context.Background(), []string{"three word paragraph"})
	require.Error(t, err)
	assert.ErrorIs(t, err, summarize.ErrSummarization)
}
