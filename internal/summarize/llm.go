package summarize

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go"
)

// Bounds constrains the condensed output, in the model's token units.
type Bounds struct {
	MaxTokens int
	MinTokens int
}

// Defaults match the t5-style summarization bounds the service originally shipped with.
const (
	DefaultMaxTokens = 150
	DefaultMinTokens = 30
)

// LLM is the external summarization capability. Implementations must be
// deterministic for a pinned model version: identical text and bounds yield
// an identical summary.
type LLM interface {
	Summarize(ctx context.Context, text string, bounds Bounds) (string, error)
}

type OpenAI struct {
	client openai.Client
	model  string
}

func NewOpenAI(model string) *OpenAI {
	return &OpenAI{
		client: openai.NewClient(),
		model:  model,
	}
}

const summarySystemPrompt = "You are a summarization engine. Condense the text you are given, " +
	"preserving its key facts. Respond with the summary only, no preamble."

func (o *OpenAI) Summarize(ctx context.Context, text string, bounds Bounds) (string, error) {
	prompt := fmt.Sprintf("Summarize the following text in at least %d and at most %d tokens:\n\n%s",
		bounds.MinTokens, bounds.MaxTokens, text)

	chatOpts := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(summarySystemPrompt),
			openai.UserMessage(prompt),
		},
		Model:               o.model,
		Temperature:         openai.Float(0),
		MaxCompletionTokens: openai.Int(int64(bounds.MaxTokens)),
	}

	res, err := o.client.Chat.Completions.New(ctx, chatOpts)
	if err != nil {
		slog.Error("openai error: chat completions failed", "error", err)
		return "", fmt.Errorf("openai summarization failed: %w", err)
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("openai summarization returned no choices")
	}

	return res.Choices[0].Message.Content, nil
}
